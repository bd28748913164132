package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	domuser "example.com/glowshop/internal/domain/user"
)

type ctxKey int

const (
	ctxUserKey ctxKey = iota
	ctxCartTokenKey
)

var (
	errUnauthenticated = errors.New("unauthenticated")
	errForbidden       = errors.New("forbidden")
)

const cartTokenCookie = "cart_token"

type authUser struct {
	UserID   int64
	RoleCode domuser.RoleCode
	Email    string
	Name     string
}

func (a *API) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := a.bearerUser(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), ctxUserKey, user)))
	})
}

// optionalAuthMiddleware attaches claims when a valid bearer token is
// present and lets the request through either way. Checkout uses it: the
// same routes serve logged-in and guest buyers.
func (a *API) optionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, ok := a.bearerUser(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), ctxUserKey, user))
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) bearerUser(r *http.Request) (*authUser, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	claims, err := a.tokenSvc.ParseToken(token)
	if err != nil {
		return nil, false
	}
	return &authUser{
		UserID:   claims.UserID,
		RoleCode: claims.RoleCode,
		Email:    claims.Email,
		Name:     claims.Name,
	}, true
}

// requireAdmin gates the back-office routes. Admin roles are provisioned out
// of band; a customer token is authenticated but forbidden here.
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := getAuthUser(r.Context())
		if user == nil {
			respondError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}
		if !user.RoleCode.IsAdmin() {
			respondError(w, http.StatusForbidden, errForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cartTokenMiddleware assigns each browser its cart namespace: an opaque
// UUID in a long-lived cookie. The token carries no identity; it only keys
// the snapshot store.
func (a *API) cartTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(cartTokenCookie); err == nil && c.Value != "" {
			token = c.Value
		}
		if token == "" {
			token = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     cartTokenCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), ctxCartTokenKey, token)))
	})
}

func getAuthUser(ctx context.Context) *authUser {
	if user, ok := ctx.Value(ctxUserKey).(*authUser); ok {
		return user
	}
	return nil
}

func getCartToken(ctx context.Context) string {
	if token, ok := ctx.Value(ctxCartTokenKey).(string); ok {
		return token
	}
	return ""
}
