package http

import (
	"net/http"

	"go.uber.org/zap"

	domcart "example.com/glowshop/internal/domain/cart"
	domcheckout "example.com/glowshop/internal/domain/checkout"
	authuc "example.com/glowshop/internal/usecase/auth"
)

type quoteItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

func toCartItems(items []quoteItem) []domcart.Item {
	out := make([]domcart.Item, 0, len(items))
	for _, item := range items {
		out = append(out, domcart.Item{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out
}

// handleCheckoutView renders the checkout page state: the server cart
// re-resolved against the live catalog. Lines the catalog no longer resolves
// are pruned from the stored cart right here, so the page and the snapshot
// agree; a fully unresolvable cart is cleared and reported as invalid.
func (a *API) handleCheckoutView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := getCartToken(ctx)

	cart, err := a.cartSvc.Get(ctx, token)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if cart.IsEmpty() {
		writeJSON(w, http.StatusOK, map[string]any{
			"state": "empty",
			"cart":  mapCart(cart),
		})
		return
	}

	quote, err := a.checkoutSvc.Resolve(ctx, cart.Items)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	if quote.TotalDocs == 0 {
		if err := a.cartSvc.Clear(ctx, token); err != nil {
			handleDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"state": "invalid",
			"cart":  mapCart(domcart.New()),
		})
		return
	}

	var warning string
	if quote.TotalDocs < cart.UniqueItems() {
		cart, err = a.cartSvc.Retain(ctx, token, quote.Keep())
		if err != nil {
			handleDomainError(w, err)
			return
		}
		warning = "some items are no longer available and were removed from your cart"
	}

	resp := map[string]any{
		"state": "ready",
		"cart":  mapCart(cart),
		"quote": mapQuote(quote),
	}
	if warning != "" {
		resp["warning"] = warning
	}
	writeJSON(w, http.StatusOK, resp)
}

type quoteRequest struct {
	Items []quoteItem `json:"items" validate:"dive"`
}

func (a *API) handleCheckoutQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	quote, err := a.checkoutSvc.Resolve(r.Context(), toCartItems(req.Items))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapQuote(quote))
}

type purchaseRequest struct {
	Items []quoteItem `json:"items" validate:"required,min=1,dive"`
}

// handlePurchase opens a provider session for the logged-in buyer. Without a
// valid token it answers 401; the client falls back to the guest flow.
func (a *API) handlePurchase(w http.ResponseWriter, r *http.Request) {
	user := getAuthUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, errUnauthenticated)
		return
	}

	var req purchaseRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	session, err := a.checkoutSvc.PurchaseAsUser(r.Context(), &authuc.Claims{
		UserID:   user.UserID,
		RoleCode: user.RoleCode,
		Email:    user.Email,
		Name:     user.Name,
	}, toCartItems(req.Items))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": session.ID,
		"url":        session.URL,
	})
}

type guestPurchaseRequest struct {
	Email string      `json:"email" validate:"required,email"`
	Items []quoteItem `json:"items" validate:"required,min=1,dive"`
}

func (a *API) handleGuestPurchase(w http.ResponseWriter, r *http.Request) {
	var req guestPurchaseRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	session, err := a.checkoutSvc.PurchaseAsGuest(r.Context(), req.Email, toCartItems(req.Items))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": session.ID,
		"url":        session.URL,
	})
}

// handleCheckoutReturn is the landing route for the provider's redirect.
// Only the first successful return for a session clears the cart and queues
// the confirmation mail; the mail is enqueued strictly after the clear and
// its delivery never blocks the response.
func (a *API) handleCheckoutReturn(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := domcheckout.ReturnState{
		Success:   q.Get("success") == "true",
		Cancel:    q.Get("cancel") == "true",
		SessionID: q.Get("session_id"),
	}

	out, err := a.checkoutSvc.CompleteReturn(r.Context(), getCartToken(r.Context()), state)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	emailQueued := false
	if out.Consumed {
		emailQueued = a.mailQueue.Enqueue(out.SessionID)
		if !emailQueued {
			a.log.Warn("confirmation mail not queued",
				zap.String("session_id", out.SessionID))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      out.Success,
		"cancel":       out.Cancel,
		"session_id":   out.SessionID,
		"consumed":     out.Consumed,
		"cart_cleared": out.CartCleared,
		"email_queued": emailQueued,
	})
}

type confirmEmailRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// handleConfirmEmail re-queues the confirmation mail for a session, for
// clients retrying after a dropped job.
func (a *API) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmEmailRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	queued := a.mailQueue.Enqueue(req.SessionID)
	writeJSON(w, http.StatusAccepted, map[string]any{
		"session_id": req.SessionID,
		"queued":     queued,
	})
}
