// Package auth covers the storefront's account surface: customer signup,
// login, and the claims carried by bearer tokens. Checkout works without any
// of it; an account only makes purchases pre-addressed.
package auth

import (
	"context"
	"net/mail"
	"strings"

	domuser "example.com/glowshop/internal/domain/user"
)

// PasswordService hashes on signup and compares on login.
type PasswordService interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type Claims struct {
	UserID   int64
	RoleCode domuser.RoleCode
	Email    string
	Name     string
}

type TokenService interface {
	GenerateToken(u *domuser.User) (string, error)
	ParseToken(token string) (*Claims, error)
}

type Service struct {
	userRepo  domuser.Repository
	passwords PasswordService
	tokens    TokenService
}

func NewService(
	userRepo domuser.Repository,
	passwords PasswordService,
	tokens TokenService,
) *Service {
	return &Service{
		userRepo:  userRepo,
		passwords: passwords,
		tokens:    tokens,
	}
}

const minPasswordLen = 8

type Credentials struct {
	Email    string
	Password string
}

// Session is an issued bearer token plus the account it authenticates.
type Session struct {
	Token string
	User  *domuser.User
}

func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	email, err := normalizeEmail(creds.Email)
	if err != nil || creds.Password == "" {
		return nil, domuser.ErrInvalidCredential
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, domuser.ErrUnauthorized
	}
	if err := s.passwords.Compare(u.PasswordHash, creds.Password); err != nil {
		return nil, domuser.ErrUnauthorized
	}

	return s.issueSession(u)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a customer account and logs it in in one step, so the
// storefront can move a guest straight from signup to a tagged checkout.
// Every self-registered account is a CUSTOMER; admin roles are provisioned
// out of band.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, domuser.ErrInvalidCredential
	}
	if len(in.Password) < minPasswordLen {
		return nil, domuser.ErrWeakPassword
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domuser.ErrInvalidCredential
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.Create(ctx, &domuser.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RoleCode:     domuser.RoleCodeCustomer,
	})
	if err != nil {
		return nil, err
	}

	return s.issueSession(u)
}

// Profile loads the account behind a set of claims, for the "my account"
// view. Claims outlive account deletion, so the lookup can still miss.
func (s *Service) Profile(ctx context.Context, userID int64) (*domuser.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *Service) issueSession(u *domuser.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: u}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", err
	}
	return email, nil
}
