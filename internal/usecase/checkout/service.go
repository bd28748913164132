package checkout

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"example.com/glowshop/internal/cartstore"
	domcart "example.com/glowshop/internal/domain/cart"
	domcheckout "example.com/glowshop/internal/domain/checkout"
	domorder "example.com/glowshop/internal/domain/order"
	domproduct "example.com/glowshop/internal/domain/product"
	domuser "example.com/glowshop/internal/domain/user"
	authuc "example.com/glowshop/internal/usecase/auth"
)

type ProductResolver interface {
	GetActiveByIDs(ctx context.Context, ids []string) ([]*domproduct.Product, error)
}

// LineItem is one priced line sent to or read back from the provider.
type LineItem struct {
	Name       string
	PriceCents int64
	Currency   string
	Quantity   int64
}

// CreateSessionInput carries everything the provider needs to open a hosted
// checkout page. IdempotencyKey is fresh per attempt: a transport-level retry
// of one attempt cannot double-create, while two deliberate attempts still
// make two sessions.
type CreateSessionInput struct {
	Email          string
	UserID         *int64
	Items          []LineItem
	IdempotencyKey string
}

// SessionDetails is the provider's authoritative record of a session,
// re-queried after the buyer returns. UserID echoes the reference ID a
// logged-in purchase tagged the session with; nil for guests.
type SessionDetails struct {
	ID         string
	Status     string
	Email      string
	UserID     *int64
	TotalCents int64
	Currency   string
	Lines      []LineItem
}

const SessionStatusComplete = "complete"

type PaymentGateway interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*domcheckout.Session, error)
	GetSession(ctx context.Context, id string) (*SessionDetails, error)
}

type CartClearer interface {
	Clear(ctx context.Context, token string) error
}

type Mailer interface {
	SendConfirmation(ctx context.Context, to string, receipt *domorder.Receipt) error
}

type Service struct {
	products ProductResolver
	gateway  PaymentGateway
	consumed cartstore.ClaimStore
	receipts domorder.Repository
	carts    CartClearer
	mailer   Mailer
	log      *zap.Logger
}

func NewService(
	products ProductResolver,
	gateway PaymentGateway,
	consumed cartstore.ClaimStore,
	receipts domorder.Repository,
	carts CartClearer,
	mailer Mailer,
	log *zap.Logger,
) *Service {
	return &Service{
		products: products,
		gateway:  gateway,
		consumed: consumed,
		receipts: receipts,
		carts:    carts,
		mailer:   mailer,
		log:      log,
	}
}

// Resolve re-prices a client cart snapshot against the live catalog.
// Malformed items fail before any lookup; products the catalog no longer
// resolves are silently excluded, which the client detects by comparing the
// requested count with TotalDocs. Pure read, no side effects.
func (s *Service) Resolve(ctx context.Context, items []domcart.Item) (*domcheckout.Quote, error) {
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 {
			return nil, domcheckout.ErrInvalidItems
		}
	}

	quote := &domcheckout.Quote{Docs: []domcheckout.ResolvedProduct{}}
	if len(items) == 0 {
		return quote, nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domproduct.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	// Docs preserve the request order, priced from the current catalog
	// record rather than anything the client sent.
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		line := p.PriceCents * item.Quantity
		quote.Docs = append(quote.Docs, domcheckout.ResolvedProduct{
			ProductID:      p.ID,
			Name:           p.Name,
			Slug:           p.Slug,
			Image:          p.Image,
			Category:       p.Category,
			PriceCents:     p.PriceCents,
			Currency:       p.Currency,
			Quantity:       item.Quantity,
			LineTotalCents: line,
		})
		quote.TotalPriceCents += line
	}
	quote.TotalDocs = len(quote.Docs)
	return quote, nil
}

// PurchaseAsUser opens a provider session for an authenticated buyer.
func (s *Service) PurchaseAsUser(ctx context.Context, claims *authuc.Claims, items []domcart.Item) (*domcheckout.Session, error) {
	if claims == nil {
		return nil, domuser.ErrUnauthorized
	}
	return s.purchase(ctx, claims.Email, &claims.UserID, items)
}

// PurchaseAsGuest opens a provider session addressed to an explicit email so
// the confirmation can reach a buyer with no account.
func (s *Service) PurchaseAsGuest(ctx context.Context, email string, items []domcart.Item) (*domcheckout.Session, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domcheckout.ErrInvalidEmail
	}
	return s.purchase(ctx, email, nil, items)
}

func (s *Service) purchase(ctx context.Context, email string, userID *int64, items []domcart.Item) (*domcheckout.Session, error) {
	quote, err := s.Resolve(ctx, items)
	if err != nil {
		return nil, err
	}
	if quote.TotalDocs == 0 {
		return nil, domcheckout.ErrNothingToPurchase
	}

	lines := make([]LineItem, 0, quote.TotalDocs)
	for _, doc := range quote.Docs {
		lines = append(lines, LineItem{
			Name:       doc.Name,
			PriceCents: doc.PriceCents,
			Currency:   doc.Currency,
			Quantity:   doc.Quantity,
		})
	}

	session, err := s.gateway.CreateSession(ctx, CreateSessionInput{
		Email:          email,
		UserID:         userID,
		Items:          lines,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domcheckout.ErrPaymentProvider, err)
	}
	return session, nil
}

// CompleteReturn handles the post-payment redirect. Cancel is informational:
// the cart is untouched. Success claims the session atomically, and only the
// first claim clears the cart; replays of the same URL see Consumed=false and
// trigger nothing.
func (s *Service) CompleteReturn(ctx context.Context, token string, state domcheckout.ReturnState) (*domcheckout.ReturnState, error) {
	if state.Cancel || !state.Success {
		return &state, nil
	}
	if state.SessionID == "" {
		return nil, domcheckout.ErrMissingSession
	}

	first, err := s.consumed.Claim(ctx, state.SessionID)
	if err != nil {
		return nil, err
	}
	if !first {
		return &state, nil
	}

	// Cart clearing is sequenced strictly before the caller queues the
	// confirmation mail; mail is best-effort, the clear is not. A failed
	// clear hands the claim back so reloading the return URL retries it.
	if err := s.carts.Clear(ctx, token); err != nil {
		if relErr := s.consumed.Release(ctx, state.SessionID); relErr != nil {
			s.log.Error("claim release failed after cart clear error",
				zap.String("session_id", state.SessionID),
				zap.Error(relErr))
		}
		return nil, err
	}
	state.Consumed = true
	state.CartCleared = true
	return &state, nil
}

// ConfirmEmail re-queries the provider for the authoritative order, records
// a receipt once, and sends the confirmation mail. Invoked fire-and-forget
// from the return flow; failures are the dispatcher's to log, never the
// buyer's to see.
func (s *Service) ConfirmEmail(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domcheckout.ErrMissingSession
	}

	details, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("fetch session %s: %w", sessionID, err)
	}
	if details.Status != SessionStatusComplete {
		return fmt.Errorf("session %s not complete (status %q)", sessionID, details.Status)
	}

	receipt := &domorder.Receipt{
		SessionID:  details.ID,
		UserID:     details.UserID,
		Email:      details.Email,
		TotalCents: details.TotalCents,
		Currency:   details.Currency,
		Status:     domorder.StatusPaid,
	}
	for _, line := range details.Lines {
		receipt.Items = append(receipt.Items, domorder.ReceiptItem{
			Name:       line.Name,
			PriceCents: line.PriceCents,
			Quantity:   line.Quantity,
		})
	}

	recorded, err := s.receipts.RecordOnce(ctx, receipt)
	if err != nil {
		return fmt.Errorf("record receipt: %w", err)
	}
	if !recorded {
		// Belt and braces under the claim store: the receipt already exists,
		// so the mail went out (or is going out) on the first pass.
		s.log.Info("receipt already recorded, skipping mail",
			zap.String("session_id", sessionID))
		return nil
	}

	if err := s.mailer.SendConfirmation(ctx, details.Email, receipt); err != nil {
		return fmt.Errorf("send confirmation to %s: %w", details.Email, err)
	}
	return nil
}
