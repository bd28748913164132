package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domcheckout "example.com/glowshop/internal/domain/checkout"
	domorder "example.com/glowshop/internal/domain/order"
	domproduct "example.com/glowshop/internal/domain/product"
	domuser "example.com/glowshop/internal/domain/user"
	authuc "example.com/glowshop/internal/usecase/auth"
	cartuc "example.com/glowshop/internal/usecase/cart"
	cataloguc "example.com/glowshop/internal/usecase/catalog"
	checkoutuc "example.com/glowshop/internal/usecase/checkout"
)

// MailQueue is the fire-and-forget confirmation-mail intake. Enqueue never
// blocks; false means the job was dropped (and logged by the dispatcher).
type MailQueue interface {
	Enqueue(sessionID string) bool
}

type API struct {
	authSvc     *authuc.Service
	catalogSvc  *cataloguc.Service
	cartSvc     *cartuc.Service
	checkoutSvc *checkoutuc.Service
	mailQueue   MailQueue
	receipts    domorder.Repository
	tokenSvc    authuc.TokenService
	validator   *validator.Validate
	log         *zap.Logger
}

type Dependencies struct {
	AuthService     *authuc.Service
	CatalogService  *cataloguc.Service
	CartService     *cartuc.Service
	CheckoutService *checkoutuc.Service
	MailQueue       MailQueue
	Receipts        domorder.Repository
	TokenService    authuc.TokenService
	Logger          *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	return &API{
		authSvc:     deps.AuthService,
		catalogSvc:  deps.CatalogService,
		cartSvc:     deps.CartService,
		checkoutSvc: deps.CheckoutService,
		mailQueue:   deps.MailQueue,
		receipts:    deps.Receipts,
		tokenSvc:    deps.TokenService,
		validator:   validator.New(),
		log:         deps.Logger,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain", ""))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/login", a.handleLogin)
		r.Group(func(mr chi.Router) {
			mr.Use(a.authMiddleware)
			mr.Get("/auth/me", a.handleMe)
		})

		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)
		r.Get("/products/slug/{slug}", a.handleGetProductBySlug)

		r.Group(func(cr chi.Router) {
			cr.Use(a.cartTokenMiddleware)

			cr.Route("/cart", func(rr chi.Router) {
				rr.Get("/", a.handleGetCart)
				rr.Delete("/", a.handleClearCart)
				rr.Post("/items", a.handleAddCartItem)
				rr.Put("/items/{productID}", a.handleUpdateCartItem)
				rr.Delete("/items/{productID}", a.handleRemoveCartItem)
				rr.Post("/toggle", a.handleToggleCartItem)
			})

			cr.Route("/checkout", func(rr chi.Router) {
				rr.Use(a.optionalAuthMiddleware)
				rr.Get("/", a.handleCheckoutView)
				rr.Post("/quote", a.handleCheckoutQuote)
				rr.Post("/purchase", a.handlePurchase)
				rr.Post("/guest", a.handleGuestPurchase)
				rr.Get("/return", a.handleCheckoutReturn)
				rr.Post("/confirm-email", a.handleConfirmEmail)
			})
		})

		r.Group(func(ar chi.Router) {
			ar.Use(a.authMiddleware)
			ar.Use(a.requireAdmin)

			ar.Route("/admin", func(admin chi.Router) {
				admin.Route("/products", func(rr chi.Router) {
					rr.Get("/", a.handleListProductsAdmin)
					rr.Post("/", a.handleCreateProduct)
					rr.Put("/{id}", a.handleUpdateProduct)
					rr.Delete("/{id}", a.handleDeleteProduct)
				})
				admin.Route("/orders", func(rr chi.Router) {
					rr.Get("/", a.handleListOrders)
					rr.Get("/{sessionID}", a.handleGetOrder)
				})
			})
		})
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func mapProduct(p *domproduct.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"slug":        p.Slug,
		"description": p.Description,
		"price_cents": p.PriceCents,
		"currency":    p.Currency,
		"image":       p.Image,
		"category":    p.Category,
		"is_active":   p.IsActive,
	}
}

func mapQuote(q *domcheckout.Quote) map[string]any {
	docs := make([]map[string]any, 0, len(q.Docs))
	for _, doc := range q.Docs {
		docs = append(docs, map[string]any{
			"product_id":       doc.ProductID,
			"name":             doc.Name,
			"slug":             doc.Slug,
			"image":            doc.Image,
			"category":         doc.Category,
			"price_cents":      doc.PriceCents,
			"currency":         doc.Currency,
			"quantity":         doc.Quantity,
			"line_total_cents": doc.LineTotalCents,
		})
	}
	return map[string]any{
		"docs":              docs,
		"total_docs":        q.TotalDocs,
		"total_price_cents": q.TotalPriceCents,
	}
}

func mapReceipt(o *domorder.Receipt) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"name":        item.Name,
			"price_cents": item.PriceCents,
			"quantity":    item.Quantity,
		})
	}
	return map[string]any{
		"id":          o.ID,
		"session_id":  o.SessionID,
		"email":       o.Email,
		"total_cents": o.TotalCents,
		"currency":    o.Currency,
		"status":      o.Status,
		"created_at":  o.CreatedAt,
		"items":       items,
	}
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domcheckout.ErrInvalidItems),
		errors.Is(err, domcheckout.ErrMissingSession),
		errors.Is(err, cartuc.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, domcheckout.ErrInvalidEmail),
		errors.Is(err, domcheckout.ErrNothingToPurchase),
		errors.Is(err, domuser.ErrInvalidCredential),
		errors.Is(err, domuser.ErrWeakPassword):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domproduct.ErrSlugExists),
		errors.Is(err, domuser.ErrEmailAlreadyUsed):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domorder.ErrReceiptNotFound),
		errors.Is(err, domuser.ErrUserNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domuser.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domcheckout.ErrPaymentProvider):
		respondError(w, http.StatusBadGateway, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}
