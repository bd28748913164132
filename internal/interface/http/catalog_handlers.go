package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domproduct "example.com/glowshop/internal/domain/product"
)

func listFilterFromQuery(r *http.Request, onlyActive bool) domproduct.ListFilter {
	return domproduct.ListFilter{
		Category:   r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("q"),
		Sort:       domproduct.SortOrder(r.URL.Query().Get("sort")),
		OnlyActive: onlyActive,
	}
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.catalogSvc.List(r.Context(), listFilterFromQuery(r, true))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.catalogSvc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleGetProductBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := a.catalogSvc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

type productRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug" validate:"required"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	Image       string `json:"image"`
	Category    string `json:"category"`
	IsActive    bool   `json:"is_active"`
}

func (a *API) handleListProductsAdmin(w http.ResponseWriter, r *http.Request) {
	products, err := a.catalogSvc.List(r.Context(), listFilterFromQuery(r, false))
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.catalogSvc.Create(r.Context(), &domproduct.Product{
		ID:          req.ID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Image:       req.Image,
		Category:    req.Category,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(p))
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.catalogSvc.Update(r.Context(), &domproduct.Product{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		Image:       req.Image,
		Category:    req.Category,
		IsActive:    req.IsActive,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := a.catalogSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	receipts, err := a.receipts.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(receipts))
	for _, receipt := range receipts {
		resp = append(resp, mapReceipt(receipt))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	receipt, err := a.receipts.GetBySessionID(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReceipt(receipt))
}
