package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domcart "example.com/glowshop/internal/domain/cart"
)

func mapCart(c *domcart.Cart) map[string]any {
	items := make([]map[string]any, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
		})
	}
	return map[string]any{
		"items":        items,
		"product_ids":  c.ProductIDs(),
		"total_items":  c.TotalItems(),
		"unique_items": c.UniqueItems(),
	}
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := a.cartSvc.Get(r.Context(), getCartToken(r.Context()))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := a.cartSvc.Clear(r.Context(), getCartToken(r.Context())); err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(domcart.New()))
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"omitempty,gte=0"`
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := a.cartSvc.AddProduct(r.Context(), getCartToken(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

type updateQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	// Zero or negative sets the line to removed, same as an explicit delete.
	cart, err := a.cartSvc.UpdateQuantity(r.Context(), getCartToken(r.Context()), chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := a.cartSvc.RemoveProduct(r.Context(), getCartToken(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}

type toggleItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

func (a *API) handleToggleCartItem(w http.ResponseWriter, r *http.Request) {
	var req toggleItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	cart, err := a.cartSvc.ToggleProduct(r.Context(), getCartToken(r.Context()), req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}
