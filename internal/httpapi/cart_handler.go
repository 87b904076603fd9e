package httpapi

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/muhidtech/ecohaven/internal/cart"
	"github.com/muhidtech/ecohaven/internal/product"
)

type CartHandler struct {
	carts   *cart.Service
	catalog *product.Catalog
}

func NewCartHandler(carts *cart.Service, catalog *product.Catalog) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	// Quantity arrives as a number; fractional values are floored.
	Quantity float64 `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity float64 `json:"quantity"`
	Absolute *bool   `json:"absolute,omitempty"`
}

type CartResponseDTO struct {
	Items []cart.LineItem `json:"items"`
	Count int             `json:"count"`
	Total float64         `json:"total"`
}

func (h *CartHandler) cartResponse(agg *cart.Aggregate) CartResponseDTO {
	items := agg.Items()
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartResponseDTO{
		Items: items,
		Count: agg.ItemCount(),
		Total: agg.Total(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	agg := h.carts.Cart(r.Context(), getClientID(r.Context()))
	respondJSON(w, http.StatusOK, h.cartResponse(agg))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	agg := h.carts.Cart(r.Context(), getClientID(r.Context()))
	agg.AddItem(r.Context(), cart.LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.ImageURL,
		Stock:     p.Stock,
		Slug:      p.Slug,
	}, int(math.Floor(req.Quantity)))

	respondJSON(w, http.StatusCreated, h.cartResponse(agg))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	absolute := true
	if req.Absolute != nil {
		absolute = *req.Absolute
	}

	agg := h.carts.Cart(r.Context(), getClientID(r.Context()))
	agg.UpdateQuantity(r.Context(), id, int(math.Floor(req.Quantity)), absolute)

	respondJSON(w, http.StatusOK, h.cartResponse(agg))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	agg := h.carts.Cart(r.Context(), getClientID(r.Context()))
	agg.RemoveItem(r.Context(), id)

	respondJSON(w, http.StatusOK, h.cartResponse(agg))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	agg := h.carts.Cart(r.Context(), getClientID(r.Context()))
	agg.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
