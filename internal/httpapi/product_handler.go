package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/muhidtech/ecohaven/internal/product"
)

type ProductHandler struct {
	catalog *product.Catalog
}

func NewProductHandler(catalog *product.Catalog) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if products == nil {
		products = []*product.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, err := h.catalog.GetBySlug(r.Context(), slug)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type CreateProductRequestDTO struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image"`
	Stock       int     `json:"stock"`
}

// Create is the admin back-office entry point for new products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Name == "" || req.Slug == "" {
		respondError(w, http.StatusBadRequest, "invalid_product", "name and slug are required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must be non-negative")
		return
	}

	p := &product.Product{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	}
	if err := h.catalog.Create(r.Context(), p); err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}
