package httpapi

import (
	"net/http"

	"github.com/muhidtech/ecohaven/internal/checkout"
	"github.com/muhidtech/ecohaven/internal/order"
)

type CheckoutHandler struct {
	checkout *checkout.Service
	orders   order.RepoInterface
}

func NewCheckoutHandler(svc *checkout.Service, orders order.RepoInterface) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc, orders: orders}
}

// Checkout turns the client's cart into an order. Retries with the same
// Idempotency-Key header return the original order.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	o, err := h.checkout.Checkout(r.Context(), getClientID(r.Context()), r.Header.Get("Idempotency-Key"))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

// ListOrders is the admin back-office order view.
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}
