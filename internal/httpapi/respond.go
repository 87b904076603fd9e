package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/muhidtech/ecohaven/internal/checkout"
	"github.com/muhidtech/ecohaven/internal/product"
	"github.com/muhidtech/ecohaven/internal/session"
	"github.com/muhidtech/ecohaven/internal/user"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError maps core errors onto HTTP statuses.
func handleDomainError(w http.ResponseWriter, err error) {
	var ve *session.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, "validation_failed", ve.Error())
	case errors.Is(err, session.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "identifier or password is incorrect")
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrExpired):
		respondError(w, http.StatusUnauthorized, "no_session", "sign in required")
	case errors.Is(err, user.ErrDuplicate):
		respondError(w, http.StatusConflict, "duplicate_account", "an account with that identifier already exists")
	case errors.Is(err, product.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart is empty")
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
