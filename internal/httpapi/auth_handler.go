package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/muhidtech/ecohaven/internal/session"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type SignInRequestDTO struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type SignUpRequestDTO struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DisplayName string `json:"displayName"`
}

type SessionDTO struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Role        string `json:"role"`
	ExpiresAt   int64  `json:"expiresAt"`
}

func sessionDTO(s *session.Session) SessionDTO {
	return SessionDTO{
		ID:          s.ID,
		Email:       s.Email,
		Username:    s.Username,
		DisplayName: s.DisplayName,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Role:        string(s.Role),
		ExpiresAt:   s.ExpiresAt.UnixMilli(),
	}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	m := getManager(r.Context())
	if m == nil {
		respondError(w, http.StatusInternalServerError, "no_client", "client resolution failed")
		return
	}

	var req SignInRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	sess, err := m.SignIn(r.Context(), req.Identifier, req.Password)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sessionDTO(sess))
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	m := getManager(r.Context())
	if m == nil {
		respondError(w, http.StatusInternalServerError, "no_client", "client resolution failed")
		return
	}

	var req SignUpRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	err := m.SignUp(r.Context(), session.SignUpParams{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	sess := m.Current()
	if sess == nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "account created but session missing")
		return
	}
	respondJSON(w, http.StatusCreated, sessionDTO(sess))
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	m := getManager(r.Context())
	if m != nil {
		m.SignOut(r.Context())
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	m := getManager(r.Context())
	if m == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "sign in required")
		return
	}

	if err := m.Refresh(r.Context()); err != nil {
		handleDomainError(w, err)
		return
	}

	sess := m.Current()
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "sign in required")
		return
	}
	respondJSON(w, http.StatusOK, sessionDTO(sess))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	m := getManager(r.Context())
	if m == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "sign in required")
		return
	}

	sess := m.Current()
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "no_session", "sign in required")
		return
	}
	respondJSON(w, http.StatusOK, sessionDTO(sess))
}
