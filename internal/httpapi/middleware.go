package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/muhidtech/ecohaven/internal/session"
)

type contextKey string

const (
	clientIDKey contextKey = "client_id"
	managerKey  contextKey = "session_manager"
)

const clientCookie = "sf_client"

// ClientIDMiddleware gives each browser a stable client id cookie. It is the
// key under which that client's session and cart snapshots live.
func ClientIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := ""
		if c, err := r.Cookie(clientCookie); err == nil && c.Value != "" {
			clientID = c.Value
		}
		if clientID == "" {
			clientID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     clientCookie,
				Value:    clientID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(365 * 24 * time.Hour),
			})
		}

		ctx := context.WithValue(r.Context(), clientIDKey, clientID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware attaches the client's session manager to the request.
func SessionMiddleware(hub *session.Hub) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := getClientID(r.Context())
			if clientID == "" {
				next.ServeHTTP(w, r)
				return
			}
			m := hub.Manager(r.Context(), clientID)
			ctx := context.WithValue(r.Context(), managerKey, m)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a subtree behind a role check. Admin passes every gate.
func RequireRole(role session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := getManager(r.Context())
			if m == nil || m.Current() == nil {
				respondError(w, http.StatusUnauthorized, "no_session", "sign in required")
				return
			}
			if !m.HasPermission(role) {
				respondError(w, http.StatusForbidden, "forbidden", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getClientID(ctx context.Context) string {
	if v, ok := ctx.Value(clientIDKey).(string); ok {
		return v
	}
	return ""
}

func getManager(ctx context.Context) *session.Manager {
	if m, ok := ctx.Value(managerKey).(*session.Manager); ok {
		return m
	}
	return nil
}
