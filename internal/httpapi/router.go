package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/muhidtech/ecohaven/internal/session"
)

type RouterDeps struct {
	Hub            *session.Hub
	Auth           *AuthHandler
	Cart           *CartHandler
	Product        *ProductHandler
	Checkout       *CheckoutHandler
	RequestTimeout time.Duration
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(ClientIDMiddleware)
	r.Use(SessionMiddleware(deps.Hub))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signin", deps.Auth.SignIn)
		r.Post("/signup", deps.Auth.SignUp)
		r.Post("/signout", deps.Auth.SignOut)
		r.Post("/refresh", deps.Auth.Refresh)
		r.Get("/me", deps.Auth.Me)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", deps.Product.List)
		r.Get("/{id}", deps.Product.Get)
		r.Get("/slug/{slug}", deps.Product.GetBySlug)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", deps.Cart.GetCart)
		r.Delete("/", deps.Cart.ClearCart)
		r.Post("/items", deps.Cart.AddItem)
		r.Put("/items/{id}", deps.Cart.UpdateQuantity)
		r.Delete("/items/{id}", deps.Cart.RemoveItem)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(session.RoleUser))
		r.Post("/checkout", deps.Checkout.Checkout)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireRole(session.RoleAdmin))
		r.Get("/orders", deps.Checkout.ListOrders)
		r.Post("/products", deps.Product.Create)
	})

	return r
}
