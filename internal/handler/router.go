package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/sweetcupcakes/storefront/internal/middleware"
)

// SetupRouter wires the storefront routes and middleware.
func (h *Handler) SetupRouter(sessions custommiddleware.SessionChecker) *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.GetProducts)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)

			r.Post("/items", h.AddCartItem)
			r.Patch("/items/{productID}", h.ChangeCartItem)
			r.Delete("/items/{productID}", h.RemoveCartItem)

			r.Post("/coupon", h.ApplyCoupon)
			r.Delete("/coupon", h.RemoveCoupon)
		})

		r.Post("/checkout", h.Checkout)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireLogin(sessions))
			r.Get("/orders", h.GetOrders)
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/session", h.GetSession)
			r.Patch("/profile", h.UpdateProfile)
			r.Post("/password", h.ChangePassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireAdmin(sessions))
			r.Get("/admin/users", h.ListAccounts)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
