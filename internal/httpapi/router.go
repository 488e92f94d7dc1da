package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", h.Health)

	r.Route("/api/pos", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/search", h.Search)
		r.Post("/scan", h.Scan)

		r.Route("/cart", func(r chi.Router) {
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddItem)
			r.Put("/items/{index}", h.UpdateItem)
			r.Delete("/items/{index}", h.RemoveItem)
		})

		r.Put("/settings", h.UpdateSettings)
		r.Put("/warehouse", h.SelectWarehouse)
		r.Put("/customer", h.SelectCustomer)
		r.Post("/customer", h.QuickCustomer)

		r.Post("/checkout", h.Checkout)
		r.Post("/hold", h.Hold)
		r.Get("/held-sales", h.HeldSales)
	})

	return r
}
