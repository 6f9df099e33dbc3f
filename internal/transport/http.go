package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/northmart/storefront/internal/auth"
	"github.com/northmart/storefront/internal/category"
	"github.com/northmart/storefront/internal/handler"
	"github.com/northmart/storefront/internal/order"
)

func NewRouter(authSvc auth.Service, orderSvc order.Service, categorySvc category.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authH := handler.NewAuthHandler(authSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	categoryH := handler.NewCategoryHandler(categorySvc)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(authSvc))

			r.Get("/stats", orderH.Stats)
			r.Get("/orders", orderH.ListOrders)
			r.Get("/orders/{orderId}", orderH.GetOrder)
			r.Put("/orders/{orderId}/status", orderH.UpdateStatus)

			r.Post("/categories", categoryH.Create)
			r.Get("/categories", categoryH.List)
			r.Put("/categories/{categoryId}", categoryH.Update)
			r.Delete("/categories/{categoryId}", categoryH.Delete)
		})
	})

	return r
}
