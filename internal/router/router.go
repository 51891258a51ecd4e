package router

import (
	"net/http"

	"medikart/internal/handler"
	"medikart/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by New.
type Handlers struct {
	Auth     *handler.AuthHandler
	Medicine *handler.MedicineHandler
	Order    *handler.OrderHandler
	Admin    *handler.AdminHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, auth middleware.Authenticator, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Applied in order: Recovery -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	authenticate := middleware.Authenticate(auth, logger)
	requireAdmin := middleware.RequireAdmin(logger)

	r.Get("/health", h.Admin.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	r.Get("/categories", h.Medicine.Categories)

	r.Route("/medicines", func(r chi.Router) {
		r.Get("/", h.Medicine.List)
		r.Get("/{id}", h.Medicine.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate, requireAdmin)
			r.Post("/", h.Medicine.Create)
			r.Put("/{id}", h.Medicine.Update)
			r.Delete("/{id}", h.Medicine.Delete)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/", h.Order.Create)
		r.Get("/", h.Order.List)
		r.Get("/{id}", h.Order.GetByID)
		r.Put("/{id}/status", h.Order.UpdateStatus)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate, requireAdmin)
		r.Get("/stats", h.Admin.Stats)
	})

	return r
}
