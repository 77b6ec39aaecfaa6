package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the router and all endpoints.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*.atrapalo.com", "http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Archive-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/newsletter", func(r chi.Router) {
			r.Post("/parse", h.ParseNewsletter)
			r.Post("/generate", h.GenerateNewsletter)
			r.Post("/preview", h.PreviewNewsletter)
		})

		r.Route("/tracking", func(r chi.Router) {
			r.Post("/url", h.BuildTrackingURLs)
			r.Post("/resize", h.ResizeImages)
		})

		r.Post("/scraper/fetch", h.ScrapeProduct)

		r.Post("/export/csv", h.ExportCSV)

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", h.ListDrafts)
			r.Post("/", h.SaveDraft)
			r.Get("/{id}", h.GetDraft)
			r.Delete("/{id}", h.DeleteDraft)
		})

		r.Get("/archive/*", h.GetArchivedNewsletter)

		r.Route("/assist", func(r chi.Router) {
			r.Post("/description", h.SuggestDescription)
			r.Post("/subjects", h.SuggestSubjects)
		})
	})

	return r
}
