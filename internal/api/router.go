package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hoanghai1803/booker/internal/api/handlers"
	"github.com/hoanghai1803/booker/internal/config"
	"github.com/hoanghai1803/booker/internal/library"
	"github.com/hoanghai1803/booker/internal/storage"
)

// NewRouter creates and configures the HTTP router with all API routes.
// Routes under /api/me act on behalf of the caller named by X-User-ID.
func NewRouter(svc *library.Service, store *storage.Store, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", headerUserID, headerUsername},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", handlers.Health(store))

	r.Route("/api", func(api chi.Router) {
		api.Get("/books", handlers.ListBooks(svc))
		api.Post("/books", handlers.AddBook(svc))
		api.Get("/books/search", handlers.SearchBooks(svc))
		api.Get("/books/{id}", handlers.GetBook(svc))

		api.Get("/catalog/search", handlers.SearchCatalog(svc))

		api.Get("/openlibrary/search", handlers.SearchOpenLibrary(svc))
		api.Get("/openlibrary/works/{key}", handlers.GetWork(svc))
		api.Get("/openlibrary/isbn/{isbn}", handlers.LookupISBN(svc))
		api.Post("/openlibrary/import", handlers.ImportBook(svc))

		api.Route("/me", func(me chi.Router) {
			me.Use(Identity(svc))

			me.Get("/library", handlers.ListLibrary(svc))
			me.Post("/library", handlers.UpsertLibraryEntry(svc))
			me.Get("/library/{id}", handlers.GetLibraryEntry(svc))
			me.Patch("/library/{id}", handlers.PatchLibraryEntry(svc))
			me.Delete("/library/{id}", handlers.DeleteLibraryEntry(svc))
			me.Put("/library/{id}/progress", handlers.UpdateProgress(svc))
			me.Put("/library/{id}/rating", handlers.SetRating(svc))
			me.Get("/library/{id}/sessions", handlers.ListSessions(svc))
			me.Post("/library/{id}/sessions", handlers.RecordSession(svc))
			me.Post("/library/{id}/repair", handlers.RepairProgress(svc))

			me.Get("/goals", handlers.GetGoal(svc))
			me.Put("/goals", handlers.SetGoal(svc))
			me.Get("/goals/progress", handlers.GetGoalProgress(svc))

			me.Get("/stats", handlers.GetStats(svc))
			me.Get("/activity", handlers.GetActivity(svc))
			me.Get("/dashboard", handlers.GetDashboard(svc))

			me.Get("/shelves", handlers.ListShelves(svc))
			me.Post("/shelves", handlers.CreateShelf(svc))
			me.Delete("/shelves/{id}", handlers.DeleteShelf(svc))
			me.Get("/shelves/{id}/books", handlers.ShelfBooks(svc))
			me.Put("/shelves/{id}/books/{bookId}", handlers.AddToShelf(svc))
			me.Delete("/shelves/{id}/books/{bookId}", handlers.RemoveFromShelf(svc))
		})
	})

	return r
}
