package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhishekuniyalibyte/clover-calculator/core/catalog"
	"github.com/abhishekuniyalibyte/clover-calculator/core/engine"
	"github.com/abhishekuniyalibyte/clover-calculator/core/snapshot"
)

// NewRouter creates the chi router with all service routes mounted.
func NewRouter(resolver *catalog.Resolver, eng *engine.Engine, store *snapshot.Store) http.Handler {
	h := NewHandlers(resolver, eng, store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyses/compute", h.Compute)
		r.Post("/catalog/resolve", h.ResolveCatalog)
		r.Get("/snapshots/{id}", h.GetSnapshot)
		r.Get("/snapshots/{id}/charts", h.GetSnapshotCharts)
		r.Get("/profiles/{profileID}/snapshots", h.SnapshotHistory)
	})

	return r
}
