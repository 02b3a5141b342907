package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MKhiriev/medsync/internal/app"
	"github.com/MKhiriev/medsync/internal/metrics"
	"github.com/MKhiriev/medsync/internal/utils"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(withCORS)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(h.withRecover)
	router.Use(h.withRateLimit)
	router.Use(withGZip)

	router.Post("/submit", h.submit)
	router.Post("/fetch", h.fetch)
	router.Post("/sync", h.sync)
	router.Get("/health", h.health)
	router.Get("/stats", h.stats)

	if h.gatherer != nil {
		router.Method(http.MethodGet, "/metrics", metrics.Handler(h.gatherer))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, app.MsgNotFound, http.StatusNotFound)
	})
	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
