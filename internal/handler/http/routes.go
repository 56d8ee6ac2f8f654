package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	versionPath = "/api/version"
	syncPath    = "/api/sync/{collection}"
	metricsPath = "/metrics"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()

	router.Use(h.withTraceID, h.withLogging, h.withMetrics, middleware.Recoverer, withGZip)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	router.Get(versionPath, h.getServerVersion)
	if h.metrics != nil {
		router.Method(http.MethodGet, metricsPath, h.metrics.Handler())
	}

	router.Group(func(r chi.Router) {
		r.Use(h.auth, h.withRateLimit, h.withHashing)

		r.Get(syncPath, h.getSnapshot)
		r.Post(syncPath, h.pushChanges)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
