// Package router assembles the public HTTP surface from the per-module
// handlers plus the operational endpoints.
package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of an optional backing service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// New builds the top-level router: module routes, liveness, readiness, and
// Prometheus metrics.
func New(modules []Registrar, checks map[string]HealthChecker) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Health(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(name + ": " + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Handle("/metrics", promhttp.Handler())

	for _, module := range modules {
		module.Register(r)
	}
	return r
}
