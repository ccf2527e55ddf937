package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kycportal/internal/platform/config"
	"kycportal/internal/platform/metrics"
	"kycportal/pkg/platform/httputil"
	adminmw "kycportal/pkg/platform/middleware/admin"
	authmw "kycportal/pkg/platform/middleware/auth"
	"kycportal/pkg/platform/middleware/metadata"
	"kycportal/pkg/platform/middleware/requesttime"
)

func newRouter(cfg config.Server, app *application, infra *infrastructure, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(metadata.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(metrics.New().LatencyMiddleware)

	r.Get("/healthz", healthHandler(infra.checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(app.validator, log))
		app.handler.Register(r)
	})

	if cfg.AdminAPIToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(adminmw.RequireAdminToken(cfg.AdminAPIToken, log))
			app.handler.RegisterAdmin(r)
		})
	} else {
		log.Warn("admin API token not set; submission review endpoint disabled")
	}
	return r
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// healthHandler pings every configured backend. Any failure reports 503.
func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Components: map[string]string{}}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Components[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Components[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
