package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/muhasaba-erp/muhasaba-erp/internal/audit"
	"github.com/muhasaba-erp/muhasaba-erp/internal/auth"
	"github.com/muhasaba-erp/muhasaba-erp/internal/documents"
	"github.com/muhasaba-erp/muhasaba-erp/internal/forecast"
	"github.com/muhasaba-erp/muhasaba-erp/internal/ledger"
	"github.com/muhasaba-erp/muhasaba-erp/internal/observability"
	"github.com/muhasaba-erp/muhasaba-erp/internal/reports"
	"github.com/muhasaba-erp/muhasaba-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Auth             auth.Middleware
	LedgerHandler    *ledger.Handler
	DocumentsHandler *documents.Handler
	ReportsHandler   *reports.Handler
	ForecastHandler  *forecast.Handler
	AuditHandler     *audit.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router for the ledger API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Auth:    params.Auth,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.LedgerHandler != nil {
		params.LedgerHandler.MountRoutes(r)
	}
	if params.DocumentsHandler != nil {
		params.DocumentsHandler.MountRoutes(r)
	}
	if params.ReportsHandler != nil {
		params.ReportsHandler.MountRoutes(r)
	}
	if params.ForecastHandler != nil {
		params.ForecastHandler.MountRoutes(r)
	}
	if params.AuditHandler != nil {
		r.Route("/audit", params.AuditHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
