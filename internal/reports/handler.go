package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/muhasaba-erp/muhasaba-erp/internal/platform/httpx"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// Handler serves the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/trial-balance", h.TrialBalance)
		r.Get("/income-statement", h.IncomeStatement)
		r.Get("/balance-sheet", h.BalanceSheet)
	})
}

// TrialBalance handles GET /reports/trial-balance.
func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	from, to, err := rangeParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.TrialBalance(r.Context(), from, to)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// IncomeStatement handles GET /reports/income-statement.
func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	from, to, err := rangeParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.IncomeStatement(r.Context(), from, to)
	if err != nil {
		h.logger.Error("income statement", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// BalanceSheet handles GET /reports/balance-sheet.
func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateParam(r.URL.Query().Get("asOfDate"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.service.BalanceSheet(r.Context(), asOf)
	if err != nil {
		h.logger.Error("balance sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func rangeParams(r *http.Request) (from, to *time.Time, err error) {
	from, err = parseDateParam(r.URL.Query().Get("fromDate"))
	if err != nil {
		return nil, nil, err
	}
	to, err = parseDateParam(r.URL.Query().Get("toDate"))
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("reports: bad date %q: %w", raw, shared.ErrValidation)
	}
	return &date, nil
}
