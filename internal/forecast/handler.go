package forecast

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/muhasaba-erp/muhasaba-erp/internal/platform/httpx"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// Handler serves the forecast endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the forecast handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the forecast route.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/forecast", h.Get)
}

// Get handles GET /forecast.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	months, err := intParam(r, "months")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	horizon, err := intParam(r, "forecastMonths")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.Get(r.Context(), months, horizon)
	if err != nil {
		h.logger.Error("forecast", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("forecast: bad %s %q: %w", name, raw, shared.ErrValidation)
	}
	return value, nil
}
