package ledger

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/muhasaba-erp/muhasaba-erp/internal/platform/httpx"
	"github.com/muhasaba-erp/muhasaba-erp/internal/shared"
)

// Handler serves the chart, journal, and period endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
	})
	r.Route("/journal-entries", func(r chi.Router) {
		r.Get("/", h.ListEntries)
		r.Post("/", h.CreateEntry)
		r.Get("/{id}", h.GetEntry)
		r.Post("/{id}/cancel", h.CancelEntry)
		r.Post("/{id}/reverse", h.ReverseEntry)
	})
	r.Route("/periods", func(r chi.Router) {
		r.Get("/", h.ListPeriods)
		r.Post("/", h.CreatePeriod)
		r.Post("/{id}/lock", h.LockPeriod)
	})
}

// ListAccounts handles GET /accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

// CreateAccount handles POST /accounts.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	account, err := h.service.CreateAccount(r.Context(), AccountInput{
		Code:   req.Code,
		NameAr: req.NameAr,
		NameEn: req.NameEn,
		Type:   AccountType(req.Type),
	})
	if err != nil {
		h.logger.Error("create account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

// ListEntries handles GET /journal-entries.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r.URL.Query().Get("fromDate"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("toDate"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.ListEntries(r.Context(), from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// CreateEntry handles POST /journal-entries.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.CreateEntry(r.Context(), in)
	if err != nil {
		h.logger.Error("create journal entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

// GetEntry handles GET /journal-entries/{id}.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// CancelEntry handles POST /journal-entries/{id}/cancel.
func (h *Handler) CancelEntry(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req cancelEntryRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, fmt.Errorf("ledger: bad cancel payload: %w", shared.ErrValidation))
			return
		}
	}
	entry, err := h.service.CancelEntry(r.Context(), id, req.Reason)
	if err != nil {
		h.logger.Error("cancel journal entry", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// ReverseEntry handles POST /journal-entries/{id}/reverse.
func (h *Handler) ReverseEntry(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	reversal, err := h.service.ReverseEntry(r.Context(), id)
	if err != nil {
		h.logger.Error("reverse journal entry", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reversal)
}

// ListPeriods handles GET /periods.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.service.ListPeriods(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"periods": periods})
}

// CreatePeriod handles POST /periods.
func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req createPeriodRequest
	if err := h.decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	period, err := h.service.CreatePeriod(r.Context(), in)
	if err != nil {
		h.logger.Error("create period", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, period)
}

// LockPeriod handles POST /periods/{id}/lock.
func (h *Handler) LockPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := h.idParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	period, err := h.service.LockPeriod(r.Context(), id)
	if err != nil {
		h.logger.Error("lock period", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, period)
}

func (h *Handler) decode(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return fmt.Errorf("ledger: bad request body: %w", shared.ErrValidation)
	}
	if err := h.validate.Struct(target); err != nil {
		return fmt.Errorf("ledger: %s: %w", err.Error(), shared.ErrValidation)
	}
	return nil
}

func (h *Handler) idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("ledger: bad id %q: %w", raw, shared.ErrValidation)
	}
	return id, nil
}
