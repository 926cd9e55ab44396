package documents

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

// Handler serves the document endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the documents handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers document routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
	})
}

// Create handles POST /documents.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("documents: bad payload: %w", shared.ErrValidation))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("documents: %v: %w", err, shared.ErrValidation))
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	doc, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("create document", slog.String("type", string(in.Type)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

// List handles GET /documents.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var docType *DocumentType
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := ParseType(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		docType = &parsed
	}
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
	docs, err := h.service.List(r.Context(), docType, from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Get handles GET /documents/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("documents: bad id: %w", shared.ErrValidation))
		return
	}
	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}
