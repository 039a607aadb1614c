package closing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
	"github.com/nubixconta/nubixconta-backend/internal/platform/httpx"
)

// Handler exposes the period closing endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the closing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes attaches closing routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{year}", h.YearStatus)
	r.Post("/close", h.Close)
	r.Post("/reopen", h.Reopen)
}

type monthRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
}

func (h *Handler) decodeMonth(w http.ResponseWriter, r *http.Request) (int64, monthRequest, bool) {
	company, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", "company id must be numeric")
		return 0, monthRequest{}, false
	}
	var req monthRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return 0, monthRequest{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid payload", err.Error())
		return 0, monthRequest{}, false
	}
	return company, req, true
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	company, req, ok := h.decodeMonth(w, r)
	if !ok {
		return
	}
	closure, err := h.service.CloseMonth(r.Context(), company, req.Year, req.Month)
	if err != nil {
		h.writeError(w, err, "close month")
		return
	}
	httpx.JSON(w, http.StatusOK, closure)
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	company, req, ok := h.decodeMonth(w, r)
	if !ok {
		return
	}
	closure, err := h.service.ReopenMonth(r.Context(), company, req.Year, req.Month)
	if err != nil {
		h.writeError(w, err, "reopen month")
		return
	}
	httpx.JSON(w, http.StatusOK, closure)
}

func (h *Handler) YearStatus(w http.ResponseWriter, r *http.Request) {
	company, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", "company id must be numeric")
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", "year must be numeric")
		return
	}
	status, err := h.service.YearStatus(r.Context(), company, year)
	if err != nil {
		h.writeError(w, err, "year status")
		return
	}
	httpx.JSON(w, http.StatusOK, status)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrInvalidMonth):
		httpx.Problem(w, http.StatusBadRequest, "Invalid month", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ErrClosureConflict):
		httpx.Problem(w, http.StatusConflict, "Closure conflict", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Operation failed", "")
	}
}
