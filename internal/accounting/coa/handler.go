package coa

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
	"github.com/nubixconta/nubixconta-backend/internal/platform/httpx"
)

// Handler exposes the chart-of-accounts read endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the chart-of-accounts handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches account routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{activationID}", h.Get)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	company, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", "company id must be numeric")
		return
	}
	accounts, err := h.service.List(r.Context(), company)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Operation failed", "")
		return
	}
	httpx.JSON(w, http.StatusOK, accounts)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", "company id must be numeric")
		return
	}
	activationID, err := strconv.ParseInt(chi.URLParam(r, "activationID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", "activation id must be numeric")
		return
	}
	account, err := h.service.Resolve(r.Context(), company, activationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not found", err.Error())
			return
		}
		h.logger.Error("resolve account", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Operation failed", "")
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}
