package documents

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/closing"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/mappings"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
	"github.com/nubixconta/nubixconta-backend/internal/inventory"
	"github.com/nubixconta/nubixconta-backend/internal/platform/httpx"
)

// Handler exposes the document lifecycle endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the documents handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches document routes under a company scope. The {type}
// segment carries the document type in lower case, e.g. /sale/42/apply.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{type}/{id}", h.Get)
	r.Post("/{type}/{id}/apply", h.Apply)
	r.Post("/{type}/{id}/cancel", h.Cancel)
	r.Delete("/{type}/{id}", h.Delete)
}

func params(r *http.Request) (int64, ledger.DocumentType, int64, error) {
	company, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		return 0, "", 0, errors.New("company id must be numeric")
	}
	docType, err := ledger.ParseDocumentType(chi.URLParam(r, "type"))
	if err != nil {
		return 0, "", 0, err
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, "", 0, errors.New("document id must be numeric")
	}
	return company, docType, id, nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	company, docType, id, err := params(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	doc, err := h.service.Get(r.Context(), company, docType, id)
	if err != nil {
		h.writeError(w, err, "get document")
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Apply, "apply document")
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Cancel, "cancel document")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Delete, "delete document")
}

type lifecycleFn func(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) error

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, fn lifecycleFn, op string) {
	company, docType, id, err := params(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	if err := fn(r.Context(), company, docType, id); err != nil {
		h.writeError(w, err, op)
		return
	}
	doc, err := h.service.Get(r.Context(), company, docType, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.writeError(w, err, op)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound) || errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid state", err.Error())
	case errors.Is(err, closing.ErrPeriodClosed):
		httpx.Problem(w, http.StatusConflict, "Period closed", err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient stock", err.Error())
	case errors.Is(err, shared.ErrAccountUnavailable):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Account unavailable", err.Error())
	case errors.Is(err, mappings.ErrMappingNotFound):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Mapping missing", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Operation failed", "")
	}
}
