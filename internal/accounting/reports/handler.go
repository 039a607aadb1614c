package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
	"github.com/nubixconta/nubixconta-backend/internal/platform/httpx"
)

// Handler exposes the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the report handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches report routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/income-statement", h.IncomeStatement)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/journal", h.Journal)
	r.Get("/ledger/{activationID}", h.AccountLedger)
}

func companyID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
}

func parseDay(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

func rangeParams(r *http.Request) (int64, time.Time, time.Time, error) {
	company, err := companyID(r)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	start, err := parseDay(r.URL.Query().Get("start"))
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	end, err := parseDay(r.URL.Query().Get("end"))
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	// Ranges are inclusive of the whole end day.
	return company, start, end.Add(24*time.Hour - time.Nanosecond), nil
}

func (h *Handler) respond(w http.ResponseWriter, report any, err error, name string) {
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, report)
	case errors.Is(err, shared.ErrInvalidRange):
		httpx.Problem(w, http.StatusBadRequest, "Invalid range", err.Error())
	default:
		h.logger.Error("build report", slog.String("report", name), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Report failed", "")
	}
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	company, start, end, err := rangeParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	report, err := h.service.TrialBalance(r.Context(), company, start, end)
	h.respond(w, report, err, "trial_balance")
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	company, start, end, err := rangeParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	report, err := h.service.IncomeStatement(r.Context(), company, start, end)
	h.respond(w, report, err, "income_statement")
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	company, err := companyID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	cutoff, err := parseDay(r.URL.Query().Get("cutoff"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	report, err := h.service.BalanceSheet(r.Context(), company, cutoff.Add(24*time.Hour-time.Nanosecond))
	h.respond(w, report, err, "balance_sheet")
}

func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	company, start, end, err := rangeParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	report, err := h.service.Journal(r.Context(), company, start, end)
	h.respond(w, report, err, "journal")
}

func (h *Handler) AccountLedger(w http.ResponseWriter, r *http.Request) {
	company, start, end, err := rangeParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	activationID, err := strconv.ParseInt(chi.URLParam(r, "activationID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	report, err := h.service.AccountLedger(r.Context(), company, activationID, start, end)
	h.respond(w, report, err, "account_ledger")
}
