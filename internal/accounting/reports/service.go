package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
)

// LedgerReader is the read surface the report service needs from the
// unified ledger.
type LedgerReader interface {
	AccountActivity(ctx context.Context, companyID int64, start, end time.Time) ([]ledger.AccountActivity, error)
	AccountActivityAsOf(ctx context.Context, companyID int64, cutoff time.Time) ([]ledger.AccountActivity, error)
	Lines(ctx context.Context, filter ledger.LineFilter) ([]ledger.Line, error)
}

// Service builds the four financial reports from the unified ledger,
// fronted by the versioned cache.
type Service struct {
	reader LedgerReader
	cache  *Cache
	logger *slog.Logger
}

// NewService wires the report service. cache may be nil.
func NewService(reader LedgerReader, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reader: reader, cache: cache, logger: logger}
}

func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return shared.ErrInvalidRange
	}
	return nil
}

const dayFormat = "2006-01-02"

func (s *Service) cached(ctx context.Context, dest interface{}, loader func(context.Context) (interface{}, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, parts...)
	if err != nil {
		s.logger.Warn("report cache unavailable, building directly", "error", err)
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return copyJSON(value, dest)
	}
	return s.cache.FetchJSON(ctx, key, dest, loader)
}

// TrialBalance builds the balanza de comprobación for the range.
func (s *Service) TrialBalance(ctx context.Context, companyID int64, start, end time.Time) (TrialBalance, error) {
	var tb TrialBalance
	if err := validateRange(start, end); err != nil {
		return tb, err
	}
	err := s.cached(ctx, &tb, func(ctx context.Context) (interface{}, error) {
		activity, err := s.reader.AccountActivity(ctx, companyID, start, end)
		if err != nil {
			return nil, fmt.Errorf("reports: trial balance: %w", err)
		}
		return BuildTrialBalance(activity), nil
	}, "reports", "tb", strconv.FormatInt(companyID, 10), start.Format(dayFormat), end.Format(dayFormat))
	return tb, err
}

// IncomeStatement builds the estado de resultados for the range.
func (s *Service) IncomeStatement(ctx context.Context, companyID int64, start, end time.Time) (IncomeStatement, error) {
	var is IncomeStatement
	if err := validateRange(start, end); err != nil {
		return is, err
	}
	err := s.cached(ctx, &is, func(ctx context.Context) (interface{}, error) {
		activity, err := s.reader.AccountActivity(ctx, companyID, start, end)
		if err != nil {
			return nil, fmt.Errorf("reports: income statement: %w", err)
		}
		return BuildIncomeStatement(activity), nil
	}, "reports", "is", strconv.FormatInt(companyID, 10), start.Format(dayFormat), end.Format(dayFormat))
	return is, err
}

// BalanceSheet builds the balance general as of the cutoff date.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64, cutoff time.Time) (BalanceSheet, error) {
	var bs BalanceSheet
	if cutoff.IsZero() {
		return bs, shared.ErrInvalidRange
	}
	err := s.cached(ctx, &bs, func(ctx context.Context) (interface{}, error) {
		activity, err := s.reader.AccountActivityAsOf(ctx, companyID, cutoff)
		if err != nil {
			return nil, fmt.Errorf("reports: balance sheet: %w", err)
		}
		return BuildBalanceSheet(activity), nil
	}, "reports", "bs", strconv.FormatInt(companyID, 10), cutoff.Format(dayFormat))
	return bs, err
}

// Journal builds the libro diario for the range.
func (s *Service) Journal(ctx context.Context, companyID int64, start, end time.Time) (Journal, error) {
	var j Journal
	if err := validateRange(start, end); err != nil {
		return j, err
	}
	err := s.cached(ctx, &j, func(ctx context.Context) (interface{}, error) {
		lines, err := s.reader.Lines(ctx, ledger.LineFilter{CompanyID: companyID, Start: &start, End: &end})
		if err != nil {
			return nil, fmt.Errorf("reports: journal: %w", err)
		}
		return BuildJournal(lines), nil
	}, "reports", "journal", strconv.FormatInt(companyID, 10), start.Format(dayFormat), end.Format(dayFormat))
	return j, err
}

// AccountLedger builds the libro mayor for one account over the range.
func (s *Service) AccountLedger(ctx context.Context, companyID, activationID int64, start, end time.Time) (AccountLedger, error) {
	var al AccountLedger
	if err := validateRange(start, end); err != nil {
		return al, err
	}
	err := s.cached(ctx, &al, func(ctx context.Context) (interface{}, error) {
		opening, err := s.openingBalance(ctx, companyID, activationID, start)
		if err != nil {
			return nil, err
		}
		lines, err := s.reader.Lines(ctx, ledger.LineFilter{CompanyID: companyID, Start: &start, End: &end, ActivationID: &activationID})
		if err != nil {
			return nil, fmt.Errorf("reports: account ledger: %w", err)
		}
		return BuildAccountLedger(opening, lines), nil
	}, "reports", "gl", strconv.FormatInt(companyID, 10), strconv.FormatInt(activationID, 10), start.Format(dayFormat), end.Format(dayFormat))
	return al, err
}

func (s *Service) openingBalance(ctx context.Context, companyID, activationID int64, start time.Time) (decimal.Decimal, error) {
	activity, err := s.reader.AccountActivityAsOf(ctx, companyID, start.Add(-time.Nanosecond))
	if err != nil {
		return decimal.Zero, fmt.Errorf("reports: account ledger opening: %w", err)
	}
	for _, acc := range activity {
		if acc.ActivationID == activationID {
			return acc.Opening.Add(acc.Debit).Sub(acc.Credit), nil
		}
	}
	return decimal.Zero, nil
}

func copyJSON(src, dest interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
