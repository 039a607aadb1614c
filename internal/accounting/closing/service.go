package closing

import (
	"context"
	"errors"
	"time"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
)

// Service is the period-closing guard. Every document transition consults it
// before mutating the ledger.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// IsOpen reports whether a mutation dated at the given date is permitted.
// The date is blocked when it falls on or before the latest closed month-end;
// an open record for a later month never blocks an earlier date. The cutoff
// covers the whole closing day, so intra-day timestamps on that day are
// blocked too.
func (s *Service) IsOpen(ctx context.Context, companyID int64, date time.Time) (bool, error) {
	cutoff, any, err := s.repo.LatestClosedDate(ctx, companyID)
	if err != nil {
		return false, err
	}
	if !any {
		return true, nil
	}
	return date.After(cutoff.Add(24*time.Hour - time.Nanosecond)), nil
}

// EnsureOpen is IsOpen expressed as a guard error.
func (s *Service) EnsureOpen(ctx context.Context, companyID int64, date time.Time) error {
	open, err := s.IsOpen(ctx, companyID, date)
	if err != nil {
		return err
	}
	if !open {
		return ErrPeriodClosed
	}
	return nil
}

// CloseMonth marks the month closed, creating its record lazily. Closing a
// month out of order (before its predecessors) is allowed.
func (s *Service) CloseMonth(ctx context.Context, companyID int64, year, month int) (Closure, error) {
	if err := validateMonth(companyID, year, month); err != nil {
		return Closure{}, err
	}
	return s.repo.Upsert(ctx, companyID, year, month, true)
}

// ReopenMonth clears the closed flag. It refuses when the immediately
// following month is still closed, so reopening never leaves a closed
// island after an open gap.
func (s *Service) ReopenMonth(ctx context.Context, companyID int64, year, month int) (Closure, error) {
	if err := validateMonth(companyID, year, month); err != nil {
		return Closure{}, err
	}
	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}
	next, err := s.repo.Get(ctx, companyID, nextYear, nextMonth)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return Closure{}, err
	}
	if err == nil && next.Closed {
		return Closure{}, ErrClosureConflict
	}
	return s.repo.SetClosed(ctx, companyID, year, month, false)
}

// YearStatus returns one entry per month for the given year. Months without
// a record report as open.
func (s *Service) YearStatus(ctx context.Context, companyID int64, year int) ([]MonthStatus, error) {
	if companyID == 0 || year <= 0 {
		return nil, ErrInvalidMonth
	}
	closures, err := s.repo.ListYear(ctx, companyID, year)
	if err != nil {
		return nil, err
	}
	byMonth := make(map[int]Closure, len(closures))
	for _, c := range closures {
		byMonth[c.Month] = c
	}
	statuses := make([]MonthStatus, 0, 12)
	for month := 1; month <= 12; month++ {
		status := MonthStatus{Year: year, Month: month, ClosingDate: MonthEnd(year, month)}
		if c, ok := byMonth[month]; ok {
			status.Closed = c.Closed
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func validateMonth(companyID int64, year, month int) error {
	if companyID == 0 || year <= 0 || month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}
