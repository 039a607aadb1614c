package closing

import (
	"errors"
	"time"
)

// Closure records whether one accounting month is closed for a company.
// At most one record exists per (company, year, month); records are created
// lazily on first close and toggled thereafter.
type Closure struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"companyId"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	ClosingDate time.Time `json:"closingDate"`
	Closed      bool      `json:"closed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MonthStatus is one entry of a company's yearly closure overview.
type MonthStatus struct {
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	ClosingDate time.Time `json:"closingDate"`
	Closed      bool      `json:"closed"`
}

// ErrPeriodClosed indicates a mutation dated on or before the latest closed
// month-end for the company.
var ErrPeriodClosed = errors.New("closing: accounting period is closed")

// ErrClosureConflict indicates a duplicate close or a reopen that would leave
// a closed month after an open gap.
var ErrClosureConflict = errors.New("closing: conflicting closure operation")

// ErrInvalidMonth indicates a month outside 1..12 or a non-positive year.
var ErrInvalidMonth = errors.New("closing: invalid year or month")

// MonthEnd returns the last calendar day of the given month.
func MonthEnd(year, month int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}
