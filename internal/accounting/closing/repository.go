package closing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
)

// Repository persists closure records. The (company_id, year, month) unique
// constraint serializes racing closes for the same month.
type Repository interface {
	Get(ctx context.Context, companyID int64, year, month int) (Closure, error)
	ListYear(ctx context.Context, companyID int64, year int) ([]Closure, error)
	LatestClosedDate(ctx context.Context, companyID int64) (time.Time, bool, error)
	Upsert(ctx context.Context, companyID int64, year, month int, closed bool) (Closure, error)
	SetClosed(ctx context.Context, companyID int64, year, month int, closed bool) (Closure, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const closureColumns = "id, company_id, year, month, closing_date, closed, created_at, updated_at"

func scanClosure(row pgx.Row) (Closure, error) {
	var c Closure
	err := row.Scan(&c.ID, &c.CompanyID, &c.Year, &c.Month, &c.ClosingDate, &c.Closed, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Closure{}, shared.ErrNotFound
		}
		return Closure{}, err
	}
	return c, nil
}

func (r *repository) Get(ctx context.Context, companyID int64, year, month int) (Closure, error) {
	return scanClosure(r.db.QueryRow(ctx, `SELECT `+closureColumns+`
FROM period_closings WHERE company_id=$1 AND year=$2 AND month=$3`, companyID, year, month))
}

func (r *repository) ListYear(ctx context.Context, companyID int64, year int) ([]Closure, error) {
	rows, err := r.db.Query(ctx, `SELECT `+closureColumns+`
FROM period_closings WHERE company_id=$1 AND year=$2 ORDER BY month`, companyID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var closures []Closure
	for rows.Next() {
		var c Closure
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Year, &c.Month, &c.ClosingDate, &c.Closed, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		closures = append(closures, c)
	}
	return closures, rows.Err()
}

// LatestClosedDate returns the most recent closing date among closed months.
// The second return value is false when no month is closed.
func (r *repository) LatestClosedDate(ctx context.Context, companyID int64) (time.Time, bool, error) {
	var cutoff time.Time
	err := r.db.QueryRow(ctx, `SELECT closing_date FROM period_closings
WHERE company_id=$1 AND closed ORDER BY closing_date DESC LIMIT 1`, companyID).Scan(&cutoff)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return cutoff, true, nil
}

// Upsert creates the record on first close and flips the flag afterwards.
func (r *repository) Upsert(ctx context.Context, companyID int64, year, month int, closed bool) (Closure, error) {
	closure, err := scanClosure(r.db.QueryRow(ctx, `INSERT INTO period_closings (company_id, year, month, closing_date, closed)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (company_id, year, month) DO UPDATE SET closed=EXCLUDED.closed, updated_at=NOW()
RETURNING `+closureColumns, companyID, year, month, MonthEnd(year, month), closed))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Closure{}, ErrClosureConflict
		}
		return Closure{}, err
	}
	return closure, nil
}

// SetClosed updates an existing record only.
func (r *repository) SetClosed(ctx context.Context, companyID int64, year, month int, closed bool) (Closure, error) {
	return scanClosure(r.db.QueryRow(ctx, `UPDATE period_closings SET closed=$4, updated_at=NOW()
WHERE company_id=$1 AND year=$2 AND month=$3
RETURNING `+closureColumns, companyID, year, month, closed))
}
