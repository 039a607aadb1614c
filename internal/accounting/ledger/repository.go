package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/coa"
)

// AccountActivity aggregates one account's balances over the unified view:
// opening balance before a window plus debit/credit movement inside it.
type AccountActivity struct {
	ActivationID int64
	Code         string
	Name         string
	Type         coa.AccountType
	Group        coa.StatementGroup
	Opening      decimal.Decimal
	Debit        decimal.Decimal
	Credit       decimal.Decimal
}

// Line is an entry line enriched with its resolved account, as served to
// the journal and ledger reports.
type Line struct {
	EntryLine
	AccountCode string
	AccountName string
}

// LineFilter bounds a unified-view line query.
type LineFilter struct {
	CompanyID    int64
	Start        *time.Time
	End          *time.Time
	ActivationID *int64
}

// Repository is the append-only entry store plus the unified read model.
// Writes are tx-scoped so document transitions stay all-or-nothing.
type Repository interface {
	InsertLines(ctx context.Context, tx pgx.Tx, lines []EntryLine) error
	DeleteByDocument(ctx context.Context, tx pgx.Tx, companyID int64, docType DocumentType, documentID int64) (int64, error)

	LinesByDocument(ctx context.Context, companyID int64, docType DocumentType, documentID int64) ([]EntryLine, error)
	Lines(ctx context.Context, filter LineFilter) ([]Line, error)
	AccountActivity(ctx context.Context, companyID int64, start, end time.Time) ([]AccountActivity, error)
	AccountActivityAsOf(ctx context.Context, companyID int64, cutoff time.Time) ([]AccountActivity, error)
	UnbalancedDocuments(ctx context.Context, companyID int64) ([]DocumentRef, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const lineColumns = "id, document_id, batch_id, activation_id, debit, credit, description, accounting_date, company_id"

// unionAll builds the tagged union over every source table. Table names come
// from the fixed sourceTables map, never from callers.
func unionAll() string {
	parts := make([]string, 0, len(sourceTables))
	for _, dt := range DocumentTypes() {
		parts = append(parts, fmt.Sprintf(
			"SELECT id, document_id, '%s' AS document_type, batch_id, activation_id, debit, credit, description, accounting_date, company_id FROM %s",
			dt, sourceTables[dt]))
	}
	return strings.Join(parts, "\nUNION ALL\n")
}

var unifiedView = "WITH ledger_lines AS (\n" + unionAll() + "\n)"

func (r *repository) InsertLines(ctx context.Context, tx pgx.Tx, lines []EntryLine) error {
	for _, line := range lines {
		table, ok := sourceTables[line.DocumentType]
		if !ok {
			return fmt.Errorf("accounting: unknown document type %q", line.DocumentType)
		}
		sql := fmt.Sprintf(`INSERT INTO %s (document_id, batch_id, activation_id, debit, credit, description, accounting_date, company_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, table)
		if _, err := tx.Exec(ctx, sql, line.DocumentID, line.BatchID, line.ActivationID,
			line.Debit, line.Credit, line.Description, line.Date, line.CompanyID); err != nil {
			return fmt.Errorf("accounting: insert %s line: %w", line.DocumentType, err)
		}
	}
	return nil
}

func (r *repository) DeleteByDocument(ctx context.Context, tx pgx.Tx, companyID int64, docType DocumentType, documentID int64) (int64, error) {
	table, ok := sourceTables[docType]
	if !ok {
		return 0, fmt.Errorf("accounting: unknown document type %q", docType)
	}
	cmd, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE company_id=$1 AND document_id=$2`, table), companyID, documentID)
	if err != nil {
		return 0, fmt.Errorf("accounting: delete %s lines: %w", docType, err)
	}
	return cmd.RowsAffected(), nil
}

func (r *repository) LinesByDocument(ctx context.Context, companyID int64, docType DocumentType, documentID int64) ([]EntryLine, error) {
	table, ok := sourceTables[docType]
	if !ok {
		return nil, fmt.Errorf("accounting: unknown document type %q", docType)
	}
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE company_id=$1 AND document_id=$2 ORDER BY id`, lineColumns, table), companyID, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []EntryLine
	for rows.Next() {
		line := EntryLine{DocumentType: docType}
		if err := rows.Scan(&line.ID, &line.DocumentID, &line.BatchID, &line.ActivationID,
			&line.Debit, &line.Credit, &line.Description, &line.Date, &line.CompanyID); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *repository) Lines(ctx context.Context, filter LineFilter) ([]Line, error) {
	sql := unifiedView + `
SELECT l.id, l.document_id, l.document_type, l.batch_id, l.activation_id, l.debit, l.credit,
       l.description, l.accounting_date, l.company_id,
       COALESCE(aa.code, a.code), COALESCE(aa.name, a.name)
FROM ledger_lines l
JOIN account_activations aa ON aa.id = l.activation_id
JOIN accounts a ON a.id = aa.account_id
WHERE l.company_id=$1
  AND ($2::timestamptz IS NULL OR l.accounting_date >= $2)
  AND ($3::timestamptz IS NULL OR l.accounting_date <= $3)
  AND ($4::bigint IS NULL OR l.activation_id = $4)
ORDER BY l.accounting_date ASC, l.document_id ASC, l.id ASC`
	rows, err := r.db.Query(ctx, sql, filter.CompanyID, filter.Start, filter.End, filter.ActivationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.DocumentID, &line.DocumentType, &line.BatchID, &line.ActivationID,
			&line.Debit, &line.Credit, &line.Description, &line.Date, &line.CompanyID,
			&line.AccountCode, &line.AccountName); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// accountSums is the shared aggregation query: per-account debit and credit
// totals over an optional date window, joined with the resolved account.
const accountSumsSQL = `
SELECT l.activation_id, COALESCE(aa.code, a.code), COALESCE(aa.name, a.name), a.type, a.statement_group,
       SUM(l.debit), SUM(l.credit)
FROM ledger_lines l
JOIN account_activations aa ON aa.id = l.activation_id
JOIN accounts a ON a.id = aa.account_id
WHERE l.company_id=$1
  AND ($2::timestamptz IS NULL OR l.accounting_date >= $2)
  AND ($3::timestamptz IS NULL OR l.accounting_date <= $3)
GROUP BY l.activation_id, COALESCE(aa.code, a.code), COALESCE(aa.name, a.name), a.type, a.statement_group`

func (r *repository) accountSums(ctx context.Context, companyID int64, start, end *time.Time) (map[int64]AccountActivity, error) {
	rows, err := r.db.Query(ctx, unifiedView+accountSumsSQL, companyID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sums := make(map[int64]AccountActivity)
	for rows.Next() {
		var act AccountActivity
		if err := rows.Scan(&act.ActivationID, &act.Code, &act.Name, &act.Type, &act.Group,
			&act.Debit, &act.Credit); err != nil {
			return nil, err
		}
		sums[act.ActivationID] = act
	}
	return sums, rows.Err()
}

// AccountActivity returns, per account touched before or inside [start, end],
// the opening balance (strictly before start) and the window's movements.
func (r *repository) AccountActivity(ctx context.Context, companyID int64, start, end time.Time) ([]AccountActivity, error) {
	beforeStart := start.Add(-time.Nanosecond)

	var opening, movement map[int64]AccountActivity
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opening, err = r.accountSums(gctx, companyID, nil, &beforeStart)
		return err
	})
	g.Go(func() error {
		var err error
		movement, err = r.accountSums(gctx, companyID, &start, &end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[int64]AccountActivity, len(opening)+len(movement))
	for id, act := range movement {
		merged[id] = act
	}
	for id, open := range opening {
		act, ok := merged[id]
		if !ok {
			act = open
			act.Debit = decimal.Zero
			act.Credit = decimal.Zero
		}
		act.Opening = open.Debit.Sub(open.Credit)
		merged[id] = act
	}
	return sortedActivities(merged), nil
}

// AccountActivityAsOf returns cumulative per-account sums up to cutoff,
// inclusive, with a zero opening. Closing() therefore yields the balance
// as of the cutoff date.
func (r *repository) AccountActivityAsOf(ctx context.Context, companyID int64, cutoff time.Time) ([]AccountActivity, error) {
	sums, err := r.accountSums(ctx, companyID, nil, &cutoff)
	if err != nil {
		return nil, err
	}
	return sortedActivities(sums), nil
}

func sortedActivities(byID map[int64]AccountActivity) []AccountActivity {
	out := make([]AccountActivity, 0, len(byID))
	for _, act := range byID {
		out = append(out, act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// UnbalancedDocuments finds journal entry sets whose debits and credits
// disagree. A non-empty result indicates a posting-rule defect.
func (r *repository) UnbalancedDocuments(ctx context.Context, companyID int64) ([]DocumentRef, error) {
	rows, err := r.db.Query(ctx, unifiedView+`
SELECT l.company_id, l.document_id, l.document_type, SUM(l.debit), SUM(l.credit)
FROM ledger_lines l
WHERE ($1::bigint = 0 OR l.company_id = $1)
GROUP BY l.company_id, l.document_id, l.document_type
HAVING SUM(l.debit) <> SUM(l.credit)
ORDER BY l.company_id, l.document_type, l.document_id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var refs []DocumentRef
	for rows.Next() {
		var ref DocumentRef
		if err := rows.Scan(&ref.CompanyID, &ref.DocumentID, &ref.DocumentType, &ref.Debit, &ref.Credit); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
