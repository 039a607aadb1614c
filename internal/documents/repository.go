package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
	"github.com/nubixconta/nubixconta-backend/internal/ap"
	"github.com/nubixconta/nubixconta-backend/internal/ar"
	"github.com/nubixconta/nubixconta-backend/internal/inventory"
	"github.com/nubixconta/nubixconta-backend/internal/platform/db"
)

// Repository wraps DB access for document transitions.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetDocument(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) (Document, error)
}

// TxRepository exposes every operation a transition performs, all bound to
// one transaction so that any failure rolls back the whole transition.
type TxRepository interface {
	GetDocumentForUpdate(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) (Document, error)
	UpdateStatus(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64, status Status) error
	DeleteDocument(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) error

	InsertEntryLines(ctx context.Context, lines []ledger.EntryLine) error
	DeleteEntryLines(ctx context.Context, companyID int64, docType ledger.DocumentType, documentID int64) (int64, error)

	ApplyStockMovement(ctx context.Context, m inventory.Movement) error
	AdjustReceivable(ctx context.Context, companyID, customerID int64, delta decimal.Decimal) error
	AdjustPayable(ctx context.Context, companyID, supplierID int64, delta decimal.Decimal) error
}

// documentTables maps each family to the table owning its header row.
var documentTables = map[ledger.DocumentType]string{
	ledger.DocumentTypeSale:               "sales",
	ledger.DocumentTypePurchase:           "purchases",
	ledger.DocumentTypeSaleCreditNote:     "sale_credit_notes",
	ledger.DocumentTypePurchaseCreditNote: "purchase_credit_notes",
	ledger.DocumentTypeCollection:         "collections",
	ledger.DocumentTypePayment:            "payments",
	ledger.DocumentTypeWithholding:        "withholdings",
}

type repository struct {
	db     *pgxpool.Pool
	ledger ledger.Repository
}

func NewRepository(db *pgxpool.Pool, ledgerRepo ledger.Repository) Repository {
	return &repository{db: db, ledger: ledgerRepo}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, ledger: r.ledger})
	})
}

func (r *repository) GetDocument(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) (Document, error) {
	return loadDocument(ctx, r.db, companyID, docType, id, false)
}

type txRepository struct {
	tx     pgx.Tx
	ledger ledger.Repository
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadDocument(ctx context.Context, q querier, companyID int64, docType ledger.DocumentType, id int64, forUpdate bool) (Document, error) {
	table, ok := documentTables[docType]
	if !ok {
		return Document{}, fmt.Errorf("documents: unknown document type %q", docType)
	}
	suffix := ""
	if forUpdate {
		suffix = " FOR UPDATE"
	}
	doc := Document{Type: docType}
	err := q.QueryRow(ctx, fmt.Sprintf(`SELECT id, company_id, status, document_date, third_party_id, subtotal, vat_amount, total, description
FROM %s WHERE company_id=$1 AND id=$2%s`, table, suffix), companyID, id).
		Scan(&doc.ID, &doc.CompanyID, &doc.Status, &doc.Date, &doc.ThirdPartyID,
			&doc.Subtotal, &doc.VAT, &doc.Total, &doc.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT product_id, activation_id, quantity, amount, description
FROM %s_lines WHERE document_id=$1 ORDER BY id`, singular(table)), id)
	if err != nil {
		return Document{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line DetailLine
		if err := rows.Scan(&line.ProductID, &line.ActivationID, &line.Quantity, &line.Amount, &line.Description); err != nil {
			return Document{}, err
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc, rows.Err()
}

// singular trims the plural table name for its detail-line table
// ("sales" -> "sale_lines", "purchases" -> "purchase_lines").
func singular(table string) string {
	if len(table) > 0 && table[len(table)-1] == 's' {
		return table[:len(table)-1]
	}
	return table
}

func (r *txRepository) GetDocumentForUpdate(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) (Document, error) {
	return loadDocument(ctx, r.tx, companyID, docType, id, true)
}

func (r *txRepository) UpdateStatus(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64, status Status) error {
	table, ok := documentTables[docType]
	if !ok {
		return fmt.Errorf("documents: unknown document type %q", docType)
	}
	cmd, err := r.tx.Exec(ctx, fmt.Sprintf(`UPDATE %s SET status=$3, updated_at=NOW() WHERE company_id=$1 AND id=$2`, table), companyID, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) DeleteDocument(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) error {
	table, ok := documentTables[docType]
	if !ok {
		return fmt.Errorf("documents: unknown document type %q", docType)
	}
	if _, err := r.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s_lines WHERE document_id=$1`, singular(table)), id); err != nil {
		return err
	}
	cmd, err := r.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE company_id=$1 AND id=$2`, table), companyID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) InsertEntryLines(ctx context.Context, lines []ledger.EntryLine) error {
	return r.ledger.InsertLines(ctx, r.tx, lines)
}

func (r *txRepository) DeleteEntryLines(ctx context.Context, companyID int64, docType ledger.DocumentType, documentID int64) (int64, error) {
	return r.ledger.DeleteByDocument(ctx, r.tx, companyID, docType, documentID)
}

func (r *txRepository) ApplyStockMovement(ctx context.Context, m inventory.Movement) error {
	return inventory.ApplyMovement(ctx, r.tx, m)
}

func (r *txRepository) AdjustReceivable(ctx context.Context, companyID, customerID int64, delta decimal.Decimal) error {
	return ar.AdjustBalance(ctx, r.tx, companyID, customerID, delta)
}

func (r *txRepository) AdjustPayable(ctx context.Context, companyID, supplierID int64, delta decimal.Decimal) error {
	return ap.AdjustBalance(ctx, r.tx, companyID, supplierID, delta)
}
