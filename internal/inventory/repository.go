package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ApplyMovement mutates the product's stock inside the caller's transaction.
// Document transitions invoke it so that a stock failure rolls back the
// whole transition, ledger lines included.
func ApplyMovement(ctx context.Context, tx pgx.Tx, m Movement) error {
	if m.Qty.IsZero() {
		return ErrInvalidQuantity
	}
	var qty decimal.Decimal
	err := tx.QueryRow(ctx, `UPDATE product_stock SET qty = qty + $3, updated_at = NOW()
WHERE company_id=$1 AND product_id=$2
RETURNING qty`, m.CompanyID, m.ProductID, m.Qty).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if m.Qty.IsNegative() {
				return fmt.Errorf("inventory: product %d has no stock row: %w", m.ProductID, ErrInsufficientStock)
			}
			_, err = tx.Exec(ctx, `INSERT INTO product_stock (company_id, product_id, qty)
VALUES ($1,$2,$3)`, m.CompanyID, m.ProductID, m.Qty)
			return err
		}
		return err
	}
	if qty.IsNegative() {
		return fmt.Errorf("inventory: product %d would go negative: %w", m.ProductID, ErrInsufficientStock)
	}
	return nil
}
