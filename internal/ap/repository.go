// Package ap maintains supplier payable balances as a ledger side effect.
package ap

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AdjustBalance applies a signed delta to the supplier's payable balance
// inside the caller's transaction.
func AdjustBalance(ctx context.Context, tx pgx.Tx, companyID, supplierID int64, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	_, err := tx.Exec(ctx, `INSERT INTO supplier_balances (company_id, supplier_id, balance)
VALUES ($1,$2,$3)
ON CONFLICT (company_id, supplier_id) DO UPDATE SET balance = supplier_balances.balance + EXCLUDED.balance, updated_at = NOW()`,
		companyID, supplierID, delta)
	return err
}
