// Package ar maintains customer receivable balances as a ledger side effect.
package ar

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AdjustBalance applies a signed delta to the customer's receivable balance
// inside the caller's transaction. Apply and Cancel call it with opposite
// signs so a cancelled document leaves the balance untouched.
func AdjustBalance(ctx context.Context, tx pgx.Tx, companyID, customerID int64, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	_, err := tx.Exec(ctx, `INSERT INTO customer_balances (company_id, customer_id, balance)
VALUES ($1,$2,$3)
ON CONFLICT (company_id, customer_id) DO UPDATE SET balance = customer_balances.balance + EXCLUDED.balance, updated_at = NOW()`,
		companyID, customerID, delta)
	return err
}
