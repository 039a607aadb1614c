package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
)

// ValidateBalanced checks a candidate entry set before persistence.
// Amounts must be non-negative, carry at most two fractional digits, and put
// each line on exactly one side; total debits must equal total credits.
// The check is pure and runs inside the same transaction that persists the set.
func ValidateBalanced(lines []EntryLine) error {
	if len(lines) < 2 {
		return shared.ErrTooFewLines
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for idx, line := range lines {
		if line.ActivationID == 0 {
			return fmt.Errorf("accounting: line %d missing account: %w", idx, shared.ErrInvalidAmount)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("accounting: line %d negative amount: %w", idx, shared.ErrInvalidAmount)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return fmt.Errorf("accounting: line %d posts to both sides: %w", idx, shared.ErrInvalidAmount)
		}
		if !line.Debit.Equal(line.Debit.Round(2)) || !line.Credit.Equal(line.Credit.Round(2)) {
			return fmt.Errorf("accounting: line %d exceeds two decimals: %w", idx, shared.ErrInvalidAmount)
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		return fmt.Errorf("accounting: debits %s != credits %s: %w", debit.StringFixed(2), credit.StringFixed(2), shared.ErrUnbalanced)
	}
	return nil
}
