package reports

import (
	"github.com/shopspring/decimal"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
)

// TrialBalanceRow presents one account with its balances split into the
// deudor/acreedor columns.
type TrialBalanceRow struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	OpeningDebtor   decimal.Decimal `json:"openingDebtor"`
	OpeningCreditor decimal.Decimal `json:"openingCreditor"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	ClosingDebtor   decimal.Decimal `json:"closingDebtor"`
	ClosingCreditor decimal.Decimal `json:"closingCreditor"`
}

// TrialBalance is the full report with column totals.
type TrialBalance struct {
	Rows                 []TrialBalanceRow `json:"rows"`
	TotalOpeningDebtor   decimal.Decimal   `json:"totalOpeningDebtor"`
	TotalOpeningCreditor decimal.Decimal   `json:"totalOpeningCreditor"`
	TotalDebit           decimal.Decimal   `json:"totalDebit"`
	TotalCredit          decimal.Decimal   `json:"totalCredit"`
	TotalClosingDebtor   decimal.Decimal   `json:"totalClosingDebtor"`
	TotalClosingCreditor decimal.Decimal   `json:"totalClosingCreditor"`
}

// splitColumns translates a raw balance (debit minus credit) into the two
// presentation columns. Debit-natured accounts show non-negative balances in
// the debtor column and negatives as absolute values in the creditor column;
// credit-natured accounts use the opposite sign test. The asymmetry matches
// the historical report exactly and is deliberate.
func splitColumns(balance decimal.Decimal, debtorNatured bool) (debtor, creditor decimal.Decimal) {
	if debtorNatured {
		if balance.Sign() >= 0 {
			return balance, decimal.Zero
		}
		return decimal.Zero, balance.Abs()
	}
	if balance.Sign() >= 0 {
		return decimal.Zero, balance
	}
	return balance.Abs(), decimal.Zero
}

// BuildTrialBalance derives the trial balance from per-account activity.
// Accounts with neither opening balance nor period movement are excluded.
// Input is expected sorted by account code; the order is preserved.
func BuildTrialBalance(accounts []ledger.AccountActivity) TrialBalance {
	tb := TrialBalance{
		TotalOpeningDebtor:   decimal.Zero,
		TotalOpeningCreditor: decimal.Zero,
		TotalDebit:           decimal.Zero,
		TotalCredit:          decimal.Zero,
		TotalClosingDebtor:   decimal.Zero,
		TotalClosingCreditor: decimal.Zero,
	}
	for _, acc := range accounts {
		if acc.Opening.IsZero() && acc.Debit.IsZero() && acc.Credit.IsZero() {
			continue
		}
		closing := acc.Opening.Add(acc.Debit).Sub(acc.Credit)
		natured := acc.Type.DebtorNatured()
		row := TrialBalanceRow{
			Code:   acc.Code,
			Name:   acc.Name,
			Debit:  acc.Debit,
			Credit: acc.Credit,
		}
		row.OpeningDebtor, row.OpeningCreditor = splitColumns(acc.Opening, natured)
		row.ClosingDebtor, row.ClosingCreditor = splitColumns(closing, natured)
		tb.Rows = append(tb.Rows, row)

		tb.TotalOpeningDebtor = tb.TotalOpeningDebtor.Add(row.OpeningDebtor)
		tb.TotalOpeningCreditor = tb.TotalOpeningCreditor.Add(row.OpeningCreditor)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		tb.TotalClosingDebtor = tb.TotalClosingDebtor.Add(row.ClosingDebtor)
		tb.TotalClosingCreditor = tb.TotalClosingCreditor.Add(row.ClosingCreditor)
	}
	return tb
}
