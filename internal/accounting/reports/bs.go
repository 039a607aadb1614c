package reports

import (
	"github.com/shopspring/decimal"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/coa"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
)

// BalanceSheetLine is one account's cumulative balance at the cutoff date.
type BalanceSheetLine struct {
	Code    string          `json:"code"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

// BalanceSheetSection groups accounts sharing a statement group.
type BalanceSheetSection struct {
	Label    string             `json:"label"`
	Accounts []BalanceSheetLine `json:"accounts"`
	Total    decimal.Decimal    `json:"total"`
}

// BalanceSheet is the balance general as of a cutoff date. PeriodResult
// carries the net of result-group accounts folded into equity, so a ledger
// with balanced entries always reports Balanced true.
type BalanceSheet struct {
	CurrentAssets         BalanceSheetSection `json:"currentAssets"`
	NoncurrentAssets      BalanceSheetSection `json:"noncurrentAssets"`
	CurrentLiabilities    BalanceSheetSection `json:"currentLiabilities"`
	NoncurrentLiabilities BalanceSheetSection `json:"noncurrentLiabilities"`
	Equity                BalanceSheetSection `json:"equity"`
	PeriodResult          decimal.Decimal     `json:"periodResult"`

	TotalAssets      decimal.Decimal `json:"totalAssets"`
	TotalLiabilities decimal.Decimal `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal `json:"totalEquity"`
	Balanced         bool            `json:"balanced"`
}

// BuildBalanceSheet buckets cumulative balances by statement group. Asset
// sections keep the debtor-natured sign, liability and equity sections are
// reported as credit balances. Result-group accounts are not listed line by
// line; their net lands in PeriodResult inside equity.
func BuildBalanceSheet(accounts []ledger.AccountActivity) BalanceSheet {
	bs := BalanceSheet{
		CurrentAssets:         BalanceSheetSection{Label: "Activo corriente", Total: decimal.Zero},
		NoncurrentAssets:      BalanceSheetSection{Label: "Activo no corriente", Total: decimal.Zero},
		CurrentLiabilities:    BalanceSheetSection{Label: "Pasivo corriente", Total: decimal.Zero},
		NoncurrentLiabilities: BalanceSheetSection{Label: "Pasivo no corriente", Total: decimal.Zero},
		Equity:                BalanceSheetSection{Label: "Patrimonio", Total: decimal.Zero},
		PeriodResult:          decimal.Zero,
	}

	for _, acc := range accounts {
		balance := acc.Opening.Add(acc.Debit).Sub(acc.Credit)
		if balance.IsZero() {
			continue
		}
		var section *BalanceSheetSection
		switch acc.Group {
		case coa.GroupCurrentAsset:
			section = &bs.CurrentAssets
		case coa.GroupNonCurrentAsset:
			section = &bs.NoncurrentAssets
		case coa.GroupCurrentLiability:
			balance = balance.Neg()
			section = &bs.CurrentLiabilities
		case coa.GroupNonCurrentLiability:
			balance = balance.Neg()
			section = &bs.NoncurrentLiabilities
		case coa.GroupEquity:
			balance = balance.Neg()
			section = &bs.Equity
		case coa.GroupResult:
			bs.PeriodResult = bs.PeriodResult.Add(balance.Neg())
			continue
		default:
			continue
		}
		section.Accounts = append(section.Accounts, BalanceSheetLine{Code: acc.Code, Name: acc.Name, Balance: balance})
		section.Total = section.Total.Add(balance)
	}

	bs.TotalAssets = bs.CurrentAssets.Total.Add(bs.NoncurrentAssets.Total)
	bs.TotalLiabilities = bs.CurrentLiabilities.Total.Add(bs.NoncurrentLiabilities.Total)
	bs.TotalEquity = bs.Equity.Total.Add(bs.PeriodResult)
	bs.Balanced = bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity))
	return bs
}
