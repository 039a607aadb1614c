package reports

import (
	"github.com/shopspring/decimal"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/coa"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
)

// Statutory rates applied below pre-tax profit.
var (
	legalReserveRate = decimal.NewFromFloat(0.07)
	incomeTaxRate    = decimal.NewFromFloat(0.30)
)

// IncomeStatementLine is one account's contribution to a section.
type IncomeStatementLine struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// IncomeStatementSection groups accounts sharing a bucket.
type IncomeStatementSection struct {
	Label    string                `json:"label"`
	Accounts []IncomeStatementLine `json:"accounts"`
	Total    decimal.Decimal       `json:"total"`
}

// IncomeStatement is the estado de resultados with its roll-ups.
type IncomeStatement struct {
	OperatingIncome IncomeStatementSection `json:"operatingIncome"`
	CostOfSales     IncomeStatementSection `json:"costOfSales"`
	SalesExpense    IncomeStatementSection `json:"salesExpense"`
	AdminExpense    IncomeStatementSection `json:"adminExpense"`
	OtherIncome     IncomeStatementSection `json:"otherIncome"`
	OtherExpense    IncomeStatementSection `json:"otherExpense"`

	GrossProfit     decimal.Decimal `json:"grossProfit"`
	OperatingProfit decimal.Decimal `json:"operatingProfit"`
	PreTaxProfit    decimal.Decimal `json:"preTaxProfit"`
	LegalReserve    decimal.Decimal `json:"legalReserve"`
	TaxBase         decimal.Decimal `json:"taxBase"`
	IncomeTax       decimal.Decimal `json:"incomeTax"`
	NetIncome       decimal.Decimal `json:"netIncome"`
}

// BuildIncomeStatement classifies period movements (never opening balances)
// into the six statutory buckets and derives the roll-ups: gross profit,
// operating profit, pre-tax profit, the 7% legal reserve, the 30% income
// tax, and net income. Reserve and tax round half-up at two decimals and
// apply only while their base is positive.
func BuildIncomeStatement(accounts []ledger.AccountActivity) IncomeStatement {
	stmt := IncomeStatement{
		OperatingIncome: IncomeStatementSection{Label: "Ingresos de operación", Total: decimal.Zero},
		CostOfSales:     IncomeStatementSection{Label: "Costo de ventas", Total: decimal.Zero},
		SalesExpense:    IncomeStatementSection{Label: "Gastos de venta", Total: decimal.Zero},
		AdminExpense:    IncomeStatementSection{Label: "Gastos de administración", Total: decimal.Zero},
		OtherIncome:     IncomeStatementSection{Label: "Otros ingresos", Total: decimal.Zero},
		OtherExpense:    IncomeStatementSection{Label: "Otros gastos", Total: decimal.Zero},
	}

	for _, acc := range accounts {
		if acc.Debit.IsZero() && acc.Credit.IsZero() {
			continue
		}
		var section *IncomeStatementSection
		var amount decimal.Decimal
		switch acc.Type {
		case coa.AccountTypeOperatingIncome:
			section, amount = &stmt.OperatingIncome, acc.Credit.Sub(acc.Debit)
		case coa.AccountTypeCost:
			section, amount = &stmt.CostOfSales, acc.Debit.Sub(acc.Credit)
		case coa.AccountTypeSalesExpense:
			section, amount = &stmt.SalesExpense, acc.Debit.Sub(acc.Credit)
		case coa.AccountTypeAdminExpense:
			section, amount = &stmt.AdminExpense, acc.Debit.Sub(acc.Credit)
		case coa.AccountTypeOtherIncome:
			section, amount = &stmt.OtherIncome, acc.Credit.Sub(acc.Debit)
		case coa.AccountTypeFinancialExpense:
			section, amount = &stmt.OtherExpense, acc.Debit.Sub(acc.Credit)
		default:
			continue
		}
		section.Accounts = append(section.Accounts, IncomeStatementLine{Code: acc.Code, Name: acc.Name, Amount: amount})
		section.Total = section.Total.Add(amount)
	}

	stmt.GrossProfit = stmt.OperatingIncome.Total.Sub(stmt.CostOfSales.Total)
	stmt.OperatingProfit = stmt.GrossProfit.Sub(stmt.SalesExpense.Total.Add(stmt.AdminExpense.Total))
	stmt.PreTaxProfit = stmt.OperatingProfit.Add(stmt.OtherIncome.Total).Sub(stmt.OtherExpense.Total)

	stmt.LegalReserve = decimal.Zero
	if stmt.PreTaxProfit.IsPositive() {
		stmt.LegalReserve = stmt.PreTaxProfit.Mul(legalReserveRate).Round(2)
	}
	stmt.TaxBase = stmt.PreTaxProfit.Sub(stmt.LegalReserve)
	stmt.IncomeTax = decimal.Zero
	if stmt.TaxBase.IsPositive() {
		stmt.IncomeTax = stmt.TaxBase.Mul(incomeTaxRate).Round(2)
	}
	stmt.NetIncome = stmt.PreTaxProfit.Sub(stmt.LegalReserve).Sub(stmt.IncomeTax)
	return stmt
}
