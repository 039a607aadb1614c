package coa

import (
	"strings"
	"time"
)

// AccountType tags a chart-of-accounts node with its accounting nature.
type AccountType string

const (
	AccountTypeAsset            AccountType = "ASSET"
	AccountTypeLiability        AccountType = "LIABILITY"
	AccountTypeEquity           AccountType = "EQUITY"
	AccountTypeOperatingIncome  AccountType = "INCOME.OPERATING"
	AccountTypeOtherIncome      AccountType = "INCOME.NONOPERATING"
	AccountTypeCost             AccountType = "COST"
	AccountTypeSalesExpense     AccountType = "EXPENSE.SALES"
	AccountTypeAdminExpense     AccountType = "EXPENSE.ADMIN"
	AccountTypeFinancialExpense AccountType = "EXPENSE.FINANCIAL"
)

// DebtorNatured reports whether the account's normal balance sits on the
// debit side. Assets, costs, and every expense flavor are debit-natured;
// liabilities, equity, and income are credit-natured.
func (t AccountType) DebtorNatured() bool {
	s := string(t)
	return strings.HasPrefix(s, "ASSET") || strings.HasPrefix(s, "EXPENSE") || strings.HasPrefix(s, "COST")
}

// StatementGroup classifies an account for balance sheet presentation.
// The grouping is master data owned by the registry, not derived from the type.
type StatementGroup string

const (
	GroupCurrentAsset        StatementGroup = "CURRENT_ASSET"
	GroupNonCurrentAsset     StatementGroup = "NONCURRENT_ASSET"
	GroupCurrentLiability    StatementGroup = "CURRENT_LIABILITY"
	GroupNonCurrentLiability StatementGroup = "NONCURRENT_LIABILITY"
	GroupEquity              StatementGroup = "EQUITY"
	// GroupResult marks income statement accounts; their net balance is folded
	// into equity as the period result when building the balance sheet.
	GroupResult StatementGroup = "RESULT"
)

// Account models a node in the shared account taxonomy. Only leaf nodes
// marked postable may receive entry lines.
type Account struct {
	ID        int64
	Code      string
	Name      string
	Type      AccountType
	Group     StatementGroup
	ParentID  *int64
	Postable  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Activation links a company to an account it uses, optionally overriding
// the displayed code and name. Entry lines always reference activations,
// never accounts, so every line is tenant-scoped by construction.
type Activation struct {
	ID        int64
	CompanyID int64
	AccountID int64
	Code      *string
	Name      *string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResolvedAccount is the flattened view of an activation joined with its
// account, as consumed by posting builders and reports.
type ResolvedAccount struct {
	ActivationID int64
	CompanyID    int64
	AccountID    int64
	Code         string
	Name         string
	Type         AccountType
	Group        StatementGroup
	Postable     bool
	Active       bool
}
