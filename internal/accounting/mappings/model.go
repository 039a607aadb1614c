package mappings

import "time"

// Posting-configuration keys for the fixed accounts each document family posts to.
const (
	KeySalesCustomer      = "sales.customer"
	KeySalesVATDebit      = "sales.vat_debit"
	KeySalesIncome        = "sales.inventory_income"
	KeyPurchaseSupplier   = "purchase.supplier"
	KeyPurchaseVATCredit  = "purchase.vat_credit"
	KeyPurchaseInventory  = "purchase.inventory"
	KeyTreasuryBank       = "treasury.bank"
	KeyWithholdingTax     = "withholding.income_tax"
)

// AccountMapping links a posting-configuration key to the account activation
// a company posts that concept to.
type AccountMapping struct {
	CompanyID    int64
	Key          string
	ActivationID int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
