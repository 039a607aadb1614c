package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType tags the business document family an entry line belongs to.
// Each family stores its lines in its own table; the unified view unions them.
type DocumentType string

const (
	DocumentTypeSale               DocumentType = "SALE"
	DocumentTypePurchase           DocumentType = "PURCHASE"
	DocumentTypeSaleCreditNote     DocumentType = "SALE_CREDIT_NOTE"
	DocumentTypePurchaseCreditNote DocumentType = "PURCHASE_CREDIT_NOTE"
	DocumentTypeCollection         DocumentType = "COLLECTION"
	DocumentTypePayment            DocumentType = "PAYMENT"
	DocumentTypeWithholding        DocumentType = "WITHHOLDING"
)

// sourceTables maps each document family to its entry-line table.
var sourceTables = map[DocumentType]string{
	DocumentTypeSale:               "sale_entries",
	DocumentTypePurchase:           "purchase_entries",
	DocumentTypeSaleCreditNote:     "sale_credit_note_entries",
	DocumentTypePurchaseCreditNote: "purchase_credit_note_entries",
	DocumentTypeCollection:         "collection_entries",
	DocumentTypePayment:            "payment_entries",
	DocumentTypeWithholding:        "withholding_entries",
}

// DocumentTypes lists every supported family in a stable order.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeSale,
		DocumentTypePurchase,
		DocumentTypeSaleCreditNote,
		DocumentTypePurchaseCreditNote,
		DocumentTypeCollection,
		DocumentTypePayment,
		DocumentTypeWithholding,
	}
}

// Valid reports whether t names a known document family.
func (t DocumentType) Valid() bool {
	_, ok := sourceTables[t]
	return ok
}

// ParseDocumentType converts a URL segment such as "sale_credit_note" into
// its document family.
func ParseDocumentType(raw string) (DocumentType, error) {
	t := DocumentType(strings.ToUpper(raw))
	if !t.Valid() {
		return "", fmt.Errorf("accounting: unknown document type %q", raw)
	}
	return t, nil
}

// EntryLine is the atomic ledger fact. Lines are immutable once written;
// the only mutation is wholesale deletion of a document's lines on cancel.
type EntryLine struct {
	ID           int64
	DocumentID   int64
	DocumentType DocumentType
	BatchID      uuid.UUID
	ActivationID int64
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Description  string
	Date         time.Time
	CompanyID    int64
}

// DocumentRef identifies one journal entry set in the unified view.
type DocumentRef struct {
	CompanyID    int64
	DocumentID   int64
	DocumentType DocumentType
	Debit        decimal.Decimal
	Credit       decimal.Decimal
}
