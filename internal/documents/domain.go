package documents

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
)

// Status enumerates the shared document lifecycle. PENDING documents may be
// applied or deleted; APPLIED documents may only be cancelled; CANCELLED is
// terminal and never re-enters APPLIED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApplied   Status = "APPLIED"
	StatusCancelled Status = "CANCELLED"
)

// Document is the engine's read view of a business document. The business
// fields belong to other subsystems; the engine only observes them to build
// postings and drive the status field.
type Document struct {
	ID           int64
	CompanyID    int64
	Type         ledger.DocumentType
	Status       Status
	Date         time.Time
	ThirdPartyID int64
	Subtotal     decimal.Decimal
	VAT          decimal.Decimal
	Total        decimal.Decimal
	Description  string
	Lines        []DetailLine
}

// DetailLine is one document detail row. Exactly one of ProductID and
// ActivationID is set: product rows accumulate into the family's fixed
// inventory/income account, account rows post individually.
type DetailLine struct {
	ProductID    *int64
	ActivationID *int64
	Quantity     decimal.Decimal
	Amount       decimal.Decimal
	Description  string
}

// ErrNotFound indicates the document does not exist for the company.
var ErrNotFound = errors.New("documents: document not found")

// ErrInvalidState indicates the requested lifecycle transition is illegal
// from the document's current status.
var ErrInvalidState = errors.New("documents: invalid state for transition")
