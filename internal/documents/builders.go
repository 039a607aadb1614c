package documents

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/mappings"
	"github.com/nubixconta/nubixconta-backend/internal/inventory"
)

// posting is the full effect of applying one document: its journal entry
// lines plus the side effects collaborating modules must absorb.
type posting struct {
	lines      []ledger.EntryLine
	stock      []inventory.Movement
	receivable decimal.Decimal
	payable    decimal.Decimal
}

// side selects which column an amount posts to.
type side int

const (
	debit side = iota
	credit
)

func (s side) invert() side {
	if s == debit {
		return credit
	}
	return debit
}

// builder assembles the entry set for one document under one batch id.
type builder struct {
	svc   *Service
	doc   Document
	batch uuid.UUID
	lines []ledger.EntryLine
}

func (b *builder) add(activationID int64, s side, amount decimal.Decimal) {
	line := ledger.EntryLine{
		DocumentID:   b.doc.ID,
		DocumentType: b.doc.Type,
		BatchID:      b.batch,
		ActivationID: activationID,
		Debit:        decimal.Zero,
		Credit:       decimal.Zero,
		Description:  b.doc.Description,
		Date:         b.doc.Date,
		CompanyID:    b.doc.CompanyID,
	}
	if s == debit {
		line.Debit = amount
	} else {
		line.Credit = amount
	}
	b.lines = append(b.lines, line)
}

// addConfigured posts to the fixed account configured under key.
func (b *builder) addConfigured(ctx context.Context, key string, s side, amount decimal.Decimal) error {
	mapping, err := b.svc.config.Get(ctx, b.doc.CompanyID, key)
	if err != nil {
		return err
	}
	if _, err := b.svc.accounts.ResolvePostable(ctx, b.doc.CompanyID, mapping.ActivationID); err != nil {
		return err
	}
	b.add(mapping.ActivationID, s, amount)
	return nil
}

// addDetailLines implements the shared construction rule: detail rows are
// grouped by destination account; rows pointing at inventory-tracked items
// accumulate into the family's fixed account under fixedKey, rows pointing
// at a directly-specified account post one line per account.
func (b *builder) addDetailLines(ctx context.Context, fixedKey string, s side) error {
	productTotal := decimal.Zero
	directTotals := make(map[int64]decimal.Decimal)
	var directOrder []int64
	for _, line := range b.doc.Lines {
		switch {
		case line.ProductID != nil:
			productTotal = productTotal.Add(line.Amount)
		case line.ActivationID != nil:
			id := *line.ActivationID
			if _, seen := directTotals[id]; !seen {
				directOrder = append(directOrder, id)
			}
			directTotals[id] = directTotals[id].Add(line.Amount)
		}
	}
	if productTotal.IsPositive() {
		if err := b.addConfigured(ctx, fixedKey, s, productTotal); err != nil {
			return err
		}
	}
	for _, id := range directOrder {
		if _, err := b.svc.accounts.ResolvePostable(ctx, b.doc.CompanyID, id); err != nil {
			return err
		}
		b.add(id, s, directTotals[id])
	}
	return nil
}

// stockMovements returns one movement per inventory-tracked detail row.
// outbound=true consumes stock (sales), false restores it (purchases and
// sale credit notes).
func (b *builder) stockMovements(outbound bool) []inventory.Movement {
	var moves []inventory.Movement
	for _, line := range b.doc.Lines {
		if line.ProductID == nil || line.Quantity.IsZero() {
			continue
		}
		qty := line.Quantity
		if outbound {
			qty = qty.Neg()
		}
		moves = append(moves, inventory.Movement{
			CompanyID: b.doc.CompanyID,
			ProductID: *line.ProductID,
			Qty:       qty,
		})
	}
	return moves
}

// buildPosting derives the journal entry and side effects a document implies.
// Credit notes mirror their original document with debit and credit swapped.
func (s *Service) buildPosting(ctx context.Context, doc Document) (posting, error) {
	b := &builder{svc: s, doc: doc, batch: uuid.New()}
	switch doc.Type {
	case ledger.DocumentTypeSale:
		return s.buildInvoice(ctx, b, saleRule, debit, true)
	case ledger.DocumentTypeSaleCreditNote:
		return s.buildInvoice(ctx, b, saleRule, credit, false)
	case ledger.DocumentTypePurchase:
		return s.buildInvoice(ctx, b, purchaseRule, credit, false)
	case ledger.DocumentTypePurchaseCreditNote:
		return s.buildInvoice(ctx, b, purchaseRule, debit, true)
	case ledger.DocumentTypeCollection:
		return s.buildSettlement(ctx, b, mappings.KeyTreasuryBank, mappings.KeySalesCustomer)
	case ledger.DocumentTypePayment:
		return s.buildSettlement(ctx, b, mappings.KeyPurchaseSupplier, mappings.KeyTreasuryBank)
	case ledger.DocumentTypeWithholding:
		return s.buildSettlement(ctx, b, mappings.KeyWithholdingTax, mappings.KeySalesCustomer)
	default:
		return posting{}, ErrNotFound
	}
}

// invoiceRule names the fixed accounts an invoice-shaped family posts to.
type invoiceRule struct {
	contraKey  string
	detailKey  string
	vatKey     string
	receivable bool
}

var saleRule = invoiceRule{
	contraKey:  mappings.KeySalesCustomer,
	detailKey:  mappings.KeySalesIncome,
	vatKey:     mappings.KeySalesVATDebit,
	receivable: true,
}

var purchaseRule = invoiceRule{
	contraKey:  mappings.KeyPurchaseSupplier,
	detailKey:  mappings.KeyPurchaseInventory,
	vatKey:     mappings.KeyPurchaseVATCredit,
	receivable: false,
}

// buildInvoice covers the four invoice-shaped families. contraSide is the
// side the contra (customer/supplier) line posts to; the detail and VAT
// lines take the opposite side. outboundStock selects the stock direction.
func (s *Service) buildInvoice(ctx context.Context, b *builder, rule invoiceRule, contraSide side, outboundStock bool) (posting, error) {
	if err := b.addConfigured(ctx, rule.contraKey, contraSide, b.doc.Total); err != nil {
		return posting{}, err
	}
	if err := b.addDetailLines(ctx, rule.detailKey, contraSide.invert()); err != nil {
		return posting{}, err
	}
	if b.doc.VAT.IsPositive() {
		if err := b.addConfigured(ctx, rule.vatKey, contraSide.invert(), b.doc.VAT); err != nil {
			return posting{}, err
		}
	}

	p := posting{lines: b.lines, stock: b.stockMovements(outboundStock)}
	// The third-party balance moves with the contra line: debits to the
	// customer raise the receivable, credits reduce it; mirrored for the
	// supplier payable.
	delta := b.doc.Total
	if rule.receivable {
		if contraSide == credit {
			delta = delta.Neg()
		}
		p.receivable = delta
	} else {
		if contraSide == debit {
			delta = delta.Neg()
		}
		p.payable = delta
	}
	return p, nil
}

// buildSettlement covers the two-line families: collections, payments and
// income-tax withholdings post the document total from debitKey to creditKey.
func (s *Service) buildSettlement(ctx context.Context, b *builder, debitKey, creditKey string) (posting, error) {
	if err := b.addConfigured(ctx, debitKey, debit, b.doc.Total); err != nil {
		return posting{}, err
	}
	if err := b.addConfigured(ctx, creditKey, credit, b.doc.Total); err != nil {
		return posting{}, err
	}
	p := posting{lines: b.lines}
	switch b.doc.Type {
	case ledger.DocumentTypeCollection, ledger.DocumentTypeWithholding:
		p.receivable = b.doc.Total.Neg()
	case ledger.DocumentTypePayment:
		p.payable = b.doc.Total.Neg()
	}
	return p, nil
}
