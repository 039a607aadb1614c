package documents

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/closing"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/coa"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/mappings"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
	"github.com/nubixconta/nubixconta-backend/internal/inventory"
	internalShared "github.com/nubixconta/nubixconta-backend/internal/shared"
	_ "github.com/nubixconta/nubixconta-backend/testing"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T { return &v }

// ============================================================================
// IN-MEMORY REPOSITORY
// ============================================================================

type docKey struct {
	docType ledger.DocumentType
	id      int64
}

type memoryRepository struct {
	documents   map[docKey]*Document
	entryLines  []ledger.EntryLine
	stock       map[int64]decimal.Decimal
	receivables map[int64]decimal.Decimal
	payables    map[int64]decimal.Decimal
	nextLineID  int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		documents:   make(map[docKey]*Document),
		stock:       make(map[int64]decimal.Decimal),
		receivables: make(map[int64]decimal.Decimal),
		payables:    make(map[int64]decimal.Decimal),
		nextLineID:  1,
	}
}

func (r *memoryRepository) put(doc Document) {
	r.documents[docKey{doc.Type, doc.ID}] = &doc
}

func (r *memoryRepository) linesFor(docType ledger.DocumentType, id int64) []ledger.EntryLine {
	var out []ledger.EntryLine
	for _, line := range r.entryLines {
		if line.DocumentType == docType && line.DocumentID == id {
			out = append(out, line)
		}
	}
	return out
}

// WithTx snapshots the whole store and restores it when fn fails, mirroring
// the rollback the real transaction gives.
func (r *memoryRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := r.clone()
	if err := fn(ctx, (*memoryTx)(r)); err != nil {
		*r = *snapshot
		return err
	}
	return nil
}

func (r *memoryRepository) clone() *memoryRepository {
	c := newMemoryRepository()
	c.nextLineID = r.nextLineID
	for k, d := range r.documents {
		doc := *d
		c.documents[k] = &doc
	}
	c.entryLines = append([]ledger.EntryLine(nil), r.entryLines...)
	for k, v := range r.stock {
		c.stock[k] = v
	}
	for k, v := range r.receivables {
		c.receivables[k] = v
	}
	for k, v := range r.payables {
		c.payables[k] = v
	}
	return c
}

func (r *memoryRepository) GetDocument(_ context.Context, companyID int64, docType ledger.DocumentType, id int64) (Document, error) {
	doc, ok := r.documents[docKey{docType, id}]
	if !ok || doc.CompanyID != companyID {
		return Document{}, ErrNotFound
	}
	return *doc, nil
}

type memoryTx memoryRepository

func (t *memoryTx) GetDocumentForUpdate(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) (Document, error) {
	return (*memoryRepository)(t).GetDocument(ctx, companyID, docType, id)
}

func (t *memoryTx) UpdateStatus(_ context.Context, companyID int64, docType ledger.DocumentType, id int64, status Status) error {
	doc, ok := t.documents[docKey{docType, id}]
	if !ok || doc.CompanyID != companyID {
		return ErrNotFound
	}
	doc.Status = status
	return nil
}

func (t *memoryTx) DeleteDocument(_ context.Context, companyID int64, docType ledger.DocumentType, id int64) error {
	doc, ok := t.documents[docKey{docType, id}]
	if !ok || doc.CompanyID != companyID {
		return ErrNotFound
	}
	delete(t.documents, docKey{docType, id})
	return nil
}

func (t *memoryTx) InsertEntryLines(_ context.Context, lines []ledger.EntryLine) error {
	for _, line := range lines {
		line.ID = t.nextLineID
		t.nextLineID++
		t.entryLines = append(t.entryLines, line)
	}
	return nil
}

func (t *memoryTx) DeleteEntryLines(_ context.Context, companyID int64, docType ledger.DocumentType, id int64) (int64, error) {
	var kept []ledger.EntryLine
	var removed int64
	for _, line := range t.entryLines {
		if line.CompanyID == companyID && line.DocumentType == docType && line.DocumentID == id {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	t.entryLines = kept
	return removed, nil
}

func (t *memoryTx) ApplyStockMovement(_ context.Context, m inventory.Movement) error {
	next := t.stock[m.ProductID].Add(m.Qty)
	if next.IsNegative() {
		return inventory.ErrInsufficientStock
	}
	t.stock[m.ProductID] = next
	return nil
}

func (t *memoryTx) AdjustReceivable(_ context.Context, _ int64, customerID int64, delta decimal.Decimal) error {
	t.receivables[customerID] = t.receivables[customerID].Add(delta)
	return nil
}

func (t *memoryTx) AdjustPayable(_ context.Context, _ int64, supplierID int64, delta decimal.Decimal) error {
	t.payables[supplierID] = t.payables[supplierID].Add(delta)
	return nil
}

// ============================================================================
// FAKE PORTS
// ============================================================================

type fakeGuard struct {
	closedBefore time.Time
}

func (g *fakeGuard) EnsureOpen(_ context.Context, _ int64, date time.Time) error {
	if g.closedBefore.IsZero() {
		return nil
	}
	if date.After(g.closedBefore.Add(24*time.Hour - time.Nanosecond)) {
		return nil
	}
	return closing.ErrPeriodClosed
}

type fakeResolver struct {
	inactive map[int64]bool
}

func (r *fakeResolver) ResolvePostable(_ context.Context, companyID, activationID int64) (coa.ResolvedAccount, error) {
	if r.inactive[activationID] {
		return coa.ResolvedAccount{}, shared.ErrAccountUnavailable
	}
	return coa.ResolvedAccount{ActivationID: activationID, CompanyID: companyID, Postable: true, Active: true}, nil
}

type fakeConfig struct {
	byKey map[string]int64
}

func (c *fakeConfig) Get(_ context.Context, companyID int64, key string) (mappings.AccountMapping, error) {
	id, ok := c.byKey[key]
	if !ok {
		return mappings.AccountMapping{}, mappings.ErrMappingNotFound
	}
	return mappings.AccountMapping{CompanyID: companyID, Key: key, ActivationID: id}, nil
}

type recordingAudit struct {
	logs []internalShared.AuditLog
}

func (a *recordingAudit) Record(_ context.Context, log internalShared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type countingBumper struct {
	bumps int
}

func (b *countingBumper) Bump(_ context.Context) error {
	b.bumps++
	return nil
}

type countingMetrics struct {
	counts map[string]int
}

func (m *countingMetrics) CountDocument(docType, action string) {
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[docType+"/"+action]++
}

const (
	actCustomer  int64 = 10
	actVATDebit  int64 = 11
	actIncome    int64 = 12
	actSupplier  int64 = 20
	actVATCredit int64 = 21
	actInventory int64 = 22
	actBank      int64 = 30
	actTax       int64 = 40
	actService   int64 = 50
)

func defaultConfig() *fakeConfig {
	return &fakeConfig{byKey: map[string]int64{
		mappings.KeySalesCustomer:     actCustomer,
		mappings.KeySalesVATDebit:     actVATDebit,
		mappings.KeySalesIncome:       actIncome,
		mappings.KeyPurchaseSupplier:  actSupplier,
		mappings.KeyPurchaseVATCredit: actVATCredit,
		mappings.KeyPurchaseInventory: actInventory,
		mappings.KeyTreasuryBank:      actBank,
		mappings.KeyWithholdingTax:    actTax,
	}}
}

type fixture struct {
	repo     *memoryRepository
	guard    *fakeGuard
	resolver *fakeResolver
	config   *fakeConfig
	audit    *recordingAudit
	bumper   *countingBumper
	metrics  *countingMetrics
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newMemoryRepository(),
		guard:    &fakeGuard{},
		resolver: &fakeResolver{inactive: make(map[int64]bool)},
		config:   defaultConfig(),
		audit:    &recordingAudit{},
		bumper:   &countingBumper{},
		metrics:  &countingMetrics{},
	}
	f.svc = NewService(f.repo, f.guard, f.resolver, f.config, f.audit, f.bumper, f.metrics, nil)
	return f
}

func saleDocument() Document {
	return Document{
		ID:           1,
		CompanyID:    1,
		Type:         ledger.DocumentTypeSale,
		Status:       StatusPending,
		Date:         time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		ThirdPartyID: 7,
		Subtotal:     amount("100.00"),
		VAT:          amount("13.00"),
		Total:        amount("113.00"),
		Description:  "Venta de mercadería",
		Lines: []DetailLine{
			{ProductID: ptr(int64(100)), Quantity: amount("2"), Amount: amount("100.00")},
		},
	}
}

// ============================================================================
// APPLY
// ============================================================================

func TestApplySalePostsBalancedEntry(t *testing.T) {
	f := newFixture()
	f.repo.stock[100] = amount("5")
	f.repo.put(saleDocument())
	ctx := context.Background()

	require.NoError(t, f.svc.Apply(ctx, 1, ledger.DocumentTypeSale, 1))

	doc, err := f.svc.Get(ctx, 1, ledger.DocumentTypeSale, 1)
	require.NoError(t, err)
	require.Equal(t, StatusApplied, doc.Status)

	lines := f.repo.linesFor(ledger.DocumentTypeSale, 1)
	require.Len(t, lines, 3)
	require.Equal(t, actCustomer, lines[0].ActivationID)
	require.True(t, lines[0].Debit.Equal(amount("113.00")))
	require.Equal(t, actIncome, lines[1].ActivationID)
	require.True(t, lines[1].Credit.Equal(amount("100.00")))
	require.Equal(t, actVATDebit, lines[2].ActivationID)
	require.True(t, lines[2].Credit.Equal(amount("13.00")))
	for _, line := range lines {
		require.Equal(t, lines[0].BatchID, line.BatchID, "all lines share one batch")
	}

	require.True(t, f.repo.stock[100].Equal(amount("3")), "sale consumes stock")
	require.True(t, f.repo.receivables[7].Equal(amount("113.00")))
	require.Equal(t, 1, f.bumper.bumps)
	require.Len(t, f.audit.logs, 1)
	require.Equal(t, "documents.apply", f.audit.logs[0].Action)
}

func TestApplyGroupsDirectDetailLinesByAccount(t *testing.T) {
	f := newFixture()
	doc := saleDocument()
	doc.Lines = []DetailLine{
		{ActivationID: ptr(actService), Amount: amount("60.00")},
		{ActivationID: ptr(actIncome), Amount: amount("30.00")},
		{ActivationID: ptr(actService), Amount: amount("10.00")},
	}
	f.repo.put(doc)

	require.NoError(t, f.svc.Apply(context.Background(), 1, ledger.DocumentTypeSale, 1))

	lines := f.repo.linesFor(ledger.DocumentTypeSale, 1)
	require.Len(t, lines, 4)
	require.Equal(t, actService, lines[1].ActivationID)
	require.True(t, lines[1].Credit.Equal(amount("70.00")), "same-account rows accumulate")
	require.Equal(t, actIncome, lines[2].ActivationID)
	require.True(t, lines[2].Credit.Equal(amount("30.00")))
}

func TestApplyPurchaseCreditsSupplierAndAddsStock(t *testing.T) {
	f := newFixture()
	doc := saleDocument()
	doc.Type = ledger.DocumentTypePurchase
	f.repo.put(doc)
	ctx := context.Background()

	require.NoError(t, f.svc.Apply(ctx, 1, ledger.DocumentTypePurchase, 1))

	lines := f.repo.linesFor(ledger.DocumentTypePurchase, 1)
	require.Len(t, lines, 3)
	require.Equal(t, actSupplier, lines[0].ActivationID)
	require.True(t, lines[0].Credit.Equal(amount("113.00")))
	require.Equal(t, actInventory, lines[1].ActivationID)
	require.True(t, lines[1].Debit.Equal(amount("100.00")))
	require.Equal(t, actVATCredit, lines[2].ActivationID)
	require.True(t, lines[2].Debit.Equal(amount("13.00")))

	require.True(t, f.repo.stock[100].Equal(amount("2")), "purchase restores stock")
	require.True(t, f.repo.payables[7].Equal(amount("113.00")))
}

func TestApplyCollectionSettlesReceivable(t *testing.T) {
	f := newFixture()
	doc := Document{
		ID:           2,
		CompanyID:    1,
		Type:         ledger.DocumentTypeCollection,
		Status:       StatusPending,
		Date:         time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		ThirdPartyID: 7,
		Total:        amount("113.00"),
	}
	f.repo.put(doc)
	f.repo.receivables[7] = amount("113.00")

	require.NoError(t, f.svc.Apply(context.Background(), 1, ledger.DocumentTypeCollection, 2))

	lines := f.repo.linesFor(ledger.DocumentTypeCollection, 2)
	require.Len(t, lines, 2)
	require.Equal(t, actBank, lines[0].ActivationID)
	require.True(t, lines[0].Debit.Equal(amount("113.00")))
	require.Equal(t, actCustomer, lines[1].ActivationID)
	require.True(t, lines[1].Credit.Equal(amount("113.00")))
	require.True(t, f.repo.receivables[7].IsZero())
}

func TestApplyWithholdingSettlesReceivableAgainstTaxAccount(t *testing.T) {
	f := newFixture()
	doc := Document{
		ID:           3,
		CompanyID:    1,
		Type:         ledger.DocumentTypeWithholding,
		Status:       StatusPending,
		Date:         time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		ThirdPartyID: 7,
		Total:        amount("10.00"),
	}
	f.repo.put(doc)
	f.repo.receivables[7] = amount("113.00")

	require.NoError(t, f.svc.Apply(context.Background(), 1, ledger.DocumentTypeWithholding, 3))

	lines := f.repo.linesFor(ledger.DocumentTypeWithholding, 3)
	require.Len(t, lines, 2)
	require.Equal(t, actTax, lines[0].ActivationID)
	require.True(t, f.repo.receivables[7].Equal(amount("103.00")))
}

func TestApplyRejectsNonPendingDocument(t *testing.T) {
	f := newFixture()
	doc := saleDocument()
	doc.Status = StatusApplied
	f.repo.put(doc)

	err := f.svc.Apply(context.Background(), 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, ErrInvalidState)
	require.Empty(t, f.repo.entryLines)
	require.Zero(t, f.bumper.bumps)
}

func TestApplyRejectsClosedPeriod(t *testing.T) {
	f := newFixture()
	f.guard.closedBefore = time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	f.repo.put(saleDocument())

	err := f.svc.Apply(context.Background(), 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, closing.ErrPeriodClosed)

	doc, getErr := f.svc.Get(context.Background(), 1, ledger.DocumentTypeSale, 1)
	require.NoError(t, getErr)
	require.Equal(t, StatusPending, doc.Status)
}

func TestApplyRejectsIntraDayTimestampOnClosingDay(t *testing.T) {
	f := newFixture()
	f.guard.closedBefore = time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
	doc := saleDocument()
	doc.Date = time.Date(2026, time.March, 31, 12, 0, 0, 0, time.UTC)
	f.repo.put(doc)

	err := f.svc.Apply(context.Background(), 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, closing.ErrPeriodClosed)
}

func TestApplyRejectsUnbalancedTotals(t *testing.T) {
	f := newFixture()
	doc := saleDocument()
	// Header total disagrees with lines plus VAT; the posting cannot balance.
	doc.Total = amount("120.00")
	f.repo.put(doc)

	err := f.svc.Apply(context.Background(), 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Empty(t, f.repo.entryLines)
	require.True(t, f.repo.receivables[7].IsZero(), "rollback leaves no side effects")
}

func TestApplyRejectsInactiveAccount(t *testing.T) {
	f := newFixture()
	f.resolver.inactive[actVATDebit] = true
	f.repo.put(saleDocument())

	err := f.svc.Apply(context.Background(), 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, shared.ErrAccountUnavailable)
	require.Empty(t, f.repo.entryLines)
}

func TestApplyRejectsMissingMapping(t *testing.T) {
	f := newFixture()
	delete(f.config.byKey, mappings.KeySalesVATDebit)
	f.repo.put(saleDocument())

	err := f.svc.Apply(context.Background(), 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, mappings.ErrMappingNotFound)
}

func TestApplyRejectsSaleWithInsufficientStock(t *testing.T) {
	f := newFixture()
	f.repo.stock[100] = amount("1")
	f.repo.put(saleDocument())

	err := f.svc.Apply(context.Background(), 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
	require.Empty(t, f.repo.entryLines, "stock failure rolls back the entry lines")
	require.True(t, f.repo.stock[100].Equal(amount("1")))
}

func TestApplyUnknownDocument(t *testing.T) {
	f := newFixture()
	require.ErrorIs(t, f.svc.Apply(context.Background(), 1, ledger.DocumentTypeSale, 99), ErrNotFound)
	require.ErrorIs(t, f.svc.Apply(context.Background(), 1, "INVOICE", 1), ErrNotFound)
}

// ============================================================================
// CANCEL
// ============================================================================

func TestCancelReversesApply(t *testing.T) {
	f := newFixture()
	f.repo.stock[100] = amount("5")
	f.repo.put(saleDocument())
	ctx := context.Background()

	require.NoError(t, f.svc.Apply(ctx, 1, ledger.DocumentTypeSale, 1))
	require.NoError(t, f.svc.Cancel(ctx, 1, ledger.DocumentTypeSale, 1))

	doc, err := f.svc.Get(ctx, 1, ledger.DocumentTypeSale, 1)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, doc.Status)
	require.Empty(t, f.repo.linesFor(ledger.DocumentTypeSale, 1), "cancel removes the entry lines")
	require.True(t, f.repo.stock[100].Equal(amount("5")), "cancel restores stock")
	require.True(t, f.repo.receivables[7].IsZero(), "cancel reverses the receivable")
	require.Equal(t, 2, f.bumper.bumps)
}

func TestCancelRequiresAppliedStatus(t *testing.T) {
	f := newFixture()
	f.repo.put(saleDocument())

	err := f.svc.Cancel(context.Background(), 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelRejectsClosedPeriod(t *testing.T) {
	f := newFixture()
	f.repo.stock[100] = amount("5")
	f.repo.put(saleDocument())
	ctx := context.Background()

	require.NoError(t, f.svc.Apply(ctx, 1, ledger.DocumentTypeSale, 1))
	f.guard.closedBefore = time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)

	err := f.svc.Cancel(ctx, 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, closing.ErrPeriodClosed)
	require.Len(t, f.repo.linesFor(ledger.DocumentTypeSale, 1), 3, "lines survive a refused cancel")
}

func TestCancelIsTerminal(t *testing.T) {
	f := newFixture()
	f.repo.stock[100] = amount("5")
	f.repo.put(saleDocument())
	ctx := context.Background()

	require.NoError(t, f.svc.Apply(ctx, 1, ledger.DocumentTypeSale, 1))
	require.NoError(t, f.svc.Cancel(ctx, 1, ledger.DocumentTypeSale, 1))

	require.ErrorIs(t, f.svc.Apply(ctx, 1, ledger.DocumentTypeSale, 1), ErrInvalidState)
	require.ErrorIs(t, f.svc.Cancel(ctx, 1, ledger.DocumentTypeSale, 1), ErrInvalidState)
}

// ============================================================================
// DELETE
// ============================================================================

func TestDeleteRemovesPendingDocument(t *testing.T) {
	f := newFixture()
	f.repo.put(saleDocument())
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, 1, ledger.DocumentTypeSale, 1))
	_, err := f.svc.Get(ctx, 1, ledger.DocumentTypeSale, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRejectsAppliedDocument(t *testing.T) {
	f := newFixture()
	f.repo.stock[100] = amount("5")
	f.repo.put(saleDocument())
	ctx := context.Background()

	require.NoError(t, f.svc.Apply(ctx, 1, ledger.DocumentTypeSale, 1))
	require.ErrorIs(t, f.svc.Delete(ctx, 1, ledger.DocumentTypeSale, 1), ErrInvalidState)
}

func TestLifecycleCountsDocumentOperations(t *testing.T) {
	f := newFixture()
	f.repo.stock[100] = amount("5")
	f.repo.put(saleDocument())
	ctx := context.Background()

	require.NoError(t, f.svc.Apply(ctx, 1, ledger.DocumentTypeSale, 1))
	require.NoError(t, f.svc.Cancel(ctx, 1, ledger.DocumentTypeSale, 1))

	pending := saleDocument()
	pending.ID = 2
	f.repo.put(pending)
	require.NoError(t, f.svc.Delete(ctx, 1, ledger.DocumentTypeSale, 2))

	require.Equal(t, 1, f.metrics.counts["SALE/apply"])
	require.Equal(t, 1, f.metrics.counts["SALE/cancel"])
	require.Equal(t, 1, f.metrics.counts["SALE/delete"])

	// Failed transitions must not count.
	require.ErrorIs(t, f.svc.Apply(ctx, 1, ledger.DocumentTypeSale, 99), ErrNotFound)
	require.Equal(t, 1, f.metrics.counts["SALE/apply"])
}
