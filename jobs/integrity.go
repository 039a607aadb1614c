package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
	"github.com/nubixconta/nubixconta-backend/internal/observability"
)

// IntegrityScanner is the ledger surface the scan needs.
type IntegrityScanner interface {
	UnbalancedDocuments(ctx context.Context, companyID int64) ([]ledger.DocumentRef, error)
}

// IntegrityChecker scans the unified ledger for journal entry sets whose
// debits and credits diverge. Any hit means a posting-rule defect slipped
// past validation, so every one is logged at error level.
type IntegrityChecker struct {
	scanner IntegrityScanner
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewIntegrityChecker constructs the checker. metrics may be nil.
func NewIntegrityChecker(scanner IntegrityScanner, metrics *observability.Metrics, logger *slog.Logger) *IntegrityChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityChecker{scanner: scanner, metrics: metrics, logger: logger}
}

// Run executes one scan over the requested scope.
func (c *IntegrityChecker) Run(ctx context.Context, companyID int64) (int, error) {
	refs, err := c.scanner.UnbalancedDocuments(ctx, companyID)
	if err != nil {
		return 0, err
	}
	for _, ref := range refs {
		c.logger.Error("unbalanced journal entry set",
			slog.Int64("company_id", ref.CompanyID),
			slog.String("document_type", string(ref.DocumentType)),
			slog.Int64("document_id", ref.DocumentID),
			slog.String("debit", ref.Debit.String()),
			slog.String("credit", ref.Credit.String()))
	}
	c.metrics.SetUnbalancedDocuments(len(refs))
	c.logger.Info("ledger integrity scan finished",
		slog.Int64("company_id", companyID),
		slog.Int("unbalanced", len(refs)))
	return len(refs), nil
}

// HandleTask adapts the checker to the Asynq handler contract.
func (c *IntegrityChecker) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := c.Run(ctx, payload.CompanyID)
	return err
}
