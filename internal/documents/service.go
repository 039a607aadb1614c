package documents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/coa"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/mappings"
	internalShared "github.com/nubixconta/nubixconta-backend/internal/shared"
)

// PeriodGuard vetoes mutations dated inside a closed period.
type PeriodGuard interface {
	EnsureOpen(ctx context.Context, companyID int64, date time.Time) error
}

// AccountResolver resolves activations and rejects unavailable accounts.
type AccountResolver interface {
	ResolvePostable(ctx context.Context, companyID, activationID int64) (coa.ResolvedAccount, error)
}

// PostingConfig resolves the fixed accounts each family posts to.
type PostingConfig interface {
	Get(ctx context.Context, companyID int64, key string) (mappings.AccountMapping, error)
}

// AuditPort records lifecycle transitions; failures never abort the transition.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CacheBumper invalidates cached reports after a committed transition.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// LifecycleMetrics counts committed lifecycle transitions.
type LifecycleMetrics interface {
	CountDocument(docType, action string)
}

// Service drives the shared document state machine for every family.
type Service struct {
	repo     Repository
	guard    PeriodGuard
	accounts AccountResolver
	config   PostingConfig
	audit    AuditPort
	cache    CacheBumper
	metrics  LifecycleMetrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, guard PeriodGuard, accounts AccountResolver, config PostingConfig, audit AuditPort, cache CacheBumper, metrics LifecycleMetrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		guard:    guard,
		accounts: accounts,
		config:   config,
		audit:    audit,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns the document as the engine sees it.
func (s *Service) Get(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) (Document, error) {
	if !docType.Valid() {
		return Document{}, ErrNotFound
	}
	return s.repo.GetDocument(ctx, companyID, docType, id)
}

// Apply transitions a PENDING document to APPLIED: it builds the document's
// journal entry, checks the double-entry invariant, persists the lines, and
// applies every collaborator side effect, all inside one transaction.
func (s *Service) Apply(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) error {
	if !docType.Valid() {
		return ErrNotFound
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, companyID, docType, id)
		if err != nil {
			return err
		}
		if doc.Status != StatusPending {
			return ErrInvalidState
		}
		if err := s.guard.EnsureOpen(ctx, companyID, doc.Date); err != nil {
			return err
		}
		p, err := s.buildPosting(ctx, doc)
		if err != nil {
			return err
		}
		if err := ledger.ValidateBalanced(p.lines); err != nil {
			// Posting rules balance by construction; reaching this
			// means a configuration or document-total defect.
			s.logger.Error("rejected unbalanced posting",
				slog.String("document_type", string(docType)),
				slog.Int64("document_id", id),
				slog.Int64("company_id", companyID),
				slog.Any("error", err))
			return err
		}
		if err := tx.InsertEntryLines(ctx, p.lines); err != nil {
			return err
		}
		if err := s.applyEffects(ctx, tx, doc, p, false); err != nil {
			return err
		}
		return tx.UpdateStatus(ctx, companyID, docType, id, StatusApplied)
	})
	if err != nil {
		return err
	}
	s.afterCommit(ctx, companyID, docType, id, "apply")
	return nil
}

// Cancel transitions an APPLIED document to CANCELLED: it deletes every
// entry line the document owns and reverses the side effects Apply made,
// with the same all-or-nothing guarantee.
func (s *Service) Cancel(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) error {
	if !docType.Valid() {
		return ErrNotFound
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, companyID, docType, id)
		if err != nil {
			return err
		}
		if doc.Status != StatusApplied {
			return ErrInvalidState
		}
		if err := s.guard.EnsureOpen(ctx, companyID, doc.Date); err != nil {
			return err
		}
		// The document's business fields are immutable while APPLIED, so
		// rebuilding the posting yields exactly the effects Apply made.
		p, err := s.buildPosting(ctx, doc)
		if err != nil {
			return err
		}
		if _, err := tx.DeleteEntryLines(ctx, companyID, docType, id); err != nil {
			return err
		}
		if err := s.applyEffects(ctx, tx, doc, p, true); err != nil {
			return err
		}
		return tx.UpdateStatus(ctx, companyID, docType, id, StatusCancelled)
	})
	if err != nil {
		return err
	}
	s.afterCommit(ctx, companyID, docType, id, "cancel")
	return nil
}

// Delete removes a PENDING document outright. No entry lines exist yet, so
// the ledger is never touched.
func (s *Service) Delete(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64) error {
	if !docType.Valid() {
		return ErrNotFound
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		doc, err := tx.GetDocumentForUpdate(ctx, companyID, docType, id)
		if err != nil {
			return err
		}
		if doc.Status != StatusPending {
			return ErrInvalidState
		}
		return tx.DeleteDocument(ctx, companyID, docType, id)
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.CountDocument(string(docType), "delete")
	}
	return nil
}

func (s *Service) applyEffects(ctx context.Context, tx TxRepository, doc Document, p posting, reverse bool) error {
	for _, m := range p.stock {
		if reverse {
			m.Qty = m.Qty.Neg()
		}
		if err := tx.ApplyStockMovement(ctx, m); err != nil {
			return err
		}
	}
	receivable, payable := p.receivable, p.payable
	if reverse {
		receivable = receivable.Neg()
		payable = payable.Neg()
	}
	if !receivable.IsZero() {
		if err := tx.AdjustReceivable(ctx, doc.CompanyID, doc.ThirdPartyID, receivable); err != nil {
			return err
		}
	}
	if !payable.IsZero() {
		if err := tx.AdjustPayable(ctx, doc.CompanyID, doc.ThirdPartyID, payable); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) afterCommit(ctx context.Context, companyID int64, docType ledger.DocumentType, id int64, action string) {
	if s.metrics != nil {
		s.metrics.CountDocument(string(docType), action)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			CompanyID: companyID,
			Action:    "documents." + action,
			Entity:    string(docType),
			EntityID:  fmt.Sprintf("%d", id),
			At:        s.now(),
		})
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("report cache bump failed", slog.Any("error", err))
		}
	}
}
