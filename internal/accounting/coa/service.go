package coa

import (
	"context"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
)

// Service exposes registry lookups to the rest of the system.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the activation joined with its account.
func (s *Service) Resolve(ctx context.Context, companyID, activationID int64) (ResolvedAccount, error) {
	return s.repo.ResolveActivation(ctx, companyID, activationID)
}

// ResolvePostable resolves an activation and rejects accounts that cannot
// receive entries, either because the activation is inactive or because the
// underlying account is not a postable leaf.
func (s *Service) ResolvePostable(ctx context.Context, companyID, activationID int64) (ResolvedAccount, error) {
	acc, err := s.repo.ResolveActivation(ctx, companyID, activationID)
	if err != nil {
		return ResolvedAccount{}, err
	}
	if !acc.Active || !acc.Postable {
		return ResolvedAccount{}, shared.ErrAccountUnavailable
	}
	return acc, nil
}

// List returns every activation for the company ordered by display code.
func (s *Service) List(ctx context.Context, companyID int64) ([]ResolvedAccount, error) {
	return s.repo.ListActivations(ctx, companyID)
}
