package coa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
	_ "github.com/nubixconta/nubixconta-backend/testing"
)

type stubRepository struct {
	accounts map[int64]ResolvedAccount
}

func (r *stubRepository) ResolveActivation(_ context.Context, _ int64, activationID int64) (ResolvedAccount, error) {
	acc, ok := r.accounts[activationID]
	if !ok {
		return ResolvedAccount{}, shared.ErrNotFound
	}
	return acc, nil
}

func (r *stubRepository) ListActivations(_ context.Context, _ int64) ([]ResolvedAccount, error) {
	var out []ResolvedAccount
	for _, acc := range r.accounts {
		out = append(out, acc)
	}
	return out, nil
}

func TestResolvePostable(t *testing.T) {
	svc := NewService(&stubRepository{accounts: map[int64]ResolvedAccount{
		1: {ActivationID: 1, Code: "1101", Active: true, Postable: true},
		2: {ActivationID: 2, Code: "1100", Active: true, Postable: false},
		3: {ActivationID: 3, Code: "1102", Active: false, Postable: true},
	}})
	ctx := context.Background()

	acc, err := svc.ResolvePostable(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, "1101", acc.Code)

	_, err = svc.ResolvePostable(ctx, 1, 2)
	require.ErrorIs(t, err, shared.ErrAccountUnavailable, "summary accounts never receive entries")

	_, err = svc.ResolvePostable(ctx, 1, 3)
	require.ErrorIs(t, err, shared.ErrAccountUnavailable, "deactivated accounts never receive entries")

	_, err = svc.ResolvePostable(ctx, 1, 99)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDebtorNatured(t *testing.T) {
	require.True(t, AccountTypeAsset.DebtorNatured())
	require.True(t, AccountTypeCost.DebtorNatured())
	require.True(t, AccountTypeAdminExpense.DebtorNatured())
	require.False(t, AccountTypeLiability.DebtorNatured())
	require.False(t, AccountTypeEquity.DebtorNatured())
	require.False(t, AccountTypeOperatingIncome.DebtorNatured())
}
