package reports

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/coa"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/ledger"
	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
)

type stubReader struct {
	activity      []ledger.AccountActivity
	lines         []ledger.Line
	activityCalls int
}

func (r *stubReader) AccountActivity(_ context.Context, _ int64, _, _ time.Time) ([]ledger.AccountActivity, error) {
	r.activityCalls++
	return r.activity, nil
}

func (r *stubReader) AccountActivityAsOf(_ context.Context, _ int64, _ time.Time) ([]ledger.AccountActivity, error) {
	r.activityCalls++
	return r.activity, nil
}

func (r *stubReader) Lines(_ context.Context, _ ledger.LineFilter) ([]ledger.Line, error) {
	return r.lines, nil
}

func newTestService(t *testing.T, reader *stubReader) (*Service, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	return NewService(reader, cache, nil), cache
}

func TestTrialBalanceValidatesRange(t *testing.T) {
	svc, _ := newTestService(t, &stubReader{})
	start := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.TrialBalance(context.Background(), 1, start, end)
	require.ErrorIs(t, err, shared.ErrInvalidRange)

	_, err = svc.Journal(context.Background(), 1, time.Time{}, end)
	require.ErrorIs(t, err, shared.ErrInvalidRange)

	_, err = svc.BalanceSheet(context.Background(), 1, time.Time{})
	require.ErrorIs(t, err, shared.ErrInvalidRange)
}

func TestTrialBalanceUsesCacheUntilBump(t *testing.T) {
	reader := &stubReader{activity: []ledger.AccountActivity{{
		ActivationID: 1,
		Code:         "1101",
		Name:         "Caja",
		Type:         coa.AccountTypeAsset,
		Group:        coa.GroupCurrentAsset,
		Opening:      amount("0"),
		Debit:        amount("100.00"),
		Credit:       amount("0"),
	}}}
	svc, cache := newTestService(t, reader)
	ctx := context.Background()
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	first, err := svc.TrialBalance(ctx, 1, start, end)
	require.NoError(t, err)
	require.Len(t, first.Rows, 1)
	require.Equal(t, 1, reader.activityCalls)

	second, err := svc.TrialBalance(ctx, 1, start, end)
	require.NoError(t, err)
	require.Equal(t, 1, reader.activityCalls, "second read must come from cache")
	require.True(t, second.TotalDebit.Equal(first.TotalDebit))

	require.NoError(t, cache.Bump(ctx))

	_, err = svc.TrialBalance(ctx, 1, start, end)
	require.NoError(t, err)
	require.Equal(t, 2, reader.activityCalls, "bump must invalidate the cached report")
}

func TestListenForInvalidationAppliesPublishedVersion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, cache.ListenForInvalidation(ctx, ""))

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), ver)

	require.NoError(t, client.Publish(ctx, "ledger.bump", "7").Err())
	require.Eventually(t, func() bool {
		current, err := cache.Version(context.Background())
		return err == nil && current == 7
	}, time.Second, 10*time.Millisecond, "published version must fast-forward the cache")
}

func TestIncomeStatementRoundTripsThroughCache(t *testing.T) {
	reader := &stubReader{activity: []ledger.AccountActivity{
		{ActivationID: 1, Code: "5101", Name: "Ventas", Type: coa.AccountTypeOperatingIncome, Group: coa.GroupResult, Opening: amount("0"), Debit: amount("0"), Credit: amount("1000.00")},
		{ActivationID: 2, Code: "4101", Name: "Costo", Type: coa.AccountTypeCost, Group: coa.GroupResult, Opening: amount("0"), Debit: amount("600.00"), Credit: amount("0")},
	}}
	svc, _ := newTestService(t, reader)
	ctx := context.Background()
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)

	is, err := svc.IncomeStatement(ctx, 1, start, end)
	require.NoError(t, err)
	require.True(t, is.NetIncome.Equal(amount("260.40")))

	cached, err := svc.IncomeStatement(ctx, 1, start, end)
	require.NoError(t, err)
	require.True(t, cached.NetIncome.Equal(amount("260.40")), "decimal fields must survive the cache round trip")
	require.True(t, cached.LegalReserve.Equal(amount("28.00")))
}

func TestServiceWorksWithoutRedis(t *testing.T) {
	reader := &stubReader{activity: []ledger.AccountActivity{{
		ActivationID: 1,
		Code:         "1101",
		Name:         "Caja",
		Type:         coa.AccountTypeAsset,
		Group:        coa.GroupCurrentAsset,
		Opening:      amount("50.00"),
		Debit:        amount("0"),
		Credit:       amount("0"),
	}}}
	svc := NewService(reader, nil, nil)
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)

	tb, err := svc.TrialBalance(context.Background(), 1, start, end)
	require.NoError(t, err)
	require.Len(t, tb.Rows, 1)
}
