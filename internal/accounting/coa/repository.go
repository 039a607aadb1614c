package coa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
)

// Repository encapsulates DB access for the chart-of-accounts registry.
type Repository interface {
	ResolveActivation(ctx context.Context, companyID, activationID int64) (ResolvedAccount, error)
	ListActivations(ctx context.Context, companyID int64) ([]ResolvedAccount, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const resolvedColumns = `aa.id, aa.company_id, aa.account_id,
COALESCE(aa.code, a.code), COALESCE(aa.name, a.name),
a.type, a.statement_group, a.postable, aa.active`

func (r *repository) ResolveActivation(ctx context.Context, companyID, activationID int64) (ResolvedAccount, error) {
	row := r.db.QueryRow(ctx, `SELECT `+resolvedColumns+`
FROM account_activations aa
JOIN accounts a ON a.id = aa.account_id
WHERE aa.company_id=$1 AND aa.id=$2`, companyID, activationID)
	var acc ResolvedAccount
	err := row.Scan(&acc.ActivationID, &acc.CompanyID, &acc.AccountID, &acc.Code, &acc.Name,
		&acc.Type, &acc.Group, &acc.Postable, &acc.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ResolvedAccount{}, shared.ErrNotFound
		}
		return ResolvedAccount{}, err
	}
	return acc, nil
}

func (r *repository) ListActivations(ctx context.Context, companyID int64) ([]ResolvedAccount, error) {
	rows, err := r.db.Query(ctx, `SELECT `+resolvedColumns+`
FROM account_activations aa
JOIN accounts a ON a.id = aa.account_id
WHERE aa.company_id=$1
ORDER BY COALESCE(aa.code, a.code)`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []ResolvedAccount
	for rows.Next() {
		var acc ResolvedAccount
		if err := rows.Scan(&acc.ActivationID, &acc.CompanyID, &acc.AccountID, &acc.Code, &acc.Name,
			&acc.Type, &acc.Group, &acc.Postable, &acc.Active); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}
