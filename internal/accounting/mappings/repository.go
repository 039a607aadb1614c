package mappings

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nubixconta/nubixconta-backend/internal/accounting/shared"
)

// ErrMappingNotFound indicates no account is configured for the key.
var ErrMappingNotFound = errors.New("accounting: account mapping not found")

type Repository interface {
	Get(ctx context.Context, companyID int64, key string) (AccountMapping, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// Get resolves the configured activation for the given company and key.
func (r *repository) Get(ctx context.Context, companyID int64, key string) (AccountMapping, error) {
	if companyID == 0 || strings.TrimSpace(key) == "" {
		return AccountMapping{}, shared.ErrNotFound
	}
	var mapping AccountMapping
	err := r.db.QueryRow(ctx, `SELECT company_id, key, activation_id, created_at, updated_at
FROM account_mappings WHERE company_id=$1 AND key=$2`, companyID, key).
		Scan(&mapping.CompanyID, &mapping.Key, &mapping.ActivationID, &mapping.CreatedAt, &mapping.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountMapping{}, ErrMappingNotFound
		}
		return AccountMapping{}, err
	}
	return mapping, nil
}
