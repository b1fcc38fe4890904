package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/tour-member/internal/service"
	"github.com/fairyhunter13/tour-member/pkg/database"
)

const claimPrimaryKey = "promotion_claims_pkey"

// ClaimRepository provides data access for promotion claims using pgx.
// Every method runs on the caller's transaction.
type ClaimRepository struct{}

// NewClaimRepository creates a new ClaimRepository.
func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{}
}

// GetCode returns the member's claim code for a promotion, or "" when the
// member has not claimed it.
func (r *ClaimRepository) GetCode(ctx context.Context, tx database.TxQuerier, memberID, promotionID int64) (string, error) {
	query := `SELECT claim_code FROM promotion_claims WHERE member_id = $1 AND promotion_id = $2`

	var code string
	err := tx.QueryRow(ctx, query, memberID, promotionID).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get claim code for member %d promotion %d: %w", memberID, promotionID, err)
	}
	return code, nil
}

// Insert inserts a new claim record within a transaction.
// Returns service.ErrAlreadyClaimed if the member has already claimed this promotion
// and service.ErrClaimCodeConflict if the code is taken.
func (r *ClaimRepository) Insert(ctx context.Context, tx database.TxQuerier, memberID, promotionID int64, code string) error {
	query := `INSERT INTO promotion_claims (member_id, promotion_id, claim_code) VALUES ($1, $2, $3)`

	_, err := tx.Exec(ctx, query, memberID, promotionID, code)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == claimPrimaryKey {
				return service.ErrAlreadyClaimed
			}
			return service.ErrClaimCodeConflict
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}
