package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/tour-member/pkg/database"
)

// ClaimCodePrefix starts every issued claim code.
const ClaimCodePrefix = "TM-"

// ClaimRepositoryInterface defines the interface for claim data access.
type ClaimRepositoryInterface interface {
	GetCode(ctx context.Context, tx database.TxQuerier, memberID, promotionID int64) (string, error)
	Insert(ctx context.Context, tx database.TxQuerier, memberID, promotionID int64, code string) error
}

// ClaimService issues promotion claim codes.
type ClaimService struct {
	pool      TxBeginner
	promoRepo PromotionRepositoryInterface
	claimRepo ClaimRepositoryInterface
	now       func() time.Time
	newCode   func() string
}

// NewClaimService creates a new ClaimService with the given pool and repositories.
func NewClaimService(pool *pgxpool.Pool, promoRepo PromotionRepositoryInterface, claimRepo ClaimRepositoryInterface) *ClaimService {
	return NewClaimServiceWithTxBeginner(pool, promoRepo, claimRepo)
}

// NewClaimServiceWithTxBeginner creates a ClaimService with a custom TxBeginner.
// Primarily used for testing.
func NewClaimServiceWithTxBeginner(pool TxBeginner, promoRepo PromotionRepositoryInterface, claimRepo ClaimRepositoryInterface) *ClaimService {
	return &ClaimService{
		pool:      pool,
		promoRepo: promoRepo,
		claimRepo: claimRepo,
		now:       time.Now,
		newCode:   generateClaimCode,
	}
}

// Claim atomically claims a promotion for a member and returns the code.
// Uses SELECT FOR UPDATE to lock the promotion row during the transaction.
// A member who already holds a code gets that code back.
// Returns:
//   - ErrNotificationNotFound if the promotion doesn't exist or is inactive
//   - ErrPromotionNotStarted, ErrPromotionExpired outside the active window
//   - ErrPromotionExhausted if remaining_claims is zero
func (s *ClaimService) Claim(ctx context.Context, memberID, promotionID int64) (string, error) {
	if memberID <= 0 || promotionID <= 0 {
		return "", ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// 1. Lock the promotion row (SELECT FOR UPDATE)
	promo, err := s.promoRepo.GetForUpdate(ctx, tx, promotionID)
	if err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return "", ErrNotificationNotFound
		}
		return "", fmt.Errorf("get promotion for update: %w", err)
	}

	// 2. Same member retrying gets the stored code
	existing, err := s.claimRepo.GetCode(ctx, tx, memberID, promotionID)
	if err != nil {
		return "", fmt.Errorf("get existing claim: %w", err)
	}
	if existing != "" {
		return existing, nil
	}

	// 3. Check window and quota
	now := s.now()
	switch {
	case promo.Upcoming(now):
		return "", ErrPromotionNotStarted
	case promo.Expired(now):
		return "", ErrPromotionExpired
	case promo.Exhausted():
		return "", ErrPromotionExhausted
	}

	// 4. Insert claim (primary key catches duplicates)
	code := s.newCode()
	if err := s.claimRepo.Insert(ctx, tx, memberID, promotionID, code); err != nil {
		if errors.Is(err, ErrAlreadyClaimed) {
			return "", ErrAlreadyClaimed
		}
		return "", fmt.Errorf("insert claim: %w", err)
	}

	// 5. Decrement quota
	if promo.RemainingClaims != nil {
		if err := s.promoRepo.DecrementRemaining(ctx, tx, promotionID); err != nil {
			return "", fmt.Errorf("decrement remaining: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return code, nil
}

func generateClaimCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ClaimCodePrefix + strings.ToUpper(raw[:12])
}
