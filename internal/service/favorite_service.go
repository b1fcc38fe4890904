package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/tour-member/pkg/database"
)

// FavoriteRepositoryInterface defines the interface for favorite data access.
type FavoriteRepositoryInterface interface {
	ListIDs(ctx context.Context, memberID int64) ([]int64, error)
	Lock(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) error
	Delete(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) (bool, error)
	Insert(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) error
}

// FavoriteService provides business logic for member wishlists.
type FavoriteService struct {
	pool TxBeginner
	repo FavoriteRepositoryInterface
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(pool *pgxpool.Pool, repo FavoriteRepositoryInterface) *FavoriteService {
	return &FavoriteService{pool: pool, repo: repo}
}

// NewFavoriteServiceWithTxBeginner creates a FavoriteService with a custom TxBeginner.
// Primarily used for testing.
func NewFavoriteServiceWithTxBeginner(pool TxBeginner, repo FavoriteRepositoryInterface) *FavoriteService {
	return &FavoriteService{pool: pool, repo: repo}
}

// IDs returns the member's favorite tour ids.
func (s *FavoriteService) IDs(ctx context.Context, memberID int64) ([]int64, error) {
	ids, err := s.repo.ListIDs(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return ids, nil
}

// Toggle flips a tour in the member's wishlist and returns whether it is a
// favorite afterwards.
func (s *FavoriteService) Toggle(ctx context.Context, memberID, tourID int64) (bool, error) {
	if memberID <= 0 || tourID <= 0 {
		return false, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	// Concurrent toggles of the same pair must see each other's commit.
	if err := s.repo.Lock(ctx, tx, memberID, tourID); err != nil {
		return false, fmt.Errorf("lock favorite: %w", err)
	}

	deleted, err := s.repo.Delete(ctx, tx, memberID, tourID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	if !deleted {
		if err := s.repo.Insert(ctx, tx, memberID, tourID); err != nil {
			return false, fmt.Errorf("insert favorite: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return !deleted, nil
}
