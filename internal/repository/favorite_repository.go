package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/tour-member/pkg/database"
)

// FavoriteRepository provides data access for member wishlists.
type FavoriteRepository struct {
	pool PoolInterface
}

// NewFavoriteRepository creates a new FavoriteRepository with the given pool.
func NewFavoriteRepository(pool *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// NewFavoriteRepositoryWithPool creates a new FavoriteRepository with a custom pool interface.
func NewFavoriteRepositoryWithPool(pool PoolInterface) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

// ListIDs returns the member's favorite tour ids in insertion order.
// Returns an empty slice (not nil) when the member has none.
func (r *FavoriteRepository) ListIDs(ctx context.Context, memberID int64) ([]int64, error) {
	query := `SELECT tour_id FROM favorites WHERE member_id = $1 ORDER BY created_at, tour_id`

	rows, err := r.pool.Query(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("list favorites for member %d: %w", memberID, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite tour_id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorite rows: %w", err)
	}
	return ids, nil
}

// Lock serializes toggles of one (member, tour) pair until tx ends.
func (r *FavoriteRepository) Lock(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) error {
	query := `SELECT pg_advisory_xact_lock(hashtextextended(format('favorite:%s:%s', $1::bigint, $2::bigint), 0))`

	if _, err := tx.Exec(ctx, query, memberID, tourID); err != nil {
		return fmt.Errorf("lock favorite %d for member %d: %w", tourID, memberID, err)
	}
	return nil
}

// Delete removes a favorite and reports whether one existed.
func (r *FavoriteRepository) Delete(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) (bool, error) {
	query := `DELETE FROM favorites WHERE member_id = $1 AND tour_id = $2`

	tag, err := tx.Exec(ctx, query, memberID, tourID)
	if err != nil {
		return false, fmt.Errorf("delete favorite %d for member %d: %w", tourID, memberID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Insert adds a favorite. Inserting an existing one is a no-op.
func (r *FavoriteRepository) Insert(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) error {
	query := `
INSERT INTO favorites (member_id, tour_id) VALUES ($1, $2)
ON CONFLICT (member_id, tour_id) DO NOTHING`

	if _, err := tx.Exec(ctx, query, memberID, tourID); err != nil {
		return fmt.Errorf("insert favorite %d for member %d: %w", tourID, memberID, err)
	}
	return nil
}
