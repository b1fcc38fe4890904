package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReadRepository records which promotions a member has opened.
type ReadRepository struct {
	pool PoolInterface
}

// NewReadRepository creates a new ReadRepository with the given pool.
func NewReadRepository(pool *pgxpool.Pool) *ReadRepository {
	return &ReadRepository{pool: pool}
}

// NewReadRepositoryWithPool creates a new ReadRepository with a custom pool interface.
func NewReadRepositoryWithPool(pool PoolInterface) *ReadRepository {
	return &ReadRepository{pool: pool}
}

// MarkRead records that the member opened the promotion. Repeated calls keep
// the first read_at.
func (r *ReadRepository) MarkRead(ctx context.Context, memberID, promotionID int64) error {
	query := `
INSERT INTO promotion_reads (member_id, promotion_id) VALUES ($1, $2)
ON CONFLICT (member_id, promotion_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, memberID, promotionID); err != nil {
		return fmt.Errorf("mark promotion %d read for member %d: %w", promotionID, memberID, err)
	}
	return nil
}

// MarkAllRead marks every active promotion read for the member and returns how
// many were newly marked.
func (r *ReadRepository) MarkAllRead(ctx context.Context, memberID int64) (int64, error) {
	query := `
INSERT INTO promotion_reads (member_id, promotion_id)
SELECT $1, p.id FROM promotions p WHERE p.is_active
ON CONFLICT (member_id, promotion_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, memberID)
	if err != nil {
		return 0, fmt.Errorf("mark all read for member %d: %w", memberID, err)
	}
	return tag.RowsAffected(), nil
}
