package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/internal/service"
	"github.com/fairyhunter13/tour-member/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// memberNotificationSelect projects a promotion as seen by member $1.
const memberNotificationSelect = `
SELECT p.id, p.type, p.title,
       COALESCE(p.description, ''), COALESCE(p.how_to_use, ''), COALESCE(p.banner, ''),
       p.starts_at, p.ends_at, p.max_claims, p.remaining_claims,
       r.member_id IS NOT NULL, c.member_id IS NOT NULL, COALESCE(c.claim_code, ''),
       p.created_at
FROM promotions p
LEFT JOIN promotion_reads r ON r.promotion_id = p.id AND r.member_id = $1
LEFT JOIN promotion_claims c ON c.promotion_id = p.id AND c.member_id = $1`

// PromotionRepository provides data access for promotions using pgx.
type PromotionRepository struct {
	pool PoolInterface
}

// NewPromotionRepository creates a new PromotionRepository with the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// NewPromotionRepositoryWithPool creates a new PromotionRepository with a custom pool interface.
// This is primarily used for testing.
func NewPromotionRepositoryWithPool(pool PoolInterface) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// List returns the active promotions for a member, newest first, optionally
// filtered by type. Returns an empty slice (not nil) when nothing matches.
func (r *PromotionRepository) List(ctx context.Context, memberID int64, typ string) ([]model.Notification, error) {
	query := memberNotificationSelect + `
WHERE p.is_active AND ($2 = '' OR p.type = $2)
ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.pool.Query(ctx, query, memberID, typ)
	if err != nil {
		return nil, fmt.Errorf("list promotions for member %d: %w", memberID, err)
	}
	defer rows.Close()

	items := []model.Notification{}
	for rows.Next() {
		n, err := scanMemberNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		items = append(items, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate promotion rows: %w", err)
	}
	return items, nil
}

// UnreadCount counts active promotions the member has not opened.
func (r *PromotionRepository) UnreadCount(ctx context.Context, memberID int64) (int, error) {
	query := `
SELECT COUNT(*) FROM promotions p
WHERE p.is_active AND NOT EXISTS (
    SELECT 1 FROM promotion_reads r WHERE r.promotion_id = p.id AND r.member_id = $1
)`

	var count int
	if err := r.pool.QueryRow(ctx, query, memberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread for member %d: %w", memberID, err)
	}
	return count, nil
}

// GetByID retrieves one active promotion as seen by the member.
// Returns nil, nil if the promotion is not found (service layer handles this).
func (r *PromotionRepository) GetByID(ctx context.Context, memberID, id int64) (*model.Notification, error) {
	query := memberNotificationSelect + `
WHERE p.id = $2 AND p.is_active`

	n, err := scanMemberNotification(r.pool.QueryRow(ctx, query, memberID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promotion %d: %w", id, err)
	}
	return n, nil
}

// GetForUpdate retrieves a promotion with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrNotificationNotFound if the promotion doesn't exist or is inactive.
func (r *PromotionRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Notification, error) {
	query := `
SELECT id, type, title, starts_at, ends_at, max_claims, remaining_claims, created_at
FROM promotions WHERE id = $1 AND is_active FOR UPDATE`

	var n model.Notification
	var typ string
	err := tx.QueryRow(ctx, query, id).Scan(
		&n.ID,
		&typ,
		&n.Title,
		&n.StartsAt,
		&n.EndsAt,
		&n.MaxClaims,
		&n.RemainingClaims,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("get promotion for update %d: %w", id, err)
	}
	n.Type = model.NotificationType(typ)
	return &n, nil
}

// DecrementRemaining decrements remaining_claims by 1 when the promotion has a quota.
// Must be called within a transaction after locking the row.
func (r *PromotionRepository) DecrementRemaining(ctx context.Context, tx database.TxQuerier, id int64) error {
	query := `UPDATE promotions SET remaining_claims = remaining_claims - 1 WHERE id = $1 AND remaining_claims IS NOT NULL`

	_, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("decrement remaining claims for %d: %w", id, err)
	}
	return nil
}

func scanMemberNotification(row pgx.Row) (*model.Notification, error) {
	var n model.Notification
	var typ string
	err := row.Scan(
		&n.ID,
		&typ,
		&n.Title,
		&n.Description,
		&n.HowToUse,
		&n.Banner,
		&n.StartsAt,
		&n.EndsAt,
		&n.MaxClaims,
		&n.RemainingClaims,
		&n.IsRead,
		&n.IsClaimed,
		&n.ClaimCode,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	n.Type = model.NotificationType(typ)
	return &n, nil
}
