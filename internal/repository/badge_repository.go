package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/tour-member/internal/model"
)

// BadgeRepository reads the curated tag collections.
type BadgeRepository struct {
	pool PoolInterface
}

// NewBadgeRepository creates a new BadgeRepository with the given pool.
func NewBadgeRepository(pool *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{pool: pool}
}

// NewBadgeRepositoryWithPool creates a new BadgeRepository with a custom pool interface.
func NewBadgeRepositoryWithPool(pool PoolInterface) *BadgeRepository {
	return &BadgeRepository{pool: pool}
}

// ListActive returns the active badges of one source (tab or festival) in
// display order. Returns an empty slice (not nil) when there are none.
func (r *BadgeRepository) ListActive(ctx context.Context, source string) ([]model.BadgeSource, error) {
	query := `
SELECT tour_ids, period_ids, badge_text, badge_color, badge_icon, display_modes
FROM badge_sources
WHERE source = $1 AND is_active
ORDER BY sort_order, id`

	rows, err := r.pool.Query(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("list %s badges: %w", source, err)
	}
	defer rows.Close()

	badges := []model.BadgeSource{}
	for rows.Next() {
		var b model.BadgeSource
		if err := rows.Scan(&b.TourIDs, &b.PeriodIDs, &b.BadgeText, &b.BadgeColor, &b.BadgeIcon, &b.DisplayModes); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		if b.TourIDs == nil {
			b.TourIDs = []int64{}
		}
		if b.PeriodIDs == nil {
			b.PeriodIDs = []int64{}
		}
		if b.DisplayModes == nil {
			b.DisplayModes = []string{}
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate badge rows: %w", err)
	}
	return badges, nil
}
