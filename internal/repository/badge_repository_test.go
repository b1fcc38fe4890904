package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/tour-member/internal/model"
)

func TestBadgeRepository_ListActive(t *testing.T) {
	var capturedArgs []any
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedArgs = args
			return &mockRows{scans: []func(dest ...any) error{
				func(dest ...any) error {
					*(dest[0].(*[]int64)) = []int64{7, 8}
					*(dest[1].(*[]int64)) = []int64{101}
					*(dest[2].(*string)) = "Lebaran"
					*(dest[3].(*string)) = "#0a0"
					*(dest[4].(*string)) = "moon"
					*(dest[5].(*[]string)) = []string{"period"}
					return nil
				},
				func(dest ...any) error {
					*(dest[2].(*string)) = "Bare"
					return nil
				},
			}}, nil
		},
	}

	badges, err := NewBadgeRepositoryWithPool(mock).ListActive(context.Background(), model.BadgeSourceFestival)

	require.NoError(t, err)
	require.Len(t, badges, 2)
	assert.Equal(t, model.BadgeSource{
		TourIDs:      []int64{7, 8},
		PeriodIDs:    []int64{101},
		BadgeText:    "Lebaran",
		BadgeColor:   "#0a0",
		BadgeIcon:    "moon",
		DisplayModes: []string{"period"},
	}, badges[0])
	assert.NotNil(t, badges[1].TourIDs, "null arrays become empty slices")
	assert.NotNil(t, badges[1].PeriodIDs)
	assert.NotNil(t, badges[1].DisplayModes)
	assert.Equal(t, []any{"festival"}, capturedArgs)
}

func TestBadgeRepository_ListActive_QueryError(t *testing.T) {
	dbErr := errors.New("database connection failed")
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, dbErr
		},
	}

	_, err := NewBadgeRepositoryWithPool(mock).ListActive(context.Background(), model.BadgeSourceTab)

	assert.ErrorIs(t, err, dbErr)
}
