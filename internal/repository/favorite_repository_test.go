package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idRow(id int64) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*int64)) = id
		return nil
	}
}

func TestFavoriteRepository_ListIDs(t *testing.T) {
	var capturedArgs []any
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedArgs = args
			return &mockRows{scans: []func(dest ...any) error{idRow(7), idRow(3)}}, nil
		},
	}

	ids, err := NewFavoriteRepositoryWithPool(mock).ListIDs(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, []int64{7, 3}, ids)
	assert.Equal(t, []any{int64(9)}, capturedArgs)
}

func TestFavoriteRepository_ListIDs_Empty(t *testing.T) {
	ids, err := NewFavoriteRepositoryWithPool(&mockPool{}).ListIDs(context.Background(), 9)

	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestFavoriteRepository_ListIDs_QueryError(t *testing.T) {
	dbErr := errors.New("database connection failed")
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, dbErr
		},
	}

	_, err := NewFavoriteRepositoryWithPool(mock).ListIDs(context.Background(), 9)

	assert.ErrorIs(t, err, dbErr)
}

func TestFavoriteRepository_Delete(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want bool
	}{
		{"existed", "DELETE 1", true},
		{"absent", "DELETE 0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &mockPool{
				execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
					assert.Contains(t, sql, "DELETE FROM favorites")
					return pgconn.NewCommandTag(tt.tag), nil
				},
			}

			deleted, err := NewFavoriteRepositoryWithPool(&mockPool{}).Delete(context.Background(), tx, 9, 7)

			require.NoError(t, err)
			assert.Equal(t, tt.want, deleted)
		})
	}
}

func TestFavoriteRepository_Insert(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	tx := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	err := NewFavoriteRepositoryWithPool(&mockPool{}).Insert(context.Background(), tx, 9, 7)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "ON CONFLICT")
	assert.Equal(t, []any{int64(9), int64(7)}, capturedArgs)
}

func TestFavoriteRepository_Insert_Error(t *testing.T) {
	dbErr := errors.New("database connection failed")
	tx := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, dbErr
		},
	}

	err := NewFavoriteRepositoryWithPool(&mockPool{}).Insert(context.Background(), tx, 9, 7)

	assert.ErrorIs(t, err, dbErr)
}

func TestFavoriteRepository_Lock(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	tx := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("SELECT 1"), nil
		},
	}

	err := NewFavoriteRepositoryWithPool(&mockPool{}).Lock(context.Background(), tx, 9, 7)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "pg_advisory_xact_lock")
	assert.Equal(t, []any{int64(9), int64(7)}, capturedArgs)
}

func TestFavoriteRepository_Lock_Error(t *testing.T) {
	dbErr := errors.New("canceling statement due to lock timeout")
	tx := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, dbErr
		},
	}

	err := NewFavoriteRepositoryWithPool(&mockPool{}).Lock(context.Background(), tx, 9, 7)

	assert.ErrorIs(t, err, dbErr)
}
