package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRepository_MarkRead(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	err := NewReadRepositoryWithPool(mock).MarkRead(context.Background(), 9, 42)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "INSERT INTO promotion_reads")
	assert.Contains(t, capturedSQL, "DO NOTHING")
	assert.Equal(t, []any{int64(9), int64(42)}, capturedArgs)
}

func TestReadRepository_MarkRead_Error(t *testing.T) {
	dbErr := errors.New("database connection failed")
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, dbErr
		},
	}

	err := NewReadRepositoryWithPool(mock).MarkRead(context.Background(), 9, 42)

	assert.ErrorIs(t, err, dbErr)
}

func TestReadRepository_MarkAllRead(t *testing.T) {
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			assert.Contains(t, sql, "SELECT $1, p.id FROM promotions p")
			return pgconn.NewCommandTag("INSERT 0 4"), nil
		},
	}

	n, err := NewReadRepositoryWithPool(mock).MarkAllRead(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
