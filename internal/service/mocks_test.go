package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/pkg/cache"
	"github.com/fairyhunter13/tour-member/pkg/database"
)

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
	rolledBack bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	m.rolledBack = true
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func beginnerFor(tx *mockTx) *mockTxBeginner {
	return &mockTxBeginner{beginFn: func(ctx context.Context) (pgx.Tx, error) { return tx, nil }}
}

// mockFavoriteRepository is a mock implementation of FavoriteRepositoryInterface.
type mockFavoriteRepository struct {
	listIDsFn func(ctx context.Context, memberID int64) ([]int64, error)
	lockFn    func(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) error
	deleteFn  func(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) (bool, error)
	insertFn  func(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) error
}

func (m *mockFavoriteRepository) ListIDs(ctx context.Context, memberID int64) ([]int64, error) {
	if m.listIDsFn != nil {
		return m.listIDsFn(ctx, memberID)
	}
	return []int64{}, nil
}

func (m *mockFavoriteRepository) Lock(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) error {
	if m.lockFn != nil {
		return m.lockFn(ctx, tx, memberID, tourID)
	}
	return nil
}

func (m *mockFavoriteRepository) Delete(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, memberID, tourID)
	}
	return false, nil
}

func (m *mockFavoriteRepository) Insert(ctx context.Context, tx database.TxQuerier, memberID, tourID int64) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, memberID, tourID)
	}
	return nil
}

// mockPromotionRepository is a mock implementation of PromotionRepositoryInterface.
type mockPromotionRepository struct {
	listFn               func(ctx context.Context, memberID int64, typ string) ([]model.Notification, error)
	unreadCountFn        func(ctx context.Context, memberID int64) (int, error)
	getByIDFn            func(ctx context.Context, memberID, id int64) (*model.Notification, error)
	getForUpdateFn       func(ctx context.Context, tx database.TxQuerier, id int64) (*model.Notification, error)
	decrementRemainingFn func(ctx context.Context, tx database.TxQuerier, id int64) error
}

func (m *mockPromotionRepository) List(ctx context.Context, memberID int64, typ string) ([]model.Notification, error) {
	if m.listFn != nil {
		return m.listFn(ctx, memberID, typ)
	}
	return []model.Notification{}, nil
}

func (m *mockPromotionRepository) UnreadCount(ctx context.Context, memberID int64) (int, error) {
	if m.unreadCountFn != nil {
		return m.unreadCountFn(ctx, memberID)
	}
	return 0, nil
}

func (m *mockPromotionRepository) GetByID(ctx context.Context, memberID, id int64) (*model.Notification, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, memberID, id)
	}
	return nil, nil
}

func (m *mockPromotionRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Notification, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, ErrNotificationNotFound
}

func (m *mockPromotionRepository) DecrementRemaining(ctx context.Context, tx database.TxQuerier, id int64) error {
	if m.decrementRemainingFn != nil {
		return m.decrementRemainingFn(ctx, tx, id)
	}
	return nil
}

// mockReadRepository is a mock implementation of ReadRepositoryInterface.
type mockReadRepository struct {
	markReadFn    func(ctx context.Context, memberID, promotionID int64) error
	markAllReadFn func(ctx context.Context, memberID int64) (int64, error)
}

func (m *mockReadRepository) MarkRead(ctx context.Context, memberID, promotionID int64) error {
	if m.markReadFn != nil {
		return m.markReadFn(ctx, memberID, promotionID)
	}
	return nil
}

func (m *mockReadRepository) MarkAllRead(ctx context.Context, memberID int64) (int64, error) {
	if m.markAllReadFn != nil {
		return m.markAllReadFn(ctx, memberID)
	}
	return 0, nil
}

// mockClaimRepository is a mock implementation of ClaimRepositoryInterface.
type mockClaimRepository struct {
	getCodeFn func(ctx context.Context, tx database.TxQuerier, memberID, promotionID int64) (string, error)
	insertFn  func(ctx context.Context, tx database.TxQuerier, memberID, promotionID int64, code string) error
}

func (m *mockClaimRepository) GetCode(ctx context.Context, tx database.TxQuerier, memberID, promotionID int64) (string, error) {
	if m.getCodeFn != nil {
		return m.getCodeFn(ctx, tx, memberID, promotionID)
	}
	return "", nil
}

func (m *mockClaimRepository) Insert(ctx context.Context, tx database.TxQuerier, memberID, promotionID int64, code string) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, memberID, promotionID, code)
	}
	return nil
}

// mockBadgeRepository is a mock implementation of BadgeRepositoryInterface.
type mockBadgeRepository struct {
	calls        int
	listActiveFn func(ctx context.Context, source string) ([]model.BadgeSource, error)
}

func (m *mockBadgeRepository) ListActive(ctx context.Context, source string) ([]model.BadgeSource, error) {
	m.calls++
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx, source)
	}
	return []model.BadgeSource{}, nil
}

// mockBadgeCache is an in-memory BadgeCache.
type mockBadgeCache struct {
	entries map[string][]model.BadgeSource
	ttls    map[string]time.Duration
	getErr  error
}

func newMockBadgeCache() *mockBadgeCache {
	return &mockBadgeCache{
		entries: make(map[string][]model.BadgeSource),
		ttls:    make(map[string]time.Duration),
	}
}

func (m *mockBadgeCache) Get(ctx context.Context, key string, dest any) error {
	if m.getErr != nil {
		return m.getErr
	}
	v, ok := m.entries[key]
	if !ok {
		return cache.ErrMiss
	}
	*(dest.(*[]model.BadgeSource)) = v
	return nil
}

func (m *mockBadgeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.entries[key] = value.([]model.BadgeSource)
	m.ttls[key] = ttl
	return nil
}

func intPtr(i int) *int {
	return &i
}

func timePtr(t time.Time) *time.Time {
	return &t
}
