package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/pkg/cache"
)

func TestBadgeService_ReadThrough(t *testing.T) {
	repo := &mockBadgeRepository{
		listActiveFn: func(ctx context.Context, source string) ([]model.BadgeSource, error) {
			return []model.BadgeSource{{TourIDs: []int64{7}, BadgeText: source}}, nil
		},
	}
	c := newMockBadgeCache()
	svc := NewBadgeService(repo, c, 5*time.Minute)

	first, err := svc.Tabs(context.Background())
	require.NoError(t, err)
	second, err := svc.Tabs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "tab", first[0].BadgeText)
	assert.Equal(t, 1, repo.calls, "second read should hit the cache")
	assert.Equal(t, 5*time.Minute, c.ttls[cache.PrefixBadges+"tab"])

	festivals, err := svc.Festivals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "festival", festivals[0].BadgeText)
	assert.Equal(t, 2, repo.calls)
}

func TestBadgeService_CacheErrorFallsBackToRepo(t *testing.T) {
	repo := &mockBadgeRepository{}
	c := newMockBadgeCache()
	c.getErr = errors.New("redis timeout")

	badges, err := NewBadgeService(repo, c, time.Minute).Festivals(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, badges)
	assert.Equal(t, 1, repo.calls)
}

func TestBadgeService_WithoutRedis(t *testing.T) {
	repo := &mockBadgeRepository{}
	svc := NewBadgeService(repo, cache.New(nil), time.Minute)

	_, err := svc.Tabs(context.Background())
	require.NoError(t, err)
	_, err = svc.Tabs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls)
}

func TestBadgeService_RepoError(t *testing.T) {
	repoErr := errors.New("database connection failed")
	repo := &mockBadgeRepository{
		listActiveFn: func(ctx context.Context, source string) ([]model.BadgeSource, error) {
			return nil, repoErr
		},
	}

	_, err := NewBadgeService(repo, newMockBadgeCache(), time.Minute).Tabs(context.Background())

	assert.ErrorIs(t, err, repoErr)
}
