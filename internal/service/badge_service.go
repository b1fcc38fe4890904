package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/pkg/cache"
)

// BadgeRepositoryInterface defines the interface for badge data access.
type BadgeRepositoryInterface interface {
	ListActive(ctx context.Context, source string) ([]model.BadgeSource, error)
}

// BadgeCache is the read-through cache in front of the badge tables.
type BadgeCache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// BadgeService serves the tab and festival tag collections.
type BadgeService struct {
	repo  BadgeRepositoryInterface
	cache BadgeCache
	ttl   time.Duration
}

// NewBadgeService creates a new BadgeService. Entries live in the cache for ttl.
func NewBadgeService(repo BadgeRepositoryInterface, c BadgeCache, ttl time.Duration) *BadgeService {
	return &BadgeService{repo: repo, cache: c, ttl: ttl}
}

// Tabs returns the active tab badges.
func (s *BadgeService) Tabs(ctx context.Context) ([]model.BadgeSource, error) {
	return s.list(ctx, model.BadgeSourceTab)
}

// Festivals returns the active festival badges.
func (s *BadgeService) Festivals(ctx context.Context) ([]model.BadgeSource, error) {
	return s.list(ctx, model.BadgeSourceFestival)
}

func (s *BadgeService) list(ctx context.Context, source string) ([]model.BadgeSource, error) {
	key := cache.PrefixBadges + source

	var cached []model.BadgeSource
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("key", key).Msg("badge cache read failed")
	}

	badges, err := s.repo.ListActive(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("list %s badges: %w", source, err)
	}

	if err := s.cache.Set(ctx, key, badges, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("badge cache write failed")
	}
	return badges, nil
}
