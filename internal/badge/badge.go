// Package badge joins tours against the tab and festival tag collections to
// produce the labels overlaid on tour cards and departure periods.
package badge

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fairyhunter13/tour-member/internal/model"
)

// Discount badge styling.
const (
	DiscountColor = "#e53935"
	DiscountIcon  = "tag"
)

// API is the badge endpoints. Both are anonymous.
type API interface {
	TabBadges(ctx context.Context) ([]model.BadgeSource, error)
	FestivalBadges(ctx context.Context) ([]model.BadgeSource, error)
}

// Resolver holds immutable snapshots of both collections once loaded.
type Resolver struct {
	mu        sync.RWMutex
	tabs      []model.BadgeSource
	festivals []model.BadgeSource

	api     API
	logger  zerolog.Logger
	printer *message.Printer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for failed sources.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// New creates an empty resolver. Lookups return nothing until Load.
func New(api API, opts ...Option) *Resolver {
	r := &Resolver{
		api:     api,
		logger:  log.Logger,
		printer: message.NewPrinter(language.Indonesian),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load fetches both collections concurrently. A failing source resolves to an
// empty collection; the other is still applied.
func (r *Resolver) Load(ctx context.Context) {
	var tabs, festivals []model.BadgeSource

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tabs = r.fetch(ctx, model.BadgeSourceTab, r.api.TabBadges)
		return nil
	})
	g.Go(func() error {
		festivals = r.fetch(ctx, model.BadgeSourceFestival, r.api.FestivalBadges)
		return nil
	})
	_ = g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tabs = tabs
	r.festivals = festivals
}

func (r *Resolver) fetch(ctx context.Context, source string, fn func(context.Context) ([]model.BadgeSource, error)) []model.BadgeSource {
	sources, err := fn(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Str("source", source).Msg("failed to load badges")
		return nil
	}
	return sources
}

// Badges returns the card-level badges of a tour: tab badges shown in badge
// mode and festival badges shown in card mode.
func (r *Resolver) Badges(tourID int64) []model.BadgeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.BadgeInfo{}
	for i := range r.tabs {
		if r.tabs[i].HasTour(tourID) && r.tabs[i].HasMode(model.DisplayModeBadge) {
			out = append(out, r.tabs[i].Info())
		}
	}
	for i := range r.festivals {
		if r.festivals[i].HasTour(tourID) && r.festivals[i].HasMode(model.DisplayModeCard) {
			out = append(out, r.festivals[i].Info())
		}
	}
	return out
}

// PeriodBadges returns the badges of one departure period. Every tab badge of
// the tour applies. A festival badge applies when its period allowlist holds
// periodID, when it has no allowlist, or when it is also shown in card mode.
// Pass 0 when no period is selected. A positive discountAmount prepends a
// discount badge.
func (r *Resolver) PeriodBadges(tourID int64, discountAmount float64, periodID int64) []model.BadgeInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []model.BadgeInfo{}
	if discountAmount > 0 {
		out = append(out, r.discount(discountAmount))
	}
	for i := range r.tabs {
		if r.tabs[i].HasTour(tourID) {
			out = append(out, r.tabs[i].Info())
		}
	}
	for i := range r.festivals {
		f := &r.festivals[i]
		if !f.HasTour(tourID) {
			continue
		}
		if len(f.PeriodIDs) == 0 || (periodID > 0 && f.HasPeriod(periodID)) || f.HasMode(model.DisplayModeCard) {
			out = append(out, f.Info())
		}
	}
	return out
}

func (r *Resolver) discount(amount float64) model.BadgeInfo {
	return model.BadgeInfo{
		Text:  r.printer.Sprintf("Hemat Rp %d", int64(amount)),
		Color: DiscountColor,
		Icon:  DiscountIcon,
	}
}
