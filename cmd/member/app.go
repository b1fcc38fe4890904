package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/tour-member/internal/badge"
	"github.com/fairyhunter13/tour-member/internal/client"
	"github.com/fairyhunter13/tour-member/internal/config"
	"github.com/fairyhunter13/tour-member/internal/eventbus"
	"github.com/fairyhunter13/tour-member/internal/favorites"
	"github.com/fairyhunter13/tour-member/internal/notification"
	"github.com/fairyhunter13/tour-member/internal/session"
	"github.com/fairyhunter13/tour-member/internal/storage"
)

// app is one page load worth of client state.
type app struct {
	out io.Writer

	store         storage.Store
	bus           *eventbus.Bus
	api           *client.Client
	session       *session.Session
	favorites     *favorites.Store
	notifications *notification.Reader
	badges        *badge.Resolver

	unsubscribe []func()
}

type appOptions struct {
	// manualSync leaves login-triggered favorites sync to the caller.
	manualSync bool
}

func newApp(cfg *config.Config, out io.Writer, opts appOptions) *app {
	logger := log.Logger

	// State that cannot be persisted lives for this invocation only.
	var store storage.Store
	fileStore, err := storage.NewFileStore(cfg.Client.StateDir)
	if err != nil {
		logger.Warn().Err(err).Str("state_dir", cfg.Client.StateDir).Msg("state dir unavailable, changes will not be saved")
		store = storage.NewMemoryStore()
	} else {
		store = fileStore
	}

	a := &app{out: out, store: store, bus: eventbus.New(logger)}

	// The client reads the token through the session, which resolves members
	// through the client.
	a.api = client.New(cfg.Client.BaseURL, cfg.Client.Timeout, func() string { return a.session.Token() })
	a.session = session.New(store, a.api, a.bus, logger)
	a.favorites = favorites.New(store, a.api, a.session, favorites.WithLogger(logger))
	a.notifications = notification.New(a.api, a.session, a.bus, notification.WithLogger(logger))
	a.badges = badge.New(a.api, badge.WithLogger(logger))

	if !opts.manualSync {
		a.unsubscribe = append(a.unsubscribe, a.favorites.Subscribe(a.bus))
	}
	a.unsubscribe = append(a.unsubscribe, a.bus.Subscribe(eventbus.TopicNotificationsChange, func(ev eventbus.Event) {
		logger.Debug().Int("unread", ev.Unread).Msg("notification count changed")
	}))

	return a
}

// start restores persisted state and lets the login sync finish before the
// command touches the wishlist. An expired session is reported and the
// command continues anonymously.
func (a *app) start(ctx context.Context) error {
	a.favorites.Load()
	defer a.favorites.Wait()

	if err := a.session.Init(ctx); err != nil {
		if errors.Is(err, session.ErrSessionExpired) {
			fmt.Fprintln(a.out, "session expired, please log in again")
			return nil
		}
		log.Warn().Err(err).Msg("could not resolve session, continuing with the stored token")
	}
	return nil
}

// close waits for background server calls and detaches subscribers.
func (a *app) close() {
	a.favorites.Wait()
	a.notifications.Wait()
	for _, off := range a.unsubscribe {
		off()
	}
}

// initLogger configures zerolog for terminal use. Logs go to stderr so that
// command output stays clean.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}
