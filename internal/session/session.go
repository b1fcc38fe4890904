// Package session holds the member's bearer-token identity. It is constructed
// once per process and injected into the stores that need to know whether to
// talk to the server.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fairyhunter13/tour-member/internal/client"
	"github.com/fairyhunter13/tour-member/internal/eventbus"
	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/internal/storage"
)

// ErrSessionExpired is returned when the server rejects the token. The token
// has already been cleared when this is returned.
var ErrSessionExpired = errors.New("session expired")

// MemberResolver resolves a token to a member.
type MemberResolver interface {
	Me(ctx context.Context, token string) (*model.MemberResponse, error)
}

// Session is the auth session holder.
type Session struct {
	mu       sync.RWMutex
	token    string
	memberID int64

	store    storage.Store
	resolver MemberResolver
	bus      *eventbus.Bus
	logger   zerolog.Logger

	ready     chan struct{}
	readyOnce sync.Once
}

// New creates an anonymous session. Call Init to pick up a persisted token.
func New(store storage.Store, resolver MemberResolver, bus *eventbus.Bus, logger zerolog.Logger) *Session {
	return &Session{
		store:    store,
		resolver: resolver,
		bus:      bus,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Init reads the persisted token and resolves the member behind it. Ready is
// closed when Init returns, whatever the outcome. Storage failures degrade to
// anonymous; an unauthorized token is cleared and ErrSessionExpired returned.
func (s *Session) Init(ctx context.Context) error {
	defer s.markReady()

	token := s.readPersisted()
	if token == "" {
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	memberID, err := s.resolve(ctx, token)
	if err != nil {
		return err
	}
	s.publish(eventbus.TopicLogin, memberID)
	return nil
}

// Ready is closed once Init has finished.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until Init has finished or ctx is done.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login adopts token, persists it and publishes a login event once the member
// is resolved.
func (s *Session) Login(ctx context.Context, token string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, client.ErrNoToken
	}

	s.mu.Lock()
	s.token = token
	s.memberID = 0
	s.mu.Unlock()

	if err := s.store.Set(storage.KeyAuthToken, []byte(token)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist auth token")
	}

	memberID, err := s.resolve(ctx, token)
	if err != nil {
		return 0, err
	}
	s.publish(eventbus.TopicLogin, memberID)
	return memberID, nil
}

// Logout drops the token from memory and storage.
func (s *Session) Logout() {
	s.mu.Lock()
	memberID := s.memberID
	s.token = ""
	s.memberID = 0
	s.mu.Unlock()

	if err := s.store.Delete(storage.KeyAuthToken); err != nil {
		s.logger.Warn().Err(err).Msg("failed to delete auth token")
	}
	s.publish(eventbus.TopicLogout, memberID)
}

// Token returns the bearer token or "" when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// MemberID returns the resolved member id.
func (s *Session) MemberID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memberID, s.memberID > 0
}

// Authenticated reports whether a token is held and resolved to a member.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.memberID > 0
}

// AdoptPersistedToken returns the in-memory token, falling back to the
// persisted one (and adopting it) when memory holds none.
func (s *Session) AdoptPersistedToken() string {
	if tok := s.Token(); tok != "" {
		return tok
	}
	tok := s.readPersisted()
	if tok == "" {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		s.token = tok
	}
	return s.token
}

func (s *Session) resolve(ctx context.Context, token string) (int64, error) {
	me, err := s.resolver.Me(ctx, token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			s.clear(token)
			return 0, ErrSessionExpired
		}
		return 0, fmt.Errorf("resolve member: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		// Logged out or replaced while resolving.
		return 0, ErrSessionExpired
	}
	s.memberID = me.MemberID
	return me.MemberID, nil
}

// clear drops token if it is still the current one.
func (s *Session) clear(token string) {
	s.mu.Lock()
	if s.token != token {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.memberID = 0
	s.mu.Unlock()

	if err := s.store.Delete(storage.KeyAuthToken); err != nil {
		s.logger.Warn().Err(err).Msg("failed to delete rejected auth token")
	}
	s.logger.Info().Msg("session token rejected, continuing anonymously")
}

func (s *Session) readPersisted() string {
	raw, err := s.store.Get(storage.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("failed to read auth token")
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (s *Session) publish(topic string, memberID int64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(eventbus.Event{Topic: topic, MemberID: memberID})
}

func (s *Session) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}
