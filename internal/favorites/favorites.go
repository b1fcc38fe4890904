// Package favorites keeps the member's wishlist in local storage and mirrors it
// to the server when a session exists. Local state is authoritative: server
// calls are best effort and never roll back a local change.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/tour-member/internal/eventbus"
	"github.com/fairyhunter13/tour-member/internal/model"
	"github.com/fairyhunter13/tour-member/internal/storage"
)

// ExpiryWindow is how long an entry with an added_at timestamp survives a load.
const ExpiryWindow = 7 * 24 * time.Hour

const defaultMirrorTimeout = 10 * time.Second

// API is the server side of the wishlist.
type API interface {
	FavoriteIDs(ctx context.Context) ([]int64, error)
	ToggleFavorite(ctx context.Context, tourID int64) (bool, error)
}

// Session exposes the bearer token the mirror calls depend on.
type Session interface {
	Token() string
	AdoptPersistedToken() string
}

// SyncResult describes one login-sync run.
type SyncResult struct {
	Skipped bool
	Pushed  int
	Failed  int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMirrorTimeout bounds each background server call.
func WithMirrorTimeout(d time.Duration) Option {
	return func(s *Store) { s.mirrorTimeout = d }
}

// Store is the favorites store.
type Store struct {
	mu    sync.RWMutex
	items []model.FavoriteItem

	storage storage.Store
	api     API
	session Session

	logger        zerolog.Logger
	now           func() time.Time
	mirrorTimeout time.Duration

	syncMu     sync.Mutex
	lastSynced int64

	wg sync.WaitGroup
}

// New creates an empty store. Call Load to read persisted state.
func New(st storage.Store, api API, sess Session, opts ...Option) *Store {
	s := &Store{
		storage:       st,
		api:           api,
		session:       sess,
		logger:        log.Logger,
		now:           time.Now,
		mirrorTimeout: defaultMirrorTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory list with the persisted one. Unparseable state
// reads as empty, entries without a positive id are dropped, and entries added
// more than ExpiryWindow ago are pruned. Pruning reaches storage on the next
// write.
func (s *Store) Load() {
	raw, err := s.storage.Get(storage.KeyFavorites)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("failed to read favorites, starting empty")
		}
		s.replace(nil)
		return
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		s.logger.Warn().Err(err).Msg("corrupt favorites, starting empty")
		s.replace(nil)
		return
	}

	now := s.now()
	seen := make(map[int64]struct{}, len(entries))
	items := make([]model.FavoriteItem, 0, len(entries))
	for _, entry := range entries {
		item, ok := decodeEntry(entry)
		if !ok {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		if item.AddedAt != nil && now.Sub(*item.AddedAt) > ExpiryWindow {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}
	s.replace(items)
}

// storedEntry reads added_at leniently; a value that is not a timestamp marks
// a legacy entry.
type storedEntry struct {
	model.FavoriteItem
	AddedAt json.RawMessage `json:"added_at"`
}

// decodeEntry keeps any entry with a positive numeric id. Display fields that
// fail to decode are dropped, the id alone is enough.
func decodeEntry(raw json.RawMessage) (model.FavoriteItem, bool) {
	var entry storedEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		var bare struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(raw, &bare); err != nil || bare.ID <= 0 {
			return model.FavoriteItem{}, false
		}
		return model.FavoriteItem{ID: bare.ID}, true
	}

	item := entry.FavoriteItem
	if item.ID <= 0 {
		return model.FavoriteItem{}, false
	}
	item.AddedAt = nil
	var addedAt time.Time
	if len(entry.AddedAt) > 0 && json.Unmarshal(entry.AddedAt, &addedAt) == nil && !addedAt.IsZero() {
		item.AddedAt = &addedAt
	}
	return item, true
}

// IsFavorite reports whether id is in the list.
func (s *Store) IsFavorite(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// List returns a copy of the list in insertion order.
func (s *Store) List() []model.FavoriteItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.FavoriteItem, len(s.items))
	copy(out, s.items)
	return out
}

// Count returns the number of favorites.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Toggle removes item when present and inserts it with a fresh added_at
// otherwise. It returns whether item is a favorite afterwards.
func (s *Store) Toggle(item model.FavoriteItem) bool {
	if item.ID <= 0 {
		return false
	}
	s.mu.Lock()
	var favorited bool
	if i := s.indexOf(item.ID); i >= 0 {
		s.removeAt(i)
	} else {
		s.insert(item)
		favorited = true
	}
	s.persistLocked()
	s.mu.Unlock()

	s.mirror(item.ID)
	return favorited
}

// Add inserts item when absent. When present only the display fields are
// refreshed; added_at is kept. It returns whether item was newly inserted.
func (s *Store) Add(item model.FavoriteItem) bool {
	if item.ID <= 0 {
		return false
	}
	s.mu.Lock()
	i := s.indexOf(item.ID)
	if i >= 0 {
		item.AddedAt = s.items[i].AddedAt
		s.items[i] = item
		s.persistLocked()
		s.mu.Unlock()
		return false
	}
	s.insert(item)
	s.persistLocked()
	s.mu.Unlock()

	s.mirror(item.ID)
	return true
}

// Remove deletes id and mirrors the removal. It returns false when id was not
// a favorite, in which case nothing is sent to the server.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.removeAt(i)
	s.persistLocked()
	s.mu.Unlock()

	s.mirror(id)
	return true
}

// Clear empties the local list. The server wishlist is left untouched.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persistLocked()
}

// SyncOnLogin pushes every local favorite the server does not know about.
// It runs at most once per member id until the next logout; server-only ids
// are never pulled down. Per-item failures are counted and swallowed.
func (s *Store) SyncOnLogin(ctx context.Context, memberID int64) (SyncResult, error) {
	if memberID <= 0 {
		return SyncResult{Skipped: true}, nil
	}

	s.syncMu.Lock()
	if s.lastSynced == memberID {
		s.syncMu.Unlock()
		return SyncResult{Skipped: true}, nil
	}
	if s.session.Token() == "" && s.session.AdoptPersistedToken() == "" {
		s.syncMu.Unlock()
		return SyncResult{Skipped: true}, nil
	}
	s.lastSynced = memberID
	s.syncMu.Unlock()

	logger := s.logger.With().Int64("member_id", memberID).Logger()

	// Changes made while the fetch is in flight are mirrored on their own.
	local := s.List()

	serverIDs, err := s.api.FavoriteIDs(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("favorites sync: failed to fetch server favorites")
		return SyncResult{}, err
	}
	known := make(map[int64]struct{}, len(serverIDs))
	for _, id := range serverIDs {
		known[id] = struct{}{}
	}

	var res SyncResult
	for _, item := range local {
		if _, ok := known[item.ID]; ok {
			continue
		}
		if _, err := s.api.ToggleFavorite(ctx, item.ID); err != nil {
			res.Failed++
			logger.Warn().Err(err).Int64("tour_id", item.ID).Msg("favorites sync: push failed")
			continue
		}
		res.Pushed++
	}

	logger.Debug().Int("pushed", res.Pushed).Int("failed", res.Failed).Msg("favorites synced")
	return res, nil
}

// Subscribe wires the store to session events: login triggers a background
// sync and logout resets the sync marker.
func (s *Store) Subscribe(bus *eventbus.Bus) (unsubscribe func()) {
	offLogin := bus.Subscribe(eventbus.TopicLogin, func(ev eventbus.Event) {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
			defer cancel()
			_, _ = s.SyncOnLogin(ctx, ev.MemberID)
		}()
	})
	offLogout := bus.Subscribe(eventbus.TopicLogout, func(eventbus.Event) {
		s.syncMu.Lock()
		s.lastSynced = 0
		s.syncMu.Unlock()
	})
	return func() {
		offLogin()
		offLogout()
	}
}

// Wait blocks until background server calls have finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// mirror flips id on the server in the background when a session exists.
func (s *Store) mirror(id int64) {
	if s.session == nil || s.session.Token() == "" {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
		defer cancel()
		if _, err := s.api.ToggleFavorite(ctx, id); err != nil {
			s.logger.Warn().Err(err).Int64("tour_id", id).Msg("failed to mirror favorite toggle")
		}
	}()
}

func (s *Store) replace(items []model.FavoriteItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

func (s *Store) insert(item model.FavoriteItem) {
	now := s.now()
	item.AddedAt = &now
	s.items = append(s.items, item)
}

func (s *Store) removeAt(i int) {
	s.items = append(s.items[:i:i], s.items[i+1:]...)
}

func (s *Store) indexOf(id int64) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the whole list. Callers hold s.mu.
func (s *Store) persistLocked() {
	items := s.items
	if items == nil {
		items = []model.FavoriteItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode favorites")
		return
	}
	if err := s.storage.Set(storage.KeyFavorites, raw); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist favorites")
	}
}
