// Package notification reads the member's promotional notices, tracks read
// state and claims promotion codes.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/tour-member/internal/client"
	"github.com/fairyhunter13/tour-member/internal/eventbus"
	"github.com/fairyhunter13/tour-member/internal/model"
)

var (
	ErrNotFound        = errors.New("notification not found")
	ErrAlreadyClaimed  = errors.New("promotion already claimed")
	ErrExpired         = errors.New("promotion has expired")
	ErrExhausted       = errors.New("promotion quota exhausted")
	ErrNotStarted      = errors.New("promotion has not started")
	ErrClaimInProgress = errors.New("claim already in progress")
	ErrMissingCode     = errors.New("server returned no claim code")
)

// RejectedError carries a server claim rejection. Message is shown verbatim.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return e.Message
}

const defaultRejection = "claim was rejected"

const defaultMirrorTimeout = 10 * time.Second

// API is the member notification endpoints.
type API interface {
	Notifications(ctx context.Context) (*model.NotificationListResponse, error)
	Notification(ctx context.Context, id int64) (*model.Notification, error)
	MarkAllRead(ctx context.Context) error
	Claim(ctx context.Context, id int64) (*model.ClaimResponse, error)
}

// Session exposes the bearer token.
type Session interface {
	Token() string
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for swallowed failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reader) { r.logger = logger }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) { r.now = now }
}

// Reader caches the notification list of the current member.
type Reader struct {
	mu       sync.RWMutex
	items    []model.Notification
	unread   int
	claiming map[int64]struct{}

	api     API
	session Session
	bus     *eventbus.Bus

	logger zerolog.Logger
	now    func() time.Time

	wg sync.WaitGroup
}

// New creates a Reader. bus may be nil.
func New(api API, sess Session, bus *eventbus.Bus, opts ...Option) *Reader {
	r := &Reader{
		claiming: make(map[int64]struct{}),
		api:      api,
		session:  sess,
		bus:      bus,
		logger:   log.Logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List fetches the notices and the unread count. Anonymous sessions get an
// empty list without a network call. Claim codes already known locally survive
// a refresh that does not carry them.
func (r *Reader) List(ctx context.Context) ([]model.Notification, int, error) {
	if r.session.Token() == "" {
		return nil, 0, nil
	}

	resp, err := r.api.Notifications(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	r.mu.Lock()
	known := make(map[int64]model.Notification, len(r.items))
	for _, n := range r.items {
		known[n.ID] = n
	}
	items := make([]model.Notification, len(resp.Items))
	for i, n := range resp.Items {
		if prev, ok := known[n.ID]; ok {
			n = mergeLocal(n, prev)
		}
		items[i] = n
	}
	r.items = items
	r.unread = resp.UnreadCount
	unread := r.unread
	out := r.snapshotLocked()
	r.mu.Unlock()

	r.publish(unread)
	return out, unread, nil
}

// Get fetches one notice. Fetching the detail marks it read on the server, so
// the local copy is flipped to read and the unread count broadcast.
func (r *Reader) Get(ctx context.Context, id int64) (*model.Notification, error) {
	if r.session.Token() == "" {
		return nil, client.ErrNoToken
	}

	n, err := r.api.Notification(ctx, id)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == 404 {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get notification %d: %w", id, err)
	}
	n.IsRead = true

	r.mu.Lock()
	if i := r.indexOf(id); i >= 0 {
		prev := r.items[i]
		merged := mergeLocal(*n, prev)
		if !prev.IsRead && r.unread > 0 {
			r.unread--
		}
		r.items[i] = merged
		*n = merged
	}
	unread := r.unread
	r.mu.Unlock()

	r.publish(unread)
	return n, nil
}

// MarkAllRead flips every cached notice to read, broadcasts zero unread and
// tells the server in the background.
func (r *Reader) MarkAllRead(ctx context.Context) {
	r.mu.Lock()
	for i := range r.items {
		r.items[i].IsRead = true
	}
	r.unread = 0
	r.mu.Unlock()

	r.publish(0)

	if r.session.Token() == "" {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultMirrorTimeout)
		defer cancel()
		if err := r.api.MarkAllRead(ctx); err != nil {
			r.logger.Warn().Err(err).Msg("failed to mark all notifications read")
		}
	}()
}

// Claim claims the promotion behind notice id and returns its code. Anonymous
// sessions get client.ErrNoToken. A notice already claimed returns the stored
// code without a server call. Eligibility is checked locally first; no failure
// mutates the claimed state.
func (r *Reader) Claim(ctx context.Context, id int64) (string, error) {
	if r.session.Token() == "" {
		return "", client.ErrNoToken
	}

	n, ok := r.lookup(id)
	if !ok {
		if _, _, err := r.List(ctx); err != nil {
			return "", err
		}
		if n, ok = r.lookup(id); !ok {
			return "", ErrNotFound
		}
	}

	if n.IsClaimed {
		if n.ClaimCode == "" {
			return "", ErrAlreadyClaimed
		}
		return n.ClaimCode, nil
	}
	if err := eligibility(n, r.now()); err != nil {
		return "", err
	}

	if !r.beginClaim(id) {
		return "", ErrClaimInProgress
	}
	defer r.endClaim(id)

	// A claim that finished while we were checking eligibility wins.
	if cur, ok := r.lookup(id); ok && cur.IsClaimed && cur.ClaimCode != "" {
		return cur.ClaimCode, nil
	}

	resp, err := r.api.Claim(ctx, id)
	if err != nil {
		return "", fmt.Errorf("claim %d: %w", id, err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = defaultRejection
		}
		return "", &RejectedError{Message: msg}
	}
	if resp.ClaimCode == "" {
		return "", ErrMissingCode
	}

	r.mu.Lock()
	if i := r.indexOf(id); i >= 0 {
		item := &r.items[i]
		item.IsClaimed = true
		item.ClaimCode = resp.ClaimCode
		if item.RemainingClaims != nil && *item.RemainingClaims > 0 {
			remaining := *item.RemainingClaims - 1
			item.RemainingClaims = &remaining
		}
	}
	r.mu.Unlock()

	return resp.ClaimCode, nil
}

// Items returns the cached notices.
func (r *Reader) Items() []model.Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Unread returns the cached unread count.
func (r *Reader) Unread() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.unread
}

// Wait blocks until background server calls have finished.
func (r *Reader) Wait() {
	r.wg.Wait()
}

func eligibility(n model.Notification, now time.Time) error {
	switch n.State(now) {
	case model.StateClaimed:
		return ErrAlreadyClaimed
	case model.StateExpired:
		return ErrExpired
	case model.StateExhausted:
		return ErrExhausted
	case model.StateUpcoming:
		return ErrNotStarted
	}
	return nil
}

// mergeLocal keeps a locally stored claim over a server copy that lacks it.
func mergeLocal(fresh, local model.Notification) model.Notification {
	if local.ClaimCode != "" && fresh.ClaimCode == "" {
		fresh.IsClaimed = true
		fresh.ClaimCode = local.ClaimCode
	}
	return fresh
}

func (r *Reader) beginClaim(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.claiming[id]; busy {
		return false
	}
	r.claiming[id] = struct{}{}
	return true
}

func (r *Reader) endClaim(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claiming, id)
}

func (r *Reader) lookup(id int64) (model.Notification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.items[i], true
	}
	return model.Notification{}, false
}

func (r *Reader) indexOf(id int64) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Reader) snapshotLocked() []model.Notification {
	out := make([]model.Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *Reader) publish(unread int) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(eventbus.Event{Topic: eventbus.TopicNotificationsChange, Unread: unread})
}
