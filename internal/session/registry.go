package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/rocketcart/internal/cart"
	"github.com/angelmondragon/rocketcart/internal/notifications"
	pkgerrors "github.com/angelmondragon/rocketcart/pkg/errors"
	"github.com/angelmondragon/rocketcart/pkg/logger"
	"github.com/angelmondragon/rocketcart/pkg/metrics"
)

// SinkFactory builds extra notification sinks for a session, e.g. a Pub/Sub
// publisher tagged with the session id.
type SinkFactory func(sessionID string) notifications.Sink

// Snapshots is the blob store session carts persist to.
type Snapshots interface {
	cart.SnapshotStore
	Delete(ctx context.Context, key string) error
}

// Session pairs a cart store with the inbox its notifications land in.
type Session struct {
	ID    string
	Cart  *cart.Store
	Inbox *notifications.Inbox

	lastSeen atomic.Int64
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}

// Options configures a Registry. A zero IdleTTL keeps sessions until Drop,
// End or Close.
type Options struct {
	KeyPrefix     string
	Catalog       cart.Catalog
	Snapshots     Snapshots
	Logger        *logger.Logger
	Metrics       *metrics.CartMetrics
	InboxCapacity int
	Sinks         []SinkFactory
	IdleTTL       time.Duration
	Now           func() time.Time
}

// Registry owns one Session per session id.
type Registry struct {
	opts  Options
	group singleflight.Group

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(opts Options) (*Registry, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if opts.Snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if strings.TrimSpace(opts.KeyPrefix) == "" {
		opts.KeyPrefix = "rocketcart"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{opts: opts, sessions: make(map[string]*Session)}, nil
}

// NewID issues a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Valid reports whether id looks like an id issued by NewID.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Key returns the snapshot key for a session.
func (r *Registry) Key(sessionID string) string {
	return r.opts.KeyPrefix + ":cart:" + sessionID
}

// Get returns the session, hydrating its cart on first use.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}
	if s := r.lookup(sessionID); s != nil {
		s.touch(r.opts.Now())
		return s, nil
	}

	// shared by every waiter, so it must outlive the first caller
	openCtx := context.WithoutCancel(ctx)
	v, err, _ := r.group.Do(sessionID, func() (any, error) {
		if s := r.lookup(sessionID); s != nil {
			return s, nil
		}
		s, err := r.open(openCtx, sessionID)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.sessions[sessionID] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	s := v.(*Session)
	s.touch(r.opts.Now())
	return s, nil
}

func (r *Registry) lookup(sessionID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[sessionID]
}

func (r *Registry) open(ctx context.Context, sessionID string) (*Session, error) {
	inbox := notifications.NewInbox(r.opts.InboxCapacity)
	sinks := notifications.Fanout{inbox}
	for _, build := range r.opts.Sinks {
		if build != nil {
			sinks = append(sinks, build(sessionID))
		}
	}

	ctx = r.opts.Logger.WithSessionID(ctx, sessionID)
	store, err := cart.Open(ctx, cart.Params{
		Key:       r.Key(sessionID),
		Catalog:   r.opts.Catalog,
		Snapshots: r.opts.Snapshots,
		Notifier:  sinks,
		Logger:    r.opts.Logger,
		Metrics:   r.opts.Metrics,
	})
	if err != nil {
		return nil, err
	}
	r.opts.Logger.Debug(ctx, "session.opened")
	s := &Session{ID: sessionID, Cart: store, Inbox: inbox}
	s.touch(r.opts.Now())
	return s, nil
}

// Drop forgets a session. Its persisted snapshot is left in place.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// End drops the session and deletes its snapshot, so the next Get starts
// from an empty cart.
func (r *Registry) End(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id required")
	}
	r.Drop(sessionID)
	if err := r.opts.Snapshots.Delete(ctx, r.Key(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart snapshot")
	}
	r.opts.Logger.Debug(r.opts.Logger.WithSessionID(ctx, sessionID), "session.ended")
	return nil
}

// Sweep drops every session idle for at least IdleTTL as of now and reports
// how many it dropped.
func (r *Registry) Sweep(now time.Time) int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if s.idleSince(now) >= r.opts.IdleTTL {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.opts.IdleTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.opts.Now()); n > 0 {
				r.opts.Logger.Info(r.opts.Logger.WithField(ctx, "evicted", n), "session.sweep")
			}
		}
	}
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Closer is anything the registry should release on shutdown.
type Closer interface {
	Close() error
}

// Close drops every session and closes the given resources, combining errors.
func (r *Registry) Close(closers ...Closer) error {
	r.mu.Lock()
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	var err error
	for _, c := range closers {
		if c != nil {
			err = multierr.Append(err, c.Close())
		}
	}
	return err
}
