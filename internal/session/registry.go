package session

import (
	"log/slog"
	"sync"
	"time"

	"virtualevents/internal/domain"

	"github.com/rs/xid"
)

// Registry tracks the live sessions of the process by id.
type Registry struct {
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Context
	onClose  []func(id string)
}

// NewRegistry returns an empty Registry. now may be nil to use time.Now.
func NewRegistry(logger *slog.Logger, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:   logger,
		now:      now,
		sessions: make(map[string]*Context),
	}
}

// Open creates an authenticated session for username.
func (r *Registry) Open(username string, handle domain.Store) (*Context, error) {
	c := NewContext(xid.New().String())
	if err := c.Login(username, handle); err != nil {
		return nil, err
	}
	c.Touch(r.now())

	r.mu.Lock()
	r.sessions[c.id] = c
	r.mu.Unlock()

	r.logger.Debug("session opened", "session_id", c.id, "username", username)
	return c, nil
}

// Get returns the session with the given id and records activity on it.
func (r *Registry) Get(id string) (*Context, bool) {
	r.mu.RLock()
	c, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	c.Touch(r.now())
	return c, true
}

// OnClose registers fn to run with the session id whenever a session is closed.
func (r *Registry) OnClose(fn func(id string)) {
	r.mu.Lock()
	r.onClose = append(r.onClose, fn)
	r.mu.Unlock()
}

// Close logs the session out and forgets it. It reports whether the id was known.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	c, ok := r.sessions[id]
	delete(r.sessions, id)
	hooks := append([]func(string){}, r.onClose...)
	r.mu.Unlock()
	if !ok {
		return false
	}

	c.Logout()
	for _, fn := range hooks {
		fn(id)
	}
	r.logger.Debug("session closed", "session_id", id)
	return true
}

// Sweep closes sessions idle for longer than idle and returns how many it closed.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.RLock()
	var stale []string
	for id, c := range r.sessions {
		if c.LastSeen().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	closed := 0
	for _, id := range stale {
		if r.Close(id) {
			closed++
		}
	}
	return closed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
