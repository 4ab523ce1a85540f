// Package session holds per-client authentication state: who is logged in and
// which store handle their requests use.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"virtualevents/internal/domain"
)

// State is the login state of a Context.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// ErrAlreadyAuthenticated is returned by Login on a Context that is already logged in.
var ErrAlreadyAuthenticated = errors.New("session already authenticated")

// Context is one client's session. It starts Anonymous and moves to
// Authenticated on Login and back on Logout. Safe for concurrent use.
type Context struct {
	id string

	mu       sync.RWMutex
	state    State
	username string
	handle   domain.Store
	lastSeen time.Time
}

// NewContext returns an anonymous Context with the given id.
func NewContext(id string) *Context {
	return &Context{id: id}
}

// ID returns the session id.
func (c *Context) ID() string { return c.id }

// State returns the current state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Login authenticates the context with username and store handle.
func (c *Context) Login(username string, handle domain.Store) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("login: %w: username is required", domain.ErrInvalidInput)
	}
	if handle == nil {
		return fmt.Errorf("login: %w: store handle is required", domain.ErrInvalidInput)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Authenticated {
		return ErrAlreadyAuthenticated
	}
	c.state = Authenticated
	c.username = username
	c.handle = handle
	return nil
}

// Logout clears the username and handle. Logging out an anonymous context is a no-op.
func (c *Context) Logout() {
	c.mu.Lock()
	c.state = Anonymous
	c.username = ""
	c.handle = nil
	c.mu.Unlock()
}

// CurrentUser returns the logged-in username.
func (c *Context) CurrentUser() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username, c.state == Authenticated
}

// Handle returns the store handle.
func (c *Context) Handle() (domain.Store, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handle, c.state == Authenticated
}

// Require returns the username and handle, or domain.ErrUnauthenticated when anonymous.
func (c *Context) Require() (string, domain.Store, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != Authenticated {
		return "", nil, domain.ErrUnauthenticated
	}
	return c.username, c.handle, nil
}

// Touch records activity at t.
func (c *Context) Touch(t time.Time) {
	c.mu.Lock()
	c.lastSeen = t
	c.mu.Unlock()
}

// LastSeen returns the time of the last Touch.
func (c *Context) LastSeen() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSeen
}
