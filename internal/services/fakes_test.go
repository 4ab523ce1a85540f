package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"virtualevents/internal/domain"
	"virtualevents/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeStore is an in-memory domain.Store that counts every repository call.
type fakeStore struct {
	mu       sync.Mutex
	calls    int
	users    map[string]*domain.User
	events   []*domain.Event
	messages []*domain.Message
	nextID   int
	err      error // if set, every call fails with it
	listErr  error // if set, Events().List fails with it
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*domain.User)}
}

func (f *fakeStore) Users() domain.UserRepository       { return fakeUsers{f} }
func (f *fakeStore) Events() domain.EventRepository     { return fakeEvents{f} }
func (f *fakeStore) Messages() domain.MessageRepository { return fakeMessages{f} }

func (f *fakeStore) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// enter counts the call and returns the configured failure, if any. The caller holds mu.
func (f *fakeStore) enter() error {
	f.calls++
	return f.err
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) addUser(username string) {
	f.users[username] = &domain.User{ID: f.id("u"), Username: username}
}

func (f *fakeStore) addEvent(e *domain.Event) *domain.Event {
	if e.ID == "" {
		e.ID = f.id("ev")
	}
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	f.events = append(f.events, e)
	return e
}

type fakeUsers struct{ f *fakeStore }

func (r fakeUsers) Create(ctx context.Context, u *domain.User) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return err
	}
	if _, ok := r.f.users[u.Username]; ok {
		return domain.ErrUsernameTaken
	}
	u.ID = r.f.id("u")
	cp := *u
	r.f.users[u.Username] = &cp
	return nil
}

func (r fakeUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return nil, err
	}
	u, ok := r.f.users[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r fakeUsers) List(ctx context.Context) ([]*domain.User, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(r.f.users))
	for _, u := range r.f.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r fakeUsers) UpdatePassword(ctx context.Context, username, hash, salt string, updatedAt time.Time) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return err
	}
	u, ok := r.f.users[username]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash, u.Salt, u.UpdatedAt = hash, salt, updatedAt
	return nil
}

type fakeEvents struct{ f *fakeStore }

func (r fakeEvents) Create(ctx context.Context, e *domain.Event) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return err
	}
	e.ID = r.f.id("ev")
	r.f.events = append(r.f.events, e.Clone())
	return nil
}

func (r fakeEvents) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return nil, err
	}
	for _, e := range r.f.events {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r fakeEvents) List(ctx context.Context) ([]*domain.Event, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return nil, err
	}
	if r.f.listErr != nil {
		return nil, r.f.listErr
	}
	out := make([]*domain.Event, 0, len(r.f.events))
	for _, e := range r.f.events {
		out = append(out, e.Clone())
	}
	return out, nil
}

func (r fakeEvents) Update(ctx context.Context, id string, patch domain.EventPatch, updatedAt time.Time) (*domain.Event, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return nil, err
	}
	for _, e := range r.f.events {
		if e.ID == id {
			patch.Apply(e)
			e.UpdatedAt = updatedAt
			return e.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r fakeEvents) Delete(ctx context.Context, id string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return err
	}
	for i, e := range r.f.events {
		if e.ID == id {
			r.f.events = append(r.f.events[:i], r.f.events[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeMessages struct{ f *fakeStore }

func (r fakeMessages) Create(ctx context.Context, m *domain.Message) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return err
	}
	m.ID = r.f.id("m")
	cp := *m
	r.f.messages = append(r.f.messages, &cp)
	return nil
}

// ListByEvent returns insertion order so callers' sorting is exercised.
func (r fakeMessages) ListByEvent(ctx context.Context, eventID string) ([]*domain.Message, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.enter(); err != nil {
		return nil, err
	}
	var out []*domain.Message
	for _, m := range r.f.messages {
		if m.EventID == eventID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeHasher "hashes" by concatenation.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) { return salt + ":" + password, nil }

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeIssuer struct{ err error }

func (f fakeIssuer) Issue(sessionID, username string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + sessionID, nil
}

type fakeEmailService struct {
	welcome []*domain.WelcomeMessageEmailData
	changed []*domain.PasswordChangedEmailData
	err     error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.welcome = append(f.welcome, data)
	return f.err
}

func (f *fakeEmailService) SendPasswordChanged(ctx context.Context, data *domain.PasswordChangedEmailData) error {
	f.changed = append(f.changed, data)
	return f.err
}

type fakeExporter struct {
	owner  string
	events []*domain.Event
}

func (f *fakeExporter) Export(owner string, events []*domain.Event) ([]byte, error) {
	f.owner, f.events = owner, events
	return []byte("BEGIN:VCALENDAR"), nil
}

// loggedIn returns an authenticated session over store.
func loggedIn(username string, store domain.Store) *session.Context {
	c := session.NewContext("sess-" + username)
	if err := c.Login(username, store); err != nil {
		panic(err)
	}
	return c
}
