package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/delivery/http/middleware"
	"virtualevents/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeSession is an authenticated domain.Session without a store.
type fakeSession struct {
	username string
}

func (s fakeSession) ID() string                  { return "sess-" + s.username }
func (s fakeSession) CurrentUser() (string, bool) { return s.username, true }
func (s fakeSession) Require() (string, domain.Store, error) {
	return s.username, nil, nil
}

// newRequest builds a request with an optional JSON body, authenticated as user unless user is empty.
func newRequest(method, target, body, user string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if user != "" {
		req = req.WithContext(middleware.WithSession(req.Context(), fakeSession{username: user}))
	}
	return req
}

// serve routes req through a mux so path values are populated.
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if data != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.Error
}

type fakeAuthService struct {
	registerErr   error
	loginErr      error
	logoutErr     error
	recoverErr    error
	listErr       error
	users         []*domain.User
	lastRegister  domain.RegisterInput
	lastLoginUser string
	lastRecover   [3]string
	loggedOut     string
	listedFor     string
}

func (f *fakeAuthService) Register(_ context.Context, in domain.RegisterInput) (*domain.User, error) {
	f.lastRegister = in
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &domain.User{ID: "u1", Username: in.Username, Email: in.Email, PasswordHash: "secret"}, nil
}

func (f *fakeAuthService) Login(_ context.Context, username, _ string) (*domain.LoginResult, error) {
	f.lastLoginUser = username
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &domain.LoginResult{Token: "tok", TokenType: "Bearer", Username: username}, nil
}

func (f *fakeAuthService) Logout(_ context.Context, sess domain.Session) error {
	f.loggedOut = sess.ID()
	return f.logoutErr
}

func (f *fakeAuthService) RecoverPassword(_ context.Context, username, password, confirm string) error {
	f.lastRecover = [3]string{username, password, confirm}
	return f.recoverErr
}

func (f *fakeAuthService) ListOtherUsers(_ context.Context, sess domain.Session) ([]*domain.User, error) {
	f.listedFor, _ = sess.CurrentUser()
	return f.users, f.listErr
}

type fakeEventService struct {
	err          error
	month        *domain.MonthView
	events       []*domain.Event
	event        *domain.Event
	draft        []string
	ics          []byte
	lastYear     int
	lastMonth    int
	lastDay      string
	lastInvolved bool
	lastID       string
	lastCreate   domain.CreateEventInput
	lastPatch    domain.EventPatch
	lastToggle   string
	resetCalled  bool
}

func (f *fakeEventService) Month(_ context.Context, _ domain.Session, year, month int) (*domain.MonthView, error) {
	f.lastYear, f.lastMonth = year, month
	return f.month, f.err
}

func (f *fakeEventService) Day(_ context.Context, _ domain.Session, dayKey string) ([]*domain.Event, error) {
	f.lastDay = dayKey
	return f.events, f.err
}

func (f *fakeEventService) List(_ context.Context, _ domain.Session, involvingOnly bool) ([]*domain.Event, error) {
	f.lastInvolved = involvingOnly
	return f.events, f.err
}

func (f *fakeEventService) Get(_ context.Context, _ domain.Session, id string) (*domain.Event, error) {
	f.lastID = id
	return f.event, f.err
}

func (f *fakeEventService) Create(_ context.Context, _ domain.Session, in domain.CreateEventInput) (*domain.Event, error) {
	f.lastCreate = in
	return f.event, f.err
}

func (f *fakeEventService) Update(_ context.Context, _ domain.Session, id string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastID, f.lastPatch = id, patch
	return f.event, f.err
}

func (f *fakeEventService) Delete(_ context.Context, _ domain.Session, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeEventService) ToggleAttendee(_ context.Context, _ domain.Session, username string) ([]string, error) {
	f.lastToggle = username
	return f.draft, f.err
}

func (f *fakeEventService) DraftAttendees(context.Context, domain.Session) ([]string, error) {
	return f.draft, f.err
}

func (f *fakeEventService) ResetDraft(context.Context, domain.Session) error {
	f.resetCalled = true
	return f.err
}

func (f *fakeEventService) Export(context.Context, domain.Session) ([]byte, error) {
	return f.ics, f.err
}

type fakeChatService struct {
	err      error
	messages []*domain.Message
	lastID   string
	lastText string
}

func (f *fakeChatService) List(_ context.Context, _ domain.Session, eventID string) ([]*domain.Message, error) {
	f.lastID = eventID
	return f.messages, f.err
}

func (f *fakeChatService) Send(_ context.Context, sess domain.Session, eventID, text string) (*domain.Message, error) {
	f.lastID, f.lastText = eventID, text
	if f.err != nil {
		return nil, f.err
	}
	sender, _ := sess.CurrentUser()
	return &domain.Message{ID: "m1", EventID: eventID, Sender: sender, Text: text}, nil
}
