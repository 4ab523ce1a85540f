package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/domain"
	"virtualevents/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// nopStore is a store handle that is never queried.
type nopStore struct{}

func (nopStore) Users() domain.UserRepository       { return nil }
func (nopStore) Events() domain.EventRepository     { return nil }
func (nopStore) Messages() domain.MessageRepository { return nil }

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	claims *domain.TokenClaims
	err    error
}

func (f *fakeTokenVerifier) Verify(_ string) (*domain.TokenClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

func TestRequireAuth(t *testing.T) {
	registry := session.NewRegistry(testLogger, nil)
	live, err := registry.Open("alice", nopStore{})
	require.NoError(t, err)
	closed, err := registry.Open("bob", nopStore{})
	require.NoError(t, err)
	registry.Close(closed.ID())

	tests := []struct {
		name       string
		authHeader string
		verifier   domain.TokenVerifier
		wantStatus int
		wantUser   string
	}{
		{
			name:       "valid token resolves the session",
			authHeader: "Bearer good",
			verifier:   &fakeTokenVerifier{claims: &domain.TokenClaims{SessionID: live.ID(), Username: "alice"}},
			wantStatus: http.StatusOK,
			wantUser:   "alice",
		},
		{
			name:       "missing authorization header",
			verifier:   &fakeTokenVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			authHeader: "Basic abc",
			verifier:   &fakeTokenVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty token after Bearer",
			authHeader: "Bearer ",
			verifier:   &fakeTokenVerifier{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "verifier rejects token",
			authHeader: "Bearer bad",
			verifier:   &fakeTokenVerifier{err: errors.New("expired")},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "session was closed",
			authHeader: "Bearer old",
			verifier:   &fakeTokenVerifier{claims: &domain.TokenClaims{SessionID: closed.ID(), Username: "bob"}},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token names another user",
			authHeader: "Bearer forged",
			verifier:   &fakeTokenVerifier{claims: &domain.TokenClaims{SessionID: live.ID(), Username: "mallory"}},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var gotUser string
			next := func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				if sess, ok := SessionFromContext(r.Context()); ok {
					gotUser, _ = sess.CurrentUser()
				}
				w.WriteHeader(http.StatusOK)
			}
			handler := RequireAuth(tt.verifier, registry, testLogger)(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/events", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()
			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, nextCalled)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantUser, gotUser)
				return
			}
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			require.NotNil(t, envelope.Error)
			assert.Equal(t, helpers.ErrCodeUnauthorized, envelope.Error.Code)
		})
	}
}

func TestRequireAuth_TouchesSession(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	registry := session.NewRegistry(testLogger, func() time.Time { return now })
	sess, err := registry.Open("alice", nopStore{})
	require.NoError(t, err)

	now = now.Add(time.Hour)
	handler := RequireAuth(&fakeTokenVerifier{claims: &domain.TokenClaims{SessionID: sess.ID(), Username: "alice"}}, registry, testLogger)(
		func(w http.ResponseWriter, r *http.Request) {},
	)
	req := httptest.NewRequest(http.MethodGet, "http://test/calendar", nil)
	req.Header.Set("Authorization", "Bearer t")
	handler(httptest.NewRecorder(), req)

	assert.True(t, sess.LastSeen().Equal(now))
}

func TestSessionFromContext_Empty(t *testing.T) {
	_, ok := SessionFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
