package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"virtualevents/internal/calendar"
	"virtualevents/internal/domain"
	"virtualevents/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventService(t *testing.T, exporter domain.CalendarExporter, sessions SessionCloser) *eventService {
	t.Helper()
	if exporter == nil {
		exporter = &fakeExporter{}
	}
	clock := func() time.Time { return time.Date(2024, time.March, 5, 10, 0, 0, 0, time.Local) }
	svc := NewEventService(calendar.NewBuilder(clock), exporter, sessions, testLogger(), time.Second).(*eventService)
	svc.now = clock
	return svc
}

func seededStore() *fakeStore {
	store := newFakeStore()
	for _, u := range []string{"alice", "bob", "carol"} {
		store.addUser(u)
	}
	store.addEvent(&domain.Event{ID: "e1", Name: "Standup", Organizer: "alice", Date: "2024-03-05"})
	store.addEvent(&domain.Event{ID: "e2", Name: "Retro", Organizer: "bob", Attendees: []string{"alice"}, Date: "2024-03-05"})
	store.addEvent(&domain.Event{ID: "e3", Name: "Demo", Organizer: "carol", Date: "2024-03-20"})
	return store
}

func eventIDs(events []*domain.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func TestEventService_Unauthenticated(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	ctx := context.Background()

	anon := session.NewContext("anon")
	loggedOut := loggedIn("alice", store)
	loggedOut.Logout()

	calls := []struct {
		name string
		call func(sess domain.Session) error
	}{
		{"month", func(s domain.Session) error { _, err := svc.Month(ctx, s, 2024, 2); return err }},
		{"day", func(s domain.Session) error { _, err := svc.Day(ctx, s, "2024-03-05"); return err }},
		{"list", func(s domain.Session) error { _, err := svc.List(ctx, s, false); return err }},
		{"get", func(s domain.Session) error { _, err := svc.Get(ctx, s, "e1"); return err }},
		{"create", func(s domain.Session) error {
			_, err := svc.Create(ctx, s, domain.CreateEventInput{Name: "x", Date: "2024-03-01"})
			return err
		}},
		{"update", func(s domain.Session) error {
			name := "x"
			_, err := svc.Update(ctx, s, "e1", domain.EventPatch{Name: &name})
			return err
		}},
		{"delete", func(s domain.Session) error { return svc.Delete(ctx, s, "e1") }},
		{"toggle", func(s domain.Session) error { _, err := svc.ToggleAttendee(ctx, s, "bob"); return err }},
		{"draft", func(s domain.Session) error { _, err := svc.DraftAttendees(ctx, s); return err }},
		{"reset", func(s domain.Session) error { return svc.ResetDraft(ctx, s) }},
		{"export", func(s domain.Session) error { _, err := svc.Export(ctx, s); return err }},
	}
	for _, tt := range calls {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(anon), domain.ErrUnauthenticated)
			assert.ErrorIs(t, tt.call(loggedOut), domain.ErrUnauthenticated)
			assert.ErrorIs(t, tt.call(nil), domain.ErrUnauthenticated)
		})
	}
	assert.Zero(t, store.Calls(), "store must not be touched without a session")
}

func TestEventService_Month(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)

	view, err := svc.Month(context.Background(), loggedIn("carol", store), 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, "March", view.MonthName)
	offset := calendar.FirstWeekday(2024, 2) - 1

	fifth := view.Days[offset+5]
	assert.True(t, fifth.HasEvent)
	assert.False(t, fifth.UserInvolved)
	assert.True(t, fifth.IsToday)

	twentieth := view.Days[offset+20]
	assert.True(t, twentieth.HasEvent)
	assert.True(t, twentieth.UserInvolved)

	_, err = svc.Month(context.Background(), loggedIn("carol", store), 2024, 12)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEventService_DayAndList(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	ctx := context.Background()
	sess := loggedIn("alice", store)

	day, err := svc.Day(ctx, sess, "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, eventIDs(day))

	_, err = svc.Day(ctx, sess, "05/03/2024")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	all, err := svc.List(ctx, sess, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3"}, eventIDs(all))

	mine, err := svc.List(ctx, sess, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, eventIDs(mine))

	store.listErr = errors.New("connection reset")
	_, err = svc.List(ctx, sess, false)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_Get(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	sess := loggedIn("carol", store)

	e, err := svc.Get(context.Background(), sess, "e2")
	require.NoError(t, err)
	assert.Equal(t, "Retro", e.Name)

	_, err = svc.Get(context.Background(), sess, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_CreateFromDraft(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	ctx := context.Background()
	sess := loggedIn("alice", store)

	sel, err := svc.ToggleAttendee(ctx, sess, "carol")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, sel)
	sel, err = svc.ToggleAttendee(ctx, sess, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, sel)

	e, err := svc.Create(ctx, sess, domain.CreateEventInput{Name: "  Launch Party ", Date: "2024-03-09", Time: "18:00"})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Launch Party", e.Name)
	assert.Equal(t, "launch-party", e.Slug)
	assert.Equal(t, "alice", e.Organizer)
	assert.Equal(t, []string{"bob", "carol"}, e.Attendees)

	draft, err := svc.DraftAttendees(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, draft, "draft is cleared after it is used")

	day, err := svc.Day(ctx, sess, "2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID}, eventIDs(day))
}

func TestEventService_CreateExplicitAttendees(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	ctx := context.Background()
	sess := loggedIn("alice", store)

	_, err := svc.ToggleAttendee(ctx, sess, "bob")
	require.NoError(t, err)

	e, err := svc.Create(ctx, sess, domain.CreateEventInput{
		Name: "Sync", Date: "2024-03-10", Attendees: []string{"carol", "alice", "carol"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, e.Attendees, "deduplicated and without the organizer")

	draft, _ := svc.DraftAttendees(ctx, sess)
	assert.Equal(t, []string{"bob"}, draft, "draft untouched when attendees are explicit")
}

func TestEventService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input domain.CreateEventInput
	}{
		{"blank name", domain.CreateEventInput{Name: "  ", Date: "2024-03-01"}},
		{"bad date", domain.CreateEventInput{Name: "x", Date: "tomorrow"}},
		{"unknown attendee", domain.CreateEventInput{Name: "x", Date: "2024-03-01", Attendees: []string{"zed"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			svc := newTestEventService(t, nil, nil)
			_, err := svc.Create(context.Background(), loggedIn("alice", store), tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Len(t, store.events, 3)
		})
	}
}

func TestEventService_CreateStoreFailureKeepsDraft(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	ctx := context.Background()
	sess := loggedIn("alice", store)

	_, err := svc.ToggleAttendee(ctx, sess, "bob")
	require.NoError(t, err)
	_, err = svc.List(ctx, sess, false)
	require.NoError(t, err)

	store.err = errors.New("store down")
	_, err = svc.Create(ctx, sess, domain.CreateEventInput{Name: "x", Date: "2024-03-01"})
	require.Error(t, err)

	store.err = nil
	draft, _ := svc.DraftAttendees(ctx, sess)
	assert.Equal(t, []string{"bob"}, draft)
	assert.Equal(t, 3, svc.view(sess.ID()).events.Len())
}

func TestEventService_Update(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	ctx := context.Background()
	sess := loggedIn("alice", store)

	name, date := "Standup (moved)", "2024-03-06"
	attendees := []string{"bob", "alice", "bob"}
	e, err := svc.Update(ctx, sess, "e1", domain.EventPatch{Name: &name, Date: &date, Attendees: &attendees})
	require.NoError(t, err)
	assert.Equal(t, "Standup (moved)", e.Name)
	assert.Equal(t, "2024-03-06", e.Date)
	assert.Equal(t, []string{"bob"}, e.Attendees)

	day, err := svc.Day(ctx, sess, "2024-03-06")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, eventIDs(day))
}

func TestEventService_UpdateErrors(t *testing.T) {
	name := "renamed"
	blank := " "
	badDate := "32/01"
	unknown := []string{"zed"}
	tests := []struct {
		name  string
		user  string
		id    string
		patch domain.EventPatch
		want  error
	}{
		{"empty patch", "alice", "e1", domain.EventPatch{}, domain.ErrInvalidInput},
		{"blank name", "alice", "e1", domain.EventPatch{Name: &blank}, domain.ErrInvalidInput},
		{"bad date", "alice", "e1", domain.EventPatch{Date: &badDate}, domain.ErrInvalidInput},
		{"unknown attendee", "alice", "e1", domain.EventPatch{Attendees: &unknown}, domain.ErrInvalidInput},
		{"not organizer", "bob", "e1", domain.EventPatch{Name: &name}, domain.ErrForbidden},
		{"missing", "alice", "nope", domain.EventPatch{Name: &name}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			svc := newTestEventService(t, nil, nil)
			_, err := svc.Update(context.Background(), loggedIn(tt.user, store), tt.id, tt.patch)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, "Standup", store.events[0].Name)
		})
	}
}

func TestEventService_Delete(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, loggedIn("bob", store), "e1"), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, loggedIn("alice", store), "nope"), domain.ErrNotFound)

	sess := loggedIn("alice", store)
	require.NoError(t, svc.Delete(ctx, sess, "e1"))
	all, err := svc.List(ctx, sess, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e3"}, eventIDs(all))
}

func TestEventService_ToggleAttendee(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	ctx := context.Background()
	sess := loggedIn("alice", store)

	_, err := svc.ToggleAttendee(ctx, sess, "alice")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.ToggleAttendee(ctx, sess, "zed")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.ToggleAttendee(ctx, sess, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	sel, err := svc.ToggleAttendee(ctx, sess, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, sel)
	sel, err = svc.ToggleAttendee(ctx, sess, "bob")
	require.NoError(t, err)
	assert.Empty(t, sel)

	_, err = svc.ToggleAttendee(ctx, sess, "carol")
	require.NoError(t, err)
	require.NoError(t, svc.ResetDraft(ctx, sess))
	sel, _ = svc.DraftAttendees(ctx, sess)
	assert.Empty(t, sel)
}

func TestEventService_DraftsArePerSession(t *testing.T) {
	store := seededStore()
	svc := newTestEventService(t, nil, nil)
	ctx := context.Background()
	alice, bob := loggedIn("alice", store), loggedIn("bob", store)

	_, err := svc.ToggleAttendee(ctx, alice, "carol")
	require.NoError(t, err)

	draft, err := svc.DraftAttendees(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, draft)
}

func TestEventService_ForgetsClosedSessions(t *testing.T) {
	store := seededStore()
	registry := session.NewRegistry(testLogger(), nil)
	svc := newTestEventService(t, nil, registry)
	ctx := context.Background()

	sess, err := registry.Open("alice", store)
	require.NoError(t, err)
	_, err = svc.ToggleAttendee(ctx, sess, "bob")
	require.NoError(t, err)
	require.Len(t, svc.views, 1)

	registry.Close(sess.ID())
	assert.Empty(t, svc.views)
}

func TestEventService_Export(t *testing.T) {
	store := seededStore()
	exporter := &fakeExporter{}
	svc := newTestEventService(t, exporter, nil)

	data, err := svc.Export(context.Background(), loggedIn("bob", store))
	require.NoError(t, err)
	assert.Equal(t, "BEGIN:VCALENDAR", string(data))
	assert.Equal(t, "bob", exporter.owner)
	assert.Equal(t, []string{"e2"}, eventIDs(exporter.events))
}
