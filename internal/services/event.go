package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"virtualevents/internal/attendees"
	"virtualevents/internal/calendar"
	"virtualevents/internal/directory"
	"virtualevents/internal/domain"
)

// SessionCloser notifies subscribers when a session ends.
type SessionCloser interface {
	OnClose(fn func(id string))
}

// pageView is the state one session keeps between requests: the events as last
// fetched and the attendees picked for the event being composed.
type pageView struct {
	events *directory.Directory
	draft  *attendees.Selector
}

type eventService struct {
	builder        *calendar.Builder
	exporter       domain.CalendarExporter
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time

	mu    sync.Mutex
	views map[string]*pageView
}

// NewEventService creates an EventService. Per-session state is dropped when
// sessions reports a close; sessions may be nil.
func NewEventService(
	builder *calendar.Builder,
	exporter domain.CalendarExporter,
	sessions SessionCloser,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	s := &eventService{
		builder:        builder,
		exporter:       exporter,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
		views:          make(map[string]*pageView),
	}
	if sessions != nil {
		sessions.OnClose(s.forget)
	}
	return s
}

func (s *eventService) view(id string) *pageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	if !ok {
		v = &pageView{events: directory.New(), draft: attendees.New()}
		s.views[id] = v
	}
	return v
}

func (s *eventService) forget(id string) {
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
}

// begin checks the session before anything else touches the store.
func (s *eventService) begin(sess domain.Session) (string, domain.Store, *pageView, error) {
	username, store, err := requireSession(sess)
	if err != nil {
		return "", nil, nil, err
	}
	return username, store, s.view(sess.ID()), nil
}

func (s *eventService) refresh(ctx context.Context, store domain.Store, v *pageView) error {
	events, err := store.Events().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list events: %w", err)
	}
	v.events.Load(events)
	return nil
}

// refreshAfterWrite reloads the directory after a confirmed write. The write
// already succeeded, so a failed reload is only logged.
func (s *eventService) refreshAfterWrite(ctx context.Context, store domain.Store, v *pageView) {
	if err := s.refresh(ctx, store, v); err != nil {
		s.logger.WarnContext(ctx, "refresh after write failed", "err", err)
	}
}

func (s *eventService) Month(ctx context.Context, sess domain.Session, year, month int) (*domain.MonthView, error) {
	username, store, v, err := s.begin(sess)
	if err != nil {
		return nil, err
	}
	if month < 0 || month > 11 {
		return nil, fmt.Errorf("%w: month must be between 0 and 11", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.refresh(ctx, store, v); err != nil {
		return nil, err
	}
	return s.builder.Month(year, month, username, v.events.All()), nil
}

func (s *eventService) Day(ctx context.Context, sess domain.Session, dayKey string) ([]*domain.Event, error) {
	_, store, v, err := s.begin(sess)
	if err != nil {
		return nil, err
	}
	if _, _, _, err := calendar.ParseKey(dayKey); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.refresh(ctx, store, v); err != nil {
		return nil, err
	}
	return v.events.EventsOn(dayKey), nil
}

func (s *eventService) List(ctx context.Context, sess domain.Session, involvingOnly bool) ([]*domain.Event, error) {
	username, store, v, err := s.begin(sess)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.refresh(ctx, store, v); err != nil {
		return nil, err
	}
	if involvingOnly {
		return v.events.Involving(username), nil
	}
	return v.events.All(), nil
}

func (s *eventService) Get(ctx context.Context, sess domain.Session, id string) (*domain.Event, error) {
	_, store, v, err := s.begin(sess)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := store.Events().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			v.events.Remove(id)
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	v.events.Add(event)
	return event, nil
}

func (s *eventService) Create(ctx context.Context, sess domain.Session, input domain.CreateEventInput) (*domain.Event, error) {
	username, store, v, err := s.begin(sess)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}
	date, ok := calendar.Normalize(input.Date)
	if !ok {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	fromDraft := input.Attendees == nil
	var chosen []string
	if fromDraft {
		chosen = v.draft.Set()
	} else {
		chosen = attendees.New(input.Attendees...).Set()
	}
	chosen = withoutOrganizer(chosen, username)

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.checkUsersExist(ctx, store, chosen); err != nil {
		return nil, err
	}

	now := s.now()
	event := domain.NewEvent(name, date, strings.TrimSpace(input.Time), username, chosen, now, now)
	if err := store.Events().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	v.events.Add(event)
	if fromDraft {
		v.draft.Reset()
	}
	s.refreshAfterWrite(ctx, store, v)
	return event, nil
}

func (s *eventService) Update(ctx context.Context, sess domain.Session, id string, patch domain.EventPatch) (*domain.Event, error) {
	username, store, v, err := s.begin(sess)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
		}
		patch.Name = &name
	}
	if patch.Date != nil {
		date, ok := calendar.Normalize(*patch.Date)
		if !ok {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
		patch.Date = &date
	}
	if patch.Time != nil {
		t := strings.TrimSpace(*patch.Time)
		patch.Time = &t
	}
	if patch.Attendees != nil {
		chosen := withoutOrganizer(attendees.New(*patch.Attendees...).Set(), username)
		patch.Attendees = &chosen
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authorizeOrganizer(ctx, store, id, username); err != nil {
		return nil, err
	}
	if patch.Attendees != nil {
		if err := s.checkUsersExist(ctx, store, *patch.Attendees); err != nil {
			return nil, err
		}
	}

	updated, err := store.Events().Update(ctx, id, patch, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	v.events.Update(id, patch)
	s.refreshAfterWrite(ctx, store, v)
	return updated, nil
}

func (s *eventService) Delete(ctx context.Context, sess domain.Session, id string) error {
	username, store, v, err := s.begin(sess)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.authorizeOrganizer(ctx, store, id, username); err != nil {
		return err
	}
	if err := store.Events().Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	v.events.Remove(id)
	s.refreshAfterWrite(ctx, store, v)
	return nil
}

func (s *eventService) ToggleAttendee(ctx context.Context, sess domain.Session, attendee string) ([]string, error) {
	username, store, v, err := s.begin(sess)
	if err != nil {
		return nil, err
	}
	attendee = strings.TrimSpace(attendee)
	if attendee == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if attendee == username {
		return nil, fmt.Errorf("%w: the organizer always attends", domain.ErrInvalidInput)
	}

	if !v.draft.Contains(attendee) {
		ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
		defer cancel()
		if _, err := store.Users().GetByUsername(ctx, attendee); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
	}
	v.draft.Toggle(attendee)
	return v.draft.Set(), nil
}

func (s *eventService) DraftAttendees(ctx context.Context, sess domain.Session) ([]string, error) {
	_, _, v, err := s.begin(sess)
	if err != nil {
		return nil, err
	}
	return v.draft.Set(), nil
}

func (s *eventService) ResetDraft(ctx context.Context, sess domain.Session) error {
	_, _, v, err := s.begin(sess)
	if err != nil {
		return err
	}
	v.draft.Reset()
	return nil
}

func (s *eventService) Export(ctx context.Context, sess domain.Session) ([]byte, error) {
	username, store, v, err := s.begin(sess)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.refresh(ctx, store, v); err != nil {
		return nil, err
	}
	data, err := s.exporter.Export(username, v.events.Involving(username))
	if err != nil {
		return nil, fmt.Errorf("failed to export calendar: %w", err)
	}
	return data, nil
}

func (s *eventService) authorizeOrganizer(ctx context.Context, store domain.Store, id, username string) error {
	event, err := store.Events().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to get event: %w", err)
	}
	if event.Organizer != username {
		return domain.ErrForbidden
	}
	return nil
}

func (s *eventService) checkUsersExist(ctx context.Context, store domain.Store, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}
	users, err := store.Users().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	known := make(map[string]struct{}, len(users))
	for _, u := range users {
		known[u.Username] = struct{}{}
	}
	for _, name := range usernames {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: unknown attendee %q", domain.ErrInvalidInput, name)
		}
	}
	return nil
}

// withoutOrganizer drops the organizer, who is an implicit attendee.
func withoutOrganizer(usernames []string, organizer string) []string {
	return slices.DeleteFunc(usernames, func(u string) bool { return u == organizer })
}
