package domain

import (
	"context"
	"slices"
	"time"

	"github.com/gosimple/slug"
)

// Event is a calendar entry owned by its organizer.
// swagger:model Event
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Organizer string    `json:"organizer"`
	Attendees []string  `json:"attendees"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is set by the store on create.
// The slug is derived from name and is only a navigation hint; lookups use ID.
func NewEvent(name, date, eventTime, organizer string, attendees []string, createdAt, updatedAt time.Time) *Event {
	if attendees == nil {
		attendees = []string{}
	}
	return &Event{
		Name:      name,
		Slug:      slug.Make(name),
		Date:      date,
		Time:      eventTime,
		Organizer: organizer,
		Attendees: attendees,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// Involves reports whether username organizes or attends the event.
// The organizer always counts as an attendee.
func (e *Event) Involves(username string) bool {
	if username == "" {
		return false
	}
	return e.Organizer == username || slices.Contains(e.Attendees, username)
}

// Clone returns a deep copy.
func (e *Event) Clone() *Event {
	cp := *e
	cp.Attendees = slices.Clone(e.Attendees)
	if cp.Attendees == nil {
		cp.Attendees = []string{}
	}
	return &cp
}

// EventPatch carries the mutable fields of an event. Nil fields are left unchanged.
type EventPatch struct {
	Name      *string   `json:"name,omitempty"`
	Date      *string   `json:"date,omitempty"`
	Time      *string   `json:"time,omitempty"`
	Attendees *[]string `json:"attendees,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p EventPatch) Empty() bool {
	return p.Name == nil && p.Date == nil && p.Time == nil && p.Attendees == nil
}

// Apply writes the patch into e. Organizer and ID are never touched.
func (p EventPatch) Apply(e *Event) {
	if p.Name != nil {
		e.Name = *p.Name
		e.Slug = slug.Make(*p.Name)
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Attendees != nil {
		e.Attendees = slices.Clone(*p.Attendees)
		if e.Attendees == nil {
			e.Attendees = []string{}
		}
	}
}

// CreateEventInput is what the organizer submits for a new event.
// A nil Attendees means "use the session's attendee selection".
type CreateEventInput struct {
	Name      string
	Date      string
	Time      string
	Attendees []string
}

// EventRepository defines the events collection of the store.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, id string, patch EventPatch, updatedAt time.Time) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// CalendarExporter renders events as an iCalendar document.
type CalendarExporter interface {
	Export(owner string, events []*Event) ([]byte, error)
}

// EventService defines the event page, edit page and calendar operations.
// Every method requires an authenticated session.
type EventService interface {
	Month(ctx context.Context, sess Session, year, month int) (*MonthView, error)
	Day(ctx context.Context, sess Session, dayKey string) ([]*Event, error)
	List(ctx context.Context, sess Session, involvingOnly bool) ([]*Event, error)
	Get(ctx context.Context, sess Session, id string) (*Event, error)
	Create(ctx context.Context, sess Session, input CreateEventInput) (*Event, error)
	Update(ctx context.Context, sess Session, id string, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, sess Session, id string) error
	ToggleAttendee(ctx context.Context, sess Session, username string) ([]string, error)
	DraftAttendees(ctx context.Context, sess Session) ([]string, error)
	ResetDraft(ctx context.Context, sess Session) error
	Export(ctx context.Context, sess Session) ([]byte, error)
}
