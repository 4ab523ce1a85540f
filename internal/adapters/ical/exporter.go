// Package ical renders events as an iCalendar (RFC 5545) feed.
package ical

import (
	"strings"
	"time"

	"virtualevents/internal/calendar"
	"virtualevents/internal/domain"

	ics "github.com/arran4/golang-ical"
)

const (
	productID       = "-//virtualevents//calendar//EN"
	uidDomain       = "virtualevents"
	defaultDuration = time.Hour
)

// Event times are free-form; these are the shapes that map to a start time.
var timeLayouts = []string{"15:04", "15:04:05", "3:04PM", "3:04 PM", "3PM", "3 PM"}

// Exporter implements domain.CalendarExporter.
type Exporter struct {
	now func() time.Time
}

// NewExporter returns an Exporter stamping entries with the current time.
func NewExporter() *Exporter {
	return &Exporter{now: time.Now}
}

// Export renders events into one VCALENDAR named after owner. Events with a
// recognisable time become one-hour entries; the rest are all-day. Events
// whose date cannot be read are left out.
func (x *Exporter) Export(owner string, events []*domain.Event) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(owner + "'s events")

	stamp := x.now().UTC()
	for _, e := range events {
		key, ok := calendar.Normalize(e.Date)
		if !ok {
			continue
		}
		day, err := time.ParseInLocation(calendar.KeyLayout, key, time.Local)
		if err != nil {
			continue
		}

		ve := cal.AddEvent(e.ID + "@" + uidDomain)
		ve.SetSummary(e.Name)
		ve.SetDtStampTime(stamp)
		if !e.UpdatedAt.IsZero() {
			ve.SetModifiedAt(e.UpdatedAt)
		}
		if start, ok := startOf(day, e.Time); ok {
			ve.SetStartAt(start)
			ve.SetEndAt(start.Add(defaultDuration))
		} else {
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		}
		ve.SetOrganizer(e.Organizer, ics.WithCN(e.Organizer))
		for _, a := range e.Attendees {
			ve.AddAttendee(a, ics.WithCN(a))
		}
	}
	return []byte(cal.Serialize()), nil
}

func startOf(day time.Time, clock string) (time.Time, bool) {
	clock = strings.ToUpper(strings.TrimSpace(clock))
	if clock == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, clock)
		if err != nil {
			continue
		}
		return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local), true
	}
	return time.Time{}, false
}
