package calendar

import (
	"time"

	"virtualevents/internal/domain"
)

// Builder produces month grids. The clock decides which cell is today.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a Builder using now as its clock; nil means time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now}
}

// Build returns the cells for a 0-based month: FirstWeekday blanks followed by
// one cell per day in ascending order. Events whose date cannot be normalised
// are ignored.
func (b *Builder) Build(year, month0 int, username string, events []*domain.Event) []domain.CalendarDay {
	year, month0 = Shift(year, month0, 0)
	blanks := FirstWeekday(year, month0)
	days := DaysIn(year, month0)

	byKey := make(map[string][]*domain.Event, len(events))
	for _, e := range events {
		if e == nil {
			continue
		}
		if key, ok := Normalize(e.Date); ok {
			byKey[key] = append(byKey[key], e)
		}
	}

	ty, tm, td := b.now().Date()
	cells := make([]domain.CalendarDay, blanks, blanks+days)
	for day := 1; day <= days; day++ {
		key := DayKey(year, month0, day)
		dayEvents := byKey[key]
		cell := domain.CalendarDay{
			Day:      day,
			Key:      key,
			HasEvent: len(dayEvents) > 0,
			IsToday:  ty == year && int(tm)-1 == month0 && td == day,
		}
		for _, e := range dayEvents {
			if e.Involves(username) {
				cell.UserInvolved = true
				break
			}
		}
		cells = append(cells, cell)
	}
	return cells
}

// Month wraps Build with the header fields of the calendar page.
func (b *Builder) Month(year, month0 int, username string, events []*domain.Event) *domain.MonthView {
	year, month0 = Shift(year, month0, 0)
	return &domain.MonthView{
		Year:      year,
		Month:     month0,
		MonthName: MonthName(month0),
		Days:      b.Build(year, month0, username, events),
	}
}

// Today returns the current year and 0-based month according to the clock.
func (b *Builder) Today() (int, int) {
	t := b.now()
	return t.Year(), int(t.Month()) - 1
}
