package domain

// CalendarDay is one cell of a month grid. Day is 0 for the leading blanks,
// which never carry flags.
// swagger:model CalendarDay
type CalendarDay struct {
	Day          int    `json:"day"`
	Key          string `json:"key,omitempty"`
	HasEvent     bool   `json:"has_event"`
	UserInvolved bool   `json:"user_involved"`
	IsToday      bool   `json:"is_today"`
}

// Blank reports whether the cell is leading padding.
func (c CalendarDay) Blank() bool { return c.Day == 0 }

// MonthView is the calendar page for one month. Month is 0-based.
// swagger:model MonthView
type MonthView struct {
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	MonthName string        `json:"month_name"`
	Days      []CalendarDay `json:"days"`
}
