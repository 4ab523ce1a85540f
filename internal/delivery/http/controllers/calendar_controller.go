package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/domain"
)

// MonthSuccessResponse is the success envelope for GET /calendar (200).
type MonthSuccessResponse struct {
	Data  *domain.MonthView `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for event lists (200).
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type CalendarController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Now     func() time.Time
}

func NewCalendarController(logger *slog.Logger, svc domain.EventService) *CalendarController {
	return &CalendarController{
		Logger:  logger,
		Service: svc,
		Now:     time.Now,
	}
}

// GetMonth godoc
// @Summary Month grid
// @Description Returns the month's day cells, led by blank cells so day 1 falls on its weekday (Sunday first). Cells flag days with events, days involving the caller and today. Defaults to the current month.
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year"
// @Param month query int false "Month, 0-based (0 = January)"
// @Success 200 {object} controllers.MonthSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar [get]
func (c *CalendarController) GetMonth(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	now := c.Now().Local()
	year, month := now.Year(), int(now.Month())-1

	q := r.URL.Query()
	if s := q.Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "year must be an integer")
			return
		}
		year = v
	}
	if s := q.Get("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "month must be an integer")
			return
		}
		month = v
	}

	view, err := c.Service.Month(r.Context(), sess, year, month)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// GetDay godoc
// @Summary Events on a day
// @Description Events whose date falls on the given day key, in directory order.
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param dayKey path string true "Day key (YYYY-MM-DD)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar/days/{dayKey} [get]
func (c *CalendarController) GetDay(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	events, err := c.Service.Day(r.Context(), sess, r.PathValue("dayKey"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ExportICS godoc
// @Summary iCalendar feed
// @Description The caller's events (organized or attended) as an iCalendar document.
// @Tags calendar
// @Produce text/calendar
// @Security BearerAuth
// @Success 200 {string} string "VCALENDAR document"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /calendar.ics [get]
func (c *CalendarController) ExportICS(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	data, err := c.Service.Export(r.Context(), sess)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="events.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
