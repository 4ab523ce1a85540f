package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/domain"
)

// CreateEventRequest is the request body for POST /events. When attendees is
// omitted the caller's draft selection is used and then cleared.
type CreateEventRequest struct {
	Name      string   `json:"name"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Attendees []string `json:"attendees,omitempty"`
}

// Validate implements Validator.
func (req CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(req.Date) == "" {
		errs = append(errs, "date is required")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. Omitted fields are unchanged.
type UpdateEventRequest struct {
	Name      *string   `json:"name"`
	Date      *string   `json:"date"`
	Time      *string   `json:"time"`
	Attendees *[]string `json:"attendees"`
}

// Validate implements Validator.
func (req UpdateEventRequest) Validate() []string {
	var errs []string
	if req.Name == nil && req.Date == nil && req.Time == nil && req.Attendees == nil {
		errs = append(errs, "at least one field is required")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	return errs
}

// EventSuccessResponse is the success envelope for single-event responses.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// AttendeesSuccessResponse is the success envelope for the draft attendee selection.
type AttendeesSuccessResponse struct {
	Data  []string          `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description All events, or with involving=me only those the caller organizes or attends.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param involving query string false "Set to \"me\" to filter"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	events, err := c.Service.List(r.Context(), sess, r.URL.Query().Get("involving") == "me")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// CreateEvent godoc
// @Summary Create an event
// @Description The caller becomes the organizer. Attendees must be registered users; the organizer is never listed as an attendee.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	event, err := c.Service.Create(r.Context(), sess, domain.CreateEventInput{
		Name:      req.Name,
		Date:      req.Date,
		Time:      req.Time,
		Attendees: req.Attendees,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	event, err := c.Service.Get(r.Context(), sess, r.PathValue("eventID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Only the organizer can update. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	event, err := c.Service.Update(r.Context(), sess, r.PathValue("eventID"), domain.EventPatch{
		Name:      req.Name,
		Date:      req.Date,
		Time:      req.Time,
		Attendees: req.Attendees,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Only the organizer can delete. The event's chat messages go with it.
// @Tags events
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), sess, r.PathValue("eventID")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DraftAttendees godoc
// @Summary Current attendee selection
// @Description The attendees picked so far for the next event, sorted.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.AttendeesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/draft/attendees [get]
func (c *EventController) DraftAttendees(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	names, err := c.Service.DraftAttendees(r.Context(), sess)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, names)
}

// ToggleAttendee godoc
// @Summary Toggle an attendee
// @Description Adds the user to the selection, or removes them if already selected. Returns the new selection.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username"
// @Success 200 {object} controllers.AttendeesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/draft/attendees/{username} [post]
func (c *EventController) ToggleAttendee(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	names, err := c.Service.ToggleAttendee(r.Context(), sess, r.PathValue("username"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, names)
}

// ResetDraft godoc
// @Summary Clear the attendee selection
// @Tags events
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/draft/attendees [delete]
func (c *EventController) ResetDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if err := c.Service.ResetDraft(r.Context(), sess); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
