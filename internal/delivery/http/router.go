package http

import (
	"net/http"

	"virtualevents/internal/delivery/http/controllers"
	"virtualevents/internal/delivery/http/helpers"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers NewRouter mounts.
type Controllers struct {
	Auth     *controllers.AuthController
	Calendar *controllers.CalendarController
	Events   *controllers.EventController
	Chat     *controllers.ChatController
}

// NewRouter initializes the HTTP router with all application routes.
// requireAuth wraps every route that needs a logged-in session.
func NewRouter(c Controllers, requireAuth func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/password-recovery", c.Auth.RecoverPassword)
	mux.HandleFunc("POST /auth/logout", requireAuth(c.Auth.Logout))
	mux.HandleFunc("GET /users", requireAuth(c.Auth.ListUsers))

	// Calendar
	mux.HandleFunc("GET /calendar", requireAuth(c.Calendar.GetMonth))
	mux.HandleFunc("GET /calendar/days/{dayKey}", requireAuth(c.Calendar.GetDay))
	mux.HandleFunc("GET /calendar.ics", requireAuth(c.Calendar.ExportICS))

	// Events
	mux.HandleFunc("GET /events", requireAuth(c.Events.ListEvents))
	mux.HandleFunc("POST /events", requireAuth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(c.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(c.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(c.Events.DeleteEvent))
	mux.HandleFunc("GET /events/draft/attendees", requireAuth(c.Events.DraftAttendees))
	mux.HandleFunc("POST /events/draft/attendees/{username}", requireAuth(c.Events.ToggleAttendee))
	mux.HandleFunc("DELETE /events/draft/attendees", requireAuth(c.Events.ResetDraft))

	// Chat
	mux.HandleFunc("GET /events/{eventID}/messages", requireAuth(c.Chat.ListMessages))
	mux.HandleFunc("POST /events/{eventID}/messages", requireAuth(c.Chat.SendMessage))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
