// Package controllers holds the JSON HTTP handlers. Each one adapts a request
// to a single service call.
package controllers

import (
	"net/http"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/delivery/http/middleware"
	"virtualevents/internal/domain"
)

// requireSession returns the request's session or writes a 401.
func requireSession(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return nil, false
	}
	return sess, true
}
