package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"virtualevents/internal/delivery/http/helpers"
	"virtualevents/internal/domain"
)

// SendMessageRequest is the request body for POST /events/{eventID}/messages.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// Validate implements Validator.
func (req SendMessageRequest) Validate() []string {
	if strings.TrimSpace(req.Text) == "" {
		return []string{"text is required"}
	}
	return nil
}

// MessageListSuccessResponse is the success envelope for GET /events/{eventID}/messages (200).
type MessageListSuccessResponse struct {
	Data  []*domain.Message `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MessageSuccessResponse is the success envelope for POST /events/{eventID}/messages (201).
type MessageSuccessResponse struct {
	Data  *domain.Message   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ChatController struct {
	Logger  *slog.Logger
	Service domain.ChatService
}

func NewChatController(logger *slog.Logger, svc domain.ChatService) *ChatController {
	return &ChatController{
		Logger:  logger,
		Service: svc,
	}
}

// ListMessages godoc
// @Summary Event chat
// @Description The event's messages, oldest first.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.MessageListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/messages [get]
func (c *ChatController) ListMessages(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	msgs, err := c.Service.List(r.Context(), sess, r.PathValue("eventID"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, msgs)
}

// SendMessage godoc
// @Summary Post to event chat
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body SendMessageRequest true "Message"
// @Success 201 {object} controllers.MessageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/messages [post]
func (c *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	msg, err := c.Service.Send(r.Context(), sess, r.PathValue("eventID"), req.Text)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, msg)
}
