package controllers

import (
	"net/http"
	"testing"

	"virtualevents/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatController_ListMessages(t *testing.T) {
	svc := &fakeChatService{messages: []*domain.Message{{ID: "m1", Text: "hi"}, {ID: "m2", Text: "hello"}}}
	c := NewChatController(testLogger, svc)

	rr := serve("GET /events/{eventID}/messages", c.ListMessages, newRequest(http.MethodGet, "/events/e1/messages", "", "alice"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "e1", svc.lastID)
	var msgs []domain.Message
	require.Nil(t, decodeEnvelope(t, rr, &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[1].Text)
}

func TestChatController_SendMessage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
	}{
		{"sent", `{"text":"see you there"}`, nil, http.StatusCreated},
		{"blank text", `{"text":"   "}`, nil, http.StatusBadRequest},
		{"no body", ``, nil, http.StatusBadRequest},
		{"event gone", `{"text":"hello?"}`, domain.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeChatService{err: tt.svcErr}
			c := NewChatController(testLogger, svc)
			rr := serve("POST /events/{eventID}/messages", c.SendMessage,
				newRequest(http.MethodPost, "/events/e1/messages", tt.body, "bob"))
			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				var msg domain.Message
				require.Nil(t, decodeEnvelope(t, rr, &msg))
				assert.Equal(t, "bob", msg.Sender)
				assert.Equal(t, "see you there", msg.Text)
			}
		})
	}
}
