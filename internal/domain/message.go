package domain

import (
	"context"
	"time"
)

// Message is one chat line posted on an event's join page.
// swagger:model Message
type Message struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	EventName string    `json:"event_name"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage returns a new Message. ID is set by the store on create.
func NewMessage(event *Event, sender, text string, ts time.Time) *Message {
	return &Message{
		EventID:   event.ID,
		EventName: event.Name,
		Sender:    sender,
		Text:      text,
		Timestamp: ts,
	}
}

// MessageRepository defines the messages collection of the store.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	// ListByEvent returns the event's messages ordered by timestamp ascending.
	ListByEvent(ctx context.Context, eventID string) ([]*Message, error)
}

// ChatService backs the join-event page.
type ChatService interface {
	List(ctx context.Context, sess Session, eventID string) ([]*Message, error)
	Send(ctx context.Context, sess Session, eventID, text string) (*Message, error)
}
