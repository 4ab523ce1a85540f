package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"virtualevents/internal/domain"
)

type chatService struct {
	contextTimeout time.Duration
	now            func() time.Time
}

// NewChatService creates the ChatService behind the join-event page.
func NewChatService(timeout time.Duration) domain.ChatService {
	return &chatService{contextTimeout: timeout, now: time.Now}
}

func (s *chatService) List(ctx context.Context, sess domain.Session, eventID string) ([]*domain.Message, error) {
	_, store, err := requireSession(sess)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.event(ctx, store, eventID); err != nil {
		return nil, err
	}
	msgs, err := store.Messages().ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

func (s *chatService) Send(ctx context.Context, sess domain.Session, eventID, text string) (*domain.Message, error) {
	username, store, err := requireSession(sess)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is required", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.event(ctx, store, eventID)
	if err != nil {
		return nil, err
	}
	msg := domain.NewMessage(event, username, text, s.now())
	if err := store.Messages().Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return msg, nil
}

func (s *chatService) event(ctx context.Context, store domain.Store, id string) (*domain.Event, error) {
	event, err := store.Events().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}
