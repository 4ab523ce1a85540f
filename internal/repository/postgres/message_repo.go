package postgres

import (
	"context"
	"database/sql"

	"virtualevents/internal/domain"
)

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) domain.MessageRepository {
	return &messageRepository{DB: db}
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (event_id, event_name, sender, text, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, m.EventID, m.EventName, m.Sender, m.Text, m.Timestamp).Scan(&m.ID)
	if hasCode(err, codeForeignKeyViolation) {
		return domain.ErrNotFound
	}
	return notFound(err)
}

func (r *messageRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Message, error) {
	query := `
		SELECT id, event_id, event_name, sender, text, sent_at
		FROM messages
		WHERE event_id = $1
		ORDER BY sent_at, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, notFound(err)
	}
	defer rows.Close()
	msgs := make([]*domain.Message, 0)
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.EventID, &m.EventName, &m.Sender, &m.Text, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
