package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"virtualevents/internal/domain"

	"github.com/rs/xid"
)

type messageRepo struct {
	conn *sql.DB
}

func (r *messageRepo) Create(ctx context.Context, m *domain.Message) error {
	id := xid.New().String()
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO messages (id, event_id, event_name, sender, text, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, m.EventID, m.EventName, m.Sender, m.Text, m.Timestamp.UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("sqlite: creating message: %w", err)
	}
	m.ID = id
	return nil
}

func (r *messageRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.Message, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, event_id, event_name, sender, text, sent_at
		 FROM messages WHERE event_id = ? ORDER BY sent_at, rowid`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]*domain.Message, 0)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.EventID, &m.EventName, &m.Sender, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("sqlite: scanning message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}
