package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"virtualevents/internal/domain"

	"github.com/gosimple/slug"
	"github.com/lib/pq"
)

const eventColumns = `id, name, slug, date, time, organizer, attendees, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var attendees []string
	if err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.Date, &e.Time, &e.Organizer, pq.Array(&attendees), &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if attendees == nil {
		attendees = []string{}
	}
	e.Attendees = attendees
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, slug, date, time, organizer, attendees, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	attendees := e.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Slug, e.Date, e.Time, e.Organizer, pq.Array(attendees), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch, updatedAt time.Time) (*domain.Event, error) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
		set("slug", slug.Make(*patch.Name))
	}
	if patch.Date != nil {
		set("date", *patch.Date)
	}
	if patch.Time != nil {
		set("time", *patch.Time)
	}
	if patch.Attendees != nil {
		attendees := *patch.Attendees
		if attendees == nil {
			attendees = []string{}
		}
		set("attendees", pq.Array(attendees))
	}
	set("updated_at", updatedAt)
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return notFound(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
