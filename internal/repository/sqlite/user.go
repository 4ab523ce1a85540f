package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"virtualevents/internal/domain"

	"github.com/rs/xid"
)

type userRepo struct {
	conn *sql.DB
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) error {
	id := xid.New().String()
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, salt, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, u.Username, u.Email, u.PasswordHash, u.Salt, u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}
	u.ID = id
	return nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, salt, created_at, updated_at
		 FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, username, email, created_at, updated_at FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user: %w", err)
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (r *userRepo) UpdatePassword(ctx context.Context, username, passwordHash, salt string, updatedAt time.Time) error {
	res, err := r.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, salt = ?, updated_at = ? WHERE username = ?`,
		passwordHash, salt, updatedAt.UTC(), username,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
