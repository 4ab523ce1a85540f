package domain

import (
	"context"
	"time"
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is set by the store on create.
func NewUser(username, email, passwordHash, salt string, createdAt, updatedAt time.Time) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// PasswordHasher handles salt generation, hashing, and verification.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenClaims is what a verified session token carries.
type TokenClaims struct {
	SessionID string
	Username  string
}

// TokenIssuer issues signed session tokens.
type TokenIssuer interface {
	Issue(sessionID, username string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
}

// UserRepository defines the users collection of the store.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	// UpdatePassword returns ErrNotFound when no user matched.
	UpdatePassword(ctx context.Context, username, passwordHash, salt string, updatedAt time.Time) error
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService covers registration, login/logout and password recovery.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, sess Session) error
	RecoverPassword(ctx context.Context, username, password, confirmPassword string) error
	// ListOtherUsers returns every user except the session's own, for attendee pickers.
	ListOtherUsers(ctx context.Context, sess Session) ([]*User, error)
}
