package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"virtualevents/internal/domain"
	"virtualevents/internal/session"
)

const tokenTypeBearer = "Bearer"

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	store          domain.Store
	registry       *session.Registry
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	now            func() time.Time
}

// NewAuthService creates an AuthService. Sessions opened at login are handed the given store.
// emailService may be nil.
func NewAuthService(
	store domain.Store,
	registry *session.Registry,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AuthService {
	return &authService{
		store:          store,
		registry:       registry,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if input.Password != input.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if email != "" && !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	_, err := s.store.Users().GetByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, domain.ErrUsernameTaken
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := domain.NewUser(username, email, hash, salt, now, now)
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.emailService != nil && user.Email != "" {
		data := &domain.WelcomeMessageEmailData{Email: user.Email, Username: user.Username}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "username", user.Username, "err", err)
		}
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	sess, err := s.registry.Open(user.Username, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	token, err := s.tokenIssuer.Issue(sess.ID(), user.Username, s.tokenExpiry)
	if err != nil {
		s.registry.Close(sess.ID())
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &domain.LoginResult{
		Token:     token,
		TokenType: tokenTypeBearer,
		Username:  user.Username,
		ExpiresAt: s.now().Add(s.tokenExpiry),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sess domain.Session) error {
	if sess == nil {
		return domain.ErrUnauthenticated
	}
	if _, _, err := sess.Require(); err != nil {
		return err
	}
	s.registry.Close(sess.ID())
	return nil
}

func (s *authService) RecoverPassword(ctx context.Context, username, password, confirmPassword string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and new password are required", domain.ErrInvalidInput)
	}
	if password != confirmPassword {
		return domain.ErrPasswordMismatch
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.now()
	if err := s.store.Users().UpdatePassword(ctx, username, hash, salt, now); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	if s.emailService == nil {
		return nil
	}
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil || user.Email == "" {
		return nil
	}
	data := &domain.PasswordChangedEmailData{
		Email:     user.Email,
		Username:  user.Username,
		ChangedAt: now.UTC().Format(time.RFC1123),
	}
	if err := s.emailService.SendPasswordChanged(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "password changed email failed", "username", username, "err", err)
	}
	return nil
}

func (s *authService) ListOtherUsers(ctx context.Context, sess domain.Session) ([]*domain.User, error) {
	username, store, err := requireSession(sess)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, err := store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	others := make([]*domain.User, 0, len(users))
	for _, u := range users {
		if u.Username != username {
			others = append(others, u)
		}
	}
	return others, nil
}

// requireSession returns the session's user and store, failing before any store access.
func requireSession(sess domain.Session) (string, domain.Store, error) {
	if sess == nil {
		return "", nil, domain.ErrUnauthenticated
	}
	return sess.Require()
}
