package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"userhub/backend/internal/events"
	"userhub/backend/internal/hash"
	"userhub/backend/internal/logging"
	"userhub/backend/internal/models"
	"userhub/backend/internal/tokens"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Callers must never be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountSuspended   = errors.New("account suspended")
)

// UserStore is the persistence surface AuthService depends on.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ReplacePasswordHash(ctx context.Context, id uuid.UUID, newHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, ip string) error
}

// EventSink decouples the service from the Kafka producer in tests.
type EventSink interface {
	Publish(ctx context.Context, key string, event events.UserEvent) error
}

type AuthService struct {
	Users  UserStore
	Hasher hash.Argon2Hasher
	Codec  *tokens.Codec
	Events EventSink
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	User         *models.User
}

// Authenticate checks the credentials and the account status. Unknown
// email and wrong password return the identical error; a suspended account
// with a correct password is rejected separately.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate")

	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		l.Error("user lookup failed", "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		// Burn a derivation so a missing account costs the same as a
		// wrong password.
		_, _ = s.Hasher.Hash(password)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.Hasher.Verify(password, user.PasswordHash)
	if err != nil {
		l.Error("password record corrupt", "user_id", user.ID, "error", err)
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if user.Status == models.StatusSuspended {
		return nil, ErrAccountSuspended
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	result, err := s.issuePair(user)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return nil, err
	}

	if err := s.Users.UpdateLastLogin(ctx, user.ID, ip); err != nil {
		l.Warn("last login update failed", "user_id", user.ID, "error", err)
	}

	l.Info("login successful", "user_id", user.ID)
	return result, nil
}

// Refresh trades a valid refresh token for a fresh pair. The account is
// re-read so role changes and suspensions take effect on rotation.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Codec.VerifyRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh rejected", "error", err)
		return nil, tokens.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		l.Warn("refresh rejected", "error", err)
		return nil, tokens.ErrInvalidToken
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		l.Warn("refresh rejected", "user_id", userID, "error", err)
		return nil, tokens.ErrInvalidToken
	}
	if user.Status == models.StatusSuspended {
		return nil, ErrAccountSuspended
	}

	result, err := s.issuePair(user)
	if err != nil {
		l.Error("token issue failed", "error", err)
		return nil, err
	}
	return result, nil
}

// ChangePassword replaces the stored hash only after the current password
// verifies against it.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.change_password", "user_id", userID)

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.Hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		l.Error("password record corrupt", "error", err)
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	newHash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		l.Error("hashing failed", "error", err)
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.Users.ReplacePasswordHash(ctx, userID, newHash); err != nil {
		return err
	}

	s.publish(ctx, events.UserEvent{
		Type:   events.TypeUserPasswordChanged,
		UserID: user.ID.String(),
		Email:  user.Email,
		At:     time.Now().UTC(),
	})

	l.Info("password changed")
	return nil
}

func (s *AuthService) issuePair(user *models.User) (*LoginResult, error) {
	access, err := s.Codec.IssueAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Codec.IssueRefresh(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	now := time.Now()
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    now.Add(s.Codec.AccessTTL),
		RefreshExp:   now.Add(s.Codec.RefreshTTL),
		User:         user,
	}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.UserEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event.UserID, event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "type", event.Type, "error", err)
	}
}
