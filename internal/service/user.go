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
	"userhub/backend/internal/repo"
	"userhub/backend/internal/search"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
	ErrValidation    = errors.New("validation failed")
)

type UserService struct {
	Repo   *repo.UserRepo
	Hasher hash.Argon2Hasher
	Events EventSink
	Index  *search.UserIndex
}

type CreateUserInput struct {
	Email    string
	Username string
	Password string
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.create")

	if input.Email == "" || input.Username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: email, username and password are required", ErrValidation)
	}

	if existing, err := s.Repo.FindByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}
	if existing, err := s.Repo.FindByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}

	pwHash, err := s.Hasher.Hash(input.Password)
	if err != nil {
		l.Error("hashing failed", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		Status:       models.StatusPending,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserEvent{
		Type:   events.TypeUserRegistered,
		UserID: user.ID.String(),
		Email:  user.Email,
		At:     time.Now().UTC(),
	})
	s.reindex(ctx, user)

	l.Info("user created", "user_id", user.ID)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

type UpdateUserInput struct {
	Role   *string
	Status *string
}

// Update applies role/status changes. Values are parsed strictly; an
// unknown role or status is a validation error, not a silent default.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		role, err := models.ParseRole(*input.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err)
		}
		user.Role = role
	}
	if input.Status != nil {
		status, err := models.ParseStatus(*input.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err)
		}
		user.Status = status
	}

	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.reindex(ctx, user)
	return user, nil
}

func (s *UserService) Activate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Status = models.StatusActive
	user.EmailVerified = true
	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.reindex(ctx, user)
	return user, nil
}

func (s *UserService) Suspend(ctx context.Context, id uuid.UUID, reason string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.suspend", "user_id", id)

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Status = models.StatusSuspended
	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserEvent{
		Type:   events.TypeUserSuspended,
		UserID: user.ID.String(),
		Email:  user.Email,
		Reason: reason,
		At:     time.Now().UTC(),
	})
	s.reindex(ctx, user)

	l.Info("user suspended", "reason", reason)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if s.Index != nil {
		if err := s.Index.DeleteUser(ctx, id.String()); err != nil {
			logging.FromContext(ctx).Warn("search index delete failed", "user_id", id, "error", err)
		}
	}
	return nil
}

func (s *UserService) List(ctx context.Context, opts repo.ListOptions) ([]models.User, int64, error) {
	return s.Repo.List(ctx, opts)
}

func (s *UserService) Search(ctx context.Context, query string, size int) ([]search.UserDoc, error) {
	if s.Index == nil {
		return nil, fmt.Errorf("search index not configured")
	}
	return s.Index.Search(ctx, query, size)
}

func (s *UserService) publish(ctx context.Context, event events.UserEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, event.UserID, event); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "type", event.Type, "error", err)
	}
}

func (s *UserService) reindex(ctx context.Context, user *models.User) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexUser(ctx, user); err != nil {
		logging.FromContext(ctx).Warn("search index update failed", "user_id", user.ID, "error", err)
	}
}
