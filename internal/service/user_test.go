package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/backend/internal/events"
	"userhub/backend/internal/models"
	"userhub/backend/internal/repo"
)

func newUserEnv(t *testing.T) (*UserService, *recordedEvents) {
	t.Helper()

	sink := &recordedEvents{}
	svc := &UserService{
		Repo:   &repo.UserRepo{DB: initTestDB(t)},
		Hasher: testHasher(),
		Events: sink,
	}
	return svc, sink
}

func TestUserCreate_DefaultsAndHash(t *testing.T) {
	t.Parallel()

	svc, sink := newUserEnv(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{
		Email:    "new@x.com",
		Username: "newbie",
		Password: "secretpass",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.NotEqual(t, "secretpass", user.PasswordHash)

	ok, err := svc.Hasher.Verify("secretpass", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, sink.published, 1)
	assert.Equal(t, events.TypeUserRegistered, sink.published[0].Type)
}

func TestUserCreate_Duplicates(t *testing.T) {
	t.Parallel()

	svc, _ := newUserEnv(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateUserInput{Email: "dup@x.com", Username: "dup", Password: "p"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{Email: "dup@x.com", Username: "other", Password: "p"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Create(ctx, CreateUserInput{Email: "other@x.com", Username: "dup", Password: "p"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserCreate_Validation(t *testing.T) {
	t.Parallel()

	svc, _ := newUserEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateUserInput
	}{
		{name: "missing email", input: CreateUserInput{Username: "u", Password: "p"}},
		{name: "missing username", input: CreateUserInput{Email: "a@x.com", Password: "p"}},
		{name: "missing password", input: CreateUserInput{Email: "a@x.com", Username: "u"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Create(ctx, tt.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUserUpdate_StrictRoleAndStatus(t *testing.T) {
	t.Parallel()

	svc, _ := newUserEnv(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{Email: "up@x.com", Username: "up", Password: "p"})
	require.NoError(t, err)

	badRole := "superuser"
	_, err = svc.Update(ctx, user.ID, UpdateUserInput{Role: &badRole})
	assert.ErrorIs(t, err, ErrValidation)

	badStatus := "banned"
	_, err = svc.Update(ctx, user.ID, UpdateUserInput{Status: &badStatus})
	assert.ErrorIs(t, err, ErrValidation)

	role := "moderator"
	status := "active"
	updated, err := svc.Update(ctx, user.ID, UpdateUserInput{Role: &role, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, updated.Role)
	assert.Equal(t, models.StatusActive, updated.Status)
}

func TestUserSuspendAndActivate(t *testing.T) {
	t.Parallel()

	svc, sink := newUserEnv(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{Email: "s@x.com", Username: "s", Password: "p"})
	require.NoError(t, err)

	suspended, err := svc.Suspend(ctx, user.ID, "abuse")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuspended, suspended.Status)

	var suspendEvent *events.UserEvent
	for i := range sink.published {
		if sink.published[i].Type == events.TypeUserSuspended {
			suspendEvent = &sink.published[i]
		}
	}
	require.NotNil(t, suspendEvent)
	assert.Equal(t, "abuse", suspendEvent.Reason)

	activated, err := svc.Activate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, activated.Status)
	assert.True(t, activated.EmailVerified)
}

func TestUserDelete(t *testing.T) {
	t.Parallel()

	svc, _ := newUserEnv(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{Email: "d@x.com", Username: "d", Password: "p"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID))

	_, err = svc.Get(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), ErrUserNotFound)
}

func TestUserList_Filters(t *testing.T) {
	t.Parallel()

	svc, _ := newUserEnv(t)
	ctx := context.Background()

	for _, u := range []struct {
		email, username string
		role            models.Role
	}{
		{"a@x.com", "a", models.RoleAdmin},
		{"b@x.com", "b", models.RoleUser},
		{"c@x.com", "c", models.RoleUser},
	} {
		created, err := svc.Create(ctx, CreateUserInput{Email: u.email, Username: u.username, Password: "p"})
		require.NoError(t, err)
		roleStr := string(u.role)
		_, err = svc.Update(ctx, created.ID, UpdateUserInput{Role: &roleStr})
		require.NoError(t, err)
	}

	all, total, err := svc.List(ctx, repo.ListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)

	plain, total, err := svc.List(ctx, repo.ListOptions{Role: models.RoleUser})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, plain, 2)

	paged, total, err := svc.List(ctx, repo.ListOptions{PerPage: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, paged, 2)
}
