package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"userhub/backend/internal/events"
	"userhub/backend/internal/hash"
	"userhub/backend/internal/models"
	"userhub/backend/internal/repo"
	"userhub/backend/internal/tokens"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func testHasher() hash.Argon2Hasher {
	return hash.Argon2Hasher{Params: hash.Params{
		Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32,
	}}
}

type recordedEvents struct {
	published []events.UserEvent
}

func (r *recordedEvents) Publish(_ context.Context, _ string, event events.UserEvent) error {
	r.published = append(r.published, event)
	return nil
}

type authEnv struct {
	Svc    *AuthService
	Repo   *repo.UserRepo
	Codec  *tokens.Codec
	Events *recordedEvents
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	userRepo := &repo.UserRepo{DB: initTestDB(t)}
	codec := &tokens.Codec{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
	sink := &recordedEvents{}
	return &authEnv{
		Svc: &AuthService{
			Users:  userRepo,
			Hasher: testHasher(),
			Codec:  codec,
			Events: sink,
		},
		Repo:   userRepo,
		Codec:  codec,
		Events: sink,
	}
}

func (e *authEnv) createUser(t *testing.T, email, password string, role models.Role, status models.Status) *models.User {
	t.Helper()

	pwHash, err := testHasher().Hash(password)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: pwHash,
		Role:         role,
		Status:       status,
	}
	require.NoError(t, e.Repo.Create(context.Background(), user))
	return user
}

func TestAuthenticate_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	env.createUser(t, "real@x.com", "rightpass", models.RoleUser, models.StatusActive)

	_, errMissing := env.Svc.Authenticate(ctx, "missing@x.com", "anything")
	_, errWrong := env.Svc.Authenticate(ctx, "real@x.com", "wrongpass")

	require.Error(t, errMissing)
	require.Error(t, errWrong)
	assert.ErrorIs(t, errMissing, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errMissing.Error(), errWrong.Error())
}

func TestAuthenticate_SuspendedRejectedDespiteCorrectPassword(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	env.createUser(t, "sus@x.com", "rightpass", models.RoleUser, models.StatusSuspended)

	_, err := env.Svc.Authenticate(context.Background(), "sus@x.com", "rightpass")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccountSuspended)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_Success(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	created := env.createUser(t, "ok@x.com", "rightpass", models.RoleModerator, models.StatusActive)

	user, err := env.Svc.Authenticate(context.Background(), "ok@x.com", "rightpass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, models.RoleModerator, user.Role)
}

func TestLogin_IssuesVerifiablePair(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	created := env.createUser(t, "login@x.com", "rightpass", models.RoleUser, models.StatusActive)

	res, err := env.Svc.Login(context.Background(), "login@x.com", "rightpass", "10.0.0.1")
	require.NoError(t, err)

	claims, err := env.Codec.VerifyAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), claims.Subject)
	assert.Equal(t, "login@x.com", claims.Email)
	assert.Equal(t, "user", claims.Role)

	_, err = env.Codec.VerifyRefresh(res.RefreshToken)
	require.NoError(t, err)

	// Access must not pass as refresh, and vice versa.
	_, err = env.Codec.VerifyRefresh(res.AccessToken)
	assert.ErrorIs(t, err, tokens.ErrInvalidToken)
	_, err = env.Codec.VerifyAccess(res.RefreshToken)
	assert.ErrorIs(t, err, tokens.ErrInvalidToken)

	stored, err := env.Repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, "10.0.0.1", stored.LastLoginIP)
}

func TestRefresh_RotatesPair(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	created := env.createUser(t, "rot@x.com", "rightpass", models.RoleUser, models.StatusActive)

	res, err := env.Svc.Login(context.Background(), "rot@x.com", "rightpass", "")
	require.NoError(t, err)

	rotated, err := env.Svc.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)

	claims, err := env.Codec.VerifyAccess(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), claims.Subject)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	env.createUser(t, "swap@x.com", "rightpass", models.RoleUser, models.StatusActive)

	res, err := env.Svc.Login(context.Background(), "swap@x.com", "rightpass", "")
	require.NoError(t, err)

	_, err = env.Svc.Refresh(context.Background(), res.AccessToken)
	assert.ErrorIs(t, err, tokens.ErrInvalidToken)
}

func TestRefresh_SuspendedSinceIssue(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "late@x.com", "rightpass", models.RoleUser, models.StatusActive)

	res, err := env.Svc.Login(ctx, "late@x.com", "rightpass", "")
	require.NoError(t, err)

	created.Status = models.StatusSuspended
	require.NoError(t, env.Repo.Update(ctx, created))

	_, err = env.Svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrAccountSuspended)
}

func TestRefresh_GarbageToken(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	_, err := env.Svc.Refresh(context.Background(), "not-a-valid-jwt")
	assert.ErrorIs(t, err, tokens.ErrInvalidToken)
}

func TestChangePassword_WrongCurrentKeepsOldHash(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "cp@x.com", "oldpass", models.RoleUser, models.StatusActive)

	err := env.Svc.ChangePassword(ctx, created.ID, "wrongpass", "newpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.Svc.Authenticate(ctx, "cp@x.com", "oldpass")
	require.NoError(t, err, "old password must still work")
	assert.Empty(t, env.Events.published)
}

func TestChangePassword_Success(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	ctx := context.Background()
	created := env.createUser(t, "cp2@x.com", "oldpass", models.RoleUser, models.StatusActive)

	require.NoError(t, env.Svc.ChangePassword(ctx, created.ID, "oldpass", "newpass"))

	_, err := env.Svc.Authenticate(ctx, "cp2@x.com", "newpass")
	require.NoError(t, err)

	_, err = env.Svc.Authenticate(ctx, "cp2@x.com", "oldpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, env.Events.published, 1)
	assert.Equal(t, events.TypeUserPasswordChanged, env.Events.published[0].Type)
}

func TestChangePassword_UnknownUser(t *testing.T) {
	t.Parallel()

	env := newAuthEnv(t)
	err := env.Svc.ChangePassword(context.Background(), uuid.New(), "a", "b")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
