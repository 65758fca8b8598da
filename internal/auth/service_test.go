package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamboard/teamboard/internal/auth"
	"github.com/teamboard/teamboard/internal/user"
)

type fakeUserRepo struct {
	users map[int64]*user.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUserRepo) List(_ context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func newTestService(t *testing.T, accessTTL time.Duration) (*auth.Service, *fakeUserRepo) {
	t.Helper()

	repo := &fakeUserRepo{users: make(map[int64]*user.User)}
	svc := auth.NewService(repo, "test-secret", accessTTL, 24*time.Hour, bcrypt.MinCost)

	hash, err := svc.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	repo.users[3] = &user.User{ID: 3, Username: "alice", Email: "alice@example.com", PasswordHash: hash}

	return svc, repo
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t, 15*time.Minute)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "alice", "correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	identity, err := svc.Authenticate(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, int64(3), identity.UserID)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t, 15*time.Minute)

	_, err := svc.Login(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := newTestService(t, 15*time.Minute)

	_, err := svc.Login(context.Background(), "mallory", "whatever")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestRefreshIssuesWorkingAccessToken(t *testing.T) {
	svc, _ := newTestService(t, 15*time.Minute)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "alice", "correct horse battery staple")
	require.NoError(t, err)

	access, err := svc.Refresh(pair.Refresh)
	require.NoError(t, err)

	identity, err := svc.Authenticate(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, int64(3), identity.UserID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(t, 15*time.Minute)

	pair, err := svc.Login(context.Background(), "alice", "correct horse battery staple")
	require.NoError(t, err)

	_, err = svc.Refresh(pair.Access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	svc, _ := newTestService(t, 15*time.Minute)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "alice", "correct horse battery staple")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, pair.Refresh)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc, _ := newTestService(t, -time.Minute)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "alice", "correct horse battery staple")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, pair.Access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthenticateWrongSecret(t *testing.T) {
	svc, repo := newTestService(t, 15*time.Minute)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "alice", "correct horse battery staple")
	require.NoError(t, err)

	other := auth.NewService(repo, "different-secret", 15*time.Minute, 24*time.Hour, bcrypt.MinCost)
	_, err = other.Authenticate(ctx, pair.Access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthenticateUnknownSubject(t *testing.T) {
	svc, repo := newTestService(t, 15*time.Minute)
	ctx := context.Background()

	pair, err := svc.Login(ctx, "alice", "correct horse battery staple")
	require.NoError(t, err)

	delete(repo.users, 3)

	_, err = svc.Authenticate(ctx, pair.Access)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthenticateGarbage(t *testing.T) {
	svc, _ := newTestService(t, 15*time.Minute)

	_, err := svc.Authenticate(context.Background(), "not.a.jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
