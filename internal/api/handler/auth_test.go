package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamboard/teamboard/internal/api/handler"
	"github.com/teamboard/teamboard/internal/api/response"
	"github.com/teamboard/teamboard/internal/auth"
	"github.com/teamboard/teamboard/internal/user"
)

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*user.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return user.ErrDuplicateUsername
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	cp := *u
	f.users[u.ID] = &cp
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

func newAuthHandler() (*handler.AuthHandler, *auth.Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	svc := auth.NewService(repo, "test-secret", 15*time.Minute, 24*time.Hour, bcrypt.MinCost)
	return handler.NewAuthHandler(svc, repo), svc, repo
}

func doJSON(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func dataMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	env := decode(t, rec)
	m, ok := env.Data.(map[string]any)
	require.True(t, ok, "expected object data, got %T", env.Data)
	return m
}

func TestRegister(t *testing.T) {
	h, _, repo := newAuthHandler()

	rec := doJSON(h.Register, http.MethodPost, "/api/register/",
		`{"username":"alice","email":"alice@example.com","password":"longenough"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := dataMap(t, rec)
	assert.EqualValues(t, 1, data["id"])
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "alice@example.com", data["email"])
	assert.NotContains(t, rec.Body.String(), "password")

	stored, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "longenough", stored.PasswordHash)
}

func TestRegister_ValidationError(t *testing.T) {
	h, _, _ := newAuthHandler()

	rec := doJSON(h.Register, http.MethodPost, "/api/register/",
		`{"username":"","email":"bad","password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.NotNil(t, env.Error.Details)
}

func TestRegister_Duplicate(t *testing.T) {
	h, _, _ := newAuthHandler()

	body := `{"username":"alice","email":"alice@example.com","password":"longenough"}`
	rec := doJSON(h.Register, http.MethodPost, "/api/register/", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(h.Register, http.MethodPost, "/api/register/", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE_USER", env.Error.Code)
}

func TestRegister_InvalidJSON(t *testing.T) {
	h, _, _ := newAuthHandler()

	rec := doJSON(h.Register, http.MethodPost, "/api/register/", "{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_JSON", env.Error.Code)
}

func TestToken(t *testing.T) {
	h, svc, _ := newAuthHandler()

	rec := doJSON(h.Register, http.MethodPost, "/api/register/",
		`{"username":"alice","email":"alice@example.com","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(h.Token, http.MethodPost, "/api/token/",
		`{"username":"alice","password":"longenough"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := dataMap(t, rec)
	access, _ := data["access"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, data["refresh"])

	identity, err := svc.Authenticate(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
}

func TestToken_BadCredentials(t *testing.T) {
	h, _, _ := newAuthHandler()

	rec := doJSON(h.Token, http.MethodPost, "/api/token/",
		`{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestToken_MissingFields(t *testing.T) {
	h, _, _ := newAuthHandler()

	rec := doJSON(h.Token, http.MethodPost, "/api/token/", `{"username":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	h, svc, _ := newAuthHandler()

	rec := doJSON(h.Register, http.MethodPost, "/api/register/",
		`{"username":"alice","email":"alice@example.com","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	pair, err := svc.Login(context.Background(), "alice", "longenough")
	require.NoError(t, err)

	rec = doJSON(h.Refresh, http.MethodPost, "/api/token/refresh/",
		`{"refresh":"`+pair.Refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, dataMap(t, rec)["access"])
}

func TestRefreshEndpoint_InvalidToken(t *testing.T) {
	h, _, _ := newAuthHandler()

	rec := doJSON(h.Refresh, http.MethodPost, "/api/token/refresh/",
		`{"refresh":"garbage"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile_NoIdentity(t *testing.T) {
	h, _, _ := newAuthHandler()

	rec := httptest.NewRecorder()
	h.Profile(rec, httptest.NewRequest(http.MethodGet, "/api/profile/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	h := handler.NewHealthHandler(fakePinger{}, "1.2.3")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataMap(t, rec)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.Equal(t, "up", data["database"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	h := handler.NewHealthHandler(fakePinger{err: errors.New("conn refused")}, "1.2.3")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	data := dataMap(t, rec)
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, "down", data["database"])
}
