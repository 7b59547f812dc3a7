package session

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/internal/database"
	"microblog/internal/models"
	"microblog/internal/repositories"
)

func newTestManager(t *testing.T, ttl time.Duration) (*Manager, repositories.UserRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	db, err := database.Open(dsn)
	require.NoError(t, err)

	users := repositories.NewUserRepository(db)
	sessions := repositories.NewSessionRepository(db)
	return NewManager(users, sessions, []byte("development-key"), ttl), users
}

func registerUser(t *testing.T, users repositories.UserRepository, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, users.Create(user, "correct horse"))
	return user
}

// requestWithSessionCookie logs the user in and builds a request that
// carries the resulting cookie, the way a browser would.
func requestWithSessionCookie(t *testing.T, m *Manager, user *models.User) *http.Request {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, m.Issue(rr, user))

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies, "login must set a session cookie")

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestAuthenticate(t *testing.T) {
	m, users := newTestManager(t, time.Hour)
	registerUser(t, users, "alice")

	user, err := m.Authenticate("alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = m.Authenticate("alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = m.Authenticate("nobody", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateBannedUser(t *testing.T) {
	m, users := newTestManager(t, time.Hour)
	alice := registerUser(t, users, "alice")
	require.NoError(t, users.SetFlags(alice.ID, false, true))

	// A banned account with valid credentials fails with the exact
	// same error as an unknown account.
	_, err := m.Authenticate("alice", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	m, users := newTestManager(t, time.Hour)
	alice := registerUser(t, users, "alice")

	req := requestWithSessionCookie(t, m, alice)
	loaded, err := m.UserFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, loaded.ID)

	// Logout invalidates the binding immediately: the same cookie no
	// longer resolves.
	m.Clear(httptest.NewRecorder(), req)
	_, err = m.UserFromRequest(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestBanDeauthorizesOnNextRequest(t *testing.T) {
	m, users := newTestManager(t, time.Hour)
	alice := registerUser(t, users, "alice")

	req := requestWithSessionCookie(t, m, alice)
	_, err := m.UserFromRequest(req)
	require.NoError(t, err)

	require.NoError(t, users.SetFlags(alice.ID, false, true))

	_, err = m.UserFromRequest(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestExpiredSessionRejected(t *testing.T) {
	m, users := newTestManager(t, -time.Minute)
	alice := registerUser(t, users, "alice")

	req := requestWithSessionCookie(t, m, alice)
	_, err := m.UserFromRequest(req)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestRevokeKillsAllSessions(t *testing.T) {
	m, users := newTestManager(t, time.Hour)
	alice := registerUser(t, users, "alice")

	first := requestWithSessionCookie(t, m, alice)
	second := requestWithSessionCookie(t, m, alice)

	require.NoError(t, m.Revoke(alice.ID))

	_, err := m.UserFromRequest(first)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = m.UserFromRequest(second)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTamperedCookieRejected(t *testing.T) {
	m, users := newTestManager(t, time.Hour)
	registerUser(t, users, "alice")

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-signed-value"})
	_, err := m.UserFromRequest(req)
	assert.ErrorIs(t, err, ErrNoSession)
}
