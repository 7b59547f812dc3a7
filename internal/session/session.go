// Package session binds a client's cookie to a user identity. The
// cookie only carries an opaque token, HMAC-signed with securecookie;
// the token maps to a row in the sessions table, so a session can be
// revoked server-side at any moment.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"microblog/internal/models"
	"microblog/internal/repositories"
)

const CookieName = "session"

// ErrInvalidCredentials covers unknown username, wrong password and
// banned account alike. One message for all three, so login responses
// never confirm whether an account exists.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrNoSession means the request carries no usable identity.
var ErrNoSession = errors.New("no valid session")

type Manager struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	codec    *securecookie.SecureCookie
	ttl      time.Duration
}

func NewManager(users repositories.UserRepository, sessions repositories.SessionRepository, secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		users:    users,
		sessions: sessions,
		codec:    securecookie.New(secret, nil),
		ttl:      ttl,
	}
}

// Authenticate resolves a credential pair to a user. A banned user
// fails exactly like a missing one.
func (m *Manager) Authenticate(username, password string) (*models.User, error) {
	user, err := m.users.FindByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Issue creates a session row for the user and sets the signed cookie.
func (m *Manager) Issue(w http.ResponseWriter, user *models.User) error {
	now := time.Now().UTC()
	session := &models.Session{
		Token:     uuid.New().String(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.sessions.Create(session); err != nil {
		return err
	}

	encoded, err := m.codec.Encode(CookieName, session.Token)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear deletes the session row and expires the cookie. Logout is
// effective immediately: the token is gone from the store before the
// response is written.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if token, err := m.tokenFromRequest(r); err == nil {
		m.sessions.Delete(token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// UserFromRequest materializes the request's identity. The ban flag is
// re-read from the user row on every call, so a user banned mid-session
// is rejected on their very next request; banned and expired sessions
// are dropped from the store as they are seen.
func (m *Manager) UserFromRequest(r *http.Request) (*models.User, error) {
	token, err := m.tokenFromRequest(r)
	if err != nil {
		return nil, ErrNoSession
	}

	session, err := m.sessions.Find(token)
	if err != nil {
		return nil, ErrNoSession
	}
	if session.Expired(time.Now().UTC()) {
		m.sessions.Delete(token)
		return nil, ErrNoSession
	}

	user, err := m.users.FindByID(session.UserID)
	if err != nil {
		return nil, ErrNoSession
	}
	if user.IsBanned {
		m.sessions.Delete(token)
		return nil, ErrNoSession
	}
	return user, nil
}

// Revoke ends every live session of one user.
func (m *Manager) Revoke(userID uint) error {
	return m.sessions.DeleteForUser(userID)
}

// SweepExpired removes stale session rows; called periodically from
// the server loop.
func (m *Manager) SweepExpired() error {
	return m.sessions.DeleteExpired()
}

func (m *Manager) tokenFromRequest(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	var token string
	if err := m.codec.Decode(CookieName, cookie.Value, &token); err != nil {
		return "", err
	}
	return token, nil
}
