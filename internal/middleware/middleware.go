package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/session"
)

type contextKey int

const userKey contextKey = iota

// CurrentUser returns the authenticated user for the request, or nil.
func CurrentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userKey).(*models.User)
	return user
}

// Identity resolves the session cookie into a user once per request and
// stores it in the context. Every authenticated request also refreshes
// the user's last-seen timestamp.
func Identity(sessions *session.Manager, users repositories.UserRepository, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.UserFromRequest(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if err := users.TouchLastSeen(user.ID); err != nil {
				log.WithError(err).Warn("failed to update last seen")
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoginRequired redirects unauthenticated requests to the login page,
// carrying the original path so login can send the user back.
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) == nil {
			RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminRequired is the single authorization gate for the back-office:
// the actor must be authenticated and have the admin flag. Failing
// either redirects to login with a return path, never a bare 403.
func AdminRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil || !user.IsAdmin {
			RedirectToLogin(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
}

// Recover turns a handler panic into a 500 for that one request.
func Recover(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithFields(logrus.Fields{
						"panic": rec,
						"path":  r.URL.Path,
					}).Error("recovered from panic in handler")
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
