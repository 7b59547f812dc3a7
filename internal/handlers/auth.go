package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/monitoring"
	"microblog/internal/repositories"
	"microblog/internal/session"
	"microblog/internal/web"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type AuthHandler struct {
	users    repositories.UserRepository
	sessions *session.Manager
	log      *logrus.Logger
}

func NewAuthHandler(users repositories.UserRepository, sessions *session.Manager, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, log: log}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	next := r.URL.Query().Get("next")

	if r.Method == http.MethodGet {
		web.Render(w, r, "login.html", web.Page{Title: "Log in", Data: next})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		flashRedirect(w, r, "/login", "error", "You have to enter a username and a password")
		return
	}

	user, err := h.sessions.Authenticate(username, password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		monitoring.LoginFailure.WithLabelValues("invalid_credentials").Inc()
		flashRedirect(w, r, "/login", "error", "Invalid username or password")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("login failed")
		monitoring.LoginFailure.WithLabelValues("internal").Inc()
		flashRedirect(w, r, "/login", "error", "Login failed, please try again")
		return
	}

	if err := h.sessions.Issue(w, user); err != nil {
		h.log.WithError(err).Error("failed to create session")
		monitoring.LoginFailure.WithLabelValues("internal").Inc()
		flashRedirect(w, r, "/login", "error", "Login failed, please try again")
		return
	}

	monitoring.LoginSuccess.Inc()
	h.log.WithField("username", username).Info("user logged in")
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	flashRedirect(w, r, "/", "success", "You have been logged out")
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodGet {
		web.Render(w, r, "register.html", web.Page{Title: "Register"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	password := r.FormValue("password")
	password2 := r.FormValue("password2")

	switch {
	case username == "":
		flashRedirect(w, r, "/register", "error", "You have to enter a username")
		return
	case password == "":
		flashRedirect(w, r, "/register", "error", "You have to enter a password")
		return
	case password != password2:
		flashRedirect(w, r, "/register", "error", "The two passwords do not match")
		return
	case !emailPattern.MatchString(email):
		flashRedirect(w, r, "/register", "error", "You have to enter a valid email address")
		return
	}

	user := &models.User{
		Username: username,
		Email:    email,
		// The very first operator account is claimed by registering as
		// "admin"; everyone else starts unprivileged.
		IsAdmin: username == "admin",
	}

	err := h.users.Create(user, password)
	switch {
	case errors.Is(err, repositories.ErrUsernameTaken):
		flashRedirect(w, r, "/register", "error", "The username is already taken")
		return
	case errors.Is(err, repositories.ErrEmailTaken):
		flashRedirect(w, r, "/register", "error", "The email address is already in use")
		return
	case err != nil:
		h.log.WithError(err).Error("registration failed")
		flashRedirect(w, r, "/register", "error", "Registration failed, please try again")
		return
	}

	monitoring.RegisterSuccess.Inc()
	h.log.WithField("username", username).Info("user registered")
	flashRedirect(w, r, "/login", "success", "You are now registered, please log in")
}
