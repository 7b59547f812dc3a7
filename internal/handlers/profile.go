package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"microblog/internal/avatar"
	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/web"
)

const (
	onlineThreshold = 120 * time.Second
	maxAvatarBytes  = 5 << 20
	avatarSize      = 128
)

type ProfileHandler struct {
	users repositories.UserRepository
	log   *logrus.Logger
}

func NewProfileHandler(users repositories.UserRepository, log *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{users: users, log: log}
}

type profileView struct {
	Profile     *models.User
	AvatarURI   string
	IsOwn       bool
	IsFollowing bool
	IsOnline    bool
}

func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	profile, err := h.users.FindByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		renderError(w, r, http.StatusNotFound, "Not found", "No such user: "+username)
		return
	}
	if err != nil {
		h.log.WithError(err).Error("failed to load profile")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load the profile")
		return
	}

	actor := middleware.CurrentUser(r)
	isOwn := actor != nil && actor.ID == profile.ID

	if r.Method == http.MethodPost && isOwn {
		h.edit(w, r, actor)
		return
	}

	isFollowing := false
	if actor != nil && !isOwn {
		isFollowing, err = h.users.IsFollowing(actor.ID, profile)
		if err != nil {
			h.log.WithError(err).Error("failed to check follow state")
		}
	}

	web.Render(w, r, "profile.html", web.Page{
		Title: "Profile of " + profile.Username,
		User:  actor,
		Data: profileView{
			Profile:     profile,
			AvatarURI:   avatar.DataURI(profile.AvatarData, avatarSize),
			IsOwn:       isOwn,
			IsFollowing: isFollowing,
			IsOnline:    time.Since(profile.LastSeen) < onlineThreshold,
		},
	})
}

// edit applies a profile change (username, bio, avatar) in a single
// transaction; nothing changes when any part of it fails.
func (h *ProfileHandler) edit(w http.ResponseWriter, r *http.Request, actor *models.User) {
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		flashRedirect(w, r, "/profile/"+actor.Username, "error", "Invalid form submission")
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" {
		flashRedirect(w, r, "/profile/"+actor.Username, "error", "The username cannot be empty")
		return
	}
	aboutMe := strings.TrimSpace(r.FormValue("about_me"))

	var avatarData []byte
	if file, _, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		avatarData, err = io.ReadAll(io.LimitReader(file, maxAvatarBytes))
		if err != nil {
			flashRedirect(w, r, "/profile/"+actor.Username, "error", "Could not read the uploaded avatar")
			return
		}
	}

	err := h.users.UpdateProfile(actor.ID, username, aboutMe, avatarData)
	if errors.Is(err, repositories.ErrUsernameTaken) {
		flashRedirect(w, r, "/profile/"+actor.Username, "error", "The username is already taken")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("profile update failed")
		flashRedirect(w, r, "/profile/"+actor.Username, "error", "Could not save your changes")
		return
	}

	flashRedirect(w, r, "/profile/"+username, "success", "Your changes have been saved")
}

func (h *ProfileHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.toggleFollow(w, r, true)
}

func (h *ProfileHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.toggleFollow(w, r, false)
}

func (h *ProfileHandler) toggleFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	username := mux.Vars(r)["username"]
	actor := middleware.CurrentUser(r)

	target, err := h.users.FindByUsername(username)
	if errors.Is(err, repositories.ErrNotFound) {
		flashRedirect(w, r, "/", "error", "User "+username+" not found")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("failed to load follow target")
		flashRedirect(w, r, "/", "error", "Something went wrong")
		return
	}

	if follow {
		err = h.users.Follow(actor.ID, target.ID)
	} else {
		err = h.users.Unfollow(actor.ID, target.ID)
	}
	if errors.Is(err, repositories.ErrSelfFollow) {
		flashRedirect(w, r, "/profile/"+username, "error", "You cannot follow yourself")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("failed to update follow edge")
		flashRedirect(w, r, "/profile/"+username, "error", "Something went wrong")
		return
	}

	if follow {
		flashRedirect(w, r, "/profile/"+username, "success", "You are now following "+username)
	} else {
		flashRedirect(w, r, "/profile/"+username, "success", "You unfollowed "+username)
	}
}
