package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/repositories"
	"microblog/internal/session"
	"microblog/internal/web"
)

// AdminHandler is the back-office. Authorization is not checked here:
// the AdminRequired middleware guards every route in the /admin subtree,
// so the predicate lives in exactly one place.
type AdminHandler struct {
	users    repositories.UserRepository
	topics   repositories.TopicRepository
	reviews  repositories.ReviewRepository
	projects repositories.ProjectRepository
	sessions *session.Manager
	log      *logrus.Logger
}

func NewAdminHandler(
	users repositories.UserRepository,
	topics repositories.TopicRepository,
	reviews repositories.ReviewRepository,
	projects repositories.ProjectRepository,
	sessions *session.Manager,
	log *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:    users,
		topics:   topics,
		reviews:  reviews,
		projects: projects,
		sessions: sessions,
		log:      log,
	}
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		h.log.WithError(err).Error("failed to list users")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load users")
		return
	}
	web.Render(w, r, "admin_users.html", web.Page{
		Title: "Admin: users",
		User:  middleware.CurrentUser(r),
		Data:  users,
	})
}

// UserFlags toggles is_admin/is_banned. Banning revokes the target's
// live sessions on the spot; the per-request ban re-check in the
// session loader stays as the backstop.
func (h *AdminHandler) UserFlags(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	isAdmin := r.FormValue("is_admin") != ""
	isBanned := r.FormValue("is_banned") != ""

	if err := h.users.SetFlags(id, isAdmin, isBanned); err != nil {
		h.log.WithError(err).Error("failed to update user flags")
		flashRedirect(w, r, "/admin/users", "error", "Could not update the user")
		return
	}
	if isBanned {
		if err := h.sessions.Revoke(id); err != nil {
			h.log.WithError(err).Error("failed to revoke sessions of banned user")
		}
	}
	flashRedirect(w, r, "/admin/users", "success", "User updated")
}

// UserDelete removes the user; their reviews, topics, comments, follow
// edges and sessions disappear through the cascades.
func (h *AdminHandler) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if actor := middleware.CurrentUser(r); actor.ID == id {
		flashRedirect(w, r, "/admin/users", "error", "You cannot delete your own account here")
		return
	}
	if err := h.users.Delete(id); err != nil {
		h.log.WithError(err).Error("failed to delete user")
		flashRedirect(w, r, "/admin/users", "error", "Could not delete the user")
		return
	}
	flashRedirect(w, r, "/admin/users", "success", "User deleted")
}

func (h *AdminHandler) Topics(w http.ResponseWriter, r *http.Request) {
	topics, err := h.topics.List()
	if err != nil {
		h.log.WithError(err).Error("failed to list topics")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load topics")
		return
	}
	web.Render(w, r, "admin_topics.html", web.Page{
		Title: "Admin: topics",
		User:  middleware.CurrentUser(r),
		Data:  topics,
	})
}

func (h *AdminHandler) TopicDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.topics.Delete(id); err != nil {
		h.log.WithError(err).Error("failed to delete topic")
		flashRedirect(w, r, "/admin/topics", "error", "Could not delete the topic")
		return
	}
	flashRedirect(w, r, "/admin/topics", "success", "Topic deleted")
}

func (h *AdminHandler) Comments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.topics.AllComments()
	if err != nil {
		h.log.WithError(err).Error("failed to list comments")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load comments")
		return
	}
	web.Render(w, r, "admin_comments.html", web.Page{
		Title: "Admin: comments",
		User:  middleware.CurrentUser(r),
		Data:  comments,
	})
}

func (h *AdminHandler) CommentDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.topics.DeleteComment(id); err != nil {
		h.log.WithError(err).Error("failed to delete comment")
		flashRedirect(w, r, "/admin/comments", "error", "Could not delete the comment")
		return
	}
	flashRedirect(w, r, "/admin/comments", "success", "Comment deleted")
}

func (h *AdminHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.List()
	if err != nil {
		h.log.WithError(err).Error("failed to list reviews")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load reviews")
		return
	}
	web.Render(w, r, "admin_reviews.html", web.Page{
		Title: "Admin: reviews",
		User:  middleware.CurrentUser(r),
		Data:  reviews,
	})
}

func (h *AdminHandler) ReviewDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.reviews.Delete(id); err != nil {
		h.log.WithError(err).Error("failed to delete review")
		flashRedirect(w, r, "/admin/reviews", "error", "Could not delete the review")
		return
	}
	flashRedirect(w, r, "/admin/reviews", "success", "Review deleted")
}

func (h *AdminHandler) Projects(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		name := strings.TrimSpace(r.FormValue("name"))
		body := strings.TrimSpace(r.FormValue("body"))
		if name == "" || body == "" {
			flashRedirect(w, r, "/admin/projects", "error", "Name and description are both required")
			return
		}
		if err := h.projects.Create(&models.Project{Name: name, Body: body}); err != nil {
			h.log.WithError(err).Error("failed to create project")
			flashRedirect(w, r, "/admin/projects", "error", "Could not create the project")
			return
		}
		flashRedirect(w, r, "/admin/projects", "success", "Project created")
		return
	}

	projects, err := h.projects.List()
	if err != nil {
		h.log.WithError(err).Error("failed to list projects")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load projects")
		return
	}
	web.Render(w, r, "admin_projects.html", web.Page{
		Title: "Admin: projects",
		User:  middleware.CurrentUser(r),
		Data:  projects,
	})
}

func (h *AdminHandler) ProjectDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.projects.Delete(id); err != nil {
		h.log.WithError(err).Error("failed to delete project")
		flashRedirect(w, r, "/admin/projects", "error", "Could not delete the project")
		return
	}
	flashRedirect(w, r, "/admin/projects", "success", "Project deleted")
}

func (h *AdminHandler) pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		renderError(w, r, http.StatusNotFound, "Not found", "No such record")
		return 0, false
	}
	return uint(id), true
}
