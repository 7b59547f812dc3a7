package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"microblog/internal/middleware"
	"microblog/internal/repositories"
	"microblog/internal/web"
)

// PagesHandler serves the static-ish marketing pages.
type PagesHandler struct {
	projects repositories.ProjectRepository
	log      *logrus.Logger
}

func NewPagesHandler(projects repositories.ProjectRepository, log *logrus.Logger) *PagesHandler {
	return &PagesHandler{projects: projects, log: log}
}

func (h *PagesHandler) Index(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "index.html", web.Page{Title: "Home", User: middleware.CurrentUser(r)})
}

func (h *PagesHandler) About(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "about.html", web.Page{
		Title: "About",
		User:  middleware.CurrentUser(r),
		Data:  "A small community site: forum, guestbook and profiles.",
	})
}

func (h *PagesHandler) Price(w http.ResponseWriter, r *http.Request) {
	web.Render(w, r, "price.html", web.Page{
		Title: "Pricing",
		User:  middleware.CurrentUser(r),
		Data:  "Everything here is free.",
	})
}

func (h *PagesHandler) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List()
	if err != nil {
		h.log.WithError(err).Error("failed to list projects")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load projects")
		return
	}
	web.Render(w, r, "projects.html", web.Page{
		Title: "Projects",
		User:  middleware.CurrentUser(r),
		Data:  projects,
	})
}
