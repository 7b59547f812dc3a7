package handlers

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/monitoring"
	"microblog/internal/repositories"
	"microblog/internal/web"
)

const anonymousName = "Anonymous"

type ReviewsHandler struct {
	reviews repositories.ReviewRepository
	log     *logrus.Logger
}

func NewReviewsHandler(reviews repositories.ReviewRepository, log *logrus.Logger) *ReviewsHandler {
	return &ReviewsHandler{reviews: reviews, log: log}
}

type reviewsView struct {
	Reviews     []models.ReviewMessage
	DefaultName string
}

func (h *ReviewsHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	if r.Method == http.MethodPost {
		h.create(w, r)
		return
	}

	reviews, err := h.reviews.List()
	if err != nil {
		h.log.WithError(err).Error("failed to list reviews")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load reviews")
		return
	}

	defaultName := anonymousName
	if user != nil {
		defaultName = user.Username
	}

	web.Render(w, r, "reviews.html", web.Page{
		Title: "Reviews",
		User:  user,
		Data:  reviewsView{Reviews: reviews, DefaultName: defaultName},
	})
}

// create persists one review. The display name is a snapshot: the
// actor's username at write time, or whatever a guest typed in. It is
// never re-derived from the author row afterwards.
func (h *ReviewsHandler) create(w http.ResponseWriter, r *http.Request) {
	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		flashRedirect(w, r, "/reviews", "error", "The review text cannot be empty")
		return
	}

	displayName := strings.TrimSpace(r.FormValue("display_name"))
	review := &models.ReviewMessage{Body: body, DisplayName: displayName}

	if user := middleware.CurrentUser(r); user != nil {
		review.AuthorID = &user.ID
		if review.DisplayName == "" {
			review.DisplayName = user.Username
		}
	} else if review.DisplayName == "" {
		review.DisplayName = anonymousName
	}

	if err := h.reviews.Create(review); err != nil {
		h.log.WithError(err).Error("failed to save review")
		flashRedirect(w, r, "/reviews", "error", "Could not save your review")
		return
	}

	monitoring.ReviewsCreated.Inc()
	flashRedirect(w, r, "/reviews", "success", "Thank you for your review!")
}
