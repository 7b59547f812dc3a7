package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/monitoring"
	"microblog/internal/repositories"
	"microblog/internal/web"
)

type ForumHandler struct {
	topics repositories.TopicRepository
	users  repositories.UserRepository
	log    *logrus.Logger
}

func NewForumHandler(topics repositories.TopicRepository, users repositories.UserRepository, log *logrus.Logger) *ForumHandler {
	return &ForumHandler{topics: topics, users: users, log: log}
}

type forumView struct {
	Topics      []models.ForumTopic
	Subscribed  []models.User
	SearchQuery string
}

// Forum lists topics newest first; ?filter=subscribed narrows the list
// to the actor's own topics plus those of everyone they follow.
func (h *ForumHandler) Forum(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r)

	var (
		topics []models.ForumTopic
		err    error
	)
	if r.URL.Query().Get("filter") == "subscribed" {
		topics, err = h.topics.ListFollowed(actor.ID)
	} else {
		topics, err = h.topics.List()
	}
	if err != nil {
		h.log.WithError(err).Error("failed to list topics")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load the forum")
		return
	}

	subscribed, err := h.users.Following(actor.ID)
	if err != nil {
		h.log.WithError(err).Error("failed to list followed users")
	}

	web.Render(w, r, "forum.html", web.Page{
		Title: "Forum",
		User:  actor,
		Data:  forumView{Topics: topics, Subscribed: subscribed},
	})
}

func (h *ForumHandler) SearchTopics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		http.Redirect(w, r, "/forum", http.StatusSeeOther)
		return
	}

	topics, err := h.topics.Search(q)
	if err != nil {
		h.log.WithError(err).Error("topic search failed")
		renderError(w, r, http.StatusInternalServerError, "Error", "Search failed")
		return
	}

	actor := middleware.CurrentUser(r)
	subscribed, err := h.users.Following(actor.ID)
	if err != nil {
		h.log.WithError(err).Error("failed to list followed users")
	}

	web.Render(w, r, "forum.html", web.Page{
		Title: fmt.Sprintf("Search results for %q", q),
		User:  actor,
		Data:  forumView{Topics: topics, Subscribed: subscribed, SearchQuery: q},
	})
}

func (h *ForumHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	actor := middleware.CurrentUser(r)

	if r.Method == http.MethodGet {
		web.Render(w, r, "create_topic.html", web.Page{Title: "New topic", User: actor})
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	body := strings.TrimSpace(r.FormValue("body"))
	if title == "" || body == "" {
		flashRedirect(w, r, "/create_topic", "error", "Title and body are both required")
		return
	}

	topic := &models.ForumTopic{Title: title, Body: body, AuthorID: actor.ID}
	if err := h.topics.Create(topic); err != nil {
		h.log.WithError(err).Error("failed to create topic")
		flashRedirect(w, r, "/create_topic", "error", "Could not create the topic")
		return
	}

	monitoring.TopicsCreated.Inc()
	flashRedirect(w, r, fmt.Sprintf("/view_topic/%d", topic.ID), "success", "Topic created")
}

type topicView struct {
	Topic    *models.ForumTopic
	Comments []models.TopicComment
}

func (h *ForumHandler) ViewTopic(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		renderError(w, r, http.StatusNotFound, "Not found", "No such topic")
		return
	}

	topic, err := h.topics.FindByID(uint(id))
	if errors.Is(err, repositories.ErrNotFound) {
		renderError(w, r, http.StatusNotFound, "Not found", "No such topic")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("failed to load topic")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load the topic")
		return
	}

	if r.Method == http.MethodPost {
		h.addComment(w, r, topic)
		return
	}

	comments, err := h.topics.Comments(topic.ID)
	if err != nil {
		h.log.WithError(err).Error("failed to load comments")
		renderError(w, r, http.StatusInternalServerError, "Error", "Could not load the comments")
		return
	}

	web.Render(w, r, "view_topic.html", web.Page{
		Title: topic.Title,
		User:  middleware.CurrentUser(r),
		Data:  topicView{Topic: topic, Comments: comments},
	})
}

func (h *ForumHandler) addComment(w http.ResponseWriter, r *http.Request, topic *models.ForumTopic) {
	actor := middleware.CurrentUser(r)
	path := fmt.Sprintf("/view_topic/%d", topic.ID)

	body := strings.TrimSpace(r.FormValue("body"))
	if body == "" {
		flashRedirect(w, r, path, "error", "The comment cannot be empty")
		return
	}

	comment := &models.TopicComment{Body: body, AuthorID: actor.ID, TopicID: topic.ID}
	err := h.topics.AddComment(comment)
	if errors.Is(err, repositories.ErrNotFound) {
		renderError(w, r, http.StatusNotFound, "Not found", "The topic no longer exists")
		return
	}
	if err != nil {
		h.log.WithError(err).Error("failed to add comment")
		flashRedirect(w, r, path, "error", "Could not save your comment")
		return
	}

	monitoring.CommentsCreated.Inc()
	flashRedirect(w, r, path, "success", "Your comment has been added")
}
