package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"microblog/internal/handlers"
	"microblog/internal/middleware"
	"microblog/internal/monitoring"
	"microblog/internal/repositories"
	"microblog/internal/session"
)

// SetupRoutes initializes all the application routes.
// The routing logic is isolated here.
func SetupRoutes(
	auth *handlers.AuthHandler,
	pages *handlers.PagesHandler,
	reviews *handlers.ReviewsHandler,
	profile *handlers.ProfileHandler,
	forum *handlers.ForumHandler,
	admin *handlers.AdminHandler,
	sessions *session.Manager,
	users repositories.UserRepository,
	log *logrus.Logger,
) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Recover(log))
	router.Use(middleware.Identity(sessions, users, log))

	// Public pages
	router.HandleFunc("/", pages.Index).Methods("GET")
	router.HandleFunc("/about", pages.About).Methods("GET")
	router.HandleFunc("/projects", pages.Projects).Methods("GET")
	router.HandleFunc("/price", pages.Price).Methods("GET")
	router.HandleFunc("/reviews", reviews.Reviews).Methods("GET", "POST")

	// Identity
	router.HandleFunc("/login", auth.Login).Methods("GET", "POST")
	router.HandleFunc("/logout", auth.Logout).Methods("GET")
	router.HandleFunc("/register", auth.Register).Methods("GET", "POST")

	// Authenticated area
	authed := router.PathPrefix("/").Subrouter()
	authed.Use(middleware.LoginRequired)
	authed.HandleFunc("/profile/{username}", profile.Profile).Methods("GET", "POST")
	authed.HandleFunc("/follow/{username}", profile.Follow).Methods("POST")
	authed.HandleFunc("/unfollow/{username}", profile.Unfollow).Methods("POST")
	authed.HandleFunc("/forum", forum.Forum).Methods("GET")
	authed.HandleFunc("/search_topics", forum.SearchTopics).Methods("GET")
	authed.HandleFunc("/create_topic", forum.CreateTopic).Methods("GET", "POST")
	authed.HandleFunc("/view_topic/{id:[0-9]+}", forum.ViewTopic).Methods("GET", "POST")

	// Back-office, one guard for the whole subtree
	backoffice := router.PathPrefix("/admin").Subrouter()
	backoffice.Use(middleware.AdminRequired)
	backoffice.HandleFunc("/users", admin.Users).Methods("GET")
	backoffice.HandleFunc("/users/{id:[0-9]+}/flags", admin.UserFlags).Methods("POST")
	backoffice.HandleFunc("/users/{id:[0-9]+}/delete", admin.UserDelete).Methods("POST")
	backoffice.HandleFunc("/topics", admin.Topics).Methods("GET")
	backoffice.HandleFunc("/topics/{id:[0-9]+}/delete", admin.TopicDelete).Methods("POST")
	backoffice.HandleFunc("/comments", admin.Comments).Methods("GET")
	backoffice.HandleFunc("/comments/{id:[0-9]+}/delete", admin.CommentDelete).Methods("POST")
	backoffice.HandleFunc("/reviews", admin.Reviews).Methods("GET")
	backoffice.HandleFunc("/reviews/{id:[0-9]+}/delete", admin.ReviewDelete).Methods("POST")
	backoffice.HandleFunc("/projects", admin.Projects).Methods("GET", "POST")
	backoffice.HandleFunc("/projects/{id:[0-9]+}/delete", admin.ProjectDelete).Methods("POST")

	// Add metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return monitoring.Instrument(router)
}
