package main

import (
	"net/http"
	"time"

	"microblog/internal/config"
	"microblog/internal/database"
	"microblog/internal/handlers"
	"microblog/internal/logger"
	"microblog/internal/repositories"
	"microblog/internal/routes"
	"microblog/internal/session"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		log.WithError(err).Fatal("database initialization failed")
	}

	userRepo := repositories.NewUserRepository(db)
	topicRepo := repositories.NewTopicRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)

	sessions := session.NewManager(userRepo, sessionRepo, []byte(cfg.SessionSecret), cfg.SessionTTL)

	// Periodic cleanup of expired sessions
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := sessions.SweepExpired(); err != nil {
				log.WithError(err).Warn("session cleanup failed")
			}
		}
	}()

	authHandler := handlers.NewAuthHandler(userRepo, sessions, log)
	pagesHandler := handlers.NewPagesHandler(projectRepo, log)
	reviewsHandler := handlers.NewReviewsHandler(reviewRepo, log)
	profileHandler := handlers.NewProfileHandler(userRepo, log)
	forumHandler := handlers.NewForumHandler(topicRepo, userRepo, log)
	adminHandler := handlers.NewAdminHandler(userRepo, topicRepo, reviewRepo, projectRepo, sessions, log)

	handler := routes.SetupRoutes(
		authHandler, pagesHandler, reviewsHandler,
		profileHandler, forumHandler, adminHandler,
		sessions, userRepo, log,
	)

	log.WithField("addr", cfg.Addr).Info("server starting")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
