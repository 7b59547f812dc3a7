package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"microblog/internal/models"
)

type DB struct {
	*gorm.DB
}

// Open connects to the sqlite database and migrates the schema. The DSN
// should carry `_fk=1` so every pooled connection enforces foreign keys;
// cascade deletes depend on it.
func Open(dsn string) (*DB, error) {
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.FollowEdge{},
		&models.ReviewMessage{},
		&models.ForumTopic{},
		&models.TopicComment{},
		&models.Project{},
		&models.Session{},
	); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &DB{gormDB}, nil
}
