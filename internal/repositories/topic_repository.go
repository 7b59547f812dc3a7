package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"microblog/internal/database"
	"microblog/internal/models"
)

type topicRepository struct {
	db *database.DB
}

func NewTopicRepository(db *database.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) Create(topic *models.ForumTopic) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(topic).Error
	})
}

func (r *topicRepository) FindByID(id uint) (*models.ForumTopic, error) {
	var topic models.ForumTopic
	err := r.db.Preload("Author").First(&topic, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// List returns every topic, most recent first.
func (r *topicRepository) List() ([]models.ForumTopic, error) {
	var topics []models.ForumTopic
	err := r.db.Preload("Author").
		Order("created_at DESC, id DESC").
		Find(&topics).Error
	return topics, err
}

// ListFollowed returns topics authored by the actor or by anyone the
// actor follows. The actor is always part of the followed set here even
// with zero follow edges.
func (r *topicRepository) ListFollowed(actorID uint) ([]models.ForumTopic, error) {
	followed := r.db.Model(&models.FollowEdge{}).
		Select("followed_id").
		Where("follower_id = ?", actorID)

	var topics []models.ForumTopic
	err := r.db.Preload("Author").
		Where("author_id IN (?) OR author_id = ?", followed, actorID).
		Order("created_at DESC, id DESC").
		Find(&topics).Error
	return topics, err
}

func (r *topicRepository) Search(q string) ([]models.ForumTopic, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	var topics []models.ForumTopic
	err := r.db.Preload("Author").
		Where("LOWER(title) LIKE ? OR LOWER(body) LIKE ?", pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&topics).Error
	return topics, err
}

func (r *topicRepository) Delete(id uint) error {
	return r.db.Delete(&models.ForumTopic{}, id).Error
}

// AddComment appends a comment; the parent topic must still exist when
// the row is written.
func (r *topicRepository) AddComment(comment *models.TopicComment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ForumTopic{}).Where("id = ?", comment.TopicID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return tx.Create(comment).Error
	})
}

// Comments returns a topic's comments oldest first.
func (r *topicRepository) Comments(topicID uint) ([]models.TopicComment, error) {
	var comments []models.TopicComment
	err := r.db.Preload("Author").
		Where("topic_id = ?", topicID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *topicRepository) AllComments() ([]models.TopicComment, error) {
	var comments []models.TopicComment
	err := r.db.Preload("Author").
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

func (r *topicRepository) DeleteComment(id uint) error {
	return r.db.Delete(&models.TopicComment{}, id).Error
}
