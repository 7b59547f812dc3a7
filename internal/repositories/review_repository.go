package repositories

import (
	"gorm.io/gorm"

	"microblog/internal/database"
	"microblog/internal/models"
)

type reviewRepository struct {
	db *database.DB
}

func NewReviewRepository(db *database.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *models.ReviewMessage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(review).Error
	})
}

func (r *reviewRepository) List() ([]models.ReviewMessage, error) {
	var reviews []models.ReviewMessage
	err := r.db.Order("created_at DESC, id DESC").Find(&reviews).Error
	return reviews, err
}

func (r *reviewRepository) Delete(id uint) error {
	return r.db.Delete(&models.ReviewMessage{}, id).Error
}
