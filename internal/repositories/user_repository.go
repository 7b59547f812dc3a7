package repositories

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"microblog/internal/database"
	"microblog/internal/models"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

// Create hashes the password and inserts the user. Uniqueness of
// username and email is checked inside the same transaction as the
// insert so a duplicate never leaves a row behind.
func (r *userRepository) Create(user *models.User, plainPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	user.LastSeen = time.Now().UTC()

	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(user).Error
	})
}

func (r *userRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List() ([]models.User, error) {
	var users []models.User
	err := r.db.Order("username ASC").Find(&users).Error
	return users, err
}

// UpdateProfile applies a profile edit as one unit. A nil avatar keeps
// the stored one. The username re-check excludes the user themselves so
// saving an unchanged name is not a conflict.
func (r *userRepository) UpdateProfile(userID uint, username, aboutMe string, avatar []byte) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? AND id <> ?", username, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}

		updates := map[string]any{
			"username": username,
			"about_me": aboutMe,
		}
		if avatar != nil {
			updates["avatar_data"] = avatar
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
	})
}

func (r *userRepository) TouchLastSeen(userID uint) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen", time.Now().UTC()).Error
}

func (r *userRepository) SetFlags(userID uint, isAdmin, isBanned bool) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"is_admin": isAdmin, "is_banned": isBanned}).Error
}

// Delete removes the user; reviews, topics, comments, follow edges and
// sessions go with them through the foreign-key cascades.
func (r *userRepository) Delete(userID uint) error {
	return r.db.Delete(&models.User{}, userID).Error
}

// Follow is idempotent: an existing edge is left alone. Following
// yourself is rejected here because the schema does not forbid it.
func (r *userRepository) Follow(followerID, followedID uint) error {
	if followerID == followedID {
		return ErrSelfFollow
	}
	edge := models.FollowEdge{FollowerID: followerID, FollowedID: followedID}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
}

// Unfollow is a no-op when no edge exists.
func (r *userRepository) Unfollow(followerID, followedID uint) error {
	if followerID == followedID {
		return ErrSelfFollow
	}
	return r.db.
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.FollowEdge{}).Error
}

func (r *userRepository) IsFollowing(followerID uint, followed *models.User) (bool, error) {
	if followed == nil || followed.ID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.FollowEdge{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followed.ID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Following(userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Joins("INNER JOIN followers ON followers.followed_id = users.id").
		Where("followers.follower_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}
