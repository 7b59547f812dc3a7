package repositories

import (
	"errors"

	"microblog/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already in use")
	ErrSelfFollow    = errors.New("cannot follow yourself")
)

type UserRepository interface {
	Create(user *models.User, plainPassword string) error
	FindByID(id uint) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	List() ([]models.User, error)
	UpdateProfile(userID uint, username, aboutMe string, avatar []byte) error
	TouchLastSeen(userID uint) error
	SetFlags(userID uint, isAdmin, isBanned bool) error
	Delete(userID uint) error

	Follow(followerID, followedID uint) error
	Unfollow(followerID, followedID uint) error
	IsFollowing(followerID uint, followed *models.User) (bool, error)
	Following(userID uint) ([]models.User, error)
}

type TopicRepository interface {
	Create(topic *models.ForumTopic) error
	FindByID(id uint) (*models.ForumTopic, error)
	List() ([]models.ForumTopic, error)
	ListFollowed(actorID uint) ([]models.ForumTopic, error)
	Search(q string) ([]models.ForumTopic, error)
	Delete(id uint) error

	AddComment(comment *models.TopicComment) error
	Comments(topicID uint) ([]models.TopicComment, error)
	AllComments() ([]models.TopicComment, error)
	DeleteComment(id uint) error
}

type ReviewRepository interface {
	Create(review *models.ReviewMessage) error
	List() ([]models.ReviewMessage, error)
	Delete(id uint) error
}

type ProjectRepository interface {
	Create(project *models.Project) error
	List() ([]models.Project, error)
	Delete(id uint) error
}

type SessionRepository interface {
	Create(session *models.Session) error
	Find(token string) (*models.Session, error)
	Delete(token string) error
	DeleteForUser(userID uint) error
	DeleteExpired() error
}
