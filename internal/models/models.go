package models

import "time"

// User is a registered community member. AvatarData holds the raw
// uploaded image; rendering happens in the avatar package.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"uniqueIndex;size:64"`
	Email        string    `gorm:"uniqueIndex;size:120"`
	PasswordHash string    `gorm:"size:256"`
	AvatarData   []byte    `gorm:"type:blob"`
	AboutMe      string    `gorm:"size:140"`
	LastSeen     time.Time `gorm:"index"`
	IsAdmin      bool
	IsBanned     bool

	Reviews  []ReviewMessage `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Topics   []ForumTopic    `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Comments []TopicComment  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Sessions []Session       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName overrides the table name used by GORM
func (User) TableName() string { return "users" }

// FollowEdge is one directed follow relationship. The composite primary
// key keeps the pair unique; self-follows are rejected in the repository,
// not by the schema.
type FollowEdge struct {
	FollowerID uint `gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint `gorm:"primaryKey;autoIncrement:false"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

func (FollowEdge) TableName() string { return "followers" }

// ReviewMessage is a guestbook entry. DisplayName is captured at write
// time and deliberately never re-derived from the author row, so later
// username changes do not rewrite history. AuthorID is nil for guest
// reviews.
type ReviewMessage struct {
	ID          uint   `gorm:"primaryKey"`
	Body        string `gorm:"size:2000"`
	DisplayName string `gorm:"size:140;not null"`
	AuthorID    *uint  `gorm:"index"`
	Author      *User
	CreatedAt   time.Time `gorm:"index"`
}

func (ReviewMessage) TableName() string { return "reviews" }

// ForumTopic owns an ordered collection of comments.
type ForumTopic struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:128;index"`
	Body      string `gorm:"size:8000"`
	AuthorID  uint   `gorm:"index"`
	Author    User
	CreatedAt time.Time `gorm:"index"`

	Comments []TopicComment `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE"`
}

func (ForumTopic) TableName() string { return "topics" }

type TopicComment struct {
	ID        uint   `gorm:"primaryKey"`
	Body      string `gorm:"size:3000"`
	AuthorID  uint   `gorm:"index"`
	Author    User
	TopicID   uint      `gorm:"index"`
	CreatedAt time.Time `gorm:"index"`
}

func (TopicComment) TableName() string { return "comments" }

// Project is a portfolio entry shown on the projects page and managed
// from the admin back-office.
type Project struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:64"`
	Body string `gorm:"size:3000"`
}

func (Project) TableName() string { return "projects" }

// Session is one live login, keyed by an opaque token. The cascade from
// users means deleting a user kills their sessions with them.
type Session struct {
	Token     string `gorm:"primaryKey;size:36"`
	UserID    uint   `gorm:"index"`
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (Session) TableName() string { return "sessions" }

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
