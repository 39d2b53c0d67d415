package model

import "time"

// Follow means UserID reads AuthorID's posts in the follow feed
type Follow struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;uniqueIndex:uk_follow_user_author"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  uint64 `gorm:"not null;uniqueIndex:uk_follow_user_author;index:idx_follow_author"`
	Author    User   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// TableName sets table name for Follow
func (Follow) TableName() string {
	return "follow"
}

const (
	EventFollow   = "follow"
	EventUnfollow = "unfollow"
	EventComment  = "comment"
)

const (
	OutboxPending int8 = iota
	OutboxSent
	OutboxFailed
)

// OutboxMaxRetry failed events are retried until this many attempts
const OutboxMaxRetry = 5

// SocialOutbox social event waiting for delivery
type SocialOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	EventType string `gorm:"size:16;not null"` // follow / unfollow / comment
	ActorID   uint64 `gorm:"not null"`
	TargetID  uint64 `gorm:"not null"`
	PostID    uint64 `gorm:"not null;default:0"`
	Payload   string `gorm:"type:text;not null"`
	Status    int8   `gorm:"not null;default:0;index"` // 0=pending,1=sent,2=failed
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SocialOutbox) TableName() string { return "social_outbox" }

// EventPayload is the JSON body published for a social event
type EventPayload struct {
	EventTime string `json:"event_time"`
	Event     string `json:"event"`
	Actor     uint64 `json:"actor"`
	Target    uint64 `json:"target"`
	PostID    uint64 `json:"post_id,omitempty"`
}
