package model

import "time"

// Post ordering is always created_at DESC, id DESC
type Post struct {
	ID        uint64    `gorm:"primaryKey"`
	Text      string    `gorm:"type:text;not null"`
	AuthorID  uint64    `gorm:"not null;index:idx_author_created,priority:1"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE"`
	GroupID   *uint64   `gorm:"index:idx_group_created,priority:1"`
	Group     *Group    `gorm:"constraint:OnDelete:SET NULL"`
	Image     string    `gorm:"size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_author_created,priority:2,sort:desc;index:idx_group_created,priority:2,sort:desc"`
}

// Comment is ordered by created_at ASC
type Comment struct {
	ID        uint64    `gorm:"primaryKey"`
	PostID    uint64    `gorm:"not null;index"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID  uint64    `gorm:"not null;index"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
