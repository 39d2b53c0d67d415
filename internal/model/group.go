package model

import "regexp"

type Group struct {
	ID          uint64 `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"uniqueIndex;size:50;not null"`
	Description string `gorm:"type:text;not null"`
}

// SlugPattern matches a valid group slug
var SlugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
