package models

import (
	"time"

	"gorm.io/gorm"
)

// Progress is the single watched/unwatched record per (user, class) pair.
// WatchedAt is set when IsWatched flips to true and cleared on unwatch, so
// unwatching discards the historical watch timestamp.
type Progress struct {
	gorm.Model
	UserID    uint       `gorm:"uniqueIndex:idx_progress_user_class;not null" json:"user_id"`
	ClassID   uint       `gorm:"uniqueIndex:idx_progress_user_class;not null" json:"class_id"`
	IsWatched bool       `json:"is_watched"`
	WatchedAt *time.Time `json:"watched_at"`
	Class     *Class     `json:"class,omitempty"`
}
