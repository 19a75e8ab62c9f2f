package models

import "gorm.io/gorm"

type ActivityAction string

const (
	ActionLogin      ActivityAction = "LOGIN"
	ActionLogout     ActivityAction = "LOGOUT"
	ActionWatchClass ActivityAction = "WATCH_CLASS"
)

// ActivityLog is append-only.
type ActivityLog struct {
	gorm.Model
	UserID   uint           `gorm:"index;not null" json:"user_id"`
	Action   ActivityAction `gorm:"not null" json:"action"`
	Metadata string         `json:"metadata,omitempty"`
	User     *User          `json:"user,omitempty"`
}

type Announcement struct {
	gorm.Model
	Title    string `gorm:"not null" json:"title"`
	Message  string `gorm:"not null" json:"message"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}
