package models

import (
	"time"

	"gorm.io/gorm"
)

// AchievementKind is a closed enumeration; CheckAndUnlockAchievements
// switches over it exhaustively, so adding a kind means touching that switch.
type AchievementKind string

const (
	KindStreak      AchievementKind = "STREAK"
	KindWatchCount  AchievementKind = "WATCH_COUNT"
	KindXPMilestone AchievementKind = "XP_MILESTONE"
)

// Achievement is a rule definition: a user unlocks it when the stat selected
// by Kind reaches Requirement. XPBonus is display metadata only and is never
// added to computed XP totals.
type Achievement struct {
	gorm.Model
	Kind        AchievementKind `gorm:"not null" json:"kind"`
	Requirement int             `gorm:"not null" json:"requirement"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	XPBonus     int             `json:"xp_bonus"`
}

// UserAchievement records an unlock. Rows are created at most once per
// (user, achievement) and never updated or deleted, even if the underlying
// stat later regresses below the requirement.
type UserAchievement struct {
	gorm.Model
	UserID        uint         `gorm:"uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID uint         `gorm:"uniqueIndex:idx_user_achievement;not null" json:"achievement_id"`
	UnlockedAt    time.Time    `json:"unlocked_at"`
	Achievement   *Achievement `json:"achievement,omitempty"`
}
