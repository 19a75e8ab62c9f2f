package models

import "gorm.io/gorm"

const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

// Tier names, lowest to highest. The cached User.Tier column always holds
// one of these; it is derived from XP and rewritten only when it changes.
const (
	TierBronze   = "BRONZE"
	TierSilver   = "SILVER"
	TierGold     = "GOLD"
	TierPlatinum = "PLATINUM"
	TierDiamond  = "DIAMOND"
)

type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:STUDENT" json:"role"`
	MentorName   string `json:"mentor_name"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
	Tier         string `gorm:"default:BRONZE" json:"tier"`
}
