package services

import (
	"sort"

	"gorm.io/gorm"

	"ihya/models"
)

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

type LeaderboardEntry struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	MentorName string `json:"mentorName"`
	XP         int    `json:"xp"`
	Level      int    `json:"level"`
	Percentage int    `json:"percentage"`
	Rank       int    `json:"rank"`
}

// Leaderboard ranks every student by XP descending. Ties are broken by
// username ascending so repeated calls with no intervening writes assign
// identical ranks. Ranks are 1-based positions with no gaps.
func (s *LeaderboardService) Leaderboard() ([]LeaderboardEntry, error) {
	var totalClasses int64
	if err := s.DB.Model(&models.Class{}).Count(&totalClasses).Error; err != nil {
		return nil, err
	}

	type studentRow struct {
		ID         uint
		Username   string
		MentorName string
		Watched    int64
	}
	var rows []studentRow
	err := s.DB.Raw(`
		SELECT u.id, u.username, u.mentor_name, COUNT(p.id) AS watched
		FROM users u
		LEFT JOIN progresses p
			ON p.user_id = u.id AND p.is_watched = ? AND p.deleted_at IS NULL
		WHERE u.role = ? AND u.deleted_at IS NULL
		GROUP BY u.id, u.username, u.mentor_name`,
		true, models.RoleStudent,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		xp := int(row.Watched) * XPPerClass
		percentage := 0
		if totalClasses > 0 {
			percentage = roundPercent(row.Watched, totalClasses)
		}
		entries = append(entries, LeaderboardEntry{
			ID:         row.ID,
			Username:   row.Username,
			MentorName: row.MentorName,
			XP:         xp,
			Level:      LevelForXP(xp),
			Percentage: percentage,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return entries[i].Username < entries[j].Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// RankOf returns the user's rank in the given leaderboard, or one past the
// end when the user is not listed.
func RankOf(leaderboard []LeaderboardEntry, userID uint) int {
	for _, entry := range leaderboard {
		if entry.ID == userID {
			return entry.Rank
		}
	}
	return len(leaderboard) + 1
}
