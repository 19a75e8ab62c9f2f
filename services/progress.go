package services

import (
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ihya/models"
)

// XPPerClass is awarded for every watched class. XP is never stored; it is
// always recomputed from the watched count, so it cannot drift.
const XPPerClass = 25

type ProgressService struct {
	DB          *gorm.DB
	Leaderboard *LeaderboardService
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{DB: db, Leaderboard: NewLeaderboardService(db)}
}

// SetWatched upserts the (user, class) progress record. Watching stamps
// WatchedAt with the current instant and triggers achievement evaluation;
// unwatching clears the timestamp and skips evaluation.
func (s *ProgressService) SetWatched(userID, classID uint, watched bool) (*models.Progress, error) {
	var class models.Class
	if err := s.DB.First(&class, classID).Error; err != nil {
		return nil, err
	}

	var watchedAt *time.Time
	if watched {
		now := time.Now()
		watchedAt = &now
	}

	progress := models.Progress{
		UserID:    userID,
		ClassID:   classID,
		IsWatched: watched,
		WatchedAt: watchedAt,
	}
	err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "class_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_watched", "watched_at", "updated_at"}),
	}).Create(&progress).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller sees the stored row regardless of which branch
	// of the upsert ran.
	if err := s.DB.Where("user_id = ? AND class_id = ?", userID, classID).First(&progress).Error; err != nil {
		return nil, err
	}

	if watched {
		if _, err := s.CheckAndUnlockAchievements(userID); err != nil {
			return nil, err
		}
	}

	return &progress, nil
}

func (s *ProgressService) ComputeXP(userID uint) (int, error) {
	count, err := s.watchedCount(userID)
	if err != nil {
		return 0, err
	}
	return int(count) * XPPerClass, nil
}

func (s *ProgressService) watchedCount(userID uint) (int64, error) {
	var count int64
	err := s.DB.Model(&models.Progress{}).
		Where("user_id = ? AND is_watched = ?", userID, true).
		Count(&count).Error
	return count, err
}

// ComputeStreak counts consecutive local calendar days with at least one
// watched class, ending today or yesterday. A most-recent activity older than
// yesterday means the streak is broken.
func (s *ProgressService) ComputeStreak(userID uint) (int, error) {
	var watchedTimes []time.Time
	err := s.DB.Model(&models.Progress{}).
		Where("user_id = ? AND is_watched = ? AND watched_at IS NOT NULL", userID, true).
		Order("watched_at DESC").
		Pluck("watched_at", &watchedTimes).Error
	if err != nil {
		return 0, err
	}
	if len(watchedTimes) == 0 {
		return 0, nil
	}

	seen := make(map[string]struct{}, len(watchedTimes))
	var days []time.Time
	for _, t := range watchedTimes {
		day := startOfDay(t.Local())
		key := day.Format("2006-01-02")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	today := startOfDay(time.Now())
	yesterday := today.AddDate(0, 0, -1)
	if !days[0].Equal(today) && !days[0].Equal(yesterday) {
		return 0, nil
	}

	streak := 1
	for i := 1; i < len(days); i++ {
		if !days[i-1].AddDate(0, 0, -1).Equal(days[i]) {
			break
		}
		streak++
	}
	return streak, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func LevelForXP(xp int) int {
	return xp/100 + 1
}

func XPForNextLevel(xp int) int {
	return 100 - xp%100
}

// TierForXP maps XP onto the fixed tier ladder and returns the tier together
// with the XP bound of the next tier (10000 sentinel at DIAMOND).
func TierForXP(xp int) (string, int) {
	switch {
	case xp < 500:
		return models.TierBronze, 500
	case xp < 1000:
		return models.TierSilver, 1000
	case xp < 2500:
		return models.TierGold, 2500
	case xp < 5000:
		return models.TierPlatinum, 5000
	default:
		return models.TierDiamond, 10000
	}
}

type AchievementStatus struct {
	ID          uint                   `json:"id"`
	Kind        models.AchievementKind `json:"kind"`
	Requirement int                    `json:"requirement"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Icon        string                 `json:"icon"`
	Unlocked    bool                   `json:"unlocked"`
	UnlockedAt  *time.Time             `json:"unlockedAt,omitempty"`
}

type UserStats struct {
	XP             int                 `json:"xp"`
	Level          int                 `json:"level"`
	XPForNextLevel int                 `json:"xpForNextLevel"`
	Streak         int                 `json:"streak"`
	Rank           int                 `json:"rank"`
	Tier           string              `json:"tier"`
	NextTierXP     int                 `json:"nextTierXp"`
	TotalStudents  int                 `json:"totalStudents"`
	WatchedCount   int64               `json:"watchedCount"`
	TotalClasses   int64               `json:"totalClasses"`
	Percentage     int                 `json:"percentage"`
	Achievements   []AchievementStatus `json:"achievements"`
}

// GetUserStats assembles the full gamification view for one user. The cached
// tier on the user row is refreshed here, but only when the value changed.
func (s *ProgressService) GetUserStats(userID uint) (*UserStats, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}

	xp, err := s.ComputeXP(userID)
	if err != nil {
		return nil, err
	}
	streak, err := s.ComputeStreak(userID)
	if err != nil {
		return nil, err
	}

	leaderboard, err := s.Leaderboard.Leaderboard()
	if err != nil {
		return nil, err
	}
	rank := RankOf(leaderboard, userID)

	watchedCount, err := s.watchedCount(userID)
	if err != nil {
		return nil, err
	}
	var totalClasses int64
	if err := s.DB.Model(&models.Class{}).Count(&totalClasses).Error; err != nil {
		return nil, err
	}

	tier, nextTierXP := TierForXP(xp)
	if user.Tier != tier {
		if err := s.DB.Model(&user).Update("tier", tier).Error; err != nil {
			return nil, err
		}
	}

	achievements, err := s.achievementStatuses(userID)
	if err != nil {
		return nil, err
	}

	percentage := 0
	if totalClasses > 0 {
		percentage = roundPercent(watchedCount, totalClasses)
	}

	return &UserStats{
		XP:             xp,
		Level:          LevelForXP(xp),
		XPForNextLevel: XPForNextLevel(xp),
		Streak:         streak,
		Rank:           rank,
		Tier:           tier,
		NextTierXP:     nextTierXP,
		TotalStudents:  len(leaderboard),
		WatchedCount:   watchedCount,
		TotalClasses:   totalClasses,
		Percentage:     percentage,
		Achievements:   achievements,
	}, nil
}

func (s *ProgressService) achievementStatuses(userID uint) ([]AchievementStatus, error) {
	var achievements []models.Achievement
	if err := s.DB.Order("requirement ASC").Find(&achievements).Error; err != nil {
		return nil, err
	}

	var unlocked []models.UserAchievement
	if err := s.DB.Where("user_id = ?", userID).Find(&unlocked).Error; err != nil {
		return nil, err
	}
	unlockedAt := make(map[uint]time.Time, len(unlocked))
	for _, ua := range unlocked {
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	statuses := make([]AchievementStatus, 0, len(achievements))
	for _, a := range achievements {
		status := AchievementStatus{
			ID:          a.ID,
			Kind:        a.Kind,
			Requirement: a.Requirement,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
		}
		if at, ok := unlockedAt[a.ID]; ok {
			status.Unlocked = true
			t := at
			status.UnlockedAt = &t
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// CheckAndUnlockAchievements evaluates every rule the user has not unlocked
// yet against fresh stats and records the newly satisfied ones. Unlocks are
// one-way: existing rows are never touched, and the unique index on
// (user_id, achievement_id) backstops the existence check.
func (s *ProgressService) CheckAndUnlockAchievements(userID uint) ([]models.UserAchievement, error) {
	xp, err := s.ComputeXP(userID)
	if err != nil {
		return nil, err
	}
	streak, err := s.ComputeStreak(userID)
	if err != nil {
		return nil, err
	}
	watchedCount, err := s.watchedCount(userID)
	if err != nil {
		return nil, err
	}

	var achievements []models.Achievement
	if err := s.DB.Find(&achievements).Error; err != nil {
		return nil, err
	}
	var existing []models.UserAchievement
	if err := s.DB.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return nil, err
	}
	already := make(map[uint]struct{}, len(existing))
	for _, ua := range existing {
		already[ua.AchievementID] = struct{}{}
	}

	var newlyUnlocked []models.UserAchievement
	for _, a := range achievements {
		if _, ok := already[a.ID]; ok {
			continue
		}

		var stat int
		switch a.Kind {
		case models.KindStreak:
			stat = streak
		case models.KindWatchCount:
			stat = int(watchedCount)
		case models.KindXPMilestone:
			stat = xp
		default:
			// Unknown kinds can never be satisfied.
			continue
		}
		if stat < a.Requirement {
			continue
		}

		ua := models.UserAchievement{
			UserID:        userID,
			AchievementID: a.ID,
			UnlockedAt:    time.Now(),
		}
		err := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&ua).Error
		if err != nil {
			return nil, err
		}
		newlyUnlocked = append(newlyUnlocked, ua)
	}
	return newlyUnlocked, nil
}

// UserProgress lists every progress row of the user with class and subject
// attached.
func (s *ProgressService) UserProgress(userID uint) ([]models.Progress, error) {
	var progress []models.Progress
	err := s.DB.Preload("Class.Subject").
		Where("user_id = ?", userID).
		Find(&progress).Error
	return progress, err
}

type SubjectProgress struct {
	SubjectID      uint  `json:"subjectId"`
	TotalClasses   int64 `json:"totalClasses"`
	WatchedClasses int64 `json:"watchedClasses"`
	Percentage     int   `json:"percentage"`
}

func (s *ProgressService) GetSubjectProgress(userID, subjectID uint) (*SubjectProgress, error) {
	var subject models.Subject
	if err := s.DB.First(&subject, subjectID).Error; err != nil {
		return nil, err
	}

	var totalClasses int64
	if err := s.DB.Model(&models.Class{}).Where("subject_id = ?", subjectID).Count(&totalClasses).Error; err != nil {
		return nil, err
	}

	var watched int64
	err := s.DB.Model(&models.Progress{}).
		Joins("JOIN classes ON classes.id = progresses.class_id").
		Where("progresses.user_id = ? AND progresses.is_watched = ? AND classes.subject_id = ?", userID, true, subjectID).
		Count(&watched).Error
	if err != nil {
		return nil, err
	}

	percentage := 0
	if totalClasses > 0 {
		percentage = roundPercent(watched, totalClasses)
	}

	return &SubjectProgress{
		SubjectID:      subjectID,
		TotalClasses:   totalClasses,
		WatchedClasses: watched,
		Percentage:     percentage,
	}, nil
}

type SubjectWithProgress struct {
	models.Subject
	TotalClasses   int64 `json:"totalClasses"`
	WatchedClasses int64 `json:"watchedClasses"`
	Percentage     int   `json:"percentage"`
}

func (s *ProgressService) AllSubjectsProgress(userID uint) ([]SubjectWithProgress, error) {
	var subjects []models.Subject
	err := s.DB.Preload("Classes", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Find(&subjects).Error
	if err != nil {
		return nil, err
	}

	result := make([]SubjectWithProgress, 0, len(subjects))
	for _, subject := range subjects {
		progress, err := s.GetSubjectProgress(userID, subject.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, SubjectWithProgress{
			Subject:        subject,
			TotalClasses:   progress.TotalClasses,
			WatchedClasses: progress.WatchedClasses,
			Percentage:     progress.Percentage,
		})
	}
	return result, nil
}

func roundPercent(part, total int64) int {
	return int(float64(part)/float64(total)*100 + 0.5)
}
