package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"ihya/models"
)

type AnalyticsService struct {
	DB          *gorm.DB
	Leaderboard *LeaderboardService
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db, Leaderboard: NewLeaderboardService(db)}
}

type DailyActivityPoint struct {
	Date           string `json:"date"`
	ClassesWatched int    `json:"classesWatched"`
}

type SubjectCompletion struct {
	Name           string `json:"name"`
	CompletionRate int    `json:"completionRate"`
	TotalClasses   int64  `json:"totalClasses"`
	TotalWatched   int64  `json:"totalWatched"`
}

type Overview struct {
	TotalStudents     int64 `json:"totalStudents"`
	TotalClasses      int64 `json:"totalClasses"`
	AvgCompletionRate int   `json:"avgCompletionRate"`
	ActiveToday       int64 `json:"activeToday"`
}

type AnalyticsSummary struct {
	DailyActivity     []DailyActivityPoint `json:"dailyActivity"`
	SubjectCompletion []SubjectCompletion  `json:"subjectCompletion"`
	TopPerformers     []LeaderboardEntry   `json:"topPerformers"`
	Overview          Overview             `json:"overview"`
}

// DailyActivity buckets watch events into the trailing 7 UTC calendar days,
// oldest first. Days with no activity stay at zero instead of being omitted.
func (s *AnalyticsService) DailyActivity() ([]DailyActivityPoint, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windowStart := today.AddDate(0, 0, -6)

	counts := make(map[string]int, 7)
	points := make([]DailyActivityPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format("2006-01-02")
		counts[date] = 0
		points = append(points, DailyActivityPoint{Date: date})
	}

	var watchedTimes []time.Time
	err := s.DB.Model(&models.Progress{}).
		Where("is_watched = ? AND watched_at >= ?", true, windowStart).
		Pluck("watched_at", &watchedTimes).Error
	if err != nil {
		return nil, err
	}
	for _, t := range watchedTimes {
		date := t.UTC().Format("2006-01-02")
		if _, ok := counts[date]; ok {
			counts[date]++
		}
	}

	for i := range points {
		points[i].ClassesWatched = counts[points[i].Date]
	}
	return points, nil
}

// SubjectCompletion reports, per subject, how much of the total possible
// watching (classes × students) has actually happened.
func (s *AnalyticsService) SubjectCompletion() ([]SubjectCompletion, error) {
	var subjects []models.Subject
	if err := s.DB.Preload("Classes").Find(&subjects).Error; err != nil {
		return nil, err
	}

	var totalStudents int64
	if err := s.DB.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&totalStudents).Error; err != nil {
		return nil, err
	}

	result := make([]SubjectCompletion, 0, len(subjects))
	for _, subject := range subjects {
		var totalWatched int64
		err := s.DB.Model(&models.Progress{}).
			Joins("JOIN classes ON classes.id = progresses.class_id").
			Where("progresses.is_watched = ? AND classes.subject_id = ?", true, subject.ID).
			Count(&totalWatched).Error
		if err != nil {
			return nil, err
		}

		totalClasses := int64(len(subject.Classes))
		totalPossible := totalClasses * totalStudents
		rate := 0
		if totalPossible > 0 {
			rate = roundPercent(totalWatched, totalPossible)
		}

		result = append(result, SubjectCompletion{
			Name:           strings.ReplaceAll(subject.Name, "_", " "),
			CompletionRate: rate,
			TotalClasses:   totalClasses,
			TotalWatched:   totalWatched,
		})
	}
	return result, nil
}

func (s *AnalyticsService) Overview() (*Overview, error) {
	var totalStudents, totalClasses, totalWatchedAll int64
	if err := s.DB.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&totalStudents).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Class{}).Count(&totalClasses).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Progress{}).Where("is_watched = ?", true).Count(&totalWatchedAll).Error; err != nil {
		return nil, err
	}

	avgCompletionRate := 0
	if totalStudents > 0 && totalClasses > 0 {
		avgCompletionRate = roundPercent(totalWatchedAll, totalStudents*totalClasses)
	}

	// Active today means a watch event since local midnight.
	todayStart := startOfDay(time.Now())
	var activeToday int64
	err := s.DB.Model(&models.Progress{}).
		Where("is_watched = ? AND watched_at >= ?", true, todayStart).
		Distinct("user_id").
		Count(&activeToday).Error
	if err != nil {
		return nil, err
	}

	return &Overview{
		TotalStudents:     totalStudents,
		TotalClasses:      totalClasses,
		AvgCompletionRate: avgCompletionRate,
		ActiveToday:       activeToday,
	}, nil
}

func (s *AnalyticsService) TopPerformers() ([]LeaderboardEntry, error) {
	leaderboard, err := s.Leaderboard.Leaderboard()
	if err != nil {
		return nil, err
	}
	if len(leaderboard) > 5 {
		leaderboard = leaderboard[:5]
	}
	return leaderboard, nil
}

func (s *AnalyticsService) Analytics() (*AnalyticsSummary, error) {
	daily, err := s.DailyActivity()
	if err != nil {
		return nil, err
	}
	completion, err := s.SubjectCompletion()
	if err != nil {
		return nil, err
	}
	top, err := s.TopPerformers()
	if err != nil {
		return nil, err
	}
	overview, err := s.Overview()
	if err != nil {
		return nil, err
	}

	return &AnalyticsSummary{
		DailyActivity:     daily,
		SubjectCompletion: completion,
		TopPerformers:     top,
		Overview:          *overview,
	}, nil
}
