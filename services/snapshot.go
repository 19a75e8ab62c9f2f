package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ihya/models"
)

type SnapshotService struct {
	DB        *gorm.DB
	Analytics *AnalyticsService
}

func NewSnapshotService(db *gorm.DB) *SnapshotService {
	return &SnapshotService{DB: db, Analytics: NewAnalyticsService(db)}
}

// TakeDailySnapshot rolls today's overview counters into a PlatformSnapshot
// row. Upserts on the date, so the scheduled job can run more than once a day
// without accumulating rows.
func (s *SnapshotService) TakeDailySnapshot() error {
	overview, err := s.Analytics.Overview()
	if err != nil {
		return err
	}

	snapshot := models.PlatformSnapshot{
		Date:              time.Now().Format("2006-01-02"),
		TotalStudents:     overview.TotalStudents,
		TotalClasses:      overview.TotalClasses,
		AvgCompletionRate: overview.AvgCompletionRate,
		ActiveStudents:    overview.ActiveToday,
	}
	err = s.DB.Model(&models.Progress{}).
		Where("is_watched = ?", true).
		Count(&snapshot.TotalWatched).Error
	if err != nil {
		return err
	}

	return s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_students", "total_classes", "total_watched",
			"avg_completion_rate", "active_students", "updated_at",
		}),
	}).Create(&snapshot).Error
}

func (s *SnapshotService) Recent(limit int) ([]models.PlatformSnapshot, error) {
	if limit < 1 {
		limit = 30
	}
	var snapshots []models.PlatformSnapshot
	err := s.DB.Order("date DESC").Limit(limit).Find(&snapshots).Error
	return snapshots, err
}
