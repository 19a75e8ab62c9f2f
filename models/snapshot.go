package models

import "gorm.io/gorm"

// PlatformSnapshot is a daily rollup row written by the snapshot job.
// One row per calendar date; re-running the job for the same day overwrites
// the counters.
type PlatformSnapshot struct {
	gorm.Model
	Date              string `gorm:"uniqueIndex;not null" json:"date"` // YYYY-MM-DD
	TotalStudents     int64  `json:"total_students"`
	TotalClasses      int64  `json:"total_classes"`
	TotalWatched      int64  `json:"total_watched"`
	AvgCompletionRate int    `json:"avg_completion_rate"`
	ActiveStudents    int64  `json:"active_students"`
}
