package models

import (
	"time"

	"gorm.io/gorm"
)

type Assignment struct {
	gorm.Model
	Title string    `gorm:"not null" json:"title"`
	Date  time.Time `json:"date"`
}

type Exam struct {
	gorm.Model
	Title string    `gorm:"not null" json:"title"`
	Date  time.Time `json:"date"`
}

// One upsertable score per (user, assignment).
type AssignmentScore struct {
	gorm.Model
	UserID       uint        `gorm:"uniqueIndex:idx_user_assignment;not null" json:"user_id"`
	AssignmentID uint        `gorm:"uniqueIndex:idx_user_assignment;not null" json:"assignment_id"`
	Score        float64     `json:"score"`
	Assignment   *Assignment `json:"assignment,omitempty"`
}

// One upsertable score per (user, exam).
type ExamScore struct {
	gorm.Model
	UserID uint    `gorm:"uniqueIndex:idx_user_exam;not null" json:"user_id"`
	ExamID uint    `gorm:"uniqueIndex:idx_user_exam;not null" json:"exam_id"`
	Score  float64 `json:"score"`
	Exam   *Exam   `json:"exam,omitempty"`
}
