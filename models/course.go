package models

import (
	"time"

	"gorm.io/gorm"
)

type Subject struct {
	gorm.Model
	Name    string  `gorm:"not null" json:"name"`
	Classes []Class `json:"classes,omitempty"`
}

// Class belongs to exactly one subject. SortOrder defines the viewing order
// within the subject; values are strictly increasing but not required to be
// contiguous except right after a reorder.
type Class struct {
	gorm.Model
	SubjectID uint      `gorm:"index;not null" json:"subject_id"`
	Title     string    `gorm:"not null" json:"title"`
	Date      time.Time `json:"date"`
	SortOrder int       `json:"sort_order"`
	Subject   *Subject  `json:"subject,omitempty"`
}
