package services

import (
	"log"

	"gorm.io/gorm"

	"ihya/models"
)

// ActivityService persists activity logs off the request path: Emit hands the
// event to a single drain goroutine and returns immediately. Delivery is
// at-least-once as long as Close is called on shutdown; a failed insert is
// logged and dropped rather than retried.
type ActivityService struct {
	db     *gorm.DB
	events chan models.ActivityLog
	done   chan struct{}
}

func NewActivityService(db *gorm.DB) *ActivityService {
	s := &ActivityService{
		db:     db,
		events: make(chan models.ActivityLog, 256),
		done:   make(chan struct{}),
	}
	go s.drain()
	return s
}

func (s *ActivityService) drain() {
	for event := range s.events {
		if err := s.db.Create(&event).Error; err != nil {
			log.Printf("activity log write failed: %v", err)
		}
	}
	close(s.done)
}

// Emit never blocks the caller. When the buffer is full the send is moved to
// its own goroutine instead of dropping the event.
func (s *ActivityService) Emit(userID uint, action models.ActivityAction, metadata string) {
	event := models.ActivityLog{UserID: userID, Action: action, Metadata: metadata}
	select {
	case s.events <- event:
	default:
		go func() { s.events <- event }()
	}
}

// Close flushes buffered events and stops the drain goroutine.
func (s *ActivityService) Close() {
	close(s.events)
	<-s.done
}

type ActivityPage struct {
	Logs       []models.ActivityLog `json:"logs"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"totalPages"`
}

func (s *ActivityService) GetLogs(page, limit int) (*ActivityPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var total int64
	if err := s.db.Model(&models.ActivityLog{}).Count(&total).Error; err != nil {
		return nil, err
	}

	var logs []models.ActivityLog
	err := s.db.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ActivityPage{
		Logs:       logs,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}
