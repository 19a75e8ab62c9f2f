package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"ihya/models"
)

// ErrReorderSetMismatch is returned when a reorder request does not list
// exactly the classes of the subject. Partial reorders are rejected so the
// sort orders are always 1..N with no gaps or duplicates afterwards.
var ErrReorderSetMismatch = errors.New("reorder must list every class of the subject exactly once")

type CoursesService struct {
	DB *gorm.DB
}

func NewCoursesService(db *gorm.DB) *CoursesService {
	return &CoursesService{DB: db}
}

func (s *CoursesService) CreateSubject(name string) (*models.Subject, error) {
	subject := models.Subject{Name: name}
	if err := s.DB.Create(&subject).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *CoursesService) FindAllSubjects() ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.DB.Preload("Classes", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Find(&subjects).Error
	return subjects, err
}

// CreateClass appends the class at the end of the subject's ordering:
// max(sort_order)+1, or 1 when the subject has no classes yet.
func (s *CoursesService) CreateClass(subjectID uint, title string, date time.Time) (*models.Class, error) {
	var subject models.Subject
	if err := s.DB.First(&subject, subjectID).Error; err != nil {
		return nil, err
	}

	var maxOrder int
	err := s.DB.Model(&models.Class{}).
		Where("subject_id = ?", subjectID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&maxOrder).Error
	if err != nil {
		return nil, err
	}

	class := models.Class{
		SubjectID: subjectID,
		Title:     title,
		Date:      date,
		SortOrder: maxOrder + 1,
	}
	if err := s.DB.Create(&class).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (s *CoursesService) UpdateClass(id uint, title string, date *time.Time) (*models.Class, error) {
	var class models.Class
	if err := s.DB.First(&class, id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if title != "" {
		updates["title"] = title
	}
	if date != nil {
		updates["date"] = *date
	}
	if len(updates) > 0 {
		if err := s.DB.Model(&class).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return &class, nil
}

// DeleteClass removes the class and its dependent progress rows in one
// transaction. Progress rows are hard-deleted so a later class with the same
// pairing never trips the unique index.
func (s *CoursesService) DeleteClass(id uint) error {
	var class models.Class
	if err := s.DB.First(&class, id).Error; err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("class_id = ?", id).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		return tx.Delete(&class).Error
	})
}

// ReorderClasses rewrites sort_order for every class of the subject to its
// 1-based position in classIDs. The write is all-or-nothing.
func (s *CoursesService) ReorderClasses(subjectID uint, classIDs []uint) error {
	var subject models.Subject
	if err := s.DB.First(&subject, subjectID).Error; err != nil {
		return err
	}

	var existingIDs []uint
	err := s.DB.Model(&models.Class{}).
		Where("subject_id = ?", subjectID).
		Pluck("id", &existingIDs).Error
	if err != nil {
		return err
	}

	if len(classIDs) != len(existingIDs) {
		return ErrReorderSetMismatch
	}
	existing := make(map[uint]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}
	seen := make(map[uint]struct{}, len(classIDs))
	for _, id := range classIDs {
		if _, ok := existing[id]; !ok {
			return ErrReorderSetMismatch
		}
		if _, dup := seen[id]; dup {
			return ErrReorderSetMismatch
		}
		seen[id] = struct{}{}
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		for position, id := range classIDs {
			err := tx.Model(&models.Class{}).
				Where("id = ? AND subject_id = ?", id, subjectID).
				Update("sort_order", position+1).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *CoursesService) GetClassesBySubject(subjectID uint) ([]models.Class, error) {
	var classes []models.Class
	err := s.DB.Where("subject_id = ?", subjectID).
		Order("sort_order ASC").
		Find(&classes).Error
	return classes, err
}

func (s *CoursesService) GetAllClasses() ([]models.Class, error) {
	var classes []models.Class
	err := s.DB.Preload("Subject").
		Order("subject_id ASC, sort_order ASC").
		Find(&classes).Error
	return classes, err
}
