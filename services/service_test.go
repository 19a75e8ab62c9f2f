package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ihya/models"
	"ihya/utils"
)

// newTestDB opens a throwaway in-memory database named after the test so
// parallel tests never share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	return db
}

func createStudent(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		PasswordHash: "x",
		Role:         models.RoleStudent,
		IsActive:     true,
		Tier:         models.TierBronze,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createSubject(t *testing.T, db *gorm.DB, name string) *models.Subject {
	t.Helper()
	subject := models.Subject{Name: name}
	require.NoError(t, db.Create(&subject).Error)
	return &subject
}

func createClass(t *testing.T, db *gorm.DB, subjectID uint, title string, sortOrder int) *models.Class {
	t.Helper()
	class := models.Class{
		SubjectID: subjectID,
		Title:     title,
		Date:      time.Now(),
		SortOrder: sortOrder,
	}
	require.NoError(t, db.Create(&class).Error)
	return &class
}

// watchAt inserts a watched progress row with an explicit timestamp, for
// streak and analytics scenarios that need activity on past days.
func watchAt(t *testing.T, db *gorm.DB, userID, classID uint, at time.Time) {
	t.Helper()
	progress := models.Progress{
		UserID:    userID,
		ClassID:   classID,
		IsWatched: true,
		WatchedAt: &at,
	}
	require.NoError(t, db.Create(&progress).Error)
}
