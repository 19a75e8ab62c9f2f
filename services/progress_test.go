package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ihya/models"
)

func TestSetWatchedComputesXP(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	subject := createSubject(t, db, "Fiqh")
	c1 := createClass(t, db, subject.ID, "Intro", 1)
	c2 := createClass(t, db, subject.ID, "Chapter 1", 2)

	_, err := svc.SetWatched(user.ID, c1.ID, true)
	require.NoError(t, err)
	_, err = svc.SetWatched(user.ID, c2.ID, true)
	require.NoError(t, err)

	xp, err := svc.ComputeXP(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2*XPPerClass, xp)

	_, err = svc.SetWatched(user.ID, c2.ID, false)
	require.NoError(t, err)

	xp, err = svc.ComputeXP(user.ID)
	require.NoError(t, err)
	assert.Equal(t, XPPerClass, xp)
}

func TestSetWatchedUpsertsSingleRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	subject := createSubject(t, db, "Fiqh")
	class := createClass(t, db, subject.ID, "Intro", 1)

	progress, err := svc.SetWatched(user.ID, class.ID, true)
	require.NoError(t, err)
	assert.True(t, progress.IsWatched)
	assert.NotNil(t, progress.WatchedAt)

	progress, err = svc.SetWatched(user.ID, class.ID, false)
	require.NoError(t, err)
	assert.False(t, progress.IsWatched)
	assert.Nil(t, progress.WatchedAt)

	progress, err = svc.SetWatched(user.ID, class.ID, true)
	require.NoError(t, err)
	assert.True(t, progress.IsWatched)

	var count int64
	err = db.Model(&models.Progress{}).
		Where("user_id = ? AND class_id = ?", user.ID, class.ID).
		Count(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSetWatchedUnknownClass(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")

	_, err := svc.SetWatched(user.ID, 9999, true)
	assert.Error(t, err)
}

func TestComputeStreak(t *testing.T) {
	now := time.Now()
	today := startOfDay(now).Add(10 * time.Hour)

	cases := []struct {
		name     string
		days     []int // offsets back from today, one watch per entry
		expected int
	}{
		{"no activity", nil, 0},
		{"today only", []int{0}, 1},
		{"yesterday only", []int{1}, 1},
		{"today and yesterday", []int{0, 1}, 2},
		{"stale activity", []int{2}, 0},
		{"gap breaks the walk", []int{0, 1, 3, 4}, 2},
		{"same day counted once", []int{0, 0, 1}, 2},
		{"week long run", []int{0, 1, 2, 3, 4, 5, 6}, 7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDB(t)
			svc := NewProgressService(db)
			user := createStudent(t, db, "amina")
			subject := createSubject(t, db, "Fiqh")

			for i, offset := range tc.days {
				class := createClass(t, db, subject.ID, "Class", i+1)
				watchAt(t, db, user.ID, class.ID, today.AddDate(0, 0, -offset))
			}

			streak, err := svc.ComputeStreak(user.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, streak)
		})
	}
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, 1, LevelForXP(0))
	assert.Equal(t, 1, LevelForXP(75))
	assert.Equal(t, 2, LevelForXP(100))
	assert.Equal(t, 3, LevelForXP(250))

	assert.Equal(t, 100, XPForNextLevel(0))
	assert.Equal(t, 75, XPForNextLevel(25))
	assert.Equal(t, 100, XPForNextLevel(100))
	assert.Equal(t, 50, XPForNextLevel(250))
}

func TestTierForXP(t *testing.T) {
	cases := []struct {
		xp       int
		tier     string
		nextTier int
	}{
		{0, models.TierBronze, 500},
		{499, models.TierBronze, 500},
		{500, models.TierSilver, 1000},
		{999, models.TierSilver, 1000},
		{1000, models.TierGold, 2500},
		{2499, models.TierGold, 2500},
		{2500, models.TierPlatinum, 5000},
		{4999, models.TierPlatinum, 5000},
		{5000, models.TierDiamond, 10000},
		{12000, models.TierDiamond, 10000},
	}
	for _, tc := range cases {
		tier, next := TierForXP(tc.xp)
		assert.Equal(t, tc.tier, tier, "xp=%d", tc.xp)
		assert.Equal(t, tc.nextTier, next, "xp=%d", tc.xp)
	}
}

func TestGetUserStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	subject := createSubject(t, db, "Fiqh")
	c1 := createClass(t, db, subject.ID, "Intro", 1)
	c2 := createClass(t, db, subject.ID, "Chapter 1", 2)

	today := startOfDay(time.Now()).Add(10 * time.Hour)
	watchAt(t, db, user.ID, c1.ID, today)
	watchAt(t, db, user.ID, c2.ID, today.AddDate(0, 0, -1))

	stats, err := svc.GetUserStats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 50, stats.XP)
	assert.Equal(t, 1, stats.Level)
	assert.Equal(t, 50, stats.XPForNextLevel)
	assert.Equal(t, 2, stats.Streak)
	assert.Equal(t, 1, stats.Rank)
	assert.Equal(t, models.TierBronze, stats.Tier)
	assert.Equal(t, 500, stats.NextTierXP)
	assert.Equal(t, 1, stats.TotalStudents)
	assert.Equal(t, int64(2), stats.WatchedCount)
	assert.Equal(t, int64(2), stats.TotalClasses)
	assert.Equal(t, 100, stats.Percentage)
}

func TestGetUserStatsPersistsTierOnChange(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	subject := createSubject(t, db, "Fiqh")

	// 20 watched classes put the user at 500 XP, the SILVER threshold.
	now := time.Now()
	for i := 0; i < 20; i++ {
		class := createClass(t, db, subject.ID, "Class", i+1)
		watchAt(t, db, user.ID, class.ID, now)
	}

	stats, err := svc.GetUserStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TierSilver, stats.Tier)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, models.TierSilver, stored.Tier)
}

func TestAchievementUnlockByKind(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	subject := createSubject(t, db, "Fiqh")

	watchRule := models.Achievement{Kind: models.KindWatchCount, Requirement: 2, Name: "Two Down"}
	xpRule := models.Achievement{Kind: models.KindXPMilestone, Requirement: 50, Name: "Fifty"}
	streakRule := models.Achievement{Kind: models.KindStreak, Requirement: 5, Name: "Streaker"}
	require.NoError(t, db.Create(&watchRule).Error)
	require.NoError(t, db.Create(&xpRule).Error)
	require.NoError(t, db.Create(&streakRule).Error)

	c1 := createClass(t, db, subject.ID, "Intro", 1)
	c2 := createClass(t, db, subject.ID, "Chapter 1", 2)
	_, err := svc.SetWatched(user.ID, c1.ID, true)
	require.NoError(t, err)
	_, err = svc.SetWatched(user.ID, c2.ID, true)
	require.NoError(t, err)

	var unlocked []models.UserAchievement
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&unlocked).Error)
	ids := make(map[uint]bool, len(unlocked))
	for _, ua := range unlocked {
		ids[ua.AchievementID] = true
	}
	assert.True(t, ids[watchRule.ID])
	assert.True(t, ids[xpRule.ID])
	assert.False(t, ids[streakRule.ID], "streak requirement not met")
}

func TestAchievementsSurviveRegression(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	subject := createSubject(t, db, "Fiqh")
	class := createClass(t, db, subject.ID, "Intro", 1)

	rule := models.Achievement{Kind: models.KindWatchCount, Requirement: 1, Name: "First Steps"}
	require.NoError(t, db.Create(&rule).Error)

	_, err := svc.SetWatched(user.ID, class.ID, true)
	require.NoError(t, err)
	_, err = svc.SetWatched(user.ID, class.ID, false)
	require.NoError(t, err)

	stats, err := svc.GetUserStats(user.ID)
	require.NoError(t, err)
	require.Len(t, stats.Achievements, 1)
	assert.True(t, stats.Achievements[0].Unlocked)
	assert.NotNil(t, stats.Achievements[0].UnlockedAt)
}

func TestCheckAndUnlockIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	subject := createSubject(t, db, "Fiqh")
	class := createClass(t, db, subject.ID, "Intro", 1)

	rule := models.Achievement{Kind: models.KindWatchCount, Requirement: 1, Name: "First Steps"}
	require.NoError(t, db.Create(&rule).Error)
	watchAt(t, db, user.ID, class.ID, time.Now())

	first, err := svc.CheckAndUnlockAchievements(user.ID)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := svc.CheckAndUnlockAchievements(user.ID)
	require.NoError(t, err)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetSubjectProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	subject := createSubject(t, db, "Fiqh")
	c1 := createClass(t, db, subject.ID, "Intro", 1)
	createClass(t, db, subject.ID, "Chapter 1", 2)
	createClass(t, db, subject.ID, "Chapter 2", 3)
	createClass(t, db, subject.ID, "Chapter 3", 4)

	watchAt(t, db, user.ID, c1.ID, time.Now())

	progress, err := svc.GetSubjectProgress(user.ID, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), progress.TotalClasses)
	assert.Equal(t, int64(1), progress.WatchedClasses)
	assert.Equal(t, 25, progress.Percentage)
}

func TestGetSubjectProgressEmptySubject(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	subject := createSubject(t, db, "Empty")

	progress, err := svc.GetSubjectProgress(user.ID, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), progress.TotalClasses)
	assert.Equal(t, 0, progress.Percentage)
}

func TestAllSubjectsProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewProgressService(db)
	user := createStudent(t, db, "amina")
	fiqh := createSubject(t, db, "Fiqh")
	seerah := createSubject(t, db, "Seerah")
	c1 := createClass(t, db, fiqh.ID, "Intro", 1)
	createClass(t, db, fiqh.ID, "Chapter 1", 2)
	createClass(t, db, seerah.ID, "Mecca", 1)

	watchAt(t, db, user.ID, c1.ID, time.Now())

	result, err := svc.AllSubjectsProgress(user.ID)
	require.NoError(t, err)
	require.Len(t, result, 2)

	byName := map[string]SubjectWithProgress{}
	for _, s := range result {
		byName[s.Name] = s
	}
	assert.Equal(t, int64(1), byName["Fiqh"].WatchedClasses)
	assert.Equal(t, 50, byName["Fiqh"].Percentage)
	assert.Equal(t, int64(0), byName["Seerah"].WatchedClasses)
}
