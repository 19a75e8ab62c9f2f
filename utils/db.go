package utils

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/models"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := Seed(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Class{},
		&models.Progress{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Assignment{},
		&models.AssignmentScore{},
		&models.Exam{},
		&models.ExamScore{},
		&models.ActivityLog{},
		&models.Announcement{},
		&models.PlatformSnapshot{},
	)
}

// Seed bootstraps the admin account and the default achievement rules. Both
// steps are idempotent, so running it on every start is safe.
func Seed(db *gorm.DB, cfg *config.Config) error {
	var admin models.User
	err := db.Where("username = ?", cfg.AdminUsername).First(&admin).Error
	if err == gorm.ErrRecordNotFound {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			return hashErr
		}
		admin = models.User{
			Username:     cfg.AdminUsername,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			IsActive:     true,
			Tier:         models.TierBronze,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.Achievement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Achievement{
		{Kind: models.KindWatchCount, Requirement: 1, Name: "First Steps", Description: "Watch your first class", Icon: "🎯"},
		{Kind: models.KindStreak, Requirement: 5, Name: "On Fire", Description: "5 day streak", Icon: "🔥"},
		{Kind: models.KindStreak, Requirement: 7, Name: "Dedicated", Description: "7 day streak", Icon: "💪"},
		{Kind: models.KindWatchCount, Requirement: 10, Name: "Bookworm", Description: "Watch 10 classes", Icon: "📚"},
		{Kind: models.KindWatchCount, Requirement: 25, Name: "Scholar", Description: "Watch 25 classes", Icon: "🎓"},
		{Kind: models.KindXPMilestone, Requirement: 500, Name: "Rising Star", Description: "Reach 500 XP", Icon: "⭐", XPBonus: 50},
		{Kind: models.KindXPMilestone, Requirement: 1000, Name: "Champion", Description: "Reach 1000 XP", Icon: "🏆", XPBonus: 100},
	}
	return db.Create(&defaults).Error
}
