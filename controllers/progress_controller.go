package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/middleware"
	"ihya/models"
	"ihya/services"
	"ihya/utils"
)

type ProgressController struct {
	DB        *gorm.DB
	Cfg       *config.Config
	Progress  *services.ProgressService
	Analytics *services.AnalyticsService
	Activity  *services.ActivityService
}

func NewProgressController(db *gorm.DB, cfg *config.Config, activity *services.ActivityService) *ProgressController {
	return &ProgressController{
		DB:        db,
		Cfg:       cfg,
		Progress:  services.NewProgressService(db),
		Analytics: services.NewAnalyticsService(db),
		Activity:  activity,
	}
}

// MarkWatched godoc
// @Summary Toggle watched state for a class
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} models.Progress
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [post]
func (pc *ProgressController) MarkWatched(c *fiber.Ctx) error {
	type WatchInput struct {
		ClassID   uint  `json:"class_id" validate:"required"`
		IsWatched *bool `json:"is_watched"`
	}
	var input WatchInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	watched := true
	if input.IsWatched != nil {
		watched = *input.IsWatched
	}

	userID := middleware.UserID(c)
	progress, err := pc.Progress.SetWatched(userID, input.ClassID, watched)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Class not found")
		}
		return utils.InternalServerError(c, "Could not save progress")
	}

	if watched {
		pc.Activity.Emit(userID, models.ActionWatchClass, strconv.Itoa(int(input.ClassID)))
	}

	return utils.Success(c, fiber.StatusOK, progress)
}

func (pc *ProgressController) MyProgress(c *fiber.Ctx) error {
	progress, err := pc.Progress.UserProgress(middleware.UserID(c))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, progress)
}

func (pc *ProgressController) SubjectsProgress(c *fiber.Ctx) error {
	subjects, err := pc.Progress.AllSubjectsProgress(middleware.UserID(c))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, subjects)
}

func (pc *ProgressController) SubjectProgress(c *fiber.Ctx) error {
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	progress, err := pc.Progress.GetSubjectProgress(middleware.UserID(c), uint(subjectID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Subject not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, progress)
}

// Stats godoc
// @Summary Get gamification stats for the authenticated user
// @Tags progress
// @Produce json
// @Success 200 {object} services.UserStats
// @Security ApiKeyAuth
// @Router /progress/stats [get]
func (pc *ProgressController) Stats(c *fiber.Ctx) error {
	stats, err := pc.Progress.GetUserStats(middleware.UserID(c))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not compute stats")
	}
	return utils.Success(c, fiber.StatusOK, stats)
}

// Leaderboard is public: the landing page renders it without a session.
func (pc *ProgressController) Leaderboard(c *fiber.Ctx) error {
	leaderboard, err := pc.Progress.Leaderboard.Leaderboard()
	if err != nil {
		return utils.InternalServerError(c, "Could not compute leaderboard")
	}
	return utils.Success(c, fiber.StatusOK, leaderboard)
}

func (pc *ProgressController) GetAnalytics(c *fiber.Ctx) error {
	summary, err := pc.Analytics.Analytics()
	if err != nil {
		return utils.InternalServerError(c, "Could not compute analytics")
	}
	return utils.Success(c, fiber.StatusOK, summary)
}
