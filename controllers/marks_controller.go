package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ihya/config"
	"ihya/middleware"
	"ihya/models"
	"ihya/utils"
)

// MarksController is plain CRUD over assignments, exams and their scores.
type MarksController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewMarksController(db *gorm.DB, cfg *config.Config) *MarksController {
	return &MarksController{DB: db, Cfg: cfg}
}

type markItemInput struct {
	Title string `json:"title" validate:"required"`
	Date  string `json:"date" validate:"required"`
}

func (mc *MarksController) CreateAssignment(c *fiber.Ctx) error {
	var input markItemInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
	}

	assignment := models.Assignment{Title: input.Title, Date: date}
	if err := mc.DB.Create(&assignment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create assignment")
	}
	return utils.Success(c, fiber.StatusCreated, assignment)
}

func (mc *MarksController) CreateExam(c *fiber.Ctx) error {
	var input markItemInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}
	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
	}

	exam := models.Exam{Title: input.Title, Date: date}
	if err := mc.DB.Create(&exam).Error; err != nil {
		return utils.InternalServerError(c, "Could not create exam")
	}
	return utils.Success(c, fiber.StatusCreated, exam)
}

type scoreInput struct {
	UserID uint     `json:"user_id" validate:"required"`
	Score  *float64 `json:"score" validate:"required,min=0,max=100"`
}

// AddAssignmentScore upserts the single score per (user, assignment).
func (mc *MarksController) AddAssignmentScore(c *fiber.Ctx) error {
	type input struct {
		scoreInput
		AssignmentID uint `json:"assignment_id" validate:"required"`
	}
	var in input
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(in); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}
	if err := mc.DB.First(&models.Assignment{}, in.AssignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Assignment not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	score := models.AssignmentScore{
		UserID:       in.UserID,
		AssignmentID: in.AssignmentID,
		Score:        *in.Score,
	}
	err := mc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "assignment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(&score).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not save score")
	}
	return utils.Success(c, fiber.StatusOK, score)
}

func (mc *MarksController) AddExamScore(c *fiber.Ctx) error {
	type input struct {
		scoreInput
		ExamID uint `json:"exam_id" validate:"required"`
	}
	var in input
	if err := c.BodyParser(&in); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(in); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}
	if err := mc.DB.First(&models.Exam{}, in.ExamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Exam not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	score := models.ExamScore{
		UserID: in.UserID,
		ExamID: in.ExamID,
		Score:  *in.Score,
	}
	err := mc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "exam_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(&score).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not save score")
	}
	return utils.Success(c, fiber.StatusOK, score)
}

func (mc *MarksController) studentMarks(c *fiber.Ctx, userID uint) error {
	var assignments []models.AssignmentScore
	err := mc.DB.Preload("Assignment").Where("user_id = ?", userID).Find(&assignments).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var exams []models.ExamScore
	err = mc.DB.Preload("Exam").Where("user_id = ?", userID).Find(&exams).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"assignments": assignments,
		"exams":       exams,
	})
}

func (mc *MarksController) MyMarks(c *fiber.Ctx) error {
	return mc.studentMarks(c, middleware.UserID(c))
}

func (mc *MarksController) StudentMarks(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}
	return mc.studentMarks(c, uint(userID))
}
