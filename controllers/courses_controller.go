package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/services"
	"ihya/utils"
)

type CoursesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Courses *services.CoursesService
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Courses: services.NewCoursesService(db)}
}

func (cc *CoursesController) CreateSubject(c *fiber.Ctx) error {
	type SubjectInput struct {
		Name string `json:"name" validate:"required"`
	}
	var input SubjectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	subject, err := cc.Courses.CreateSubject(input.Name)
	if err != nil {
		return utils.InternalServerError(c, "Could not create subject")
	}
	return utils.Success(c, fiber.StatusCreated, subject)
}

func (cc *CoursesController) GetSubjects(c *fiber.Ctx) error {
	subjects, err := cc.Courses.FindAllSubjects()
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, subjects)
}

type CreateClassInput struct {
	SubjectID uint   `json:"subject_id" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Date      string `json:"date" validate:"required"`
}

func (cc *CoursesController) CreateClass(c *fiber.Ctx) error {
	var input CreateClassInput
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

	class, err := cc.Courses.CreateClass(input.SubjectID, input.Title, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Subject not found")
		}
		return utils.InternalServerError(c, "Could not create class")
	}
	return utils.Success(c, fiber.StatusCreated, class)
}

func (cc *CoursesController) UpdateClass(c *fiber.Ctx) error {
	classID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid class ID")
	}

	type UpdateClassInput struct {
		Title string `json:"title"`
		Date  string `json:"date"`
	}
	var input UpdateClassInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var date *time.Time
	if input.Date != "" {
		parsed, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			return utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
		}
		date = &parsed
	}

	class, err := cc.Courses.UpdateClass(uint(classID), input.Title, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Class not found")
		}
		return utils.InternalServerError(c, "Could not update class")
	}
	return utils.Success(c, fiber.StatusOK, class)
}

func (cc *CoursesController) DeleteClass(c *fiber.Ctx) error {
	classID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid class ID")
	}

	if err := cc.Courses.DeleteClass(uint(classID)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Class not found")
		}
		return utils.InternalServerError(c, "Could not delete class")
	}
	return utils.NoContent(c)
}

func (cc *CoursesController) ReorderClasses(c *fiber.Ctx) error {
	type ReorderInput struct {
		SubjectID uint   `json:"subject_id" validate:"required"`
		ClassIDs  []uint `json:"class_ids" validate:"required,min=1"`
	}
	var input ReorderInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	err := cc.Courses.ReorderClasses(input.SubjectID, input.ClassIDs)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReorderSetMismatch):
			return utils.BadRequest(c, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return utils.NotFound(c, "Subject not found")
		default:
			return utils.InternalServerError(c, "Could not reorder classes")
		}
	}

	classes, err := cc.Courses.GetClassesBySubject(input.SubjectID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, classes)
}

func (cc *CoursesController) GetClassesBySubject(c *fiber.Ctx) error {
	subjectID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid subject ID")
	}

	classes, err := cc.Courses.GetClassesBySubject(uint(subjectID))
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, classes)
}

func (cc *CoursesController) GetAllClasses(c *fiber.Ctx) error {
	classes, err := cc.Courses.GetAllClasses()
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, classes)
}
