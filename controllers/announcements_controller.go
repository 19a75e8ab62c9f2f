package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/models"
	"ihya/utils"
)

type AnnouncementsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAnnouncementsController(db *gorm.DB, cfg *config.Config) *AnnouncementsController {
	return &AnnouncementsController{DB: db, Cfg: cfg}
}

func (ac *AnnouncementsController) Create(c *fiber.Ctx) error {
	type AnnouncementInput struct {
		Title   string `json:"title" validate:"required"`
		Message string `json:"message" validate:"required"`
	}
	var input AnnouncementInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	announcement := models.Announcement{
		Title:    input.Title,
		Message:  input.Message,
		IsActive: true,
	}
	if err := ac.DB.Create(&announcement).Error; err != nil {
		return utils.InternalServerError(c, "Could not create announcement")
	}
	return utils.Success(c, fiber.StatusCreated, announcement)
}

// Active returns what students see.
func (ac *AnnouncementsController) Active(c *fiber.Ctx) error {
	var announcements []models.Announcement
	err := ac.DB.Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&announcements).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, announcements)
}

// All returns every announcement, inactive ones included.
func (ac *AnnouncementsController) All(c *fiber.Ctx) error {
	var announcements []models.Announcement
	err := ac.DB.Order("created_at DESC").Find(&announcements).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, announcements)
}

func (ac *AnnouncementsController) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid announcement ID")
	}

	var announcement models.Announcement
	if err := ac.DB.First(&announcement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Announcement not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if err := ac.DB.Delete(&announcement).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete announcement")
	}
	return utils.NoContent(c)
}
