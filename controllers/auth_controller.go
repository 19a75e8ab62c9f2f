package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/middleware"
	"ihya/models"
	"ihya/services"
	"ihya/utils"
)

type AuthController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Activity *services.ActivityService
}

func NewAuthController(db *gorm.DB, cfg *config.Config, activity *services.ActivityService) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Activity: activity}
}

// Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if !user.IsActive {
		return utils.Forbidden(c, "Account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	// Fire and forget; the response does not wait for the log write.
	ac.Activity.Emit(user.ID, models.ActionLogin, "")

	return c.JSON(fiber.Map{
		"access_token": token,
		"user": fiber.Map{
			"id":          user.ID,
			"username":    user.Username,
			"role":        user.Role,
			"mentor_name": user.MentorName,
		},
	})
}

// Me returns the authenticated user's own record.
func (ac *AuthController) Me(c *fiber.Ctx) error {
	var user models.User
	if err := ac.DB.First(&user, middleware.UserID(c)).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}
	return c.JSON(user)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	ac.Activity.Emit(middleware.UserID(c), models.ActionLogout, "")
	return utils.NoContent(c)
}
