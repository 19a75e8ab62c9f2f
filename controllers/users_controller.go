package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/models"
	"ihya/utils"
)

type UsersController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUsersController(db *gorm.DB, cfg *config.Config) *UsersController {
	return &UsersController{DB: db, Cfg: cfg}
}

type CreateUserInput struct {
	Username   string `json:"username" validate:"required,min=3,max=32"`
	Password   string `json:"password" validate:"required,min=8"`
	MentorName string `json:"mentor_name"`
	Role       string `json:"role" validate:"omitempty,oneof=ADMIN STUDENT"`
}

// Create registers a new account. Admin-only; students do not self-register.
func (uc *UsersController) Create(c *fiber.Ctx) error {
	var input CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	role := input.Role
	if role == "" {
		role = models.RoleStudent
	}
	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hash),
		MentorName:   input.MentorName,
		Role:         role,
		IsActive:     true,
		Tier:         models.TierBronze,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "Username already taken")
		}
		return utils.InternalServerError(c, "Could not create user")
	}

	return utils.Success(c, fiber.StatusCreated, user)
}

// List returns every student account, newest first.
func (uc *UsersController) List(c *fiber.Ctx) error {
	var users []models.User
	err := uc.DB.Where("role = ?", models.RoleStudent).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return utils.Success(c, fiber.StatusOK, users)
}

func (uc *UsersController) Update(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	type UpdateUserInput struct {
		Username   string `json:"username" validate:"omitempty,min=3,max=32"`
		Password   string `json:"password" validate:"omitempty,min=8"`
		MentorName *string `json:"mentor_name"`
		IsActive   *bool   `json:"is_active"`
	}
	var input UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := validate.Struct(input); err != nil {
		return utils.ValidationError(c, validationDetails(err))
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	updates := map[string]interface{}{}
	if input.Username != "" {
		updates["username"] = input.Username
	}
	if input.MentorName != nil {
		updates["mentor_name"] = *input.MentorName
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		updates["password_hash"] = string(hash)
	}

	if len(updates) > 0 {
		if err := uc.DB.Model(&user).Updates(updates).Error; err != nil {
			return utils.InternalServerError(c, "Could not update user")
		}
	}
	return utils.Success(c, fiber.StatusOK, user)
}

// Delete removes the user together with their progress, scores and unlocked
// achievements.
func (uc *UsersController) Delete(c *fiber.Ctx) error {
	userID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user ID")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	err = uc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Progress{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.AssignmentScore{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.ExamScore{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.UserAchievement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete user")
	}
	return utils.NoContent(c)
}
