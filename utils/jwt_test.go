package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/models"
)

// extractVia runs ExtractUserFromToken inside a real request, since it reads
// the Authorization header off the fiber context.
func extractVia(t *testing.T, cfg *config.Config, authHeader string) (uint, string, error) {
	t.Helper()

	var (
		userID uint
		role   string
		outErr error
	)
	app := fiber.New()
	app.Get("/probe", func(c *fiber.Ctx) error {
		userID, role, outErr = ExtractUserFromToken(c, cfg)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	_, err := app.Test(req, -1)
	require.NoError(t, err)
	return userID, role, outErr
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	user := &models.User{Model: gorm.Model{ID: 7}, Role: models.RoleStudent}

	token, err := GenerateJWTToken(user, cfg)
	require.NoError(t, err)

	userID, role, err := extractVia(t, cfg, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
	assert.Equal(t, models.RoleStudent, role)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	user := &models.User{Model: gorm.Model{ID: 7}, Role: models.RoleStudent}
	token, err := GenerateJWTToken(user, &config.Config{JWTSecret: "one"})
	require.NoError(t, err)

	_, _, err = extractVia(t, &config.Config{JWTSecret: "two"}, "Bearer "+token)
	assert.Error(t, err)
}

func TestJWTMissingHeader(t *testing.T) {
	_, _, err := extractVia(t, &config.Config{JWTSecret: "s"}, "")
	assert.Error(t, err)
}
