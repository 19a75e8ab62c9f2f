package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/models"
	"ihya/routes"
	"ihya/services"
	"ihya/utils"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{JWTSecret: "test-secret"}
	activity := services.NewActivityService(db)
	t.Cleanup(activity.Close)

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, activity)
	return app, db
}

// createUser hashes with MinCost; these accounts only live for one test.
func createUser(t *testing.T, db *gorm.DB, username, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		Tier:         models.TierBronze,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// decodeData unwraps the {success, data} envelope.
func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func TestLogin(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "amina", "secret123", models.RoleStudent)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "amina",
		"password": "secret123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		AccessToken string `json:"access_token"`
		User        struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "amina", body.User.Username)
	assert.Equal(t, models.RoleStudent, body.User.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "amina", "secret123", models.RoleStudent)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "amina",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	app, db := newTestApp(t)
	user := createUser(t, db, "amina", "secret123", models.RoleStudent)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "amina",
		"password": "secret123",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMe(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "amina", "secret123", models.RoleStudent)
	token := login(t, app, "amina", "secret123")

	resp := doRequest(t, app, fiber.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "amina", user.Username)
}

func TestAuthRequired(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, fiber.MethodGet, "/api/progress/stats", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/api/progress/stats", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminGuard(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "amina", "secret123", models.RoleStudent)
	createUser(t, db, "admin", "adminpass", models.RoleAdmin)

	studentToken := login(t, app, "amina", "secret123")
	adminToken := login(t, app, "admin", "adminpass")

	resp := doRequest(t, app, fiber.MethodGet, "/api/progress/analytics", studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, fiber.MethodGet, "/api/progress/analytics", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
