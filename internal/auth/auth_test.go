package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cardops-backend/internal/config"
	"cardops-backend/internal/database"
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{JWTSecret: "0123456789abcdef0123456789abcdef"}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"success": false, "error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
		},
	})
	app.Post("/api/auth/register-admin", RegisterAdminHandler(db, cfg))
	app.Post("/api/auth/login", LoginHandler(db, cfg))

	protected := app.Group("", JWTMiddleware(cfg))
	protected.Get("/api/auth/me", MeHandler(db))
	protected.Get("/api/admin-only", RequireRole(models.RoleAdmin), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app, db, cfg
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
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

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func TestRegisterAndLogin(t *testing.T) {
	app, _, _ := setupApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/auth/register-admin", "", fiber.Map{
		"name": "Admin", "email": "Admin@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("second admin refused", func(t *testing.T) {
		resp, body := doJSON(t, app, "POST", "/api/auth/register-admin", "", fiber.Map{
			"name": "Other", "email": "other@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "An admin account already exists", body["error"])
	})

	t.Run("login is case-insensitive on email", func(t *testing.T) {
		resp, body := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
			"email": "ADMIN@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
			"email": "admin@example.com", "password": "nope",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Wrong email or password", body["error"])
	})
}

func TestJWTMiddlewareAndRoles(t *testing.T) {
	app, db, cfg := setupApp(t)

	resp, _ := doJSON(t, app, "POST", "/api/auth/register-admin", "", fiber.Map{
		"name": "Admin", "email": "admin@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, "POST", "/api/auth/login", "", fiber.Map{
		"email": "admin@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adminToken := body["token"].(string)

	t.Run("missing header", func(t *testing.T) {
		resp, _ := doJSON(t, app, "GET", "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := doJSON(t, app, "GET", "/api/auth/me", "not.a.token", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("me resolves the user", func(t *testing.T) {
		resp, body := doJSON(t, app, "GET", "/api/auth/me", adminToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "admin@example.com", body["email"])
		assert.Equal(t, "admin", body["role"])
	})

	t.Run("admin passes role gate, operator does not", func(t *testing.T) {
		resp, _ := doJSON(t, app, "GET", "/api/admin-only", adminToken, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		operator := models.User{
			Name: "Op", Email: "op@example.com", PasswordHash: "x", Role: models.RoleOperator,
		}
		require.NoError(t, db.Create(&operator).Error)
		opToken, err := GenerateToken(cfg.JWTSecret, &operator)
		require.NoError(t, err)

		resp, _ = doJSON(t, app, "GET", "/api/admin-only", opToken, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
