package admin

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cardops-backend/internal/database"
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"success": false, "error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
		},
	})
	app.Get("/api/staff", ListStaffHandler(db))
	app.Delete("/api/staff/:id", DeleteStaffHandler(db))
	return app, db
}

func do(t *testing.T, app *fiber.App, method, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var parsed map[string]interface{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func TestDeleteStaff(t *testing.T) {
	app, db := setupApp(t)

	dept := models.Department{Name: "Personalization"}
	require.NoError(t, db.Create(&dept).Error)
	staff := models.User{
		Name: "frank", Email: "frank@example.com", PasswordHash: "x",
		Role: models.RoleOperator, DepartmentID: &dept.ID,
	}
	require.NoError(t, db.Create(&staff).Error)

	resp, body := do(t, app, "DELETE", fmt.Sprintf("/api/staff/%d", staff.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Staff deleted successfully", body["message"])

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 0, count)

	t.Run("unknown staff is 404", func(t *testing.T) {
		resp, body := do(t, app, "DELETE", "/api/staff/9999")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Staff member not found", body["error"])
	})
}
