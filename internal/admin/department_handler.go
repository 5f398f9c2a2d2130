package admin

import (
	"fmt"
	"strings"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/departments
func ListDepartmentsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var departments []models.Department
		if err := db.Order("name ASC").Find(&departments).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list departments")
		}
		return c.JSON(departments)
	}
}

// POST /api/departments
func CreateDepartmentHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required field(s): name")
		}

		var existing models.Department
		if err := db.Where("LOWER(name) = ?", strings.ToLower(body.Name)).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Department %s already exists", existing.Name))
		}

		dept := models.Department{Name: body.Name}
		if err := db.Create(&dept).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create department")
		}

		return c.Status(fiber.StatusCreated).JSON(dept)
	}
}

// PUT /api/departments/:id
func UpdateDepartmentHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var dept models.Department
		if err := db.First(&dept, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Department not found")
		}

		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required field(s): name")
		}

		var existing models.Department
		if err := db.Where("LOWER(name) = ? AND id != ?", strings.ToLower(body.Name), dept.ID).
			First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Department %s already exists", existing.Name))
		}

		dept.Name = body.Name
		if err := db.Save(&dept).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update department")
		}
		return c.JSON(dept)
	}
}

// DELETE /api/departments/:id
func DeleteDepartmentHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var dept models.Department
		if err := db.First(&dept, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Department not found")
		}

		var count int64
		db.Model(&models.User{}).Where("department_id = ?", dept.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Department has staff assigned, reassign them first")
		}

		if err := db.Delete(&dept).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete department")
		}
		return c.JSON(fiber.Map{"message": "Department deleted"})
	}
}
