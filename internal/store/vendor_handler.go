package store

import (
	"fmt"
	"strings"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type VendorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// GET /api/vendors
func ListVendorsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vendors []models.Vendor
		if err := db.Order("name ASC").Find(&vendors).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list vendors")
		}
		return c.JSON(vendors)
	}
}

// POST /api/vendors
func CreateVendorHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body VendorRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required field(s): name")
		}

		var existing models.Vendor
		if err := db.Where("LOWER(name) = ?", strings.ToLower(body.Name)).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Vendor %s already exists", existing.Name))
		}

		vendor := models.Vendor{Name: body.Name, Email: body.Email, Phone: body.Phone}
		if err := db.Create(&vendor).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create vendor")
		}

		return c.Status(fiber.StatusCreated).JSON(vendor)
	}
}
