package admin

import (
	"fmt"
	"strings"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/banks
func ListBanksHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var banks []models.Bank
		if err := db.Order("bank_name ASC").Find(&banks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list banks")
		}

		resp := make([]fiber.Map, 0, len(banks))
		for _, bank := range banks {
			resp = append(resp, fiber.Map{
				"bank_id":   bank.ID,
				"bank_name": bank.BankName,
			})
		}
		return c.JSON(resp)
	}
}

// GET /api/banks/:id
func GetBankHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var bank models.Bank
		if err := db.First(&bank, "bank_id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bank not found")
		}
		return c.JSON(fiber.Map{
			"bank_id":   bank.ID,
			"bank_name": bank.BankName,
		})
	}
}

// POST /api/banks
func CreateBankHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			BankName string `json:"bank_name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.BankName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required field(s): bank_name")
		}

		var existing models.Bank
		if err := db.Where("LOWER(bank_name) = ?", strings.ToLower(body.BankName)).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Bank %s already exists", existing.BankName))
		}

		bank := models.Bank{BankName: body.BankName}
		if err := db.Create(&bank).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create bank")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"bank_id":   bank.ID,
			"bank_name": bank.BankName,
		})
	}
}
