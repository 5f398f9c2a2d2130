package inventory

import (
	"errors"
	"fmt"
	"strings"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AddBankCardRequest struct {
	BankID         uint   `json:"bank_id"`
	CardBrand      string `json:"card_brand"`
	QtyInVaultGood int    `json:"qty_in_vault_good"`
	SubmittedBy    string `json:"submitted_by"`
}

type BankCardResponse struct {
	ID                     uint   `json:"id"`
	BankID                 uint   `json:"bank_id"`
	CardBrand              string `json:"card_brand"`
	QtyInVaultGood         int    `json:"qty_in_vault_good"`
	QtyInVaultDamaged      int    `json:"qty_in_vault_damaged"`
	Personalized           int    `json:"personalized"`
	OngoingPersonalization int    `json:"ongoing_personalization"`
	Duplicate              int    `json:"duplicate"`
	SubmittedBy            string `json:"submitted_by"`
	CreatedAt              string `json:"created_at"`
	UpdatedAt              string `json:"updated_at"`
}

func toBankCardResponse(s models.BankCardStock) BankCardResponse {
	return BankCardResponse{
		ID:                     s.ID,
		BankID:                 s.BankID,
		CardBrand:              s.CardBrand,
		QtyInVaultGood:         s.QtyInVaultGood,
		QtyInVaultDamaged:      s.QtyInVaultDamaged,
		Personalized:           s.Personalized,
		OngoingPersonalization: s.OngoingPersonalization,
		Duplicate:              s.Duplicate,
		SubmittedBy:            s.SubmittedBy,
		CreatedAt:              s.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:              s.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/bank-cards
// Stock intake: creates the (bank, brand) row with the vault-good count.
// All other counters start at zero; a second intake for the same pair is a
// conflict, not a merge.
func AddBankCardHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AddBankCardRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var missing []string
		if body.BankID == 0 {
			missing = append(missing, "bank_id")
		}
		if body.CardBrand == "" {
			missing = append(missing, "card_brand")
		}
		if body.QtyInVaultGood == 0 {
			missing = append(missing, "qty_in_vault_good")
		}
		if body.SubmittedBy == "" {
			missing = append(missing, "submitted_by")
		}
		if len(missing) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", ")))
		}
		if body.QtyInVaultGood < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "qty_in_vault_good cannot be negative")
		}

		var bank models.Bank
		if err := db.First(&bank, "bank_id = ?", body.BankID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bank not found")
		}

		var existing models.BankCardStock
		err := db.Where("bank_id = ? AND card_brand = ?", body.BankID, body.CardBrand).
			First(&existing).Error
		if err == nil {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("Stock for %s already exists for this bank", body.CardBrand))
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not check existing stock")
		}

		stock := models.BankCardStock{
			BankID:         body.BankID,
			CardBrand:      body.CardBrand,
			QtyInVaultGood: body.QtyInVaultGood,
			SubmittedBy:    body.SubmittedBy,
		}

		if err := db.Create(&stock).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not add bank card stock")
		}

		return c.JSON(fiber.Map{"success": true, "data": toBankCardResponse(stock)})
	}
}

// GET /api/bank-cards?bank_id=&card_brand=
func ListBankCardsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.BankCardStock{})

		if bidStr := c.Query("bank_id"); bidStr != "" {
			var bid uint
			if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "bank_id is invalid")
			}
			dbq = dbq.Where("bank_id = ?", bid)
		}
		if brand := c.Query("card_brand"); brand != "" {
			dbq = dbq.Where("card_brand = ?", brand)
		}

		var stocks []models.BankCardStock
		if err := dbq.Order("bank_id ASC, card_brand ASC").Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list bank card stock")
		}

		resp := make([]BankCardResponse, 0, len(stocks))
		for _, s := range stocks {
			resp = append(resp, toBankCardResponse(s))
		}

		return c.JSON(fiber.Map{"success": true, "data": resp})
	}
}
