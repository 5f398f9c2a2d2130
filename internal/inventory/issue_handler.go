package inventory

import (
	"fmt"
	"strings"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReportCardIssueRequest struct {
	BankID       uint   `json:"bank_id"`
	CardBrand    string `json:"card_brand"`
	JobCode      string `json:"job_code"`
	DamagedQty   int    `json:"damaged_qty"`
	DuplicateQty int    `json:"duplicate_qty"`
	Remark       string `json:"remark"`
	SubmittedBy  string `json:"submitted_by"`
}

type CardIssueResponse struct {
	ID           uint   `json:"id"`
	BankCardID   uint   `json:"bank_card_id"`
	JobCodeID    uint   `json:"job_code_id"`
	DamagedQty   int    `json:"damaged_qty"`
	DuplicateQty int    `json:"duplicate_qty"`
	Remark       string `json:"remark"`
	SubmittedBy  string `json:"submitted_by"`
	CardStatus   string `json:"card_status"`
	CreatedAt    string `json:"created_at"`
}

func toCardIssueResponse(i models.CardIssue) CardIssueResponse {
	return CardIssueResponse{
		ID:           i.ID,
		BankCardID:   i.BankCardID,
		JobCodeID:    i.JobCodeID,
		DamagedQty:   i.DamagedQty,
		DuplicateQty: i.DuplicateQty,
		Remark:       i.Remark,
		SubmittedBy:  i.SubmittedBy,
		CardStatus:   string(i.CardStatus),
		CreatedAt:    i.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// issueTag: damaged wins the tag when both counts are nonzero.
func issueTag(damaged, duplicate int) models.IssueStatus {
	if damaged > 0 {
		return models.IssueStatusDamaged
	}
	if duplicate > 0 {
		return models.IssueStatusDuplicate
	}
	return ""
}

// POST /api/card-issues/report
// Records a defect event. Counters are not touched here; only
// reconciliation moves them.
func ReportCardIssueHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReportCardIssueRequest
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
		if body.JobCode == "" {
			missing = append(missing, "job_code")
		}
		if body.SubmittedBy == "" {
			missing = append(missing, "submitted_by")
		}
		if len(missing) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", ")))
		}

		var jobCode models.JobCode
		if err := db.Where("job_id = ? AND bank_id = ?", body.JobCode, body.BankID).
			First(&jobCode).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound,
				fmt.Sprintf("Job code %s does not exist for this bank", body.JobCode))
		}

		var stock models.BankCardStock
		if err := db.Where("bank_id = ? AND card_brand = ?", body.BankID, body.CardBrand).
			First(&stock).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound,
				fmt.Sprintf("Bank card %s not found for this bank", body.CardBrand))
		}

		issue := models.CardIssue{
			BankCardID:   stock.ID,
			JobCodeID:    jobCode.ID,
			DamagedQty:   body.DamagedQty,
			DuplicateQty: body.DuplicateQty,
			Remark:       body.Remark,
			SubmittedBy:  body.SubmittedBy,
			CardStatus:   issueTag(body.DamagedQty, body.DuplicateQty),
		}

		if err := db.Create(&issue).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not report card issue")
		}

		return c.JSON(fiber.Map{"success": true, "data": toCardIssueResponse(issue)})
	}
}
