package inventory

import (
	"errors"
	"fmt"
	"time"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReleaseJobEntry struct {
	JobCode  string `json:"job_code"`
	Quantity int    `json:"quantity"`
}

type ReleaseCardsRequest struct {
	BankID      uint              `json:"bank_id"`
	CardBrand   string            `json:"card_brand"`
	Jobs        []ReleaseJobEntry `json:"jobs"`
	SubmittedBy string            `json:"submitted_by"`
}

type ReleasedCardResponse struct {
	ID          uint   `json:"id"`
	CardIssueID *uint  `json:"card_issue_id"`
	JobCodeID   uint   `json:"job_code_id"`
	BankCardID  uint   `json:"bank_card_id"`
	Quantity    int    `json:"quantity"`
	ReleasedBy  string `json:"released_by"`
	Reference   string `json:"reference"`
	ReleasedAt  string `json:"released_at"`
	Processed   bool   `json:"processed"`
}

func toReleasedCardResponse(r models.ReleasedCard) ReleasedCardResponse {
	return ReleasedCardResponse{
		ID:          r.ID,
		CardIssueID: r.CardIssueID,
		JobCodeID:   r.JobCodeID,
		BankCardID:  r.BankCardID,
		Quantity:    r.Quantity,
		ReleasedBy:  r.ReleasedBy,
		Reference:   r.Reference,
		ReleasedAt:  r.ReleasedAt.Format("2006-01-02 15:04:05"),
		Processed:   r.Processed,
	}
}

// POST /api/release-cards
// Allocates vault cards to jobs. All-or-nothing: one bad entry aborts the
// whole batch and the error names the job code. Vault counters are not
// decremented here; that happens at reconciliation.
func ReleaseCardsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReleaseCardsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.BankID == 0 || body.CardBrand == "" || len(body.Jobs) == 0 || body.SubmittedBy == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required fields or invalid jobs array")
		}

		reference := uuid.NewString()
		now := time.Now()
		inserted := make([]models.ReleasedCard, 0, len(body.Jobs))

		txErr := db.Transaction(func(tx *gorm.DB) error {
			for _, job := range body.Jobs {
				if job.JobCode == "" || job.Quantity <= 0 {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Invalid job_code or quantity for job %s", job.JobCode))
				}

				var jobCode models.JobCode
				if err := tx.Where("job_id = ? AND bank_id = ?", job.JobCode, body.BankID).
					First(&jobCode).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound,
						fmt.Sprintf("Job code %s does not exist for this bank", job.JobCode))
				}

				var stock models.BankCardStock
				if err := tx.Where("bank_id = ? AND card_brand = ?", body.BankID, body.CardBrand).
					First(&stock).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound,
						fmt.Sprintf("Bank card %s not found for this bank", body.CardBrand))
				}

				// Link an already reported issue for this (job, stock) pair, if any
				var issueID *uint
				var issue models.CardIssue
				err := tx.Where("job_code_id = ? AND bank_card_id = ?", jobCode.ID, stock.ID).
					First(&issue).Error
				if err == nil {
					issueID = &issue.ID
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}

				release := models.ReleasedCard{
					CardIssueID: issueID,
					JobCodeID:   jobCode.ID,
					BankCardID:  stock.ID,
					Quantity:    job.Quantity,
					ReleasedBy:  body.SubmittedBy,
					Reference:   reference,
					ReleasedAt:  now,
				}
				if err := tx.Create(&release).Error; err != nil {
					return err
				}

				inserted = append(inserted, release)
			}
			return nil
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not release cards")
		}

		resp := make([]ReleasedCardResponse, 0, len(inserted))
		for _, r := range inserted {
			resp = append(resp, toReleasedCardResponse(r))
		}

		return c.JSON(fiber.Map{"success": true, "data": resp})
	}
}

type UnreconciledRelease struct {
	ReleaseID uint   `gorm:"column:release_id" json:"release_id"`
	JobCode   string `gorm:"column:job_code" json:"job_code"`
	Quantity  int    `gorm:"column:quantity" json:"quantity"`
}

// GET /api/today?bank_id=&card_brand=
// Work queue for reconciliation: releases with neither a matching card
// issue nor a processed flag. The two exclusions are not equivalent, a
// processed release without defects never gains an issue row.
func UnreconciledReleasesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bidStr := c.Query("bank_id")
		if bidStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "bank_id is required")
		}
		var bankID uint
		if _, err := fmt.Sscan(bidStr, &bankID); err != nil || bankID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "bank_id is invalid")
		}
		cardBrand := c.Query("card_brand")

		query := `
			SELECT rc.id AS release_id, jc.job_id AS job_code, rc.quantity
			FROM released_cards rc
			JOIN job_code jc ON jc.id = rc.job_code_id
			JOIN bank_cards bc ON rc.bank_card_id = bc.id
			WHERE bc.bank_id = ?
			  AND rc.processed = ?
			  AND NOT EXISTS (
				SELECT 1 FROM card_issues ci
				WHERE ci.job_code_id = rc.job_code_id
				  AND ci.bank_card_id = rc.bank_card_id
			  )`
		args := []interface{}{bankID, false}
		if cardBrand != "" {
			query += ` AND bc.card_brand = ?`
			args = append(args, cardBrand)
		}
		query += ` ORDER BY rc.released_at DESC`

		var rows []UnreconciledRelease
		if err := db.Raw(query, args...).Scan(&rows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not fetch unreconciled releases")
		}

		if rows == nil {
			rows = []UnreconciledRelease{}
		}
		return c.JSON(rows)
	}
}
