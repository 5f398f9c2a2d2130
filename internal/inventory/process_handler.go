package inventory

import (
	"errors"
	"time"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProcessJobEntry struct {
	JobCode      string `json:"job_code"`
	Ongoing      int    `json:"ongoing"`
	Personalized int    `json:"personalized"`
	Damaged      int    `json:"damaged"`
	Duplicate    int    `json:"duplicate"`
}

type ProcessReleasedJobsRequest struct {
	BankID      uint              `json:"bank_id"`
	CardBrand   string            `json:"card_brand"`
	Jobs        []ProcessJobEntry `json:"jobs"`
	SubmittedBy string            `json:"submitted_by"`
}

// applyProcessCounts runs the clamped counter decrements as one atomic
// UPDATE. The duplicate count pulls from both vault_good and the duplicate
// bucket; damaged pulls from vault_damaged. CASE instead of GREATEST so
// the statement also runs on the SQLite test driver.
func applyProcessCounts(tx *gorm.DB, stockID uint, e ProcessJobEntry, submittedBy string) error {
	return tx.Exec(`
		UPDATE bank_cards SET
			ongoing_personalization = CASE WHEN ongoing_personalization - ? < 0 THEN 0 ELSE ongoing_personalization - ? END,
			personalized = CASE WHEN personalized - ? < 0 THEN 0 ELSE personalized - ? END,
			qty_in_vault_damaged = CASE WHEN qty_in_vault_damaged - ? < 0 THEN 0 ELSE qty_in_vault_damaged - ? END,
			qty_in_vault_good = CASE WHEN qty_in_vault_good - ? < 0 THEN 0 ELSE qty_in_vault_good - ? END,
			"duplicate" = CASE WHEN "duplicate" - ? < 0 THEN 0 ELSE "duplicate" - ? END,
			submitted_by = ?,
			updated_at = ?
		WHERE id = ?`,
		e.Ongoing, e.Ongoing,
		e.Personalized, e.Personalized,
		e.Damaged, e.Damaged,
		e.Duplicate, e.Duplicate,
		e.Duplicate, e.Duplicate,
		submittedBy, time.Now(), stockID,
	).Error
}

// POST /api/card-issues
// Reconciliation: records actual outcomes against previously released
// batches. Entries with no matching release are skipped on purpose (stale
// UI rows); skipped entries are reported back, not errored. The whole
// request runs in one transaction.
func ProcessReleasedJobsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProcessReleasedJobsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.BankID == 0 || body.CardBrand == "" || len(body.Jobs) == 0 || body.SubmittedBy == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing required fields or invalid jobs array")
		}

		var stock models.BankCardStock
		if err := db.Where("bank_id = ? AND card_brand = ?", body.BankID, body.CardBrand).
			First(&stock).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bank card not found")
		}

		// Drop rows without a job code (empty UI rows)
		valid := make([]ProcessJobEntry, 0, len(body.Jobs))
		for _, job := range body.Jobs {
			if job.JobCode != "" {
				valid = append(valid, job)
			}
		}
		if len(valid) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No valid jobs to process")
		}

		processed := make([]ProcessJobEntry, 0, len(valid))
		skipped := make([]string, 0)

		txErr := db.Transaction(func(tx *gorm.DB) error {
			for _, job := range valid {
				var release models.ReleasedCard
				err := tx.
					Select("released_cards.*").
					Joins("JOIN job_code jc ON jc.id = released_cards.job_code_id").
					Where("released_cards.bank_card_id = ? AND jc.job_id = ?", stock.ID, job.JobCode).
					Order("released_cards.id ASC").
					First(&release).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Released row was removed or never existed; tolerated
					skipped = append(skipped, job.JobCode)
					continue
				}
				if err != nil {
					return err
				}

				if err := applyProcessCounts(tx, stock.ID, job, body.SubmittedBy); err != nil {
					return err
				}

				now := time.Now()
				if err := tx.Model(&models.ReleasedCard{}).
					Where("id = ?", release.ID).
					Updates(map[string]interface{}{
						"processed":    true,
						"processed_at": &now,
					}).Error; err != nil {
					return err
				}

				if job.Damaged > 0 || job.Duplicate > 0 {
					issue := models.CardIssue{
						BankCardID:   stock.ID,
						JobCodeID:    release.JobCodeID,
						DamagedQty:   job.Damaged,
						DuplicateQty: job.Duplicate,
						SubmittedBy:  body.SubmittedBy,
						CardStatus:   issueTag(job.Damaged, job.Duplicate),
					}
					if err := tx.Create(&issue).Error; err != nil {
						return err
					}
				}

				processed = append(processed, job)
			}
			return nil
		})
		if txErr != nil {
			logrus.WithError(txErr).Error("processing released jobs failed")
			return fiber.NewError(fiber.StatusInternalServerError, "Could not process released jobs")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Jobs processed successfully",
			"data":    processed,
			"skipped": skipped,
		})
	}
}
