package jobs

import (
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/check-job?job_code=&bank_id=
// Machines poll this before starting a run to see whether an earlier
// run already covered the job.
func CheckJobHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobCode := c.Query("job_code")
		if jobCode == "" {
			return fiber.NewError(fiber.StatusBadRequest, "job_code is required")
		}

		dbq := db.Model(&models.CardJob{}).Where("job_code = ?", jobCode)
		if bankID := c.QueryInt("bank_id"); bankID > 0 {
			dbq = dbq.Where("bank_id = ?", bankID)
		}

		var job models.CardJob
		err := dbq.Order("created_at DESC").First(&job).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return c.JSON(fiber.Map{"exists": false})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not check job")
		}

		remaining := job.CardQuantity - job.CompletedQty
		if remaining < 0 {
			remaining = 0
		}

		return c.JSON(fiber.Map{
			"exists":        true,
			"job_code":      job.JobCode,
			"bank_id":       job.BankID,
			"card_quantity": job.CardQuantity,
			"completed_qty": job.CompletedQty,
			"remaining_qty": remaining,
			"is_completed":  job.CompletedQty >= job.CardQuantity,
		})
	}
}
