package jobs

import (
	"errors"
	"fmt"
	"strings"

	"cardops-backend/internal/auth"
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MailerJobEntry struct {
	JobCode      string `json:"job_code"`
	BankID       uint   `json:"bank_id"`
	Shift        string `json:"shift"`
	Qty          int    `json:"qty"`
	CompletedQty int    `json:"completed_qty"`
	RangeStart   string `json:"range_start"`
	RangeEnd     string `json:"range_end"`
	TonerStatus  string `json:"toner_status"`
	DeviceID     *uint  `json:"device_id"`
}

type MailerJobBatchRequest struct {
	Jobs []MailerJobEntry `json:"jobs"`
}

// jobIDDigits keeps only the digits of a job code, the base of the
// derived "1023-2" style run ids.
func jobIDDigits(jobCode string) string {
	var b strings.Builder
	for _, r := range jobCode {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// nextJobSequence returns the next -N suffix for a job code's runs,
// counting existing rows inside the same transaction.
func nextJobSequence(tx *gorm.DB, jobCode string) (int, error) {
	var count int64
	if err := tx.Model(&models.MailerJob{}).Where("job_code = ?", jobCode).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}

// POST /api/jobs
func SubmitMailerJobsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MailerJobBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if len(body.Jobs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "jobs must be a non-empty array")
		}

		for i, entry := range body.Jobs {
			var missing []string
			if entry.JobCode == "" {
				missing = append(missing, "job_code")
			}
			if entry.BankID == 0 {
				missing = append(missing, "bank_id")
			}
			if entry.Qty <= 0 {
				missing = append(missing, "qty")
			}
			if len(missing) > 0 {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("Job %d: Missing required field(s): %s", i+1, strings.Join(missing, ", ")))
			}
		}

		var userID *uint
		if id, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
			userID = &id
		}

		var created []models.MailerJob
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, entry := range body.Jobs {
				var bank models.Bank
				if err := tx.First(&bank, "bank_id = ?", entry.BankID).Error; err != nil {
					return fiber.NewError(fiber.StatusNotFound,
						fmt.Sprintf("Bank %d not found", entry.BankID))
				}

				seq, err := nextJobSequence(tx, entry.JobCode)
				if err != nil {
					return err
				}

				shift := entry.Shift
				if shift == "" {
					shift = "morning"
				}

				job := models.MailerJob{
					JobID:        fmt.Sprintf("%s-%d", jobIDDigits(entry.JobCode), seq),
					JobCode:      entry.JobCode,
					BankID:       entry.BankID,
					UserID:       userID,
					DeviceID:     entry.DeviceID,
					Shift:        shift,
					Qty:          entry.Qty,
					CompletedQty: entry.CompletedQty,
					RangeStart:   entry.RangeStart,
					RangeEnd:     entry.RangeEnd,
					TonerStatus:  entry.TonerStatus,
				}
				if err := tx.Create(&job).Error; err != nil {
					return err
				}
				created = append(created, job)
			}
			return nil
		})
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save jobs")
		}

		jobIDs := make([]string, 0, len(created))
		for _, j := range created {
			jobIDs = append(jobIDs, j.JobID)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Jobs submitted successfully",
			"job_ids": jobIDs,
		})
	}
}
