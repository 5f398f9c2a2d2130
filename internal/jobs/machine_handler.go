package jobs

import (
	"fmt"
	"strings"
	"time"

	"cardops-backend/internal/auth"
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CardJobRequest struct {
	JobCode      string  `json:"job_code"`
	BankID       uint    `json:"bank_id"`
	CardQuantity int     `json:"card_quantity"`
	CardType     string  `json:"card_type"`
	DeviceID     *uint   `json:"device_id"`
	StartTime    string  `json:"start_time"`
	Shift        string  `json:"shift"`
	CompletedQty int     `json:"completed_qty"`
	RejectedQty  int     `json:"rejected_qty"`
	ErrorCount   int     `json:"error_count"`
	NdReport     *string `json:"nd_report"`
}

// POST /api/machine-jobs
func SubmitCardJobHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CardJobRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var missing []string
		if body.JobCode == "" {
			missing = append(missing, "job_code")
		}
		if body.BankID == 0 {
			missing = append(missing, "bank_id")
		}
		if body.CardQuantity <= 0 {
			missing = append(missing, "card_quantity")
		}
		if body.CardType == "" {
			missing = append(missing, "card_type")
		}
		if len(missing) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", ")))
		}

		var bank models.Bank
		if err := db.First(&bank, "bank_id = ?", body.BankID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bank not found")
		}

		shift := strings.ToLower(body.Shift)
		if shift == "" {
			shift = "morning"
		}

		job := models.CardJob{
			JobCode:      body.JobCode,
			BankID:       body.BankID,
			CardQuantity: body.CardQuantity,
			CardType:     body.CardType,
			DeviceID:     body.DeviceID,
			Shift:        shift,
			CompletedQty: body.CompletedQty,
			RejectedQty:  body.RejectedQty,
			ErrorCount:   body.ErrorCount,
			NdReport:     body.NdReport,
		}

		if id, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
			job.OperatorID = &id
		}

		if body.StartTime != "" {
			start, err := time.Parse(time.RFC3339, body.StartTime)
			if err != nil {
				start, err = time.Parse(dateLayout+" 15:04:05", body.StartTime)
			}
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_time format is invalid")
			}
			job.StartTime = &start
		} else {
			now := time.Now()
			job.StartTime = &now
		}

		now := time.Now()
		job.ReceivedTime = &now

		if err := db.Create(&job).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save job")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Job received",
			"job_id":  job.ID,
		})
	}
}
