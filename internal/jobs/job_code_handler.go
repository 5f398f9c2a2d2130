package jobs

import (
	"fmt"
	"strings"
	"time"

	"cardops-backend/internal/audit"
	"cardops-backend/internal/auth"
	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type JobCodeRequest struct {
	JobID     string `json:"job_id"`
	BankID    uint   `json:"bank_id"`
	Quantity  int    `json:"quantity"`
	Processed bool   `json:"processed"`
	Priority  int    `json:"priority"`
}

type JobCodeResponse struct {
	ID        uint   `json:"id"`
	JobID     string `json:"job_id"`
	BankID    uint   `json:"bank_id"`
	BankName  string `json:"bank_name"`
	Quantity  int    `json:"quantity"`
	Processed bool   `json:"processed"`
	Priority  int    `json:"priority"`
	CreatedAt string `json:"created_at"`
}

func toJobCodeResponse(jc models.JobCode) JobCodeResponse {
	return JobCodeResponse{
		ID:        jc.ID,
		JobID:     jc.JobID,
		BankID:    jc.BankID,
		BankName:  jc.Bank.BankName,
		Quantity:  jc.Quantity,
		Processed: jc.Processed,
		Priority:  jc.Priority,
		CreatedAt: jc.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func auditUser(c *fiber.Ctx, db *gorm.DB) (uint, string) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, ""
	}
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return userID, ""
	}
	return userID, user.Name
}

// POST /api/job-codes/add
func CreateJobCodeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body JobCodeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.JobID == "" || body.BankID == 0 || body.Quantity == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "All fields are required")
		}

		var bank models.Bank
		if err := db.First(&bank, "bank_id = ?", body.BankID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bank not found")
		}

		jc := models.JobCode{
			JobID:     body.JobID,
			BankID:    body.BankID,
			Quantity:  body.Quantity,
			Processed: body.Processed,
			Priority:  body.Priority,
		}
		if err := db.Create(&jc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create job")
		}
		jc.Bank = bank

		userID, userName := auditUser(c, db)
		if userName != "" {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "job_code",
				EntityID:    jc.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Job code added: %s (bank %d)", jc.JobID, jc.BankID),
				After:       jc,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Job added successfully",
			"job":     toJobCodeResponse(jc),
		})
	}
}

// GET /api/job-codes
func ListJobCodesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var codes []models.JobCode
		if err := db.Preload("Bank").Order("created_at DESC").Find(&codes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list jobs")
		}

		resp := make([]JobCodeResponse, 0, len(codes))
		for _, jc := range codes {
			resp = append(resp, toJobCodeResponse(jc))
		}
		return c.JSON(resp)
	}
}

// GET /api/job-codes/search?job_code=&start_date=&end_date=
func SearchJobCodesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.JobCode{}).Preload("Bank")

		if jobCode := c.Query("job_code"); jobCode != "" {
			dbq = dbq.Where("LOWER(job_id) LIKE ?", "%"+strings.ToLower(jobCode)+"%")
		}
		if startStr := c.Query("start_date"); startStr != "" {
			start, err := time.Parse(dateLayout, startStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
			}
			dbq = dbq.Where("created_at >= ?", start)
		}
		if endStr := c.Query("end_date"); endStr != "" {
			end, err := time.Parse(dateLayout, endStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
			}
			dbq = dbq.Where("created_at <= ?", end.AddDate(0, 0, 1))
		}

		var codes []models.JobCode
		if err := dbq.Order("created_at DESC").Find(&codes).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not search jobs")
		}

		resp := make([]JobCodeResponse, 0, len(codes))
		for _, jc := range codes {
			resp = append(resp, toJobCodeResponse(jc))
		}
		return c.JSON(resp)
	}
}

// GET /api/job-codes/:id
func GetJobCodeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var jc models.JobCode
		if err := db.Preload("Bank").First(&jc, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Job not found")
		}
		return c.JSON(toJobCodeResponse(jc))
	}
}

// PUT /api/job-codes/edit/:id
func UpdateJobCodeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var jc models.JobCode
		if err := db.Preload("Bank").First(&jc, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Job not found")
		}

		var body JobCodeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		old := jc

		if body.JobID != "" {
			jc.JobID = body.JobID
		}
		if body.BankID != 0 {
			jc.BankID = body.BankID
		}
		if body.Quantity != 0 {
			jc.Quantity = body.Quantity
		}
		jc.Processed = body.Processed
		jc.Priority = body.Priority

		if err := db.Save(&jc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update job")
		}

		userID, userName := auditUser(c, db)
		if userName != "" {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "job_code",
				EntityID:    jc.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Job code updated: %s", jc.JobID),
				Before:      old,
				After:       jc,
			})
		}

		return c.JSON(fiber.Map{
			"message": "Job updated successfully",
			"job":     toJobCodeResponse(jc),
		})
	}
}

// DELETE /api/job-codes/delete/:id
func DeleteJobCodeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var jc models.JobCode
		if err := db.First(&jc, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Job not found")
		}

		// Releases keep history against this code
		var count int64
		db.Model(&models.ReleasedCard{}).Where("job_code_id = ?", jc.ID).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Cards have been released against this job, delete those first")
		}

		if err := db.Delete(&jc).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete job")
		}

		userID, userName := auditUser(c, db)
		if userName != "" {
			_ = audit.WriteLog(db, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "job_code",
				EntityID:    jc.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Job code deleted: %s", jc.JobID),
				Before:      jc,
			})
		}

		return c.JSON(fiber.Map{"message": "Job deleted successfully"})
	}
}
