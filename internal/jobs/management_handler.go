package jobs

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// defaultWindow probes a table for activity: rows today give a one-day
// window, rows in the last week give a 7-day window, otherwise 14 days.
func defaultWindow(db *gorm.DB, model interface{}, now time.Time) (time.Time, time.Time) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	db.Model(model).Where("created_at >= ?", dayStart).Count(&count)
	if count > 0 {
		return dayStart, now
	}

	weekAgo := now.AddDate(0, 0, -7)
	db.Model(model).Where("created_at >= ?", weekAgo).Count(&count)
	if count > 0 {
		return weekAgo, now
	}

	return now.AddDate(0, 0, -14), now
}

// resolveWindow returns the [start, end) range for the two job tables.
// Without explicit dates it takes the union of each table's derived
// default window.
func resolveWindow(db *gorm.DB, startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	if startStr != "" || endStr != "" {
		if startStr == "" || endStr == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("startDate and endDate must be given together")
		}
		start, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("startDate must be YYYY-MM-DD")
		}
		end, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("endDate must be YYYY-MM-DD")
		}
		// inclusive end date
		return start, end.AddDate(0, 0, 1), nil
	}

	cardStart, cardEnd := defaultWindow(db, &models.CardJob{}, now)
	mailerStart, mailerEnd := defaultWindow(db, &models.MailerJob{}, now)

	start := cardStart
	if mailerStart.Before(start) {
		start = mailerStart
	}
	end := cardEnd
	if mailerEnd.After(end) {
		end = mailerEnd
	}
	return start, end.Add(time.Second), nil
}

func applyJobFilters(dbq *gorm.DB, table, jobCode string, bankID uint, shift string, start, end time.Time) *gorm.DB {
	if jobCode != "" {
		dbq = dbq.Where(table+".job_code = ?", jobCode)
	}
	if bankID != 0 {
		dbq = dbq.Where(table+".bank_id = ?", bankID)
	}
	if shift != "" {
		dbq = dbq.Where("LOWER("+table+".shift) = ?", strings.ToLower(shift))
	}
	return dbq.Where(table+".created_at >= ? AND "+table+".created_at < ?", start, end)
}

func bankNameOr(bank models.Bank, bankID uint) string {
	if bank.BankName != "" {
		return bank.BankName
	}
	return fmt.Sprintf("Bank %d", bankID)
}

// GET /api/job-management?jobCode&bankId&shift&status&startDate&endDate
// Merges mailer and card print runs into per-(job, bank) groups with a
// derived completion status. An empty result is signalled with a message
// body, not an empty array; dashboard clients rely on the distinction.
func JobManagementHandler(db *gorm.DB, policy EmptySidePolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jobCode := c.Query("jobCode")
		shift := c.Query("shift")
		status := c.Query("status")

		var bankID uint
		if bidStr := c.Query("bankId"); bidStr != "" {
			if _, err := fmt.Sscan(bidStr, &bankID); err != nil || bankID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "bankId is invalid")
			}
		}

		start, end, err := resolveWindow(db, c.Query("startDate"), c.Query("endDate"), time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var mailerJobs []models.MailerJob
		mailerQ := applyJobFilters(db.Model(&models.MailerJob{}), "jobs", jobCode, bankID, shift, start, end)
		if err := mailerQ.Preload("Bank").Order("jobs.created_at ASC").Find(&mailerJobs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load mailer jobs")
		}

		var cardJobs []models.CardJob
		cardQ := applyJobFilters(db.Model(&models.CardJob{}), "card_job", jobCode, bankID, shift, start, end)
		if err := cardQ.Preload("Bank").Preload("Operator").Preload("Device").
			Order("card_job.start_time ASC").Find(&cardJobs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load card jobs")
		}

		groups := make(map[GroupKey]*JobGroup)
		var order []GroupKey

		groupFor := func(key GroupKey, bankName string) *JobGroup {
			if g, ok := groups[key]; ok {
				return g
			}
			g := &JobGroup{
				JobCode:        key.JobCode,
				BankName:       bankName,
				CardPrinting:   []CardPrintEntry{},
				MailerPrinting: []MailerPrintEntry{},
			}
			groups[key] = g
			order = append(order, key)
			return g
		}

		for _, job := range mailerJobs {
			if job.JobCode == "" || job.BankID == 0 {
				continue
			}
			key := GroupKey{JobCode: job.JobCode, BankID: job.BankID}
			g := groupFor(key, bankNameOr(job.Bank, job.BankID))
			g.MailerPrinting = append(g.MailerPrinting, MailerPrintEntry{
				JobID:        job.ID,
				JobCode:      job.JobCode,
				BankName:     g.BankName,
				Shift:        job.Shift,
				TotalQty:     job.Qty,
				CompletedQty: job.CompletedQty,
				Remaining:    job.Qty - job.CompletedQty,
				CreatedAt:    job.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		for _, card := range cardJobs {
			if card.JobCode == "" || card.BankID == 0 {
				continue
			}
			key := GroupKey{JobCode: card.JobCode, BankID: card.BankID}
			g := groupFor(key, bankNameOr(card.Bank, card.BankID))

			operator := "-"
			if card.Operator != nil {
				operator = card.Operator.Name
			}
			device := "-"
			if card.Device != nil {
				device = card.Device.DeviceName
			}

			g.CardPrinting = append(g.CardPrinting, CardPrintEntry{
				ID:           card.ID,
				JobCode:      card.JobCode,
				BankName:     g.BankName,
				Operator:     operator,
				Device:       device,
				Shift:        card.Shift,
				TotalQty:     card.CardQuantity,
				CompletedQty: card.CompletedQty,
				Remaining:    card.CardQuantity - card.CompletedQty,
				CreatedAt:    card.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		sort.SliceStable(order, func(i, j int) bool {
			if order[i].JobCode != order[j].JobCode {
				return order[i].JobCode < order[j].JobCode
			}
			return order[i].BankID < order[j].BankID
		})

		result := make([]*JobGroup, 0, len(order))
		for _, key := range order {
			g := groups[key]
			g.Finalize(policy)
			if status != "" && status != "All" && g.CompletionStatus != status {
				continue
			}
			result = append(result, g)
		}

		if len(result) == 0 {
			return c.JSON(fiber.Map{"message": "No jobs found"})
		}
		return c.JSON(result)
	}
}
