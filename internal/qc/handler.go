package qc

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

const dateLayout = "2006-01-02"

type QcEntryRequest struct {
	BankID      uint   `json:"bank_id"`
	Shift       string `json:"shift"`
	EntryDate   string `json:"entry_date"`
	Quantity    int    `json:"quantity"`
	Overtime    bool   `json:"overtime"`
	OvertimeQty int    `json:"overtime_qty"`
}

type QcEntryResponse struct {
	ID          uint   `json:"id"`
	BankID      uint   `json:"bank_id"`
	BankName    string `json:"bank_name"`
	Shift       string `json:"shift"`
	EntryDate   string `json:"entry_date"`
	Quantity    int    `json:"quantity"`
	Overtime    bool   `json:"overtime"`
	OvertimeQty int    `json:"overtime_qty"`
}

func toQcEntryResponse(e models.QcEntry) QcEntryResponse {
	return QcEntryResponse{
		ID:          e.ID,
		BankID:      e.BankID,
		BankName:    e.Bank.BankName,
		Shift:       e.Shift,
		EntryDate:   e.EntryDate.Format(dateLayout),
		Quantity:    e.Quantity,
		Overtime:    e.Overtime,
		OvertimeQty: e.OvertimeQty,
	}
}

// currentWeek returns Monday 00:00 through next Monday for a reference
// time, the default window for QC listings.
func currentWeek(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(weekday - 1))
	return monday, monday.AddDate(0, 0, 7)
}

func qcWindow(c *fiber.Ctx) (time.Time, time.Time, error) {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	if startStr == "" && endStr == "" {
		start, end := currentWeek(time.Now())
		return start, end, nil
	}
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest,
			"start_date and end_date must be provided together")
	}
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "end_date must be YYYY-MM-DD")
	}
	return start, end.AddDate(0, 0, 1), nil
}

// POST /api/qc-entries
func AddQcEntryHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body QcEntryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var missing []string
		if body.BankID == 0 {
			missing = append(missing, "bank_id")
		}
		if body.Shift == "" {
			missing = append(missing, "shift")
		}
		if body.Quantity == 0 {
			missing = append(missing, "quantity")
		}
		if len(missing) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", ")))
		}

		shift := strings.ToLower(body.Shift)
		if shift != "day" && shift != "night" {
			return fiber.NewError(fiber.StatusBadRequest, "shift must be day or night")
		}

		var bank models.Bank
		if err := db.First(&bank, "bank_id = ?", body.BankID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Bank not found")
		}

		entryDate := time.Now()
		if body.EntryDate != "" {
			parsed, err := time.Parse(dateLayout, body.EntryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "entry_date must be YYYY-MM-DD")
			}
			entryDate = parsed
		}
		entryDate = time.Date(entryDate.Year(), entryDate.Month(), entryDate.Day(), 0, 0, 0, 0, time.UTC)

		entry := models.QcEntry{
			BankID:      body.BankID,
			Shift:       shift,
			EntryDate:   entryDate,
			Quantity:    body.Quantity,
			Overtime:    body.Overtime,
			OvertimeQty: body.OvertimeQty,
		}
		if err := db.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save entry")
		}
		entry.Bank = bank

		if userID, ok := c.Locals(auth.CtxUserIDKey).(uint); ok {
			var user models.User
			if db.First(&user, userID).Error == nil {
				_ = audit.WriteLog(db, audit.LogOptions{
					UserID:      userID,
					UserName:    user.Name,
					EntityType:  "qc_entry",
					EntityID:    entry.ID,
					Action:      models.AuditActionCreate,
					Description: fmt.Sprintf("QC entry added: bank %d, %s, %d", entry.BankID, entry.Shift, entry.Quantity),
					After:       entry,
				})
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "Entry saved",
			"entry":   toQcEntryResponse(entry),
		})
	}
}

// GET /api/qc-entries?start_date=&end_date=&bank_id=
func GetQcEntriesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end, err := qcWindow(c)
		if err != nil {
			return err
		}

		dbq := db.Preload("Bank").
			Where("entry_date >= ? AND entry_date < ?", start, end)
		if bankID := c.QueryInt("bank_id"); bankID > 0 {
			dbq = dbq.Where("bank_id = ?", bankID)
		}

		var entries []models.QcEntry
		if err := dbq.Order("entry_date ASC").Order("id ASC").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list entries")
		}

		resp := make([]QcEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, toQcEntryResponse(e))
		}
		return c.JSON(resp)
	}
}

type DailyTotal struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	Night    int    `json:"night"`
	Overtime int    `json:"overtime"`
	Total    int    `json:"total"`
}

func dailyTotals(entries []models.QcEntry) []DailyTotal {
	byDate := make(map[string]*DailyTotal)
	var order []string
	for _, e := range entries {
		key := e.EntryDate.Format(dateLayout)
		t, ok := byDate[key]
		if !ok {
			t = &DailyTotal{Date: key}
			byDate[key] = t
			order = append(order, key)
		}
		switch e.Shift {
		case "day":
			t.Day += e.Quantity
		case "night":
			t.Night += e.Quantity
		}
		if e.Overtime {
			t.Overtime += e.OvertimeQty
		}
		t.Total = t.Day + t.Night + t.Overtime
	}

	totals := make([]DailyTotal, 0, len(order))
	for _, key := range order {
		totals = append(totals, *byDate[key])
	}
	return totals
}

// GET /api/qc-entries/totals
func GetQcTotalsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end, err := qcWindow(c)
		if err != nil {
			return err
		}

		dbq := db.Where("entry_date >= ? AND entry_date < ?", start, end)
		if bankID := c.QueryInt("bank_id"); bankID > 0 {
			dbq = dbq.Where("bank_id = ?", bankID)
		}

		var entries []models.QcEntry
		if err := dbq.Order("entry_date ASC").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not compute totals")
		}

		return c.JSON(dailyTotals(entries))
	}
}

type WeekReportRow struct {
	BankID   uint         `json:"bank_id"`
	BankName string       `json:"bank_name"`
	Days     []DailyTotal `json:"days"`
	Total    int          `json:"total"`
}

func buildWeekReport(entries []models.QcEntry) []WeekReportRow {
	byBank := make(map[uint][]models.QcEntry)
	var order []uint
	for _, e := range entries {
		if _, ok := byBank[e.BankID]; !ok {
			order = append(order, e.BankID)
		}
		byBank[e.BankID] = append(byBank[e.BankID], e)
	}

	rows := make([]WeekReportRow, 0, len(order))
	for _, bankID := range order {
		bankEntries := byBank[bankID]
		row := WeekReportRow{BankID: bankID, Days: dailyTotals(bankEntries)}
		if len(bankEntries) > 0 {
			row.BankName = bankEntries[0].Bank.BankName
		}
		for _, d := range row.Days {
			row.Total += d.Total
		}
		rows = append(rows, row)
	}
	return rows
}

// GET /api/qc-entries/week-report
func WeekReportHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start, end, err := qcWindow(c)
		if err != nil {
			return err
		}

		var entries []models.QcEntry
		if err := db.Preload("Bank").
			Where("entry_date >= ? AND entry_date < ?", start, end).
			Order("entry_date ASC").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not build report")
		}

		return c.JSON(fiber.Map{
			"week_start": start.Format(dateLayout),
			"week_end":   end.AddDate(0, 0, -1).Format(dateLayout),
			"banks":      buildWeekReport(entries),
		})
	}
}

type ChangeLogRequest struct {
	BankID       uint   `json:"bank_id"`
	ChangedField string `json:"changed_field"`
	OldValue     string `json:"old_value"`
	NewValue     string `json:"new_value"`
	Reason       string `json:"reason"`
}

// POST /api/qc-entries/change-logs
func SaveChangeLogHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ChangeLogRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		var missing []string
		if body.BankID == 0 {
			missing = append(missing, "bank_id")
		}
		if body.ChangedField == "" {
			missing = append(missing, "changed_field")
		}
		if body.Reason == "" {
			missing = append(missing, "reason")
		}
		if len(missing) > 0 {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", ")))
		}

		userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		entry := models.QcChangeLog{
			BankID:       body.BankID,
			UserID:       userID,
			ChangedField: body.ChangedField,
			OldValue:     body.OldValue,
			NewValue:     body.NewValue,
			Reason:       body.Reason,
			ChangeDate:   time.Now(),
		}
		if err := db.Create(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save change log")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Change logged"})
	}
}

// GET /api/qc-entries/change-logs
func GetChangeLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := db.Model(&models.QcChangeLog{})
		if bankID := c.QueryInt("bank_id"); bankID > 0 {
			dbq = dbq.Where("bank_id = ?", bankID)
		}

		var logs []models.QcChangeLog
		if err := dbq.Order("change_date DESC").Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list change logs")
		}
		return c.JSON(logs)
	}
}
