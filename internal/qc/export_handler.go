package qc

import (
	"fmt"

	"cardops-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// GET /api/qc-entries/week-report/export
// Renders the weekly QC report as an xlsx download, one row per bank
// with per-day day/night/overtime columns.
func ExportWeekReportHandler(db *gorm.DB) fiber.Handler {
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

		rows := buildWeekReport(entries)

		f := excelize.NewFile()
		defer f.Close()

		sheet := "QC Week Report"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Bank", "Date", "Day", "Night", "Overtime", "Total"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		rowIdx := 2
		for _, bank := range rows {
			for _, day := range bank.Days {
				f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx), bank.BankName)
				f.SetCellValue(sheet, fmt.Sprintf("B%d", rowIdx), day.Date)
				f.SetCellValue(sheet, fmt.Sprintf("C%d", rowIdx), day.Day)
				f.SetCellValue(sheet, fmt.Sprintf("D%d", rowIdx), day.Night)
				f.SetCellValue(sheet, fmt.Sprintf("E%d", rowIdx), day.Overtime)
				f.SetCellValue(sheet, fmt.Sprintf("F%d", rowIdx), day.Total)
				rowIdx++
			}
			f.SetCellValue(sheet, fmt.Sprintf("A%d", rowIdx), bank.BankName+" total")
			f.SetCellValue(sheet, fmt.Sprintf("F%d", rowIdx), bank.Total)
			rowIdx += 2
		}

		f.SetColWidth(sheet, "A", "B", 20)

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not render Excel file")
		}

		filename := fmt.Sprintf("qc-week-%s.xlsx", start.Format(dateLayout))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
		return c.Send(buf.Bytes())
	}
}
