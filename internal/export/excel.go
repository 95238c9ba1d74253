// Package export renders the bookings log as an Excel workbook for the
// administrator.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"smilecare/internal/models"
)

const sheetName = "Bookings"

var columns = []string{"ID", "Name", "Email", "Phone", "Date", "Time", "Created At"}

// BuildWorkbook produces a single-sheet workbook with one row per booking.
func BuildWorkbook(bookings []models.Booking) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

	if err := writeHeader(f); err != nil {
		return nil, err
	}

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID,
			b.Name,
			b.Email,
			b.Phone,
			b.Date,
			b.Time,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return nil, fmt.Errorf("write booking %d: %w", b.ID, err)
			}
		}
	}

	return f, nil
}

func writeHeader(f *excelize.File) error {
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return err
		}
	}

	// Apply bold style to header
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheetName, "A1", endCell, style)
	}
	return nil
}
