// Package export renders booking rows into XLSX workbooks for the
// operator. The same workbook backs the download endpoint and the
// periodic report worker.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"miles/internal/models"
)

const sheetName = "Bookings"

var headers = []string{
	"Booking ID", "Customer", "Email", "Experience", "Location",
	"Date", "Guests", "Total", "Currency", "Status", "Created At",
}

// Exporter builds booking workbooks.
type Exporter struct{}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Workbook renders records into a styled single-sheet workbook. The
// caller owns the file and must Close it.
func (e *Exporter) Workbook(records []models.BookingRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F5496"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for row, rec := range records {
		values := []interface{}{
			rec.BookingID,
			rec.CustomerName,
			rec.CustomerEmail,
			rec.ExperienceTitle,
			rec.ExperienceLocation,
			rec.BookingDate,
			rec.NumberOfGuests,
			rec.TotalPrice,
			rec.Currency,
			rec.Status,
			rec.CreatedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row+1, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "E", 24)
	_ = f.SetColWidth(sheetName, "F", "K", 14)

	return f, nil
}

// Write streams the workbook for records to w.
func (e *Exporter) Write(w io.Writer, records []models.BookingRecord) error {
	f, err := e.Workbook(records)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveReport writes the workbook for records to path.
func (e *Exporter) SaveReport(path string, records []models.BookingRecord) error {
	f, err := e.Workbook(records)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// Filename returns a dated attachment name.
func Filename(now time.Time) string {
	return fmt.Sprintf("bookings-%s.xlsx", now.Format("2006-01-02"))
}
