package export

import (
	"fmt"
	"io"

	"holidaze/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var header = []string{"ID", "Venue", "From", "To", "Nights", "Guests", "Total"}

// BookingsXLSX writes bookings to w as an Excel workbook with one sheet.
func BookingsXLSX(bookings []models.Booking, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	if err := writeRow(f, 1, toCells(header)); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = f.SetCellStyle(sheetName, "A1", endCell, style)
	}

	for i := range bookings {
		b := &bookings[i]
		venueName := ""
		total := 0.0
		if b.Venue != nil {
			venueName = b.Venue.Title()
			total = float64(b.Nights()) * b.Venue.Price
		}
		row := []interface{}{
			b.ID,
			venueName,
			models.FormatDay(b.DateFrom),
			models.FormatDay(b.DateTo),
			b.Nights(),
			b.Guests,
			total,
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, rowNum int, row []interface{}) error {
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, val); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
