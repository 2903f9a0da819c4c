package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bhakti2406/local-service-finder/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

// Exporter writes admin reports as Excel files under a configured directory.
type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func NewExporter(path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// ExportBookings renders the bookings into a spreadsheet and returns the file
// path.
func (e *Exporter) ExportBookings(bookings []*models.Booking) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "User ID", "Service", "Problem", "Price", "Status", "Created", "Updated"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(bookingsSheet, cell, header)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	for i, booking := range bookings {
		row := i + 2
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("A%d", row), booking.ID)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("B%d", row), booking.UserID)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("C%d", row), booking.ServiceName)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("D%d", row), booking.Problem)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("E%d", row), booking.Price)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("F%d", row), booking.Status)
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("G%d", row), booking.CreatedAt.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(bookingsSheet, fmt.Sprintf("H%d", row), booking.UpdatedAt.Format("02.01.2006 15:04"))

		styleID, err := statusStyle(f, booking.Status)
		if err == nil {
			cell := fmt.Sprintf("F%d", row)
			_ = f.SetCellStyle(bookingsSheet, cell, cell, styleID)
		}
	}

	_ = f.SetColWidth(bookingsSheet, "A", "B", 10)
	_ = f.SetColWidth(bookingsSheet, "C", "D", 25)
	_ = f.SetColWidth(bookingsSheet, "E", "F", 12)
	_ = f.SetColWidth(bookingsSheet, "G", "H", 18)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("Excel file created")
	return filePath, nil
}

func statusStyle(f *excelize.File, status string) (int, error) {
	var color string
	switch status {
	case models.StatusAccepted, models.StatusCompleted:
		color = "#C6EFCE"
	case models.StatusPending:
		color = "#FFEB9C"
	case models.StatusRejected:
		color = "#FFC7CE"
	default:
		color = "#FFFFFF"
	}

	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
}
