// Package report exports the book instance register as a spreadsheet.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const instanceSheet = "Instances"

var instanceHeaders = []string{"ID", "UUID", "Book", "Status", "Due back", "Reader", "Overdue"}

// InstanceRow is one line of the register.
type InstanceRow struct {
	ID      uint
	UUID    string
	Book    string // empty when the book was deleted
	Status  string
	DueBack *time.Time
	Reader  string
	Overdue bool
}

// WriteInstances writes rows as an xlsx workbook to w.
func WriteInstances(w io.Writer, rows []InstanceRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", instanceSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range instanceHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(instanceSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(instanceHeaders), 1)
	if err := f.SetCellStyle(instanceSheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{r.ID, r.UUID, r.Book, r.Status, formatDate(r.DueBack), r.Reader, yesNo(r.Overdue)}
		if err := f.SetSheetRow(instanceSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(instanceSheet, "B", "B", 38)
	_ = f.SetColWidth(instanceSheet, "C", "C", 40)
	_ = f.SetColWidth(instanceSheet, "D", "F", 14)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
