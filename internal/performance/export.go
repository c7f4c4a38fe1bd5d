package performance

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"taxi_ledger/internal/models"
	"taxi_ledger/internal/week"
)

var exportHeader = []string{"Week Start", "Week End", "Earnings (INR)", "Trips"}

// FileName is "<Name_With_Underscores>_weekly.<ext>".
func FileName(driverName, ext string) string {
	name := strings.Join(strings.Fields(driverName), "_")
	if name == "" {
		name = "driver"
	}
	return name + "_weekly." + ext
}

func exportRow(e models.WeeklyEntry) []string {
	return []string{
		week.ISO(e.WeekStart),
		week.ISO(e.WeekEnd),
		e.Earnings.Round(0).StringFixed(0),
		strconv.Itoa(e.Trips),
	}
}

// WriteCSV writes the weekly history as CSV, earnings rounded to rupees.
func WriteCSV(w io.Writer, entries []models.WeeklyEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(exportRow(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same table as WriteCSV into a one-sheet workbook
// named after the driver, with numeric earnings and trips cells.
func WriteXLSX(w io.Writer, driverName string, entries []models.WeeklyEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := sheetName(driverName)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			week.ISO(e.WeekStart),
			week.ISO(e.WeekEnd),
			e.Earnings.Round(0).IntPart(),
			e.Trips,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", "D", 16); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

// sheetName trims a driver name to Excel's 31-character sheet name limit
// and strips the characters Excel refuses.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	if name == "" {
		return "Weekly"
	}
	return name
}
