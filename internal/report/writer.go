package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteFile exports the report to path, picking the format from the file
// extension (.csv, .xlsx).
func WriteFile(path string, rep *Report) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, rep)
	case ".xlsx":
		return writeExcel(path, rep)
	default:
		return fmt.Errorf("unsupported report format %q (use .csv or .xlsx)", filepath.Ext(path))
	}
}

var reportHeaders = []string{"Date", "Project", "Hours"}

func writeCSV(path string, rep *Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(reportHeaders); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range rep.Rows {
		record := []string{row.Date, row.Project, fmt.Sprintf("%.2f", row.Hours)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	if err := writer.Write([]string{"", "Total", fmt.Sprintf("%.2f", rep.Total)}); err != nil {
		return fmt.Errorf("write csv total: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

func writeExcel(path string, rep *Report) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	for col, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, row := range rep.Rows {
		values := []any{row.Date, row.Project, row.Hours}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}
	totalRow := len(rep.Rows) + 2
	for col, value := range []any{"", "Total", rep.Total} {
		cell, _ := excelize.CoordinatesToCellName(col+1, totalRow)
		if err := file.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("set excel total %s: %w", cell, err)
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}
