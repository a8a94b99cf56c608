package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"opsight/internal/analytics"
)

// WriteWorkbook writes every report section as one sheet of an XLSX
// workbook.
func WriteWorkbook(report *analytics.Report, path string) error {
	if report == nil {
		return fmt.Errorf("no report to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	tables := Tables(report)
	for _, t := range tables {
		if err := writeSheet(f, t); err != nil {
			return fmt.Errorf("write sheet %s: %w", t.Name, err)
		}
	}

	// Drop the default sheet and land on the first section.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(tables[0].Name)
	if err != nil {
		return fmt.Errorf("locate first sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, t Table) error {
	if _, err := f.NewSheet(t.Name); err != nil {
		return err
	}

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
