// Package export writes computed tables to an XLSX workbook.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet: a header row followed by data rows.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// WriteWorkbook saves sheets, in order, to path. The first sheet replaces the
// default "Sheet1".
func WriteWorkbook(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return errors.New("workbook needs at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return fmt.Errorf("sheet %q: %w", sh.Name, err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return fmt.Errorf("sheet %q: %w", sh.Name, err)
		}
		if err := writeSheet(f, sh, bold); err != nil {
			return fmt.Errorf("sheet %q: %w", sh.Name, err)
		}
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sh Sheet, headerStyle int) error {
	row := 1
	if len(sh.Header) > 0 {
		cells := make([]any, len(sh.Header))
		for i, h := range sh.Header {
			cells[i] = h
		}
		if err := f.SetSheetRow(sh.Name, "A1", &cells); err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(sh.Header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sh.Name, "A1", last, headerStyle); err != nil {
			return err
		}
		row++
	}
	for _, r := range sh.Rows {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		vals := r
		if err := f.SetSheetRow(sh.Name, cell, &vals); err != nil {
			return err
		}
		row++
	}
	return nil
}
