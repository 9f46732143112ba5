// Package dataset reads the sales and transaction tables from CSV, TSV, or XLSX
// files and converts them into typed records.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Options controls how a table file is read and how its cells are parsed.
type Options struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv and ',' otherwise.
	Delimiter rune
	// Sheet selects an XLSX sheet by name; empty means the first sheet.
	Sheet string
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
}

// Table is a raw, header-indexed view of a file. Rows are padded to the header width.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// ReadTable loads path into memory, choosing the reader by extension.
func ReadTable(path string, opt Options) (*Table, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") {
		return readXLSX(path, opt.Sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return readCSV(f, filepath.Base(path), delim)
}

func readCSV(r io.Reader, name string, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return newTable(name, nil, nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return newTable(name, header, rows), nil
}

func readXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return newTable(filepath.Base(path), nil, nil), nil
	}
	target := sheets[0]
	if sheet != "" {
		target = ""
		for _, s := range sheets {
			if strings.EqualFold(s, sheet) {
				target = s
				break
			}
		}
		if target == "" {
			return nil, fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
				sheet, filepath.Base(path), strings.Join(sheets, ", "))
		}
	}
	all, err := f.GetRows(target)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", target, err)
	}
	if len(all) == 0 {
		return newTable(filepath.Base(path), nil, nil), nil
	}
	return newTable(filepath.Base(path), all[0], all[1:]), nil
}

func newTable(name string, header []string, rows [][]string) *Table {
	t := &Table{Name: name, Header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		key := normalizeColumn(h)
		if _, dup := t.index[key]; !dup {
			t.index[key] = i
		}
	}
	for _, rec := range rows {
		if len(rec) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, rec)
			rec = tmp
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}

// Column returns the index of the named column (case-insensitive).
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[normalizeColumn(name)]
	return i, ok
}

// Require resolves every name or returns a MissingColumnError for the first absent one.
func (t *Table) Require(names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		idx, ok := t.Column(n)
		if !ok {
			return nil, &MissingColumnError{Column: n, File: t.Name}
		}
		out[i] = idx
	}
	return out, nil
}

// Len reports the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

func normalizeColumn(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}
