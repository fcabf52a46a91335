package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// minHeaderCells is the minimum number of non-empty cells a row
	// needs to be considered the header row.
	minHeaderCells = 3
	// headerSearchRows bounds how deep into a sheet the header row is
	// searched; KPI sheets occasionally carry a banner row or two.
	headerSearchRows = 10
)

// ParseWorkbook reads an .xlsx stream and extracts the KPI table from
// the first sheet with a detectable header row. Column names come from
// the header row verbatim (trimmed); cells below it become string rows.
func ParseWorkbook(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			slog.Debug("Skipping unreadable sheet",
				slog.String("sheet_name", name),
				slog.String("error", err.Error()))
			continue
		}
		table, ok := tableFromRows(rows)
		if !ok {
			continue
		}
		slog.Info("Found KPI data sheet",
			slog.String("sheet_name", name),
			slog.Int("columns", len(table.Columns)),
			slog.Int("rows", len(table.Rows)))
		return table, nil
	}
	return nil, fmt.Errorf("no sheet with a detectable header row")
}

// ParseCSV reads a CSV export of a KPI sheet into the same Table model.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	table, ok := tableFromRows(records)
	if !ok {
		return nil, fmt.Errorf("no detectable header row in csv")
	}
	return table, nil
}

// tableFromRows locates the header row and materializes the table.
func tableFromRows(rows [][]string) (*Table, bool) {
	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		return nil, false
	}

	var columns []string
	colIdx := make([]int, 0, len(rows[headerIdx]))
	seen := make(map[string]bool)
	for i, cell := range rows[headerIdx] {
		name := strings.TrimSpace(cell)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, name)
		colIdx = append(colIdx, i)
	}
	if len(columns) < minHeaderCells {
		return nil, false
	}

	table := &Table{Columns: columns}
	for _, raw := range rows[headerIdx+1:] {
		if isEmptyRow(raw) {
			continue
		}
		cells := make([]string, len(columns))
		for j, src := range colIdx {
			if src < len(raw) {
				cells[j] = strings.TrimSpace(raw[src])
			}
		}
		table.Rows = append(table.Rows, newRow(columns, cells))
	}
	return table, true
}

// findHeaderRow returns the index of the first plausible header row:
// enough non-empty cells, at least one of them non-numeric.
func findHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerSearchRows {
		limit = headerSearchRows
	}
	for i := 0; i < limit; i++ {
		filled := 0
		textual := 0
		for _, cell := range rows[i] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			filled++
			if _, ok := ParseNumber(cell); !ok {
				textual++
			}
		}
		if filled >= minHeaderCells && textual > 0 && i+1 < len(rows) {
			return i
		}
	}
	return -1
}

func isEmptyRow(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
