// Package script loads narration scripts from spreadsheet or text files and
// turns AI analysis results into the page records the pipeline runs on.
package script

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ReadRows loads a script file as rows of cells. Spreadsheets keep their
// table structure; plain text formats become one single-cell row per line.
// Supported: .xlsx, .csv, .tsv, .txt, .md. Anything else is tried as text.
func ReadRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readExcelRows(path)
	case ".csv":
		return readDelimitedRows(path, ',')
	case ".tsv":
		return readDelimitedRows(path, '\t')
	default:
		return readTextRows(path)
	}
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	log.Debug().
		Str("path", path).
		Str("sheet", sheets[0]).
		Int("rows", len(rows)).
		Msg("Workbook loaded")

	return rows, nil
}

func readDelimitedRows(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = comma
	r.FieldsPerRecord = -1 // scripts have ragged rows
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func readTextRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	var rows [][]string
	for _, line := range strings.Split(string(data), "\n") {
		rows = append(rows, []string{strings.TrimRight(line, "\r")})
	}
	return rows, nil
}

// RowsText flattens rows into the text form sent for script analysis. Cells
// are joined with " | " to preserve table structure; empty rows are dropped.
func RowsText(rows [][]string) string {
	var lines []string
	for _, row := range rows {
		empty := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n")
}
