package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestReadRowsCSV(t *testing.T) {
	path := writeTempFile(t, "script.csv", "1,opening,Welcome to the course,title card\n2,lecture,Indexes speed up lookups,\n")

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][2] != "Welcome to the course" {
		t.Errorf("rows[0][2] = %q", rows[0][2])
	}
}

func TestReadRowsTSVRaggedRows(t *testing.T) {
	path := writeTempFile(t, "script.tsv", "1\topening\tWelcome\n2\tlecture\n")

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 || len(rows[0]) != 3 || len(rows[1]) != 2 {
		t.Errorf("unexpected shape: %v", rows)
	}
}

func TestReadRowsPlainText(t *testing.T) {
	path := writeTempFile(t, "script.txt", "First paragraph.\r\nSecond paragraph.")

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "First paragraph." {
		t.Errorf("rows[0][0] = %q, carriage return not stripped?", rows[0][0])
	}
}

func TestReadRowsExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "Shot")
	f.SetCellValue(sheet, "B1", "Narration")
	f.SetCellValue(sheet, "A2", 1)
	f.SetCellValue(sheet, "B2", "Welcome to the course")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving workbook: %v", err)
	}
	f.Close()

	rows, err := ReadRows(path)
	if err != nil {
		t.Fatalf("ReadRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1][1] != "Welcome to the course" {
		t.Errorf("rows[1][1] = %q", rows[1][1])
	}
}

func TestReadRowsMissingFile(t *testing.T) {
	if _, err := ReadRows(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("ReadRows() accepted a missing file")
	}
}

func TestRowsTextJoinsCellsAndSkipsEmptyRows(t *testing.T) {
	rows := [][]string{
		{"1", "opening", "Welcome"},
		{"", "  ", ""},
		{"2", "lecture", "Indexes"},
	}
	got := RowsText(rows)
	want := "1 | opening | Welcome\n2 | lecture | Indexes"
	if got != want {
		t.Errorf("RowsText() = %q, want %q", got, want)
	}
}
