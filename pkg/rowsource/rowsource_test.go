package rowsource

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestFromTSV(t *testing.T) {
	rows := FromTSV([]byte("a\tb\tc\n\nx\ty\n"))

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Num != 1 || rows[2].Num != 3 {
		t.Errorf("row numbers = %d, %d; want 1, 3", rows[0].Num, rows[2].Num)
	}
	if !rows[1].Empty() {
		t.Error("expected blank line to be empty")
	}
	if rows[2].Cell(1) != "y" {
		t.Errorf("cell = %q, want y", rows[2].Cell(1))
	}
}

func TestFromTSVWindowsLineEndings(t *testing.T) {
	rows := FromTSV([]byte("a\tb\r\nc\td\r\n"))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Cell(1) != "b" {
		t.Errorf("cell = %q, want b without carriage return", rows[0].Cell(1))
	}
}

func TestRowCellOutOfRange(t *testing.T) {
	row := Row{Num: 1, Cells: []string{"only"}}
	if row.Cell(5) != "" {
		t.Error("out of range cell should be empty")
	}
	if !row.Blank(5) {
		t.Error("out of range cell should be blank")
	}
}

func TestFromSpreadsheetXLSXFallback(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "Transactions")
	f.SetCellValue(sheet, "B2", "hello")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}

	rows, err := FromSpreadsheet(buf.Bytes())
	if err != nil {
		t.Fatalf("FromSpreadsheet failed: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("expected at least 2 rows, got %d", len(rows))
	}
	if rows[0].Cell(0) != "Transactions" {
		t.Errorf("cell = %q, want Transactions", rows[0].Cell(0))
	}
	if rows[1].Cell(1) != "hello" {
		t.Errorf("cell = %q, want hello", rows[1].Cell(1))
	}
}

func TestFromSpreadsheetUnknownFormat(t *testing.T) {
	_, err := FromSpreadsheet([]byte("definitely not a spreadsheet"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
