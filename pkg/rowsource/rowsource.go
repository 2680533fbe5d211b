package rowsource

import (
	"strings"
)

// Row is one line of a statement file. Num is the 1-based row number used in
// user-facing messages, counting every physical row including blank ones.
type Row struct {
	Num   int
	Cells []string
}

// Cell returns the cell text as read, or "" when the row is shorter than the
// index.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Blank reports whether the cell is missing or whitespace only.
func (r Row) Blank(i int) bool {
	return strings.TrimSpace(r.Cell(i)) == ""
}

// Empty reports whether every cell of the row is blank.
func (r Row) Empty() bool {
	for i := range r.Cells {
		if !r.Blank(i) {
			return false
		}
	}
	return true
}

// FromTSV splits tab-separated text into rows. Blank lines are kept so that
// row numbers stay aligned with the source file; validators skip them.
func FromTSV(data []byte) []Row {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	// A trailing newline produces one empty phantom line; drop it.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	rows := make([]Row, 0, len(lines))
	for i, line := range lines {
		rows = append(rows, Row{Num: i + 1, Cells: strings.Split(line, "\t")})
	}
	return rows
}
