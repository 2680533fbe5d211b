package rowsource

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ErrUnknownFormat reports bytes that none of the supported spreadsheet
// readers could open.
var ErrUnknownFormat = errors.New("unknown file format. Supported file formats are: XLS (from Excel 2003 or older), XLSX")

const maxSheetRows = 10000

// FromXLS reads the first sheet of a binary XLS workbook.
func FromXLS(data []byte) ([]Row, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("error creating workbook: %w", err)
	}

	cells := workbook.ReadAllCells(maxSheetRows)
	if len(cells) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}
	return numberRows(cells), nil
}

// FromXLSX reads the first sheet of an XLSX workbook.
func FromXLSX(data []byte) ([]Row, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error creating workbook: %w", err)
	}
	defer workbook.Close()

	cells, err := workbook.GetRows(workbook.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("error reading sheet: %w", err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}
	return numberRows(cells), nil
}

// FromSpreadsheet buffers the raw bytes and tries the binary XLS reader
// first, then the XLSX reader, so one entry point serves both exports.
func FromSpreadsheet(data []byte) ([]Row, error) {
	rows, err := FromXLS(data)
	if err == nil {
		return rows, nil
	}

	rows, err = FromXLSX(data)
	if err == nil {
		return rows, nil
	}
	return nil, ErrUnknownFormat
}

func numberRows(cells [][]string) []Row {
	rows := make([]Row, 0, len(cells))
	for i, c := range cells {
		rows = append(rows, Row{Num: i + 1, Cells: c})
	}
	return rows
}
