// Package xlsx decodes spreadsheet workbooks into row-oriented tables, one
// table per sheet. The export tooling names each sheet after the day it
// covers (ddmmyy), which callers attach as the date label.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is one decoded worksheet: a header row plus data rows. Rows are
// padded to the header width so every row has the same number of cells.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// ReadWorkbook decodes every sheet of a workbook. Sheets without a header
// row are skipped.
func ReadWorkbook(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		if len(rows) == 0 {
			continue
		}
		sheet := Sheet{Name: name, Header: rows[0]}
		for _, row := range rows[1:] {
			sheet.Rows = append(sheet.Rows, padRow(row, len(sheet.Header)))
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

// padRow right-pads a row with empty cells; the decoder omits trailing
// blanks.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
