// Package xlsxio reads and writes record sets as single-sheet workbooks.
package xlsxio

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wdm0006/vistas/pkg/frame"
)

// SheetName is the sheet WriteAll fills.
const SheetName = "views"

// ReadAll loads the first sheet of a workbook. The first row is the header;
// cells are trimmed and empty cells are null.
func ReadAll(path string) (*frame.Frame, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.Close() }()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", frame.ErrParse)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", frame.ErrParse, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header row", frame.ErrParse)
	}
	f, err := frame.NewFrame(frame.StringSchema(rows[0]...))
	if err != nil {
		return nil, err
	}
	for _, row := range rows[1:] {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = strings.TrimSpace(v)
		}
		f.AppendStrings(vals)
	}
	return f, nil
}

// WriteAll writes the header and every row to SheetName. Null cells stay empty.
func WriteAll(path string, f *frame.Frame) error {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()
	if err := wb.SetSheetName(wb.GetSheetName(0), SheetName); err != nil {
		return err
	}

	header := make([]any, f.Cols())
	for i, n := range f.Names() {
		header[i] = n
	}
	if err := wb.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	names := f.Names()
	for r := 0; r < f.Rows(); r++ {
		row := make([]any, len(names))
		for i, n := range names {
			col, _ := f.ColumnByName(n)
			row[i] = col.Value(r)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}
	return wb.SaveAs(path)
}
