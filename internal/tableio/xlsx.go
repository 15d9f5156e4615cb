package tableio

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	apperrors "catpost/internal/errors"
	"catpost/internal/table"
)

// Sheet names used in workbooks.
const (
	DataSheet  = "data"
	AttrsSheet = "attrs"
)

// WriteXLSX writes tbl as a workbook with a "data" sheet and, when the table
// has attributes, an "attrs" sheet of key/value rows.
func WriteXLSX(w io.Writer, tbl *table.Table, opts Options) error {
	g := toGrid(tbl, opts)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), DataSheet); err != nil {
		return fmt.Errorf("failed to name data sheet: %w", err)
	}
	for j, h := range g.headers {
		if err := setCell(f, DataSheet, j, 0, h); err != nil {
			return err
		}
	}
	for i, row := range tbl.Index() {
		if err := setCell(f, DataSheet, 0, i+1, row); err != nil {
			return err
		}
	}
	for i, record := range g.rows {
		for j := 1; j < len(record); j++ {
			v, err := parseFloat(record[j])
			if err != nil {
				return err
			}
			// NaN has no spreadsheet representation and is left blank.
			if math.IsNaN(v) {
				continue
			}
			if err := setCell(f, DataSheet, j, i+1, v); err != nil {
				return err
			}
		}
	}

	if len(g.attrs) > 0 {
		if _, err := f.NewSheet(AttrsSheet); err != nil {
			return fmt.Errorf("failed to create attrs sheet: %w", err)
		}
		for i, kv := range g.attrs {
			if err := setCell(f, AttrsSheet, 0, i, kv[0]); err != nil {
				return err
			}
			if err := setCell(f, AttrsSheet, 1, i, kv[1]); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return apperrors.NewStorageError("failed to write workbook", err)
	}
	return nil
}

// ReadXLSX parses a workbook written by WriteXLSX.
func ReadXLSX(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("invalid workbook", err)
	}
	defer f.Close()

	rows, err := f.GetRows(DataSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("workbook has no %q sheet", DataSheet), err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("workbook has no header", nil)
	}
	g := grid{headers: rows[0], rows: rows[1:]}

	if idx, _ := f.GetSheetIndex(AttrsSheet); idx >= 0 {
		attrs, err := f.GetRows(AttrsSheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read attributes", err)
		}
		for _, kv := range attrs {
			if len(kv) == 0 || kv[0] == "" {
				continue
			}
			g.attrs = append(g.attrs, [2]string{kv[0], cell(kv, 1)})
		}
	}
	return g.build()
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, name, value); err != nil {
		return fmt.Errorf("failed to set %s!%s: %w", sheet, name, err)
	}
	return nil
}
