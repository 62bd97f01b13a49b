package importer

import (
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/rs/zerolog"
)

// formulaCell is what the xls library returns for every formula cell; the
// cached result is not exposed.
const formulaCell = "FormulaCol"

// XLSReader reads legacy BIFF workbooks (.xls). Formula cells read as empty,
// so rows whose hours are computed by a formula are skipped.
type XLSReader struct {
	Logger *zerolog.Logger
}

func (r *XLSReader) Read(path string) ([][]string, error) {
	workbook, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls file %s: %w", path, err)
	}
	if workbook == nil {
		return nil, fmt.Errorf("open xls file %s: no workbook stream", path)
	}
	// Without cell formats the library renders date cells as day serials,
	// which FormatDate converts the same way as for xlsx files.
	workbook.Xfs = nil

	sheet := workbook.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls file has no sheets: %s", path)
	}

	formulas := 0
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheetRow(sheet, i)
		if row == nil {
			continue
		}
		values := make([]string, 0, row.LastCol())
		for col := row.FirstCol(); col < row.LastCol(); col++ {
			for len(values) < col {
				values = append(values, "")
			}
			value := strings.TrimSpace(row.Col(col))
			if value == formulaCell {
				formulas++
				value = ""
			}
			values = append(values, value)
		}
		if isBlankRow(values) {
			continue
		}
		rows = append(rows, values)
	}

	if formulas > 0 && r.Logger != nil {
		r.Logger.Warn().Str("file", path).Int("cells", formulas).Msg("xls formula cells read as empty")
	}
	return rows, nil
}

// sheetRow returns nil for row indices the sheet has no record for; the
// library dereferences a missing row instead of reporting it.
func sheetRow(sheet *xls.WorkSheet, index int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(index)
}
