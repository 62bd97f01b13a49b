package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

type ExcelReader struct{}

// Read returns the first sheet with raw cell values, so date cells stay
// serial numbers and go through FormatDate like any other token.
func (r *ExcelReader) Read(path string) ([][]string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("excel file has no sheets: %s", path)
	}

	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}

	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		kept = append(kept, row)
	}
	return kept, nil
}
