package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Extension() string { return ".xlsx" }

func (w *ExcelWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (w *ExcelWriter) Write(out io.Writer, table Table) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if table.Sheet != "" && table.Sheet != sheet {
		if err := file.SetSheetName(sheet, table.Sheet); err != nil {
			return fmt.Errorf("rename excel sheet: %w", err)
		}
		sheet = table.Sheet
	}

	for col, header := range table.Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, values := range table.Rows {
		row := i + 2
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	for col, width := range table.ColumnWidths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("resolve excel column %d: %w", col+1, err)
		}
		if err := file.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("set excel column width %s: %w", name, err)
		}
	}

	if table.FreezeHeader {
		panes := &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}
		if err := file.SetPanes(sheet, panes); err != nil {
			return fmt.Errorf("freeze excel header: %w", err)
		}
	}

	if err := file.Write(out); err != nil {
		return fmt.Errorf("write excel output: %w", err)
	}
	return nil
}
