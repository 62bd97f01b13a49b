package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

type CSVWriter struct{}

func (w *CSVWriter) Extension() string { return ".csv" }

func (w *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

func (w *CSVWriter) Write(out io.Writer, table Table) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, values := range table.Rows {
		row := make([]string, len(values))
		for i, value := range values {
			row[i] = formatCell(value)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(typed)
	}
}
