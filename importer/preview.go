package importer

import "fmt"

// PreviewRows is the number of data rows shown next to the headers when an
// operator builds a column mapping by hand.
const PreviewRows = 5

type Preview struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// BuildPreview returns the header row, with blank headers replaced by
// "Column N", and up to limit data rows padded to the header width.
func BuildPreview(rows [][]string, limit int) (Preview, error) {
	if len(rows) == 0 {
		return Preview{}, ErrEmptySource
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	headers := make([]string, width)
	for i := range headers {
		headers[i] = cell(rows[0], i)
		if headers[i] == "" {
			headers[i] = fmt.Sprintf("Column %d", i+1)
		}
	}

	data := rows[1:]
	if limit >= 0 && len(data) > limit {
		data = data[:limit]
	}
	preview := Preview{Headers: headers, Rows: make([][]string, 0, len(data))}
	for _, row := range data {
		padded := make([]string, width)
		for i := range padded {
			padded[i] = cell(row, i)
		}
		preview.Rows = append(preview.Rows, padded)
	}
	return preview, nil
}
