package importer

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported input format")

// Reader returns the rows of a tabular source. The first row is the header.
type Reader interface {
	Read(path string) ([][]string, error)
}

func ReaderForFormat(format string) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return &CSVReader{}, nil
	case "excel", "xlsx", "xlsm":
		return &ExcelReader{}, nil
	case "xls":
		return &XLSReader{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
