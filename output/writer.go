package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported output format")

type Writer interface {
	Write(out io.Writer, table Table) error
	Extension() string
	ContentType() string
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx", "":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// WriteTable writes table to path in the given format.
func WriteTable(path, format string, table Table) error {
	writer, err := WriterForFormat(format)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output %s: %w", path, err)
	}
	if err := writer.Write(file, table); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output %s: %w", path, err)
	}
	return nil
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
