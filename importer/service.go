package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"pointage/attendance"
)

type RunOptions struct {
	// Format overrides extension-based detection for every path.
	Format       string
	SkipFirstRow bool
	// Mapping switches from header detection to explicit column indices.
	Mapping *attendance.ColumnMapping
	Logger  *zerolog.Logger
}

// Run reads and parses every path. The first file that fails aborts the run.
func Run(paths []string, options RunOptions) (*Result, error) {
	result := &Result{Records: make([]attendance.Record, 0, 256)}
	parseOptions := Options{SkipFirstRow: options.SkipFirstRow, Logger: options.Logger}

	for _, path := range paths {
		rows, err := readFile(path, options.Format, options.Logger)
		if err != nil {
			return nil, err
		}

		var parsed *Result
		if options.Mapping != nil {
			parsed, err = ParseWithMapping(rows, *options.Mapping, parseOptions)
		} else {
			parsed, err = Parse(rows, parseOptions)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}

		result.FilesProcessed++
		result.RowsRead += parsed.RowsRead
		result.RowsParsed += parsed.RowsParsed
		result.RowsSkipped += parsed.RowsSkipped
		result.Records = append(result.Records, parsed.Records...)
	}

	return result, nil
}

// ReadFile picks a reader from format, or from the extension when format is
// empty, and returns the raw rows.
func ReadFile(path string, format string) ([][]string, error) {
	return readFile(path, format, nil)
}

func readFile(path string, format string, logger *zerolog.Logger) ([][]string, error) {
	sourceFormat, err := inferFormat(path, format)
	if err != nil {
		return nil, err
	}
	reader, err := ReaderForFormat(sourceFormat)
	if err != nil {
		return nil, err
	}
	if xlsReader, ok := reader.(*XLSReader); ok {
		xlsReader.Logger = logger
	}
	return reader.Read(path)
}

// PreviewFile returns the header row and the first PreviewRows data rows.
func PreviewFile(path string, format string) (Preview, error) {
	rows, err := ReadFile(path, format)
	if err != nil {
		return Preview{}, err
	}
	return BuildPreview(rows, PreviewRows)
}

func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv", "txt":
		return "csv", nil
	case "xlsx", "xlsm":
		return "excel", nil
	case "xls":
		return "xls", nil
	default:
		return "", fmt.Errorf("%w: file extension of %s", ErrUnsupportedFormat, path)
	}
}
