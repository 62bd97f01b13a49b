package importer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"pointage/attendance"
)

var (
	ErrEmptySource    = errors.New("empty source")
	ErrNoValidRecords = errors.New("no valid pointage records found in the file")
)

type Options struct {
	// SkipFirstRow drops one leading data row, for sources whose header was
	// repeated below itself.
	SkipFirstRow bool
	Logger       *zerolog.Logger
}

type Result struct {
	FilesProcessed int                 `json:"filesProcessed"`
	RowsRead       int                 `json:"rowsRead"`
	RowsParsed     int                 `json:"rowsParsed"`
	RowsSkipped    int                 `json:"rowsSkipped"`
	Records        []attendance.Record `json:"-"`
}

// Parse maps the header row automatically and converts every data row.
func Parse(rows [][]string, opts Options) (*Result, error) {
	if len(rows) < 2 {
		return nil, ErrEmptySource
	}

	mapping, missing, ok := DetectMapping(rows[0])
	if !ok {
		return nil, &ColumnsError{Missing: missing, Headers: append([]string(nil), rows[0]...)}
	}
	return parseRows(rows[1:], mapping, opts)
}

// ParseWithMapping skips header detection and reads columns at the given
// indices. The first row is still treated as the header.
func ParseWithMapping(rows [][]string, mapping attendance.ColumnMapping, opts Options) (*Result, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrEmptySource
	}
	return parseRows(rows[1:], mapping, opts)
}

func parseRows(dataRows [][]string, mapping attendance.ColumnMapping, opts Options) (*Result, error) {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	start := 0
	if opts.SkipFirstRow {
		start = 1
	}

	result := &Result{Records: make([]attendance.Record, 0, len(dataRows))}
	for i := start; i < len(dataRows); i++ {
		result.RowsRead++
		// +2: one for the header, one for 1-based numbering.
		rowNumber := i + 2

		record, err := parseRow(dataRows[i], mapping)
		if err != nil {
			result.RowsSkipped++
			logger.Debug().Int("row", rowNumber).Err(err).Msg("skipping row")
			continue
		}
		result.RowsParsed++
		result.Records = append(result.Records, record)
	}

	if len(result.Records) == 0 {
		return nil, ErrNoValidRecords
	}
	return result, nil
}

func parseRow(row []string, mapping attendance.ColumnMapping) (attendance.Record, error) {
	hours, err := parseHours(cell(row, mapping.Hours))
	if err != nil {
		return attendance.Record{}, err
	}

	record := attendance.Record{
		Matricule: cell(row, mapping.Matricule),
		Name:      cell(row, mapping.Name),
		Group:     cell(row, mapping.Group),
		Date:      FormatDate(cell(row, mapping.Date)),
		Hours:     attendance.RoundHours(hours),
	}
	if err := record.Validate(); err != nil {
		return attendance.Record{}, err
	}
	return record, nil
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// parseHours accepts "8", "7.5" and "7,5". When a comma is present, dots are
// taken as thousands separators.
func parseHours(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, fmt.Errorf("missing hours")
	}
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	hours, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", raw, err)
	}
	if math.IsInf(hours, 0) || math.IsNaN(hours) {
		return 0, fmt.Errorf("hours %q is not a finite number", raw)
	}
	return hours, nil
}
