package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type CSVReader struct{}

func (r *CSVReader) Read(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read csv file %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV decodes UTF-8 or BOM-marked UTF-16 text and splits it on the
// delimiter found in the first line (comma, semicolon or tab).
func ReadCSV(source io.Reader) ([][]string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	buffered := bufio.NewReader(transform.NewReader(source, decoder))

	firstLine, err := buffered.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek header: %w", err)
	}

	reader := csv.NewReader(buffered)
	reader.Comma = detectDelimiter(string(firstLine))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows := make([][]string, 0, 128)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		if isBlankRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func detectDelimiter(sample string) rune {
	if index := strings.IndexAny(sample, "\r\n"); index >= 0 {
		sample = sample[:index]
	}

	best, bestCount := ',', strings.Count(sample, ",")
	for _, candidate := range []rune{';', '\t'} {
		if count := strings.Count(sample, string(candidate)); count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}
