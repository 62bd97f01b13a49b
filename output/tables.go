package output

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pointage/attendance"
	"pointage/stats"
)

var ErrNoRecords = errors.New("no pointage records to export")

const (
	totalLabel       = "TOTAL"
	workerDateLayout = "Jan 2, 2006"
)

// Table is a single-sheet export. Cell values are strings, ints or float64.
type Table struct {
	Sheet        string
	Headers      []string
	Rows         [][]any
	ColumnWidths []float64
	FreezeHeader bool
}

// RecordsTable lists one row per record ordered by date, group and matricule.
func RecordsTable(records []attendance.Record, withTotal bool) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrNoRecords
	}

	sorted := append([]attendance.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		if sorted[i].Group != sorted[j].Group {
			return sorted[i].Group < sorted[j].Group
		}
		return sorted[i].Matricule < sorted[j].Matricule
	})

	table := Table{
		Sheet:        "Pointages",
		Headers:      []string{"Matricule/ID", "Name", "Group", "Date", "Hours"},
		Rows:         make([][]any, 0, len(sorted)+1),
		ColumnWidths: []float64{15, 25, 20, 12, 10},
	}
	for _, record := range sorted {
		table.Rows = append(table.Rows, []any{record.Matricule, record.Name, record.Group, record.Date, record.Hours})
	}
	if withTotal {
		table.Rows = append(table.Rows, []any{totalLabel, "", "", "", sumHours(sorted)})
	}
	return table, nil
}

// WorkerTable is one worker's attendance, newest first, closed by a TOTAL row.
func WorkerTable(records []attendance.Record) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrNoRecords
	}

	sorted := append([]attendance.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	table := Table{
		Sheet:        "Pointage",
		Headers:      []string{"Date", "Group", "Hours"},
		Rows:         make([][]any, 0, len(sorted)+1),
		ColumnWidths: []float64{15, 15, 10},
	}
	for _, record := range sorted {
		table.Rows = append(table.Rows, []any{workerDate(record.Date), record.Group, record.Hours})
	}
	table.Rows = append(table.Rows, []any{totalLabel, "-", sumHours(sorted)})
	return table, nil
}

// EffectifTable pivots records into one row per date and one column per
// group, each cell counting distinct workers.
func EffectifTable(records []attendance.Record) (Table, error) {
	if len(records) == 0 {
		return Table{}, ErrNoRecords
	}

	daily := stats.DailyGroupWorkers(records)
	groups := stats.Groups(records)
	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	table := Table{
		Sheet:        "Daily Effectif",
		Headers:      make([]string, 0, len(groups)+1),
		Rows:         make([][]any, 0, len(dates)),
		ColumnWidths: make([]float64, 0, len(groups)+1),
		FreezeHeader: true,
	}
	table.Headers = append(table.Headers, effectifDateHeader)
	table.ColumnWidths = append(table.ColumnWidths, 12)
	for _, group := range groups {
		table.Headers = append(table.Headers, effectifGroupHeader(group))
		table.ColumnWidths = append(table.ColumnWidths, 15)
	}

	for _, date := range dates {
		row := make([]any, 0, len(groups)+1)
		row = append(row, date)
		for _, group := range groups {
			row = append(row, len(daily[date][group]))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

const effectifDateHeader = "Date"

// effectifGroupHeader keeps a group literally named like the date column
// distinguishable from it.
func effectifGroupHeader(group string) string {
	if strings.EqualFold(strings.TrimSpace(group), effectifDateHeader) {
		return group + " (group)"
	}
	return group
}

func sumHours(records []attendance.Record) float64 {
	total := decimal.Zero
	for _, record := range records {
		total = total.Add(decimal.NewFromFloat(record.Hours))
	}
	return total.Round(2).InexactFloat64()
}

func workerDate(date string) string {
	parsed, err := time.Parse(attendance.DateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format(workerDateLayout)
}
