package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pointage/internal/timeutil"
	"pointage/output"
	"pointage/roster"
)

var (
	exportFormat    string
	exportMode      string
	exportOutput    string
	exportDBPath    string
	exportGroups    []string
	exportMatricule string
	exportTotal     bool
	exportPeriod    periodFlags
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export attendance records from SQLite to Excel/CSV",
	Long: `Export attendance records from SQLite.

Modes:
- raw: one row per record (Matricule/ID, Name, Group, Date, Hours), optional TOTAL row
- effectif: one row per date, one column per group, counting distinct workers
- worker: one worker's attendance, newest first, closed by a TOTAL row (requires --matricule)

The period is chosen with --day, --from/--to, or --year/--month/--period. Without any of
these, all dates are exported. When --output is omitted, a file name is derived from the
mode and period. Output format can be set via --format or is inferred from --output.`,
	Example: `
  # Export one day
  pointage export --mode raw --day 2025-01-15

  # Export the second half of January for two groups, with a TOTAL row
  pointage export --mode raw --year 2025 --month 1 --period QZ2 --group TeamA --group TeamB --total

  # Export the daily headcount per group to CSV
  pointage export --mode effectif --from 2025-01-01 --to 2025-01-31 --output ./effectif.csv

  # Export one worker's attendance
  pointage export --mode worker --matricule A1
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := exportPeriod.resolve()
		if err != nil {
			return err
		}

		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}

		app, err := openApp(exportDBPath)
		if err != nil {
			return err
		}
		defer app.Close()

		table, path, err := buildExport(context.Background(), app.service, period, time.Now(), writer.Extension())
		if err != nil {
			return err
		}
		if strings.TrimSpace(exportOutput) != "" {
			path = exportOutput
		}

		if err := output.WriteTable(path, format, table); err != nil {
			return err
		}
		fmt.Printf("Export completed. Rows: %d, Mode: %s, Period: %s, File: %s\n",
			len(table.Rows), exportMode, describeRange(period), path)
		return nil
	},
}

func buildExport(ctx context.Context, service *roster.Service, period timeutil.Range, now time.Time, extension string) (output.Table, string, error) {
	switch strings.TrimSpace(strings.ToLower(exportMode)) {
	case "", "raw":
		records, err := service.List(ctx, roster.Filter{Period: period, Groups: exportGroups})
		if err != nil {
			return output.Table{}, "", err
		}
		table, err := output.RecordsTable(records, exportTotal)
		return table, output.RecordsFilename(period, now, extension), err
	case "effectif":
		records, err := service.List(ctx, roster.Filter{Period: period, Groups: exportGroups})
		if err != nil {
			return output.Table{}, "", err
		}
		table, err := output.EffectifTable(records)
		return table, output.EffectifFilename(period, now, extension), err
	case "worker":
		if strings.TrimSpace(exportMatricule) == "" {
			return output.Table{}, "", fmt.Errorf("--matricule is required for worker export")
		}
		records, err := service.WorkerRecords(ctx, exportMatricule, period)
		if err != nil {
			return output.Table{}, "", err
		}
		table, err := output.WorkerTable(records)
		if err != nil {
			return output.Table{}, "", err
		}
		return table, output.WorkerFilename(records[0].Name, exportMatricule, now, extension), nil
	default:
		return output.Table{}, "", fmt.Errorf("unsupported export mode: %s (supported: raw, effectif, worker)", exportMode)
	}
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	default:
		return "excel"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|effectif|worker")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default derived from mode and period)")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")
	exportCmd.Flags().StringArrayVar(&exportGroups, "group", nil, "Restrict to a group (repeatable)")
	exportCmd.Flags().StringVar(&exportMatricule, "matricule", "", "Worker matricule for --mode worker")
	exportCmd.Flags().BoolVar(&exportTotal, "total", false, "Append a TOTAL row to raw exports")
	exportPeriod.register(exportCmd)
}
