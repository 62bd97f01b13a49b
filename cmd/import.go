package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pointage/attendance"
	"pointage/importer"
	"pointage/internal/confirm"
)

var (
	importInputs       []string
	importFormat       string
	importDBPath       string
	importSkipFirstRow bool
	importMapping      string
	importDryRun       bool
	importPassphrase   string
)

var (
	promptInput  io.Reader = os.Stdin
	promptOutput io.Writer = os.Stdout
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import attendance sheets (CSV/Excel) into the local SQLite database",
	Long: `Read attendance sheets, detect the matricule/name/group/date/hours columns, and store
one record per worker and day.

Headers are matched case-insensitively against known aliases (for example ID/CODIGI,
NOMBRE, ENCARGADO, FECHA, RHHH). When detection fails, the command prints the headers
with their column indices; re-run with --map to assign the columns explicitly.

Rows with missing values, unreadable hours, or unreadable dates are skipped. Records whose
matricule and date already exist in the database are counted as duplicates and not stored.
Storing records requires the configured passphrase (prompted when --passphrase is omitted).`,
	Example: `
  # Import an Excel sheet
  pointage import -i pointage_janvier.xlsx

  # Import several files, forcing CSV parsing
  pointage import -i week1.txt -i week2.txt --format csv

  # Check what would be imported without storing anything
  pointage import -i pointage.csv --dry-run

  # Assign columns explicitly (zero-based indices)
  pointage import -i export.csv --map matricule=0,name=1,group=4,date=2,hours=3

  # Skip a header row repeated as the first data row
  pointage import -i pointage.xlsx --skip-first-row
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var mapping *attendance.ColumnMapping
		if strings.TrimSpace(importMapping) != "" {
			parsed, err := attendance.ParseMapping(importMapping)
			if err != nil {
				return err
			}
			mapping = &parsed
		}

		app, err := openApp(importDBPath)
		if err != nil {
			return err
		}
		defer app.Close()

		skipFirstRow := app.cfg.Import.SkipFirstRow
		if cmd.Flags().Changed("skip-first-row") {
			skipFirstRow = importSkipFirstRow
		}

		result, err := importer.Run(importInputs, importer.RunOptions{
			Format:       importFormat,
			SkipFirstRow: skipFirstRow,
			Mapping:      mapping,
			Logger:       &app.logger,
		})
		if err != nil {
			var columnsErr *importer.ColumnsError
			if errors.As(err, &columnsErr) {
				printColumnHint(os.Stderr, columnsErr)
			}
			return err
		}

		fmt.Printf("Parsed. Files: %d, Rows read: %d, Rows parsed: %d, Rows skipped: %d\n",
			result.FilesProcessed,
			result.RowsRead,
			result.RowsParsed,
			result.RowsSkipped,
		)
		if importDryRun {
			fmt.Println("Dry run: no records stored.")
			return nil
		}

		if err := checkPassphrase(confirm.NewGate(app.cfg.Gate.Passphrase), importPassphrase, "import records"); err != nil {
			return err
		}

		persisted, err := app.service.Add(context.Background(), result.Records)
		if err != nil {
			return fmt.Errorf("added %d records before failing: %w", persisted.Added, err)
		}
		fmt.Printf("Import completed. Added: %d, Duplicates: %d\n", persisted.Added, persisted.Duplicates)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel|xls (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVar(&importDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")
	importCmd.Flags().BoolVar(&importSkipFirstRow, "skip-first-row", false, "Skip the first data row (default from config import.skip_first_row)")
	importCmd.Flags().StringVar(&importMapping, "map", "", "Explicit column indices, e.g. matricule=0,name=1,group=2,date=3,hours=4 or m=0,n=1,g=2,d=3,h=4")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report without storing records")
	importCmd.Flags().StringVar(&importPassphrase, "passphrase", "", "Confirmation passphrase (prompted when omitted)")

	_ = importCmd.MarkFlagRequired("input")
}

// checkPassphrase uses the flag value when given and prompts otherwise.
func checkPassphrase(gate confirm.Gate, flagValue, action string) error {
	if flagValue != "" {
		return gate.Check(flagValue)
	}
	return gate.Prompt(promptInput, promptOutput, action)
}

func printColumnHint(w io.Writer, columnsErr *importer.ColumnsError) {
	fmt.Fprintln(w, "Columns found in the file:")
	for i, header := range columnsErr.Headers {
		fmt.Fprintf(w, "  %d: %s\n", i, header)
	}
	fmt.Fprintf(w, "Missing: %s\n", strings.Join(columnsErr.Missing, ", "))
	fmt.Fprintln(w, "Re-run with --map matricule=<i>,name=<i>,group=<i>,date=<i>,hours=<i>")
}
