package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pointage/internal/confirm"
	"pointage/internal/timeutil"
)

var (
	deleteDBPath     string
	deleteFrom       string
	deleteTo         string
	deletePassphrase string
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete all attendance records in a date range",
	Long: `Destructive cleanup command.

Deletes every record dated between --from and --to (inclusive). Both dates are required
and --from must not be after --to. Before deletion the configured passphrase must be
typed (or passed via --passphrase).

Records are deleted one at a time. If a deletion fails, records already deleted stay
deleted and the command reports how many were removed.`,
	Example: `
  # Delete the first half of January 2025 (prompts for passphrase)
  pointage delete --from 2025-01-01 --to 2025-01-15
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := timeutil.ValidateRange(deleteFrom, deleteTo)
		if err != nil {
			return err
		}

		app, err := openApp(deleteDBPath)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := checkPassphrase(confirm.NewGate(app.cfg.Gate.Passphrase), deletePassphrase, "delete records from "+describeRange(period)); err != nil {
			return err
		}

		deleted, err := app.service.DeleteRange(context.Background(), period.From, period.To)
		if err != nil {
			return fmt.Errorf("deleted %d records before failing: %w", deleted, err)
		}
		fmt.Printf("Deleted %d records (%s)\n", deleted, describeRange(period))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(&deleteDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")
	deleteCmd.Flags().StringVar(&deleteFrom, "from", "", "Range start, format YYYY-MM-DD")
	deleteCmd.Flags().StringVar(&deleteTo, "to", "", "Range end, format YYYY-MM-DD")
	deleteCmd.Flags().StringVar(&deletePassphrase, "passphrase", "", "Confirmation passphrase (prompted when omitted)")
}
