package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pointage/roster"
)

var (
	statsDBPath string
	statsGroups []string
	statsPeriod periodFlags
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show worker, day, hour, and group totals for a period",
	Long: `Print dashboard statistics for the selected period:
distinct workers, distinct days, total hours, and per-group worker count, hours,
working days, record count, and utilization.

Utilization is hours / (working days x workers x 8) and is capped at 100%.`,
	Example: `
  # Statistics over all stored records
  pointage stats

  # Statistics for one half-month
  pointage stats --year 2025 --month 1 --period QZ1
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := statsPeriod.resolve()
		if err != nil {
			return err
		}

		app, err := openApp(statsDBPath)
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := context.Background()
		summary, err := app.service.Summary(ctx, roster.Filter{Period: period, Groups: statsGroups})
		if err != nil {
			return err
		}

		fmt.Printf("Period: %s\n", describeRange(period))
		fmt.Printf("Workers: %d, Days: %d, Hours: %.2f, Groups: %d\n",
			summary.TotalWorkers, summary.TotalDays, summary.TotalHours, summary.TotalGroups)

		last, err := app.service.LastAdded(ctx)
		if err != nil {
			return err
		}
		if last != nil {
			fmt.Printf("Last added: %s (%s) on %s, added %s\n",
				last.Name, last.Matricule, last.Date, last.CreatedAt.Local().Format("2006-01-02 15:04"))
		}

		for _, group := range summary.Groups {
			fmt.Printf("  %-20s workers=%-4d hours=%-8.2f days=%-3d records=%-5d utilization=%.1f%%\n",
				group.Group, group.UniqueWorkers, group.TotalHours, group.WorkingDays, group.RecordCount, group.Utilization)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")
	statsCmd.Flags().StringArrayVar(&statsGroups, "group", nil, "Restrict to a group (repeatable)")
	statsPeriod.register(statsCmd)
}
