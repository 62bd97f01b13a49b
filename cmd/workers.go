package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	workersDBPath    string
	workersQuery     string
	workersPage      int
	workersMatricule string
	workersName      string
	workersGroup     string
)

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Search workers and edit worker details",
}

var workersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workers, optionally filtered by matricule or name",
	Long: `List workers grouped by matricule, 20 per page.

--query matches a substring of the matricule or the name, ignoring case.`,
	Example: `
  # First page of all workers
  pointage workers list

  # Search by name
  pointage workers list --query dupont --page 2
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(workersDBPath)
		if err != nil {
			return err
		}
		defer app.Close()

		page, err := app.service.SearchWorkers(context.Background(), workersQuery, workersPage)
		if err != nil {
			return err
		}

		for _, worker := range page.Workers {
			fmt.Printf("%-12s %-30s %-20s records=%-4d hours=%.2f\n",
				worker.Matricule, worker.Name, worker.Group, worker.RecordCount, worker.TotalHours)
		}
		fmt.Printf("Page %d/%d, Workers: %d\n", page.Page, page.TotalPages, page.Total)
		return nil
	},
}

var workersUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change the name and/or group on every record of a worker",
	Example: `
  # Move a worker to another group
  pointage workers update --matricule A1 --group TeamB
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var name, group *string
		if cmd.Flags().Changed("name") {
			name = &workersName
		}
		if cmd.Flags().Changed("group") {
			group = &workersGroup
		}

		app, err := openApp(workersDBPath)
		if err != nil {
			return err
		}
		defer app.Close()

		updated, err := app.service.UpdateWorker(context.Background(), workersMatricule, name, group)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %d records of worker %s\n", updated, workersMatricule)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workersCmd)
	workersCmd.AddCommand(workersListCmd)
	workersCmd.AddCommand(workersUpdateCmd)

	workersCmd.PersistentFlags().StringVar(&workersDBPath, "db", "", "Path to local SQLite database (default from config storage.db_path)")

	workersListCmd.Flags().StringVarP(&workersQuery, "query", "q", "", "Matricule or name substring")
	workersListCmd.Flags().IntVar(&workersPage, "page", 1, "Page number")

	workersUpdateCmd.Flags().StringVar(&workersMatricule, "matricule", "", "Worker matricule")
	workersUpdateCmd.Flags().StringVar(&workersName, "name", "", "New name")
	workersUpdateCmd.Flags().StringVar(&workersGroup, "group", "", "New group")
	_ = workersUpdateCmd.MarkFlagRequired("matricule")
}
