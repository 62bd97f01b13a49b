package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pointage configuration file values.",
	Long: `Create, edit, display, and delete the pointage configuration file.

The configuration stores:
- storage.db_path
- gate.passphrase (retyped before imports and range deletes)
- server.port
- import.skip_first_row
- log.level

Every key can be overridden with a POINTAGE_ environment variable, e.g. POINTAGE_SERVER_PORT.`,
	Example: `
  # Create default config in $HOME/.pointage.yaml with a chosen passphrase
  pointage config create --passphrase "harvest-2025"

  # Show active config and source file
  pointage config show

  # Open active config in editor (creates example if missing)
  pointage config edit

  # Delete active config file
  pointage config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
