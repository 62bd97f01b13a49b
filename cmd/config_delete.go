package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pointage/config"
	"pointage/internal/confirm"
)

var configDeletePassphrase string

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file loaded at startup. The attendance database is kept.

The file holds the confirmation passphrase, so deleting it asks for that passphrase
first. A file that no longer validates is deleted without asking.`,
	Example: `
  # Delete the active configuration
  pointage config delete

  # Delete a specific file without a prompt
  pointage --configFile ./custom-pointage.yaml config delete --passphrase "harvest-2025"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.ConfigFileUsed()
		if path == "" {
			return fmt.Errorf("no configuration file in use")
		}

		err := removeConfigFile(path, func(gate confirm.Gate) error {
			return checkPassphrase(gate, configDeletePassphrase, "delete "+path)
		})
		if err != nil {
			return err
		}
		fmt.Printf("Deleted configuration file %s\n", path)
		return nil
	},
}

// removeConfigFile deletes path once confirm accepts the passphrase stored in
// the file itself.
func removeConfigFile(path string, confirmDelete func(confirm.Gate) error) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if cfg, err := config.ValidateYAMLContent(content); err == nil {
		if err := confirmDelete(confirm.NewGate(cfg.Gate.Passphrase)); err != nil {
			return err
		}
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete config %s: %w", path, err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configDeleteCmd)

	configDeleteCmd.Flags().StringVar(&configDeletePassphrase, "passphrase", "", "Confirmation passphrase (prompted when omitted)")
}
