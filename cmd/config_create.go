package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCreatePassphrase string

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

Without --passphrase the template keeps the placeholder "change-me"; edit it before
sharing the machine. If a configuration file is already in use, no new file is written.`,
	Example: `
  # Create default config at $HOME/.pointage.yaml
  pointage config create

  # Create config with the confirmation passphrase already set
  pointage config create --passphrase "harvest-2025"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig(configCreatePassphrase)
	},
}

func saveDefaultConfig(passphrase string) error {
	configPath, err := configFilePath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := writeConfigTemplate(configPath, passphrase)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("New config file created at: %s\n", configPath)
		return nil
	}

	fmt.Printf("Config file already exists at: %s\n", configPath)
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)

	configCreateCmd.Flags().StringVar(&configCreatePassphrase, "passphrase", "", "Confirmation passphrase written into the new file")
}
