package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pointage/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. The passphrase is masked.`,
	Example: `
  # Show active configuration
  pointage config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		}
		printConfig(os.Stdout, cfg)
	},
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "%s: %s\n", config.KeyStorageDBPath, cfg.Storage.DBPath)
	fmt.Fprintf(w, "%s: %s\n", config.KeyGatePassphrase, maskSecret(cfg.Gate.Passphrase))
	fmt.Fprintf(w, "%s: %d\n", config.KeyServerPort, cfg.Server.Port)
	fmt.Fprintf(w, "%s: %t\n", config.KeyImportSkipFirstRow, cfg.Import.SkipFirstRow)
	fmt.Fprintf(w, "%s: %s\n", config.KeyLogLevel, cfg.Log.Level)
}

func maskSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	return "******"
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
