/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/spf13/viper"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"pointage/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pointage",
	Short: "Import, review, and export daily attendance (pointage) of seasonal workers.",
	Long: `
**********************************************
*                POINTAGE                    *
**********************************************

This CLI imports attendance sheets (Excel, CSV), stores one record per worker and day
in a local SQLite database, and exports raw, per-worker, or daily headcount (effectif)
spreadsheets. "pointage serve" exposes the same operations as a local JSON API.

Supported input formats:
- Excel: .xlsx, .xlsm, .xls
- CSV: .csv, .txt (comma, semicolon or tab separated)
`,
	Example: `
  # Create configuration file
  pointage config create

  # Import an attendance sheet (column names detected automatically)
  pointage import -i pointage_janvier.xlsx

  # Import a sheet with unrecognized headers using explicit column indices
  pointage import -i export.csv --map matricule=0,name=1,group=4,date=2,hours=3

  # Show statistics for the first half of January 2025
  pointage stats --year 2025 --month 1 --period QZ1

  # Export the daily headcount per group
  pointage export --mode effectif --from 2025-01-01 --to 2025-01-31

  # Delete a date range (asks for the configured passphrase)
  pointage delete --from 2025-01-01 --to 2025-01-15
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.pointage.yaml, then ./.pointage.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pointage" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pointage")
	}

	viper.SetEnvPrefix("pointage")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: pointage config create")
	}
}
