package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pointage/config"
)

const examplePassphrase = `passphrase: "change-me"`

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the configuration file in an editor.",
	Long: `Open the pointage configuration file in $VISUAL, $EDITOR or vi.

A missing file is first created from the example template. When the editor exits the
file is validated; if it no longer validates, the previous content is written back
and the command fails with the validation error.`,
	Example: `
  # Edit the active configuration
  pointage config edit

  # Edit with a one-off editor
  EDITOR=nano pointage config edit
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configFilePath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := writeConfigTemplate(path, "")
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Created example configuration at %s\n", path)
		}

		cfg, err := editConfigFile(path, func(path string) error {
			editor := editorCommand(os.Getenv, path)
			editor.Stdin = os.Stdin
			editor.Stdout = os.Stdout
			editor.Stderr = os.Stderr
			return editor.Run()
		})
		if err != nil {
			return err
		}

		fmt.Printf("Configuration saved: %s\n", path)
		printConfig(os.Stdout, cfg)
		return nil
	},
}

// configFilePath resolves the file config commands write to: --configFile,
// then the file loaded at startup, then $HOME/.pointage.yaml.
func configFilePath(flagValue, loaded string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	if strings.TrimSpace(loaded) != "" {
		return loaded, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".pointage.yaml"), nil
}

// configTemplate returns the example config, with passphrase in place of the
// placeholder when one is given.
func configTemplate(passphrase string) string {
	template := config.ExampleYAML()
	if passphrase == "" {
		return template
	}
	return strings.Replace(template, examplePassphrase, fmt.Sprintf("passphrase: %q", passphrase), 1)
}

// writeConfigTemplate creates path from the example config and reports false
// when a file is already there. The file holds the passphrase, hence 0600.
func writeConfigTemplate(path, passphrase string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate(passphrase)), 0o600); err != nil {
		return false, fmt.Errorf("write config %s: %w", path, err)
	}
	return true, nil
}

// editConfigFile lets edit change path and validates the result. Content that
// does not validate is replaced by what the file held before.
func editConfigFile(path string, edit func(path string) error) (*config.Config, error) {
	previous, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := edit(path); err != nil {
		return nil, fmt.Errorf("run editor: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edited config %s: %w", path, err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err == nil {
		return cfg, nil
	}

	if restoreErr := os.WriteFile(path, previous, 0o600); restoreErr != nil {
		return nil, fmt.Errorf("edited config %s is invalid (%v) and the previous content could not be restored: %w", path, err, restoreErr)
	}
	return nil, fmt.Errorf("edited config is invalid, %s restored: %w", path, err)
}

// editorCommand runs $VISUAL, else $EDITOR, else vi on path. Editor values may
// carry arguments, e.g. "code --wait".
func editorCommand(getenv func(string) string, path string) *exec.Cmd {
	value := strings.TrimSpace(getenv("VISUAL"))
	if value == "" {
		value = strings.TrimSpace(getenv("EDITOR"))
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		fields = []string{"vi"}
	}
	return exec.Command(fields[0], append(fields[1:], path)...)
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
