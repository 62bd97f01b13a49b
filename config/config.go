package config

import (
	"bytes"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"strings"
)

const (
	KeyStorageDBPath      = "storage.db_path"
	KeyGatePassphrase     = "gate.passphrase"
	KeyServerPort         = "server.port"
	KeyImportSkipFirstRow = "import.skip_first_row"
	KeyLogLevel           = "log.level"
)

const (
	DefaultDBPath = "pointage.db"
	DefaultPort   = 8080
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Gate    GateConfig    `mapstructure:"gate"`
	Server  ServerConfig  `mapstructure:"server"`
	Import  ImportConfig  `mapstructure:"import"`
	Log     LogConfig     `mapstructure:"log"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path" validate:"required"`
}

// GateConfig holds the passphrase retyped before import and delete. It is a
// confirmation step, not authentication.
type GateConfig struct {
	Passphrase string `mapstructure:"passphrase" validate:"required"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

type ImportConfig struct {
	SkipFirstRow bool `mapstructure:"skip_first_row"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# pointage configuration
storage:
  db_path: "pointage.db"

# Retyped before imports and range deletes. This is a confirmation step,
# not a security control.
gate:
  passphrase: "change-me"

server:
  port: 8080

import:
  # Set when exports repeat the header row as the first data row.
  skip_first_row: false

log:
  level: "info"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyStorageDBPath, DefaultDBPath)
	v.SetDefault(KeyServerPort, DefaultPort)
	v.SetDefault(KeyImportSkipFirstRow, false)
	v.SetDefault(KeyLogLevel, "info")
}
