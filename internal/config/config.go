// Package config loads linkmtime settings from flags, LINKMTIME_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ngicks/linkmtime"
	"github.com/ngicks/linkmtime/internal/logging"
	"github.com/spf13/viper"
)

const (
	appName  = "linkmtime"
	fileName = "config"
	fileType = "yaml"
)

// Keys
const (
	KeyMaxHops   = "max_hops"
	KeyTolerance = "tolerance"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
	KeyOutput    = "output"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

type Config struct {
	MaxHops   int           `mapstructure:"max_hops"`
	Tolerance time.Duration `mapstructure:"tolerance"`
	LogLevel  string        `mapstructure:"log_level"`
	LogFormat string        `mapstructure:"log_format"`
	Output    string        `mapstructure:"output"`
}

// Dir returns the directory searched for config.yaml when no file is given explicitly.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(dir, appName)
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyMaxHops, linkmtime.DefaultMaxHops)
	v.SetDefault(KeyTolerance, linkmtime.DefaultTolerance)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyOutput, OutputText)

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile, or config.yaml under searchDir if configFile is empty,
// and decodes the merged settings.
// A missing file under searchDir is not an error; a missing configFile is.
func Load(v *viper.Viper, configFile, searchDir string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType(fileType)
		v.AddConfigPath(searchDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MaxHops < 1 {
		return fmt.Errorf("%s must be positive, but is %d", KeyMaxHops, c.MaxHops)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%s must not be negative, but is %s", KeyTolerance, c.Tolerance)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s must be text or json, but is %q", KeyLogFormat, c.LogFormat)
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("%s must be one of text, json or yaml, but is %q", KeyOutput, c.Output)
	}
	return nil
}
