package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envOverrides are the settings that can be changed from the environment
type envOverrides struct {
	LogLevel  string `env:"TAXRULES_LOG_LEVEL"`
	LogFile   string `env:"TAXRULES_LOG_FILE"`
	StorePath string `env:"TAXRULES_STORE_PATH"`
	PluginDir string `env:"TAXRULES_PLUGIN_DIR"`
	Unmatched string `env:"TAXRULES_UNMATCHED"`
}

// LoadDotEnv loads variables from a .env file if one exists. Variables
// already set in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with the TAXRULES_* environment variables that are set
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.Log.File = o.LogFile
	}
	if o.StorePath != "" {
		cfg.Store.Path = o.StorePath
	}
	if o.PluginDir != "" {
		cfg.Plugins.Dir = o.PluginDir
	}
	if o.Unmatched != "" {
		cfg.Policy.Unmatched = o.Unmatched
	}
	return nil
}
