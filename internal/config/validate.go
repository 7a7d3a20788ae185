package config

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/jokarl/taxrules/internal/types"
)

// ValidFormats contains the accepted output formats
var ValidFormats = map[string]bool{
	"text":    true,
	"json":    true,
	"compact": true,
	"csv":     true,
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (only version 1 is supported)", cfg.Version)
	}

	if cfg.RuleFiles != nil {
		for _, p := range append(append([]string{}, cfg.RuleFiles.Include...), cfg.RuleFiles.Exclude...) {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("invalid rule_files pattern: %s", p)
			}
		}
	}

	if cfg.Output != nil && cfg.Output.Format != "" && !ValidFormats[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s (must be 'text', 'json', 'compact', or 'csv')", cfg.Output.Format)
	}

	if cfg.Output != nil && cfg.Output.Color != "" {
		switch cfg.Output.Color {
		case "auto", "always", "never":
		default:
			return fmt.Errorf("invalid color mode: %s (must be 'auto', 'always', or 'never')", cfg.Output.Color)
		}
	}

	if cfg.Policy != nil {
		if cfg.Policy.Unmatched != "" {
			if _, err := types.ParseUnmatchedPolicy(cfg.Policy.Unmatched); err != nil {
				return fmt.Errorf("invalid unmatched policy: %s (must be 'ignore', 'warn', or 'fail')", cfg.Policy.Unmatched)
			}
		}
		if cfg.Policy.Concurrency < 0 {
			return fmt.Errorf("invalid concurrency: %d", cfg.Policy.Concurrency)
		}
	}

	if cfg.Log != nil && cfg.Log.Level != "" {
		if hclog.LevelFromString(cfg.Log.Level) == hclog.NoLevel {
			return fmt.Errorf("invalid log level: %s", cfg.Log.Level)
		}
	}

	seen := make(map[string]bool)
	for _, pc := range cfg.Protocols {
		if pc.Name == "" {
			return fmt.Errorf("protocol block requires a name")
		}
		if seen[pc.Name] {
			return fmt.Errorf("duplicate protocol block: %s", pc.Name)
		}
		seen[pc.Name] = true
	}

	return nil
}
