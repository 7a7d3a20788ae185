// Package config handles loading and validating taxrules configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/jokarl/taxrules/internal/types"
)

// FileName is the config file searched for in the working directory
const FileName = ".taxrules.hcl"

// Config represents the taxrules configuration
type Config struct {
	Version   int               `hcl:"version,attr"`
	RuleFiles *RuleFilesConfig  `hcl:"rule_files,block"`
	Output    *OutputConfig     `hcl:"output,block"`
	Policy    *PolicyConfig     `hcl:"policy,block"`
	Store     *StoreConfig      `hcl:"store,block"`
	Plugins   *PluginsConfig    `hcl:"plugins,block"`
	Log       *LogConfig        `hcl:"log,block"`
	Protocols []*ProtocolConfig `hcl:"protocol,block"`

	// Internal: path to the loaded config file (empty if using defaults)
	configPath string
}

// RuleFilesConfig selects the HCL rule files to load
type RuleFilesConfig struct {
	Include []string `hcl:"include,optional"`
	Exclude []string `hcl:"exclude,optional"`
}

// OutputConfig defines output settings
type OutputConfig struct {
	Format string `hcl:"format,optional"`
	Color  string `hcl:"color,optional"`
}

// PolicyConfig defines how resolution results are judged
type PolicyConfig struct {
	Unmatched   string `hcl:"unmatched,optional"`
	Concurrency int    `hcl:"concurrency,optional"`
}

// StoreConfig defines where reports and calendar entries are kept
type StoreConfig struct {
	Path string `hcl:"path,optional"`
}

// PluginsConfig defines plugin discovery settings
type PluginsConfig struct {
	Dir string `hcl:"dir,optional"`
}

// LogConfig defines logging settings
type LogConfig struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// ProtocolConfig defines per-protocol settings
type ProtocolConfig struct {
	Name    string `hcl:"name,label"`
	Enabled *bool  `hcl:"enabled,optional"`
}

// ConfigPath returns the path to the loaded config file, or empty if using defaults
func (c *Config) ConfigPath() string {
	return c.configPath
}

// GetProtocolConfig returns the configuration of a protocol, or nil
func (c *Config) GetProtocolConfig(protocol string) *ProtocolConfig {
	for _, pc := range c.Protocols {
		if pc.Name == protocol {
			return pc
		}
	}
	return nil
}

// IsProtocolEnabled returns whether a protocol is enabled. Protocols are
// enabled unless configured otherwise.
func (c *Config) IsProtocolEnabled(protocol string) bool {
	pc := c.GetProtocolConfig(protocol)
	if pc == nil || pc.Enabled == nil {
		return true
	}
	return *pc.Enabled
}

// DisabledProtocols returns the names of explicitly disabled protocols
func (c *Config) DisabledProtocols() []string {
	var out []string
	for _, pc := range c.Protocols {
		if pc.Enabled != nil && !*pc.Enabled {
			out = append(out, pc.Name)
		}
	}
	return out
}

// UnmatchedPolicy returns the parsed unmatched policy
func (c *Config) UnmatchedPolicy() types.UnmatchedPolicy {
	p, err := types.ParseUnmatchedPolicy(c.Policy.Unmatched)
	if err != nil {
		return types.PolicyWarn
	}
	return p
}

// Load loads configuration from the specified path or searches for it.
// Search order: configPath (if provided), .taxrules.hcl in cwd, defaults.
// Environment overrides are applied last.
func Load(configPath string) (*Config, error) {
	var path string

	if configPath != "" {
		path = configPath
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	} else {
		path = findConfigFile()
	}

	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		var err error
		if cfg, err = loadFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	p := filepath.Join(cwd, FileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// loadFromFile loads and parses a configuration file
func loadFromFile(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", formatDiagnostics(diags))
	}

	var config Config
	decodeDiags := gohcl.DecodeBody(file.Body, nil, &config)
	if decodeDiags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config: %s", formatDiagnostics(decodeDiags))
	}

	config.configPath = path
	applyDefaults(&config)

	return &config, nil
}

// formatDiagnostics formats HCL diagnostics into a readable error string
func formatDiagnostics(diags hcl.Diagnostics) string {
	var b strings.Builder
	for i, diag := range diags {
		if i > 0 {
			b.WriteString("; ")
		}
		if diag.Subject != nil {
			fmt.Fprintf(&b, "%s:%d: ", diag.Subject.Filename, diag.Subject.Start.Line)
		}
		b.WriteString(diag.Summary)
		if diag.Detail != "" {
			b.WriteString(": ")
			b.WriteString(diag.Detail)
		}
	}
	return b.String()
}

// applyDefaults fills in default values for missing optional config blocks
func applyDefaults(cfg *Config) {
	defaults := Default()

	if cfg.RuleFiles == nil {
		cfg.RuleFiles = defaults.RuleFiles
	} else if len(cfg.RuleFiles.Include) == 0 {
		cfg.RuleFiles.Include = defaults.RuleFiles.Include
	}

	if cfg.Output == nil {
		cfg.Output = defaults.Output
	} else {
		if cfg.Output.Format == "" {
			cfg.Output.Format = defaults.Output.Format
		}
		if cfg.Output.Color == "" {
			cfg.Output.Color = defaults.Output.Color
		}
	}

	if cfg.Policy == nil {
		cfg.Policy = defaults.Policy
	} else {
		if cfg.Policy.Unmatched == "" {
			cfg.Policy.Unmatched = defaults.Policy.Unmatched
		}
		if cfg.Policy.Concurrency == 0 {
			cfg.Policy.Concurrency = defaults.Policy.Concurrency
		}
	}

	if cfg.Store == nil {
		cfg.Store = defaults.Store
	} else if cfg.Store.Path == "" {
		cfg.Store.Path = defaults.Store.Path
	}

	if cfg.Plugins == nil {
		cfg.Plugins = defaults.Plugins
	}

	if cfg.Log == nil {
		cfg.Log = defaults.Log
	} else if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}
