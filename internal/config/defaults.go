package config

import (
	"runtime"

	"github.com/jokarl/taxrules/internal/pathfilter"
)

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Version: 1,
		RuleFiles: &RuleFilesConfig{
			Include: append([]string(nil), pathfilter.DefaultInclude...),
			Exclude: []string{},
		},
		Output: &OutputConfig{
			Format: "text",
			Color:  "auto",
		},
		Policy: &PolicyConfig{
			Unmatched:   "warn",
			Concurrency: runtime.GOMAXPROCS(0),
		},
		Store: &StoreConfig{
			Path: "taxrules.db",
		},
		Plugins: &PluginsConfig{},
		Log: &LogConfig{
			Level: "warn",
		},
		Protocols: []*ProtocolConfig{},
	}
}

// DefaultConfigHCL returns the starter configuration written by `taxrules init`
func DefaultConfigHCL() string {
	return `# taxrules configuration
version = 1

# HCL files declaring additional protocol rule tables
rule_files {
  include = ["rules/**/*.hcl"]
  exclude = []
}

output {
  # text, json, compact or csv
  format = "text"
  # auto, always or never
  color = "auto"
}

policy {
  # what to do with events no rule matches: ignore, warn or fail
  unmatched = "warn"
  # concurrency = 4
}

store {
  path = "taxrules.db"
}

plugins {
  # directory holding taxrules-accountant-* binaries
  dir = ""
}

log {
  # trace, debug, info, warn or error
  level = "warn"
  # file = "taxrules.log"
}

# protocol "cowswap" {
#   enabled = false
# }
`
}
