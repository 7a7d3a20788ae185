// Package plugin discovers, verifies and loads external accountant plugins.
//
// A plugin is a binary named taxrules-accountant-<name> that calls Serve
// with its rules.Accountant. The host talks to it over net/rpc using
// hashicorp/go-plugin.
package plugin

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// PluginPrefix is the naming convention for accountant plugins
	PluginPrefix = "taxrules-accountant-"

	// PluginDirEnv is the environment variable for the plugin directory
	PluginDirEnv = "TAXRULES_PLUGIN_DIR"

	// LocalPluginDir is the plugin directory relative to the working directory
	LocalPluginDir = ".taxrules.d/plugins"

	// HomePluginDir is the plugin directory relative to the home directory
	HomePluginDir = ".taxrules.d/plugins"
)

// Info describes a discovered plugin binary
type Info struct {
	// Name is the plugin name without prefix (e.g., "curve")
	Name string
	// Path is the full path to the plugin binary
	Path string
	// Dir is the directory the plugin was found in
	Dir string
}

// Discover finds plugins. The first directory containing a name wins.
// Priority: configDir > TAXRULES_PLUGIN_DIR > ./.taxrules.d/plugins > ~/.taxrules.d/plugins
func Discover(configDir string) []Info {
	var plugins []Info
	seen := make(map[string]bool)

	for _, dir := range SearchPaths(configDir) {
		found, err := discoverInDir(dir)
		if err != nil {
			// missing or unreadable directories are skipped
			continue
		}
		for _, p := range found {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			plugins = append(plugins, p)
		}
	}
	return plugins
}

// SearchPaths returns the directories searched for plugins in priority order
func SearchPaths(configDir string) []string {
	var paths []string
	if configDir != "" {
		paths = append(paths, configDir)
	}
	if dir := os.Getenv(PluginDirEnv); dir != "" {
		paths = append(paths, dir)
	}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, LocalPluginDir))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, HomePluginDir))
	}
	return paths
}

func discoverInDir(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var plugins []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), PluginPrefix) {
			continue
		}
		name := stripExecutableExtension(strings.TrimPrefix(entry.Name(), PluginPrefix))
		if name == "" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if !isExecutable(path) {
			continue
		}
		plugins = append(plugins, Info{Name: name, Path: path, Dir: dir})
	}
	return plugins, nil
}

func stripExecutableExtension(name string) string {
	if runtime.GOOS == "windows" {
		name = strings.TrimSuffix(name, ".exe")
	}
	return name
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return strings.HasSuffix(strings.ToLower(path), ".exe")
	}
	mode := info.Mode()
	return mode.IsRegular() && mode.Perm()&0111 != 0
}
