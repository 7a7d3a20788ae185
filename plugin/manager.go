package plugin

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/jokarl/taxrules/internal/rules"
)

// Manager owns the plugins of one run
type Manager struct {
	loader  *Loader
	plugins []*Loaded
	logger  hclog.Logger
	mu      sync.RWMutex
}

// NewManager creates a plugin manager
func NewManager(logger hclog.Logger) *Manager {
	logger = logger.Named("plugins")
	return &Manager{
		loader: NewLoader(logger),
		logger: logger,
	}
}

// DiscoverAndLoad discovers plugins and loads them. It returns the number
// loaded and the errors of the plugins that could not be.
func (m *Manager) DiscoverAndLoad(configDir string) (int, []error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	discovered := Discover(configDir)
	if len(discovered) == 0 {
		return 0, nil
	}
	m.logger.Debug("discovered plugins", "count", len(discovered))

	loaded, errs := m.loader.LoadAll(discovered)
	m.plugins = append(m.plugins, loaded...)
	return len(loaded), errs
}

// Register adds every loaded plugin's accountant to reg
func (m *Manager) Register(reg *rules.Registry) []error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, p := range m.plugins {
		if err := reg.Register(p.Accountant); err != nil {
			errs = append(errs, fmt.Errorf("plugin %s: %w", p.Info.Name, err))
			continue
		}
		m.logger.Debug("registered plugin", "plugin", p.Info.Name,
			"protocol", p.Accountant.ProtocolID, "rules", len(p.Accountant.Rules))
	}
	return errs
}

// Summary describes a loaded plugin
type Summary struct {
	Name      string
	Path      string
	Protocol  string
	RuleCount int
}

// Loaded returns summaries of the loaded plugins
func (m *Manager) Loaded() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Summary, 0, len(m.plugins))
	for _, p := range m.plugins {
		out = append(out, Summary{
			Name:      p.Info.Name,
			Path:      p.Info.Path,
			Protocol:  p.Accountant.ProtocolID,
			RuleCount: len(p.Accountant.Rules),
		})
	}
	return out
}

// Close terminates all loaded plugins
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	CloseAll(m.plugins)
	m.plugins = nil
}

// PluginCount returns the number of loaded plugins
func (m *Manager) PluginCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.plugins)
}
