package plugin

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jokarl/taxrules/internal/rules"
)

// Loaded is a running plugin and the rules it reported
type Loaded struct {
	Info Info

	// Accountant is a snapshot of the plugin's protocol, description and
	// rules, taken once at load. Tables never change after registration,
	// so the plugin is not asked again.
	Accountant *rules.StaticAccountant

	Client *goplugin.Client
}

// Close terminates the plugin process
func (p *Loaded) Close() {
	if p.Client != nil {
		p.Client.Kill()
	}
}

// Loader starts plugin binaries
type Loader struct {
	logger hclog.Logger
}

// NewLoader creates a loader logging through logger
func NewLoader(logger hclog.Logger) *Loader {
	return &Loader{logger: logger.Named("loader")}
}

// Load starts the plugin, verifies its checksum when its directory pins
// one, and snapshots its accountant.
func (l *Loader) Load(info Info) (*Loaded, error) {
	if _, err := os.Stat(info.Path); err != nil {
		return nil, fmt.Errorf("plugin binary not found: %s", info.Path)
	}

	sums, err := LoadChecksums(info.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ChecksumFile, err)
	}
	if sums != nil {
		if err := sums.Verify(info.Path); err != nil {
			return nil, err
		}
		l.logger.Debug("checksum verified", "plugin", info.Name)
	}

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig:  Handshake,
		Plugins:          PluginMap,
		Cmd:              exec.Command(info.Path),
		Logger:           l.logger.Named(info.Name),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to connect to plugin %s: %w", info.Name, err)
	}

	raw, err := rpcClient.Dispense(PluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("failed to dispense plugin %s: %w", info.Name, err)
	}

	acct, ok := raw.(rules.Accountant)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("plugin %s does not implement an accountant", info.Name)
	}

	snap, err := Snapshot(acct)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("plugin %s: %w", info.Name, err)
	}

	return &Loaded{Info: info, Accountant: snap, Client: client}, nil
}

// LoadAll loads every plugin. Plugins that fail are skipped and their
// errors accumulated.
func (l *Loader) LoadAll(plugins []Info) ([]*Loaded, []error) {
	var (
		loaded []*Loaded
		errs   []error
	)
	for _, info := range plugins {
		p, err := l.Load(info)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		loaded = append(loaded, p)
	}
	return loaded, errs
}

// Snapshot copies an accountant's protocol, description and rules
func Snapshot(a rules.Accountant) (*rules.StaticAccountant, error) {
	protocol := a.Protocol()
	if protocol == "" {
		return nil, fmt.Errorf("accountant reported no protocol")
	}
	rs, err := a.EventSettings()
	if err != nil {
		return nil, fmt.Errorf("event settings: %w", err)
	}
	return &rules.StaticAccountant{
		ProtocolID: protocol,
		Rules:      rs,
		Summary:    rules.Description(a),
	}, nil
}

// CloseAll closes all loaded plugins
func CloseAll(plugins []*Loaded) {
	for _, p := range plugins {
		p.Close()
	}
}
