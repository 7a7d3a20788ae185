package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jokarl/taxrules/internal/calendar"
	"github.com/jokarl/taxrules/internal/config"
	"github.com/jokarl/taxrules/internal/logging"
	"github.com/jokarl/taxrules/internal/pathfilter"
	"github.com/jokarl/taxrules/internal/protocols"
	"github.com/jokarl/taxrules/internal/rulefile"
	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/store"
	"github.com/jokarl/taxrules/internal/types"
	"github.com/jokarl/taxrules/plugin"
)

// app is the state shared by the commands of one invocation
type app struct {
	cfg       *config.Config
	logger    hclog.Logger
	logCloser io.Closer

	reg     *rules.Registry
	plugins *plugin.Manager
	store   *store.Store
}

var current *app

func setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipSetup] == "true" {
		return nil
	}

	if err := config.LoadDotEnv(""); err != nil {
		return err
	}
	cfg, err := config.Load(configFlag)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", "path", cfg.ConfigPath())

	current = &app{cfg: cfg, logger: logger, logCloser: closer}
	return nil
}

func teardown() {
	if current == nil {
		return
	}
	current.close()
	current = nil
}

func (a *app) close() {
	if a.plugins != nil {
		a.plugins.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", "error", err)
		}
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}

// baseDir is the directory rule file patterns are relative to
func (a *app) baseDir() string {
	if p := a.cfg.ConfigPath(); p != "" {
		return filepath.Dir(p)
	}
	return "."
}

// registry returns the built-in accountants plus rule files and plugins.
// Registration errors are fatal; plugins that fail to start are skipped.
func (a *app) registry() (*rules.Registry, error) {
	if a.reg != nil {
		return a.reg, nil
	}

	reg := rules.DefaultRegistry.Clone()

	filter, err := pathfilter.New(a.cfg.RuleFiles.Include, a.cfg.RuleFiles.Exclude)
	if err != nil {
		return nil, err
	}
	files, err := rulefile.LoadDir(a.baseDir(), filter)
	if err != nil {
		return nil, err
	}
	if err := rulefile.Register(reg, files, a.logger.Named("rulefile")); err != nil {
		return nil, err
	}

	a.plugins = plugin.NewManager(a.logger)
	loaded, errs := a.plugins.DiscoverAndLoad(a.cfg.Plugins.Dir)
	for _, err := range errs {
		a.logger.Warn("plugin not loaded", "error", err)
	}
	if errs := a.plugins.Register(reg); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	a.logger.Debug("registry ready", "protocols", len(reg.Protocols()),
		"rule_files", len(files), "plugins", loaded)
	a.reg = reg
	return reg, nil
}

func (a *app) engine(reg *rules.Registry, policy types.UnmatchedPolicy) *rules.Engine {
	e := rules.NewEngine(reg)
	e.SetPolicy(policy)
	if a.cfg.Policy.Concurrency > 0 {
		e.SetConcurrency(a.cfg.Policy.Concurrency)
	}
	e.SetLogger(a.logger)
	for _, p := range a.cfg.DisabledProtocols() {
		e.DisableProtocol(p)
	}
	return e
}

func (a *app) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	st, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.logger.Debug("store opened", "path", a.cfg.Store.Path)
	a.store = st
	return st, nil
}

// calendar opens the calendar repository. Counterparties are checked
// against the full registry, so rule files and plugins count.
func (a *app) calendar(cmd *cobra.Command) (*calendar.Repository, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	st, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return calendar.NewRepository(cmd.Context(), st.DB(), func(name string) bool {
		return protocols.IsCounterparty(reg, name)
	})
}
