package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jokarl/taxrules/plugin"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect accountant plugins",
	Long:  `Commands for inspecting accountant plugins.`,
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered plugins",
	Long: `List all discovered plugins and the protocol each one registers.

Plugins are discovered from the following locations (in priority order):
1. plugins { dir } setting in .taxrules.hcl
2. TAXRULES_PLUGIN_DIR environment variable
3. ./.taxrules.d/plugins/ (local)
4. ~/.taxrules.d/plugins/ (home)

Plugins must be named 'taxrules-accountant-{name}' to be discovered. A
checksums.txt file in a plugin directory pins the sha256 of its binaries.`,
	Args: cobra.NoArgs,
	RunE: runPluginsList,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.AddCommand(pluginsListCmd)
}

func runPluginsList(cmd *cobra.Command, args []string) error {
	a := current
	out := cmd.OutOrStdout()

	discovered := plugin.Discover(a.cfg.Plugins.Dir)
	if len(discovered) == 0 {
		fmt.Fprintln(out, "No plugins discovered.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Plugins are searched in these locations (in priority order):")
		for i, dir := range plugin.SearchPaths(a.cfg.Plugins.Dir) {
			fmt.Fprintf(out, "  %d. %s\n", i+1, dir)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Plugin binaries must be named '%s{name}'.\n", plugin.PluginPrefix)
		return nil
	}

	if _, err := a.registry(); err != nil {
		return err
	}
	loaded := make(map[string]plugin.Summary)
	for _, s := range a.plugins.Loaded() {
		loaded[s.Name] = s
	}

	okColor := color.New(color.FgGreen)
	failColor := color.New(color.FgRed)
	if !shouldUseColor(a.cfg.Output.Color, out) {
		okColor.DisableColor()
		failColor.DisableColor()
	}

	fmt.Fprintf(out, "Discovered %d plugin(s):\n\n", len(discovered))
	for _, p := range discovered {
		fmt.Fprintf(out, "  %s\n", p.Name)
		fmt.Fprintf(out, "    Path:     %s\n", p.Path)
		if s, ok := loaded[p.Name]; ok {
			fmt.Fprintf(out, "    Protocol: %s (%d rules)\n", s.Protocol, s.RuleCount)
			okColor.Fprintln(out, "    Status:   loaded")
		} else {
			failColor.Fprintln(out, "    Status:   failed to load (see warnings above)")
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Total: %d discovered, %d loaded\n", len(discovered), len(loaded))
	return nil
}
