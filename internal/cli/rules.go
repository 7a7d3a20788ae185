package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [protocol]",
	Short: "List protocols or a protocol's rules",
	Long: `Without arguments, list every registered protocol with its rule count.
With a protocol, print its rules in authored order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	a := current
	reg, err := a.registry()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		fmt.Fprintf(out, "%d protocol(s):\n\n", len(reg.Protocols()))
		for _, acct := range reg.All() {
			id := acct.Protocol()
			table, _ := reg.Table(id)
			fmt.Fprintf(out, "  %-16s %3d rule(s)", id, table.Len())
			if !a.cfg.IsProtocolEnabled(id) {
				fmt.Fprint(out, "  (disabled)")
			}
			if d := rules.Description(acct); d != "" {
				fmt.Fprintf(out, "  %s", d)
			}
			fmt.Fprintln(out)
		}
		return nil
	}

	protocol := args[0]
	table, ok := reg.Table(protocol)
	if !ok {
		msg := fmt.Sprintf("unknown protocol: %s", protocol)
		if s, ok := reg.SuggestProtocol(protocol); ok {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return errors.New(msg)
	}

	for _, r := range table.Rules() {
		printSettings(out, types.NewEventKey(r.Type, r.Subtype, protocol), r.Settings)
	}
	return nil
}
