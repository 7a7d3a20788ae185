package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <protocol> <event_type> <event_subtype>",
	Short: "Show the settings for one event category",
	Long: `Look up the accounting settings a protocol assigns to an event type and
subtype. Exits with code 2 when no rule covers the category.

Example:
  taxrules lookup cowswap trade spend`,
	Args: cobra.ExactArgs(3),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	a := current
	protocol := args[0]

	eventType, err := types.ParseEventType(args[1])
	if err != nil {
		return withSuggestion(err, args[1], eventTypeNames())
	}
	subtype, err := types.ParseEventSubtype(args[2])
	if err != nil {
		return withSuggestion(err, args[2], eventSubtypeNames())
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}

	key := types.NewEventKey(eventType, subtype, protocol)
	out := cmd.OutOrStdout()

	settings, reason := reg.Lookup(key)
	if reason == types.ReasonNone && !a.cfg.IsProtocolEnabled(protocol) {
		reason = types.ReasonProtocolDisabled
	}
	if reason != types.ReasonNone {
		fmt.Fprintf(out, "no rule for %s (%s)\n", key, reason)
		if reason == types.ReasonUnknownProtocol {
			if s, ok := reg.SuggestProtocol(protocol); ok {
				fmt.Fprintf(out, "did you mean %q?\n", s)
			}
		}
		return &ExitError{Code: 2}
	}

	printSettings(out, key, settings)
	return nil
}

func printSettings(w io.Writer, key types.EventKey, s types.Settings) {
	fmt.Fprintf(w, "%s %s/%s\n", key.Protocol, key.Type, key.Subtype)
	fmt.Fprintf(w, "  taxable:                   %t\n", s.Taxable)
	fmt.Fprintf(w, "  count_entire_amount_spend: %t\n", s.CountEntireAmountSpend)
	fmt.Fprintf(w, "  count_cost_basis_pnl:      %t\n", s.CountCostBasisPnL)
	fmt.Fprintf(w, "  method:                    %s\n", s.Method)
	fmt.Fprintf(w, "  accounting_treatment:      %s\n", s.Treatment)
}

func withSuggestion(err error, input string, candidates []string) error {
	if s, ok := rules.Suggest(input, candidates); ok {
		return fmt.Errorf("%w (did you mean %q?)", err, s)
	}
	return err
}

func eventTypeNames() []string {
	var names []string
	for _, t := range types.EventTypes() {
		names = append(names, t.String())
	}
	return names
}

func eventSubtypeNames() []string {
	var names []string
	for _, s := range types.EventSubtypes() {
		names = append(names, s.String())
	}
	return names
}
