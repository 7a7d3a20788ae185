package output

import (
	"fmt"
	"io"

	"github.com/jokarl/taxrules/internal/types"
)

// CompactRenderer renders one line per event, for logs and grep
type CompactRenderer struct{}

// Render writes the resolve result in compact format.
// Format: identifier: matched|unmatched type.subtype.protocol details
func (r *CompactRenderer) Render(w io.Writer, result *types.ResolveResult) error {
	for _, res := range result.Resolutions {
		ev := res.Event
		if !res.Matched {
			if _, err := fmt.Fprintf(w, "%s: unmatched %s reason=%s\n", ev.Identifier, ev.Key(), res.Reason); err != nil {
				return err
			}
			continue
		}
		s := res.Settings
		if _, err := fmt.Fprintf(w, "%s: matched %s taxable=%t entire_amount=%t cost_basis_pnl=%t method=%s treatment=%s\n",
			ev.Identifier, ev.Key(), s.Taxable, s.CountEntireAmountSpend, s.CountCostBasisPnL, s.Method, s.Treatment); err != nil {
			return err
		}
	}
	return nil
}
