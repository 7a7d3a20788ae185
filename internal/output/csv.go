package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/jokarl/taxrules/internal/types"
)

// CSVHeader is the first row written by CSVRenderer
var CSVHeader = []string{
	"identifier", "timestamp", "event_type", "event_subtype", "counterparty",
	"asset", "amount", "matched", "reason", "taxable",
	"count_entire_amount_spend", "count_cost_basis_pnl", "method", "accounting_treatment",
}

// CSVRenderer writes one row per resolution. Settings columns are empty
// for unmatched events.
type CSVRenderer struct{}

// Render writes the resolve result as CSV
func (r *CSVRenderer) Render(w io.Writer, result *types.ResolveResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, res := range result.Resolutions {
		if err := cw.Write(csvRow(res)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(res *types.Resolution) []string {
	ev := res.Event
	row := []string{
		ev.Identifier,
		strconv.FormatInt(ev.Timestamp, 10),
		ev.Type.String(),
		ev.Subtype.String(),
		ev.Counterparty,
		ev.Asset,
		ev.Amount.String(),
		strconv.FormatBool(res.Matched),
		string(res.Reason),
	}
	if !res.Matched {
		return append(row, "", "", "", "", "")
	}
	s := res.Settings
	treatment := ""
	if s.Treatment != types.TreatmentNone {
		treatment = s.Treatment.String()
	}
	return append(row,
		strconv.FormatBool(s.Taxable),
		strconv.FormatBool(s.CountEntireAmountSpend),
		strconv.FormatBool(s.CountCostBasisPnL),
		s.Method.String(),
		treatment,
	)
}
