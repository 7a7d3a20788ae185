// Package cowswap registers the accountant of the CoW Protocol settlement
// contract. Orders are placed by depositing the sell asset and either
// settle as a swap or come back as a cancellation or refund.
package cowswap

import (
	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/types"
)

// Protocol is the counterparty identifier emitted by the cowswap decoder
const Protocol = "cowswap"

func init() {
	rules.MustRegister(New())
}

// Accountant describes how cowswap events are accounted for
type Accountant struct{}

// New returns the cowswap accountant
func New() *Accountant {
	return &Accountant{}
}

// Protocol implements rules.Accountant
func (a *Accountant) Protocol() string {
	return Protocol
}

// Description implements rules.Describer
func (a *Accountant) Description() string {
	return "CoW Protocol swaps and limit orders"
}

// EventSettings implements rules.Accountant
func (a *Accountant) EventSettings() ([]types.Rule, error) {
	return []types.Rule{
		types.NewRule(types.EventTypeTrade, types.EventSubtypeSpend, types.Settings{
			Taxable:           true,
			CountCostBasisPnL: true,
			Method:            types.MethodSpend,
			Treatment:         types.TreatmentSwap,
		}),
		// the sell asset leaves the wallet when the order is placed
		types.NewRule(types.EventTypeDeposit, types.EventSubtypePlaceOrder, types.Settings{
			Method: types.MethodSpend,
		}),
		types.NewRule(types.EventTypeWithdrawal, types.EventSubtypeCancelOrder, types.Settings{
			Method: types.MethodAcquisition,
		}),
		types.NewRule(types.EventTypeWithdrawal, types.EventSubtypeRefund, types.Settings{
			Method: types.MethodAcquisition,
		}),
	}, nil
}
