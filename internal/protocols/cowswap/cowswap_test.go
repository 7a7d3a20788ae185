package cowswap

import (
	"testing"

	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/types"
)

func TestRegistered(t *testing.T) {
	if !rules.DefaultRegistry.Has(Protocol) {
		t.Fatal("cowswap is not registered in the default registry")
	}
	table, ok := rules.DefaultRegistry.Table(Protocol)
	if !ok {
		t.Fatal("no table for cowswap")
	}
	if table.Len() != 4 {
		t.Errorf("Len() = %d, want 4", table.Len())
	}
}

func TestEventSettings(t *testing.T) {
	table, err := rules.BuildAccountantTable(New())
	if err != nil {
		t.Fatalf("BuildAccountantTable error: %v", err)
	}

	tests := []struct {
		name    string
		et      types.EventType
		st      types.EventSubtype
		want    types.Settings
		matched bool
	}{
		{
			name: "swap",
			et:   types.EventTypeTrade, st: types.EventSubtypeSpend,
			want: types.Settings{
				Taxable:           true,
				CountCostBasisPnL: true,
				Method:            types.MethodSpend,
				Treatment:         types.TreatmentSwap,
			},
			matched: true,
		},
		{
			name: "place order",
			et:   types.EventTypeDeposit, st: types.EventSubtypePlaceOrder,
			want:    types.Settings{Method: types.MethodSpend},
			matched: true,
		},
		{
			name: "cancel order",
			et:   types.EventTypeWithdrawal, st: types.EventSubtypeCancelOrder,
			want:    types.Settings{Method: types.MethodAcquisition},
			matched: true,
		},
		{
			name: "refund",
			et:   types.EventTypeWithdrawal, st: types.EventSubtypeRefund,
			want:    types.Settings{Method: types.MethodAcquisition},
			matched: true,
		},
		{
			name: "fee",
			et:   types.EventTypeSpend, st: types.EventSubtypeFee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Lookup(tt.et, tt.st)
			if ok != tt.matched {
				t.Fatalf("matched = %v, want %v", ok, tt.matched)
			}
			if got != tt.want {
				t.Errorf("settings = %+v, want %+v", got, tt.want)
			}
		})
	}
}
