package protocols

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/types"
)

func TestCounterparties(t *testing.T) {
	r := rules.NewRegistry()
	r.MustRegister(&rules.StaticAccountant{ProtocolID: "uniswap"})
	r.MustRegister(&rules.StaticAccountant{ProtocolID: "curve", Rules: []types.Rule{
		types.NewRule(types.EventTypeTrade, types.EventSubtypeSpend, types.Settings{Method: types.MethodSpend}),
	}})

	want := []string{"curve", "ens", "uniswap"}
	if diff := cmp.Diff(want, Counterparties(r)); diff != "" {
		t.Errorf("Counterparties() mismatch (-want +got):\n%s", diff)
	}
	if !IsCounterparty(r, "ens") || IsCounterparty(r, "balancer") {
		t.Error("IsCounterparty returned unexpected results")
	}
}

func TestDefaultRegistryHasBuiltins(t *testing.T) {
	if !IsCounterparty(rules.DefaultRegistry, "cowswap") {
		t.Error("built-in cowswap accountant is not linked")
	}
}
