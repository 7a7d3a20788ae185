package plugin

import (
	"errors"
	"net"
	"net/rpc"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/types"
)

func testRules() []types.Rule {
	return []types.Rule{
		types.NewRule(types.EventTypeTrade, types.EventSubtypeSpend, types.Settings{
			Taxable:           true,
			CountCostBasisPnL: true,
			Method:            types.MethodSpend,
			Treatment:         types.TreatmentSwap,
		}),
		types.NewRule(types.EventTypeTrade, types.EventSubtypeReceive, types.Settings{
			Method: types.MethodAcquisition,
		}),
	}
}

type brokenAccountant struct{}

func (brokenAccountant) Protocol() string { return "broken" }

func (brokenAccountant) EventSettings() ([]types.Rule, error) {
	return nil, errors.New("settings unavailable")
}

// dial serves impl over an in-memory net/rpc connection and returns the
// host side of the plugin.
func dial(t *testing.T, impl rules.Accountant) *AccountantRPC {
	t.Helper()

	server := rpc.NewServer()
	p := &AccountantPlugin{Impl: impl}
	srv, err := p.Server(nil)
	if err != nil {
		t.Fatalf("Server() error = %v", err)
	}
	if err := server.RegisterName("Plugin", srv); err != nil {
		t.Fatalf("RegisterName() error = %v", err)
	}

	hostConn, pluginConn := net.Pipe()
	go server.ServeConn(pluginConn)

	client := rpc.NewClient(hostConn)
	t.Cleanup(func() { client.Close() })

	raw, err := (&AccountantPlugin{}).Client(nil, client)
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	return raw.(*AccountantRPC)
}

func TestAccountantRPC_RoundTrip(t *testing.T) {
	impl := &rules.StaticAccountant{
		ProtocolID: "example",
		Rules:      testRules(),
		Summary:    "example protocol",
	}
	acct := dial(t, impl)

	if got := acct.Protocol(); got != "example" {
		t.Errorf("Protocol() = %q, want %q", got, "example")
	}
	if got := acct.Description(); got != "example protocol" {
		t.Errorf("Description() = %q, want %q", got, "example protocol")
	}

	got, err := acct.EventSettings()
	if err != nil {
		t.Fatalf("EventSettings() error = %v", err)
	}
	if diff := cmp.Diff(testRules(), got); diff != "" {
		t.Errorf("EventSettings() mismatch (-want +got):\n%s", diff)
	}
}

func TestAccountantRPC_SettingsError(t *testing.T) {
	acct := dial(t, brokenAccountant{})

	if _, err := acct.EventSettings(); err == nil {
		t.Fatal("expected error from EventSettings")
	}
	// no Describer on the plugin side
	if got := acct.Description(); got != "" {
		t.Errorf("Description() = %q, want empty", got)
	}
}

func TestSnapshot(t *testing.T) {
	acct := dial(t, &rules.StaticAccountant{
		ProtocolID: "example",
		Rules:      testRules(),
		Summary:    "example protocol",
	})

	snap, err := Snapshot(acct)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	want := &rules.StaticAccountant{
		ProtocolID: "example",
		Rules:      testRules(),
		Summary:    "example protocol",
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}

	reg := rules.NewRegistry()
	if err := reg.Register(snap); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
}

func TestSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name string
		acct rules.Accountant
	}{
		{"no protocol", &rules.StaticAccountant{Rules: testRules()}},
		{"settings error", brokenAccountant{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Snapshot(tt.acct); err == nil {
				t.Error("expected error")
			}
		})
	}
}
