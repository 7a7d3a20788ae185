package rulefile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-hclog"

	"github.com/jokarl/taxrules/internal/pathfilter"
	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/types"
)

const curveHCL = `
protocol    = "curve"
description = "Curve pools"

rule {
  event_type           = type.trade
  event_subtype        = subtype.spend
  taxable              = true
  count_cost_basis_pnl = true
  method               = method.spend
  accounting_treatment = treatment.swap
}

rule {
  event_type    = "deposit"
  event_subtype = "deposit_asset"
  taxable       = false
  method        = "spend"
}
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(curveHCL), "curve.hcl")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if f.Protocol() != "curve" {
		t.Errorf("Protocol() = %q, want curve", f.Protocol())
	}
	if f.Description() != "Curve pools" {
		t.Errorf("Description() = %q", f.Description())
	}

	want := []types.Rule{
		types.NewRule(types.EventTypeTrade, types.EventSubtypeSpend, types.Settings{
			Taxable:           true,
			CountCostBasisPnL: true,
			Method:            types.MethodSpend,
			Treatment:         types.TreatmentSwap,
		}),
		types.NewRule(types.EventTypeDeposit, types.EventSubtypeDepositAsset, types.Settings{
			Method: types.MethodSpend,
		}),
	}
	if diff := cmp.Diff(want, f.Rules); diff != "" {
		t.Errorf("Rules mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax error",
			src:     `protocol = `,
			wantErr: "bad.hcl",
		},
		{
			name:    "missing protocol",
			src:     `rule {}`,
			wantErr: "protocol",
		},
		{
			name: "unknown namespace member",
			src: `protocol = "p"
rule {
  event_type    = type.swapping
  event_subtype = subtype.spend
  taxable       = true
  method        = method.spend
}`,
			wantErr: "Unsupported attribute",
		},
		{
			name: "unknown subtype string",
			src: `protocol = "p"
rule {
  event_type    = "trade"
  event_subtype = "sell"
  taxable       = true
  method        = "spend"
}`,
			wantErr: "unknown event subtype: sell",
		},
		{
			name: "missing method",
			src: `protocol = "p"
rule {
  event_type    = type.trade
  event_subtype = subtype.spend
  taxable       = true
}`,
			wantErr: "method",
		},
		{
			name: "unknown treatment",
			src: `protocol = "p"
rule {
  event_type           = type.trade
  event_subtype        = subtype.spend
  taxable              = true
  method               = method.spend
  accounting_treatment = "bridge"
}`,
			wantErr: "unknown accounting treatment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParseDuplicateRule(t *testing.T) {
	src := `protocol = "p"
rule {
  event_type    = type.trade
  event_subtype = subtype.spend
  taxable       = true
  method        = method.spend
}
rule {
  event_type    = type.trade
  event_subtype = subtype.spend
  taxable       = false
  method        = method.acquisition
}`

	_, err := Parse([]byte(src), "rules/p.hcl")
	if !errors.Is(err, rules.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	var cerr *rules.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigurationError, got %T", err)
	}
	if cerr.Source != "rules/p.hcl" {
		t.Errorf("Source = %q, want rules/p.hcl", cerr.Source)
	}
	if cerr.Key.Type != types.EventTypeTrade || cerr.Key.Subtype != types.EventSubtypeSpend {
		t.Errorf("Key = %v", cerr.Key)
	}
}

func TestEvalContextNamespaces(t *testing.T) {
	ctx := EvalContext()
	for _, ns := range []string{"type", "subtype", "method", "treatment"} {
		v, ok := ctx.Variables[ns]
		if !ok {
			t.Errorf("namespace %s missing", ns)
			continue
		}
		if !v.Type().IsObjectType() {
			t.Errorf("namespace %s is %s, want object", ns, v.Type().FriendlyName())
		}
	}
	if got := len(ctx.Variables["subtype"].Type().AttributeTypes()); got != len(types.EventSubtypes()) {
		t.Errorf("subtype namespace has %d names, want %d", got, len(types.EventSubtypes()))
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDirAndRegister(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules/curve.hcl", curveHCL)
	writeFile(t, dir, "rules/drafts/broken.hcl", `protocol = `)
	writeFile(t, dir, "rules/notes.txt", "not a rule file")

	filter, err := pathfilter.New(pathfilter.DefaultInclude, []string{"rules/drafts/**"})
	if err != nil {
		t.Fatal(err)
	}

	files, err := LoadDir(dir, filter)
	if err != nil {
		t.Fatalf("LoadDir error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if !filepath.IsAbs(files[0].Path) {
		t.Errorf("Path %q is not absolute", files[0].Path)
	}

	reg := rules.NewRegistry()
	if err := Register(reg, files, hclog.NewNullLogger()); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	s, reason := reg.Lookup(types.NewEventKey(types.EventTypeTrade, types.EventSubtypeSpend, "curve"))
	if reason != types.ReasonNone || s.Treatment != types.TreatmentSwap {
		t.Errorf("lookup = %+v, %q", s, reason)
	}

	// the same protocol from a second source is rejected with its path
	err = Register(reg, files, hclog.NewNullLogger())
	var cerr *rules.ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
	if cerr.Source != files[0].Path {
		t.Errorf("Source = %q, want %q", cerr.Source, files[0].Path)
	}
}

func TestLoadDirParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules/broken.hcl", `protocol = `)

	if _, err := LoadDir(dir, nil); err == nil {
		t.Error("expected parse error")
	}
}
