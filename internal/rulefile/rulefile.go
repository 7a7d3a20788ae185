// Package rulefile loads protocol rule tables authored in HCL.
//
// A rule file declares one protocol and its rules:
//
//	protocol    = "curve"
//	description = "Curve pools"
//
//	rule {
//	  event_type           = type.trade
//	  event_subtype        = subtype.spend
//	  taxable              = true
//	  count_cost_basis_pnl = true
//	  method               = method.spend
//	  accounting_treatment = treatment.swap
//	}
//
// The type, subtype, method and treatment namespaces expose every declared
// enum value; plain strings are accepted as well.
package rulefile

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/types"
)

// File is a parsed rule file. It satisfies rules.Accountant.
type File struct {
	// Path is the file the rules were read from
	Path string

	ProtocolID string
	Summary    string
	Rules      []types.Rule
}

// Protocol implements rules.Accountant
func (f *File) Protocol() string {
	return f.ProtocolID
}

// EventSettings implements rules.Accountant
func (f *File) EventSettings() ([]types.Rule, error) {
	return f.Rules, nil
}

// Description implements rules.Describer
func (f *File) Description() string {
	return f.Summary
}

var fileSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "protocol", Required: true},
		{Name: "description"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "rule"},
	},
}

type ruleBlock struct {
	EventType              string  `hcl:"event_type,attr"`
	EventSubtype           string  `hcl:"event_subtype,attr"`
	Taxable                bool    `hcl:"taxable,attr"`
	CountEntireAmountSpend bool    `hcl:"count_entire_amount_spend,optional"`
	CountCostBasisPnL      bool    `hcl:"count_cost_basis_pnl,optional"`
	Method                 string  `hcl:"method,attr"`
	Treatment              *string `hcl:"accounting_treatment,optional"`
}

// ParseFile reads and parses a rule file
func ParseFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	return Parse(src, path)
}

// Parse parses rule file source. filename is used in diagnostics and as the
// Source of a ConfigurationError.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}

	content, diags := file.Body.Content(fileSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	ctx := EvalContext()
	f := &File{Path: filename}

	diags = gohcl.DecodeExpression(content.Attributes["protocol"].Expr, ctx, &f.ProtocolID)
	if attr, ok := content.Attributes["description"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, ctx, &f.Summary)...)
	}
	if diags.HasErrors() {
		return nil, diags
	}

	for _, block := range content.Blocks {
		var rb ruleBlock
		if diags := gohcl.DecodeBody(block.Body, ctx, &rb); diags.HasErrors() {
			return nil, diags
		}
		r, err := rb.rule()
		if err != nil {
			return nil, hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Invalid rule",
				Detail:   err.Error(),
				Subject:  block.DefRange.Ptr(),
			}}
		}
		f.Rules = append(f.Rules, r)
	}

	// duplicate pairs are reported here with the file name instead of at
	// registration
	if _, err := rules.BuildTable(f.ProtocolID, f.Rules); err != nil {
		return nil, withSource(err, filename)
	}
	return f, nil
}

func (rb ruleBlock) rule() (types.Rule, error) {
	et, err := types.ParseEventType(rb.EventType)
	if err != nil {
		return types.Rule{}, err
	}
	st, err := types.ParseEventSubtype(rb.EventSubtype)
	if err != nil {
		return types.Rule{}, err
	}
	m, err := types.ParseMethod(rb.Method)
	if err != nil {
		return types.Rule{}, err
	}
	var tr types.Treatment
	if rb.Treatment != nil {
		if tr, err = types.ParseTreatment(*rb.Treatment); err != nil {
			return types.Rule{}, err
		}
	}
	return types.NewRule(et, st, types.Settings{
		Taxable:                rb.Taxable,
		CountEntireAmountSpend: rb.CountEntireAmountSpend,
		CountCostBasisPnL:      rb.CountCostBasisPnL,
		Method:                 m,
		Treatment:              tr,
	}), nil
}

// EvalContext exposes the enum namespaces to rule expressions
func EvalContext() *hcl.EvalContext {
	typeNames := make(map[string]cty.Value)
	for _, t := range types.EventTypes() {
		typeNames[t.String()] = cty.StringVal(t.String())
	}
	subtypeNames := make(map[string]cty.Value)
	for _, s := range types.EventSubtypes() {
		subtypeNames[s.String()] = cty.StringVal(s.String())
	}
	methodNames := make(map[string]cty.Value)
	for _, m := range types.Methods() {
		methodNames[m.String()] = cty.StringVal(m.String())
	}
	treatmentNames := make(map[string]cty.Value)
	for _, t := range types.Treatments() {
		treatmentNames[t.String()] = cty.StringVal(t.String())
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"type":      cty.ObjectVal(typeNames),
			"subtype":   cty.ObjectVal(subtypeNames),
			"method":    cty.ObjectVal(methodNames),
			"treatment": cty.ObjectVal(treatmentNames),
		},
	}
}

func withSource(err error, source string) error {
	var cerr *rules.ConfigurationError
	if errors.As(err, &cerr) {
		cerr.Source = source
		return cerr
	}
	return fmt.Errorf("%s: %w", source, err)
}
