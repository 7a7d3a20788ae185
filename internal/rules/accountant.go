package rules

import (
	"fmt"

	"github.com/jokarl/taxrules/internal/types"
)

// Accountant is implemented by every protocol integration. Built-in Go
// packages, rule files and plugins all register through this interface.
type Accountant interface {
	// Protocol returns the protocol identifier (e.g., "cowswap")
	Protocol() string

	// EventSettings returns the authored rules of the protocol
	EventSettings() ([]types.Rule, error)
}

// Describer is implemented by accountants that provide a description
type Describer interface {
	Description() string
}

// Description returns the accountant description, or an empty string
func Description(a Accountant) string {
	if d, ok := a.(Describer); ok {
		return d.Description()
	}
	return ""
}

// BuildAccountantTable builds the table of an accountant
func BuildAccountantTable(a Accountant) (*Table, error) {
	rules, err := a.EventSettings()
	if err != nil {
		return nil, fmt.Errorf("event settings for %s: %w", a.Protocol(), err)
	}
	return BuildTable(a.Protocol(), rules)
}

// StaticAccountant is an Accountant over a fixed rule list
type StaticAccountant struct {
	ProtocolID string
	Rules      []types.Rule
	Summary    string
}

// Protocol implements Accountant
func (a *StaticAccountant) Protocol() string {
	return a.ProtocolID
}

// EventSettings implements Accountant
func (a *StaticAccountant) EventSettings() ([]types.Rule, error) {
	return a.Rules, nil
}

// Description implements Describer
func (a *StaticAccountant) Description() string {
	return a.Summary
}
