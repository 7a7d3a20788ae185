package types

import (
	"fmt"
)

// Method is the side of a balance change an event represents
type Method int

const (
	MethodUnknown Method = iota
	// MethodSpend removes an asset from the holder
	MethodSpend
	// MethodAcquisition adds an asset to the holder
	MethodAcquisition
)

// String returns the serialized name of the method
func (m Method) String() string {
	switch m {
	case MethodSpend:
		return "spend"
	case MethodAcquisition:
		return "acquisition"
	default:
		return "unknown"
	}
}

// Valid reports whether m is a declared method
func (m Method) Valid() bool {
	return m == MethodSpend || m == MethodAcquisition
}

// MarshalText implements encoding.TextMarshaler
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Method) UnmarshalText(data []byte) error {
	parsed, err := ParseMethod(string(data))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMethod parses a string into a Method
func ParseMethod(s string) (Method, error) {
	switch normalizeName(s) {
	case "spend":
		return MethodSpend, nil
	case "acquisition":
		return MethodAcquisition, nil
	default:
		return MethodUnknown, fmt.Errorf("unknown accounting method: %s", s)
	}
}

// Methods returns all valid methods
func Methods() []Method {
	return []Method{MethodSpend, MethodAcquisition}
}

// Treatment is a special-case combination rule applied to an event.
// The zero value means no special treatment.
type Treatment int

const (
	TreatmentNone Treatment = iota
	// TreatmentSwap pairs the spend leg with the acquisition leg that follows it
	TreatmentSwap
)

// String returns the serialized name of the treatment
func (t Treatment) String() string {
	switch t {
	case TreatmentNone:
		return "none"
	case TreatmentSwap:
		return "swap"
	default:
		return "unknown"
	}
}

// Valid reports whether t is a declared treatment
func (t Treatment) Valid() bool {
	return t == TreatmentNone || t == TreatmentSwap
}

// MarshalText implements encoding.TextMarshaler
func (t Treatment) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Treatment) UnmarshalText(data []byte) error {
	parsed, err := ParseTreatment(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTreatment parses a string into a Treatment. An empty string is TreatmentNone.
func ParseTreatment(s string) (Treatment, error) {
	switch normalizeName(s) {
	case "", "none":
		return TreatmentNone, nil
	case "swap":
		return TreatmentSwap, nil
	default:
		return TreatmentNone, fmt.Errorf("unknown accounting treatment: %s", s)
	}
}

// Treatments returns all valid treatments
func Treatments() []Treatment {
	return []Treatment{TreatmentNone, TreatmentSwap}
}

// EventKey identifies an event category emitted by one protocol.
// Two keys are equal iff all three fields are equal; Protocol is compared
// case-sensitively.
type EventKey struct {
	Type     EventType    `json:"event_type" yaml:"event_type"`
	Subtype  EventSubtype `json:"event_subtype" yaml:"event_subtype"`
	Protocol string       `json:"protocol" yaml:"protocol"`
}

// NewEventKey creates an EventKey
func NewEventKey(eventType EventType, subtype EventSubtype, protocol string) EventKey {
	return EventKey{Type: eventType, Subtype: subtype, Protocol: protocol}
}

// String renders the key as type.subtype.protocol
func (k EventKey) String() string {
	return fmt.Sprintf("%s.%s.%s", k.Type, k.Subtype, k.Protocol)
}

// Settings describes how an event category affects taxable computations
type Settings struct {
	// Taxable is true when the event contributes to taxable gain or loss
	Taxable bool `json:"taxable" yaml:"taxable"`

	// CountEntireAmountSpend counts the full amount as an outflow instead of
	// only the computed cost basis
	CountEntireAmountSpend bool `json:"count_entire_amount_spend" yaml:"count_entire_amount_spend"`

	// CountCostBasisPnL computes profit/loss against historical cost basis
	CountCostBasisPnL bool `json:"count_cost_basis_pnl" yaml:"count_cost_basis_pnl"`

	// Method is the side of the balance change
	Method Method `json:"method" yaml:"method"`

	// Treatment is an optional combination rule
	Treatment Treatment `json:"accounting_treatment,omitempty" yaml:"accounting_treatment,omitempty"`
}

// Rule is one authored (type, subtype) -> settings entry of a protocol
type Rule struct {
	Type     EventType    `json:"event_type" yaml:"event_type"`
	Subtype  EventSubtype `json:"event_subtype" yaml:"event_subtype"`
	Settings Settings     `json:"settings" yaml:"settings"`
}

// NewRule creates a Rule
func NewRule(eventType EventType, subtype EventSubtype, settings Settings) Rule {
	return Rule{Type: eventType, Subtype: subtype, Settings: settings}
}
