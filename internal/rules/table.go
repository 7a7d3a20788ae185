package rules

import (
	"github.com/jokarl/taxrules/internal/types"
)

// Table maps the event categories of one protocol to their settings.
// A Table is immutable once built and safe for concurrent reads.
type Table struct {
	protocol string
	entries  map[types.EventKey]types.Settings
	order    []types.EventKey
}

// BuildTable creates a Table with one entry per rule, keyed by
// (type, subtype, protocol). A duplicate (type, subtype) pair, an invalid
// enum value or an empty protocol is a *ConfigurationError.
func BuildTable(protocol string, rules []types.Rule) (*Table, error) {
	if protocol == "" {
		return nil, &ConfigurationError{Reason: "empty protocol identifier"}
	}

	t := &Table{
		protocol: protocol,
		entries:  make(map[types.EventKey]types.Settings, len(rules)),
		order:    make([]types.EventKey, 0, len(rules)),
	}

	for _, r := range rules {
		key := types.NewEventKey(r.Type, r.Subtype, protocol)
		if err := validateRule(r); err != "" {
			return nil, &ConfigurationError{Protocol: protocol, Key: key, Reason: err}
		}
		if _, exists := t.entries[key]; exists {
			return nil, &ConfigurationError{Protocol: protocol, Key: key, Reason: "duplicate rule"}
		}
		t.entries[key] = r.Settings
		t.order = append(t.order, key)
	}

	return t, nil
}

// MustBuildTable is like BuildTable but panics on error.
// It is meant for tables authored in Go and built during package init.
func MustBuildTable(protocol string, rules []types.Rule) *Table {
	t, err := BuildTable(protocol, rules)
	if err != nil {
		panic(err)
	}
	return t
}

func validateRule(r types.Rule) string {
	switch {
	case !r.Type.Valid():
		return "invalid event type"
	case !r.Subtype.Valid():
		return "invalid event subtype"
	case !r.Settings.Method.Valid():
		return "invalid accounting method"
	case !r.Settings.Treatment.Valid():
		return "invalid accounting treatment"
	}
	return ""
}

// Protocol returns the protocol the table was built for
func (t *Table) Protocol() string {
	return t.protocol
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the settings for an event category of the table's protocol.
// The second result is false when no rule exists; that is not an error.
func (t *Table) Lookup(eventType types.EventType, subtype types.EventSubtype) (types.Settings, bool) {
	return t.LookupKey(types.NewEventKey(eventType, subtype, t.protocol))
}

// LookupKey returns the settings for a fully composed key. Keys of other
// protocols never match.
func (t *Table) LookupKey(key types.EventKey) (types.Settings, bool) {
	s, ok := t.entries[key]
	return s, ok
}

// Keys returns the table keys in authored order
func (t *Table) Keys() []types.EventKey {
	out := make([]types.EventKey, len(t.order))
	copy(out, t.order)
	return out
}

// Rules returns the table entries as rules in authored order
func (t *Table) Rules() []types.Rule {
	out := make([]types.Rule, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, types.NewRule(k.Type, k.Subtype, t.entries[k]))
	}
	return out
}

// Equal reports whether both tables have the same protocol, key set and settings
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.protocol != other.protocol || len(t.entries) != len(other.entries) {
		return false
	}
	for k, s := range t.entries {
		if o, ok := other.entries[k]; !ok || o != s {
			return false
		}
	}
	return true
}

// Lookup is the function form of (*Table).Lookup
func Lookup(t *Table, eventType types.EventType, subtype types.EventSubtype) (types.Settings, bool) {
	return t.Lookup(eventType, subtype)
}
