// Package protocols links the built-in protocol accountants into the
// default registry and lists the counterparties events may name.
package protocols

import (
	"sort"

	"github.com/jokarl/taxrules/internal/rules"

	// built-in accountants
	_ "github.com/jokarl/taxrules/internal/protocols/cowswap"
)

// informational counterparties appear on events but carry no accounting rules
var informational = []string{"ens", "curve"}

// Informational returns the counterparties that never have a table
func Informational() []string {
	out := make([]string, len(informational))
	copy(out, informational)
	return out
}

// Counterparties returns every counterparty known to r, sorted: the
// registered protocols plus the informational ones.
func Counterparties(r *rules.Registry) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range append(r.Protocols(), informational...) {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsCounterparty reports whether name is known to r
func IsCounterparty(r *rules.Registry, name string) bool {
	for _, c := range Counterparties(r) {
		if c == name {
			return true
		}
	}
	return false
}
