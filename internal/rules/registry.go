package rules

import (
	"sync"

	"github.com/patrickmn/go-cache"

	"github.com/jokarl/taxrules/internal/types"
)

// Registry holds the accountants of all registered protocols together with
// their built tables.
type Registry struct {
	mu          sync.RWMutex
	accountants map[string]Accountant
	order       []string // preserve registration order
	tables      *cache.Cache
}

// NewRegistry creates a new empty Registry
func NewRegistry() *Registry {
	return &Registry{
		accountants: make(map[string]Accountant),
		order:       make([]string, 0),
		tables:      cache.New(cache.NoExpiration, 0),
	}
}

// Register builds the accountant's table and adds it to the registry.
// The table is built before anything is stored, so a *ConfigurationError
// leaves the registry unchanged. Registering a protocol twice is also a
// *ConfigurationError.
func (r *Registry) Register(a Accountant) error {
	table, err := BuildAccountantTable(a)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.Protocol()
	if _, exists := r.accountants[id]; exists {
		return &ConfigurationError{Protocol: id, Reason: "protocol already registered"}
	}
	if err := r.tables.Add(id, table, cache.NoExpiration); err != nil {
		return &ConfigurationError{Protocol: id, Reason: err.Error()}
	}
	r.accountants[id] = a
	r.order = append(r.order, id)
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(a Accountant) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Unregister removes a protocol and discards its table.
// It reports whether the protocol was registered.
func (r *Registry) Unregister(protocol string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accountants[protocol]; !exists {
		return false
	}
	delete(r.accountants, protocol)
	r.tables.Delete(protocol)
	for i, id := range r.order {
		if id == protocol {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the accountant of a protocol
func (r *Registry) Get(protocol string) (Accountant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accountants[protocol]
	return a, ok
}

// Has reports whether a protocol is registered
func (r *Registry) Has(protocol string) bool {
	_, ok := r.Get(protocol)
	return ok
}

// Table returns the table of a registered protocol
func (r *Registry) Table(protocol string) (*Table, bool) {
	if v, ok := r.tables.Get(protocol); ok {
		return v.(*Table), true
	}
	return nil, false
}

// Lookup resolves a composed key against the table of its protocol
func (r *Registry) Lookup(key types.EventKey) (types.Settings, types.UnmatchedReason) {
	table, ok := r.Table(key.Protocol)
	if !ok {
		return types.Settings{}, types.ReasonUnknownProtocol
	}
	s, ok := table.LookupKey(key)
	if !ok {
		return types.Settings{}, types.ReasonNoRule
	}
	return s, types.ReasonNone
}

// All returns all registered accountants in registration order
func (r *Registry) All() []Accountant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Accountant, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.accountants[id])
	}
	return result
}

// Protocols returns all protocol identifiers in registration order
func (r *Registry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.order))
	copy(result, r.order)
	return result
}

// Clone returns a new registry holding the same accountants and tables
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewRegistry()
	for _, id := range r.order {
		c.accountants[id] = r.accountants[id]
		c.order = append(c.order, id)
		if v, ok := r.tables.Get(id); ok {
			c.tables.Set(id, v, cache.NoExpiration)
		}
	}
	return c
}

// DefaultRegistry is the global registry of built-in protocols
var DefaultRegistry = NewRegistry()

// Register adds an accountant to the default registry
func Register(a Accountant) error {
	return DefaultRegistry.Register(a)
}

// MustRegister adds an accountant to the default registry and panics on error
func MustRegister(a Accountant) {
	DefaultRegistry.MustRegister(a)
}
