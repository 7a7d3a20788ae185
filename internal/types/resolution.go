package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is a history event already classified by its decoder
type Event struct {
	// Identifier is the caller's id for the event
	Identifier string `json:"identifier" yaml:"identifier"`

	// Timestamp is seconds since the unix epoch
	Timestamp int64 `json:"timestamp" yaml:"timestamp"`

	Type    EventType    `json:"event_type" yaml:"event_type"`
	Subtype EventSubtype `json:"event_subtype" yaml:"event_subtype"`

	// Counterparty is the protocol that emitted the event (e.g., "cowswap")
	Counterparty string `json:"counterparty" yaml:"counterparty"`

	Asset string `json:"asset,omitempty" yaml:"asset,omitempty"`

	// Amount is carried through unmodified
	Amount decimal.Decimal `json:"amount" yaml:"amount"`

	LocationLabel string `json:"location_label,omitempty" yaml:"location_label,omitempty"`
	Notes         string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Key returns the EventKey used to look the event up
func (e Event) Key() EventKey {
	return NewEventKey(e.Type, e.Subtype, e.Counterparty)
}

// Time returns the event timestamp as a UTC time
func (e Event) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// UnmatchedReason explains why an event has no settings
type UnmatchedReason string

const (
	// ReasonNone is used for matched events
	ReasonNone UnmatchedReason = ""
	// ReasonNoRule means the protocol has no rule for the event category
	ReasonNoRule UnmatchedReason = "no-rule"
	// ReasonUnknownProtocol means no accountant is registered for the counterparty
	ReasonUnknownProtocol UnmatchedReason = "unknown-protocol"
	// ReasonProtocolDisabled means the protocol is registered but disabled in config
	ReasonProtocolDisabled UnmatchedReason = "protocol-disabled"
)

// Resolution is the outcome of resolving a single event
type Resolution struct {
	Event Event `json:"event"`

	// Settings is nil when the event is unmatched
	Settings *Settings `json:"settings,omitempty"`

	Matched bool `json:"matched"`

	// Reason is set for unmatched events
	Reason UnmatchedReason `json:"reason,omitempty"`
}

// NewMatched creates a resolution for an event with settings
func NewMatched(e Event, s Settings) *Resolution {
	return &Resolution{Event: e, Settings: &s, Matched: true}
}

// NewUnmatched creates a resolution for an event without settings
func NewUnmatched(e Event, reason UnmatchedReason) *Resolution {
	return &Resolution{Event: e, Reason: reason}
}

// ResolveResult represents the result of resolving a batch of events
type ResolveResult struct {
	// ID identifies a saved report; empty until persisted
	ID string `json:"id,omitempty"`

	// Source is where the events were read from
	Source string `json:"source"`

	Resolutions []*Resolution `json:"resolutions"`

	// Summary contains counts by outcome
	Summary Summary `json:"summary"`

	// Result is PASS or FAIL based on the policy
	Result string `json:"result"`

	// Policy is the unmatched policy used for the result
	Policy UnmatchedPolicy `json:"policy"`
}

// Summary contains counts of resolutions by outcome
type Summary struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Taxable   int `json:"taxable"`
	Swaps     int `json:"swaps"`
	Total     int `json:"total"`
}

// NewResolveResult creates a new ResolveResult
func NewResolveResult(source string, policy UnmatchedPolicy) *ResolveResult {
	return &ResolveResult{
		Source:      source,
		Resolutions: make([]*Resolution, 0),
		Policy:      policy,
	}
}

// AddResolution adds a resolution to the result
func (r *ResolveResult) AddResolution(res *Resolution) {
	r.Resolutions = append(r.Resolutions, res)
}

// Unmatched returns the unmatched resolutions in input order
func (r *ResolveResult) Unmatched() []*Resolution {
	var out []*Resolution
	for _, res := range r.Resolutions {
		if !res.Matched {
			out = append(out, res)
		}
	}
	return out
}

// Compute calculates the summary and result
func (r *ResolveResult) Compute() {
	r.Summary = Summary{}
	for _, res := range r.Resolutions {
		if !res.Matched {
			r.Summary.Unmatched++
			continue
		}
		r.Summary.Matched++
		if res.Settings.Taxable {
			r.Summary.Taxable++
		}
		if res.Settings.Treatment == TreatmentSwap {
			r.Summary.Swaps++
		}
	}
	r.Summary.Total = len(r.Resolutions)

	if r.Policy == PolicyFail && r.Summary.Unmatched > 0 {
		r.Result = "FAIL"
	} else {
		r.Result = "PASS"
	}
}
