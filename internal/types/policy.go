package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnmatchedPolicy decides what happens to events no rule covers
type UnmatchedPolicy int

const (
	// PolicyIgnore passes unmatched events through silently
	PolicyIgnore UnmatchedPolicy = iota
	// PolicyWarn passes unmatched events through and logs them
	PolicyWarn
	// PolicyFail marks the result as failed when any event is unmatched
	PolicyFail
)

// String returns the string representation of the policy
func (p UnmatchedPolicy) String() string {
	switch p {
	case PolicyIgnore:
		return "ignore"
	case PolicyWarn:
		return "warn"
	case PolicyFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler
func (p UnmatchedPolicy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (p *UnmatchedPolicy) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseUnmatchedPolicy(str)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseUnmatchedPolicy parses a string into an UnmatchedPolicy
func ParseUnmatchedPolicy(s string) (UnmatchedPolicy, error) {
	switch strings.ToLower(s) {
	case "ignore":
		return PolicyIgnore, nil
	case "warn":
		return PolicyWarn, nil
	case "fail":
		return PolicyFail, nil
	default:
		return PolicyWarn, fmt.Errorf("unknown unmatched policy: %s", s)
	}
}
