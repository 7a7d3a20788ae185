package types

import (
	"fmt"
	"strings"
)

// EventType is the top-level classification of a history event
type EventType int

const (
	EventTypeUnknown EventType = iota
	EventTypeTrade
	EventTypeStaking
	EventTypeDeposit
	EventTypeWithdrawal
	EventTypeTransfer
	EventTypeSpend
	EventTypeReceive
	EventTypeAdjustment
	EventTypeInformational
	EventTypeMigrate
	EventTypeRenew
	EventTypeFail
)

var eventTypeNames = [...]string{
	EventTypeUnknown:       "unknown",
	EventTypeTrade:         "trade",
	EventTypeStaking:       "staking",
	EventTypeDeposit:       "deposit",
	EventTypeWithdrawal:    "withdrawal",
	EventTypeTransfer:      "transfer",
	EventTypeSpend:         "spend",
	EventTypeReceive:       "receive",
	EventTypeAdjustment:    "adjustment",
	EventTypeInformational: "informational",
	EventTypeMigrate:       "migrate",
	EventTypeRenew:         "renew",
	EventTypeFail:          "fail",
}

// String returns the serialized name of the event type
func (t EventType) String() string {
	if t.Valid() {
		return eventTypeNames[t]
	}
	return "unknown"
}

// Valid reports whether t is one of the declared event types
func (t EventType) Valid() bool {
	return t > EventTypeUnknown && int(t) < len(eventTypeNames)
}

// MarshalText implements encoding.TextMarshaler
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *EventType) UnmarshalText(data []byte) error {
	parsed, err := ParseEventType(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseEventType parses a string into an EventType
func ParseEventType(s string) (EventType, error) {
	if i := indexOf(eventTypeNames[:], s); i > 0 {
		return EventType(i), nil
	}
	return EventTypeUnknown, fmt.Errorf("unknown event type: %s", s)
}

// EventTypes returns all valid event types in declaration order
func EventTypes() []EventType {
	out := make([]EventType, 0, len(eventTypeNames)-1)
	for i := 1; i < len(eventTypeNames); i++ {
		out = append(out, EventType(i))
	}
	return out
}

// EventSubtype refines an EventType
type EventSubtype int

const (
	EventSubtypeUnknown EventSubtype = iota
	EventSubtypeNone
	EventSubtypeReward
	EventSubtypeDepositAsset
	EventSubtypeRemoveAsset
	EventSubtypeFee
	EventSubtypeSpend
	EventSubtypeReceive
	EventSubtypeApprove
	EventSubtypeDeploy
	EventSubtypeAirdrop
	EventSubtypeBridge
	EventSubtypeGovernance
	EventSubtypeGenerateDebt
	EventSubtypePaybackDebt
	EventSubtypeReturnWrapped
	EventSubtypeDonate
	EventSubtypeNFT
	EventSubtypePlaceOrder
	EventSubtypeLiquidate
	EventSubtypeInterest
	EventSubtypeCancelOrder
	EventSubtypeRefund
)

var eventSubtypeNames = [...]string{
	EventSubtypeUnknown:       "unknown",
	EventSubtypeNone:          "none",
	EventSubtypeReward:        "reward",
	EventSubtypeDepositAsset:  "deposit_asset",
	EventSubtypeRemoveAsset:   "remove_asset",
	EventSubtypeFee:           "fee",
	EventSubtypeSpend:         "spend",
	EventSubtypeReceive:       "receive",
	EventSubtypeApprove:       "approve",
	EventSubtypeDeploy:        "deploy",
	EventSubtypeAirdrop:       "airdrop",
	EventSubtypeBridge:        "bridge",
	EventSubtypeGovernance:    "governance",
	EventSubtypeGenerateDebt:  "generate_debt",
	EventSubtypePaybackDebt:   "payback_debt",
	EventSubtypeReturnWrapped: "return_wrapped",
	EventSubtypeDonate:        "donate",
	EventSubtypeNFT:           "nft",
	EventSubtypePlaceOrder:    "place_order",
	EventSubtypeLiquidate:     "liquidate",
	EventSubtypeInterest:      "interest",
	EventSubtypeCancelOrder:   "cancel_order",
	EventSubtypeRefund:        "refund",
}

// String returns the serialized name of the event subtype
func (s EventSubtype) String() string {
	if s.Valid() {
		return eventSubtypeNames[s]
	}
	return "unknown"
}

// Valid reports whether s is one of the declared event subtypes
func (s EventSubtype) Valid() bool {
	return s > EventSubtypeUnknown && int(s) < len(eventSubtypeNames)
}

// MarshalText implements encoding.TextMarshaler
func (s EventSubtype) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *EventSubtype) UnmarshalText(data []byte) error {
	parsed, err := ParseEventSubtype(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseEventSubtype parses a string into an EventSubtype
func ParseEventSubtype(s string) (EventSubtype, error) {
	if i := indexOf(eventSubtypeNames[:], s); i > 0 {
		return EventSubtype(i), nil
	}
	return EventSubtypeUnknown, fmt.Errorf("unknown event subtype: %s", s)
}

// EventSubtypes returns all valid event subtypes in declaration order
func EventSubtypes() []EventSubtype {
	out := make([]EventSubtype, 0, len(eventSubtypeNames)-1)
	for i := 1; i < len(eventSubtypeNames); i++ {
		out = append(out, EventSubtype(i))
	}
	return out
}

// normalizeName folds case and treats spaces and hyphens as underscores,
// so "Place Order", "place-order" and "PLACE_ORDER" all parse the same.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func indexOf(names []string, s string) int {
	n := normalizeName(s)
	for i, name := range names {
		if name == n {
			return i
		}
	}
	return -1
}
