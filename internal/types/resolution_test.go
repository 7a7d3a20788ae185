package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testEvent(id string, et EventType, st EventSubtype) Event {
	return Event{
		Identifier:   id,
		Timestamp:    1700000000,
		Type:         et,
		Subtype:      st,
		Counterparty: "cowswap",
		Asset:        "ETH",
		Amount:       decimal.RequireFromString("1.5"),
	}
}

func TestEventKey(t *testing.T) {
	e := testEvent("1", EventTypeTrade, EventSubtypeSpend)
	want := NewEventKey(EventTypeTrade, EventSubtypeSpend, "cowswap")
	if e.Key() != want {
		t.Errorf("Key() = %v, want %v", e.Key(), want)
	}
	if got := e.Time().Unix(); got != e.Timestamp {
		t.Errorf("Time().Unix() = %d, want %d", got, e.Timestamp)
	}
}

func TestResolveResultCompute(t *testing.T) {
	swap := Settings{Taxable: true, CountCostBasisPnL: true, Method: MethodSpend, Treatment: TreatmentSwap}
	plain := Settings{Method: MethodSpend}

	build := func(policy UnmatchedPolicy) *ResolveResult {
		r := NewResolveResult("events.json", policy)
		r.AddResolution(NewMatched(testEvent("1", EventTypeTrade, EventSubtypeSpend), swap))
		r.AddResolution(NewMatched(testEvent("2", EventTypeDeposit, EventSubtypePlaceOrder), plain))
		r.AddResolution(NewUnmatched(testEvent("3", EventTypeStaking, EventSubtypeReward), ReasonNoRule))
		r.Compute()
		return r
	}

	tests := []struct {
		policy UnmatchedPolicy
		want   string
	}{
		{PolicyIgnore, "PASS"},
		{PolicyWarn, "PASS"},
		{PolicyFail, "FAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			r := build(tt.policy)
			if r.Result != tt.want {
				t.Errorf("Result = %s, want %s", r.Result, tt.want)
			}
			want := Summary{Matched: 2, Unmatched: 1, Taxable: 1, Swaps: 1, Total: 3}
			if r.Summary != want {
				t.Errorf("Summary = %+v, want %+v", r.Summary, want)
			}
		})
	}
}

func TestResolveResultFailPolicyAllMatched(t *testing.T) {
	r := NewResolveResult("events.json", PolicyFail)
	r.AddResolution(NewMatched(testEvent("1", EventTypeTrade, EventSubtypeSpend), Settings{Method: MethodSpend}))
	r.Compute()

	if r.Result != "PASS" {
		t.Errorf("Result = %s, want PASS", r.Result)
	}
	if len(r.Unmatched()) != 0 {
		t.Errorf("Unmatched() = %v, want empty", r.Unmatched())
	}
}

func TestNewMatchedCopiesSettings(t *testing.T) {
	s := Settings{Taxable: true, Method: MethodSpend}
	res := NewMatched(testEvent("1", EventTypeTrade, EventSubtypeSpend), s)
	s.Taxable = false

	if !res.Settings.Taxable {
		t.Error("resolution settings changed after the source value was modified")
	}
}
