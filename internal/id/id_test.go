package id

import (
	"sort"
	"testing"
	"time"
)

func TestNewIsSortable(t *testing.T) {
	ids := make([]string, 1000)
	for i := range ids {
		ids[i] = New()
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("ids generated in sequence should sort in generation order")
	}

	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
		if !Valid(id) {
			t.Fatalf("generated id %s is not valid", id)
		}
	}
}

func TestTime(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	got, err := Time(NewAt(at))
	if err != nil {
		t.Fatalf("Time error: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("Time() = %s, want %s", got, at)
	}

	if _, err := Time("not-a-ulid"); err == nil {
		t.Error("expected error for an invalid id")
	}
	if Valid("") {
		t.Error("empty string is not a valid id")
	}
}
