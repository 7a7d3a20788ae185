package calendar

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"

	"github.com/jokarl/taxrules/internal/store"
)

const (
	account0 = "0xc37b40ABdB939635068d3c5f13E7faF686F03B65"
	account1 = "0x2B888954421b424C5D3D9Ce9bB67c9bD47537d12"
	genesis  = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

	// far enough in the future to include every entry
	futureTS = 3479391239
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "taxrules.db"))
	if err != nil {
		t.Fatalf("store.Open error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	known := map[string]bool{"ens": true, "curve": true, "cowswap": true}
	r, err := NewRepository(context.Background(), s.DB(), func(c string) bool { return known[c] })
	if err != nil {
		t.Fatalf("NewRepository error: %v", err)
	}
	return r
}

func checksum(addr string) string {
	return common.HexToAddress(addr).Hex()
}

func TestCalendarOperations(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	ensID, err := r.Add(ctx, Entry{
		Timestamp:    1869737344,
		Name:         "ENS renewal",
		Description:  "Renew yabir.eth",
		Counterparty: "ens",
		Address:      account0,
		Blockchain:   Ethereum,
	})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if ensID != 1 {
		t.Errorf("first identifier = %d, want 1", ensID)
	}

	crv := Entry{
		Name:         "CRV unlock",
		Description:  "Unlock date for CRV",
		Counterparty: "curve",
		Address:      account1,
		Blockchain:   Ethereum,
		Timestamp:    1851422011,
	}
	crvID, err := r.Add(ctx, crv)
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if crvID != 2 {
		t.Errorf("second identifier = %d, want 2", crvID)
	}
	crv.Identifier = crvID
	crv.Address = checksum(account1)

	ens := Entry{
		Identifier:   ensID,
		Timestamp:    1977652411,
		Name:         "ENS renewal",
		Description:  "Renew yabir.eth extended",
		Counterparty: "ens",
		Address:      account0,
		Blockchain:   Ethereum,
	}
	if err := r.Update(ctx, ens); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	ens.Address = checksum(account0)

	got, err := r.Get(ctx, ensID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if diff := cmp.Diff(ens, got); diff != "" {
		t.Errorf("updated entry mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name   string
		filter Filter
		want   []Entry
	}{
		{"everything", Filter{ToTimestamp: futureTS}, []Entry{ens, crv}},
		{"timestamp range", Filter{FromTimestamp: 1977652400, ToTimestamp: 1977652511}, []Entry{ens}},
		{"account", Filter{ToTimestamp: futureTS, Accounts: []Account{{Address: account0, Blockchain: Ethereum}}}, []Entry{ens}},
		{"counterparty", Filter{ToTimestamp: futureTS, Counterparty: "curve"}, []Entry{crv}},
		{"name substring", Filter{ToTimestamp: futureTS, Name: "renewal"}, []Entry{ens}},
		{"name case-insensitive", Filter{ToTimestamp: futureTS, Name: "Unlock"}, []Entry{crv}},
		{"no filter", Filter{}, []Entry{ens, crv}},
		{"like wildcards are literal", Filter{Name: "%"}, []Entry{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query error: %v", err)
			}
			want := &Result{Entries: tt.want, EntriesFound: len(tt.want), EntriesTotal: 2, EntriesLimit: -1}
			if diff := cmp.Diff(want, result); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if err := r.Delete(ctx, ensID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	result, err := r.Query(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Entry{crv}, result.Entries); diff != "" {
		t.Errorf("entries after delete mismatch (-want +got):\n%s", diff)
	}

	// the same address on another chain, filtered by address only
	if _, err := r.Add(ctx, Entry{
		Name:         "gnosis event",
		Description:  crv.Description,
		Counterparty: crv.Counterparty,
		Address:      account1,
		Blockchain:   Gnosis,
		Timestamp:    crv.Timestamp,
	}); err != nil {
		t.Fatal(err)
	}
	result, err = r.Query(ctx, Filter{ToTimestamp: futureTS, Accounts: []Account{{Address: strings.ToLower(account1)}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(result.Entries))
	}
	if result.Entries[0].Blockchain != Ethereum || result.Entries[1].Blockchain != Gnosis {
		t.Errorf("blockchains = %s, %s", result.Entries[0].Blockchain, result.Entries[1].Blockchain)
	}
}

func TestCalendarValidation(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	// no address at all is fine
	if _, err := r.Add(ctx, Entry{Timestamp: 1869737344, Name: "ENS renewal", Description: "Renew yabir.eth", Counterparty: "ens"}); err != nil {
		t.Fatalf("Add without address error: %v", err)
	}

	tests := []struct {
		name    string
		entry   Entry
		wantErr string
	}{
		{
			name:    "unknown counterparty",
			entry:   Entry{Timestamp: 1869737344, Name: "ENS renewal", Counterparty: "BAD COUNTERPARTY"},
			wantErr: "Unknown counterparty",
		},
		{
			name:    "address without blockchain",
			entry:   Entry{Timestamp: 1869737344, Name: "ENS renewal", Address: account0},
			wantErr: "If any of address or blockchain is provided both need to be provided",
		},
		{
			name:    "blockchain without address",
			entry:   Entry{Timestamp: 1869737344, Name: "ENS renewal", Blockchain: Ethereum},
			wantErr: "If any of address or blockchain is provided both need to be provided",
		},
		{
			name:    "evm address on bitcoin",
			entry:   Entry{Timestamp: 1869737344, Name: "ENS renewal", Address: account0, Blockchain: Bitcoin},
			wantErr: "is not a bitcoin address",
		},
		{
			name:    "bitcoin address on ethereum",
			entry:   Entry{Timestamp: 1869737344, Name: "x", Address: genesis, Blockchain: Ethereum},
			wantErr: "is not a valid eth address",
		},
		{
			name:    "unsupported chain",
			entry:   Entry{Timestamp: 1869737344, Name: "x", Address: account0, Blockchain: "solana"},
			wantErr: "unsupported blockchain",
		},
		{
			name:    "missing name",
			entry:   Entry{Timestamp: 1869737344},
			wantErr: "Name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Add(ctx, tt.entry)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}

	result, err := r.Query(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if result.EntriesTotal != 1 {
		t.Errorf("rejected entries were stored: total = %d", result.EntriesTotal)
	}
}

func TestBitcoinEntry(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	entryID, err := r.Add(ctx, Entry{Name: "halving", Address: genesis, Blockchain: Bitcoin, Timestamp: 1713571200})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	got, err := r.Get(ctx, entryID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Address != genesis || got.Blockchain != Bitcoin || got.Counterparty != "" {
		t.Errorf("entry = %+v", got)
	}
}

func TestMissingEntries(t *testing.T) {
	r := newTestRepository(t)
	ctx := context.Background()

	if err := r.Update(ctx, Entry{Identifier: 42, Name: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if err := r.Delete(ctx, 42); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
	if _, err := r.Get(ctx, 42); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get: expected ErrNotFound, got %v", err)
	}
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress(Base, strings.ToLower(account0))
	if err != nil {
		t.Fatalf("NormalizeAddress error: %v", err)
	}
	if got != checksum(account0) {
		t.Errorf("NormalizeAddress = %s, want checksummed %s", got, checksum(account0))
	}
	if _, err := NormalizeAddress(Bitcoin, "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"); err != nil {
		t.Errorf("segwit address rejected: %v", err)
	}
}
