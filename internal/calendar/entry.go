// Package calendar stores reminder entries tied to protocol counterparties
// and accounts, such as an ENS renewal or a token unlock date.
package calendar

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
)

// Blockchain identifies the chain an entry's address lives on
type Blockchain string

const (
	Ethereum    Blockchain = "eth"
	Optimism    Blockchain = "optimism"
	PolygonPoS  Blockchain = "polygon_pos"
	ArbitrumOne Blockchain = "arbitrum_one"
	Base        Blockchain = "base"
	Gnosis      Blockchain = "gnosis"
	Scroll      Blockchain = "scroll"
	Bitcoin     Blockchain = "btc"
)

// Blockchains returns the supported chains
func Blockchains() []Blockchain {
	return []Blockchain{Ethereum, Optimism, PolygonPoS, ArbitrumOne, Base, Gnosis, Scroll, Bitcoin}
}

// ParseBlockchain parses a chain name
func ParseBlockchain(s string) (Blockchain, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, b := range Blockchains() {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unsupported blockchain: %s", s)
}

// IsEVM reports whether addresses on b are EVM addresses
func (b Blockchain) IsEVM() bool {
	return b != Bitcoin && b != ""
}

// NormalizeAddress validates addr for chain b and returns its canonical
// form: checksummed for EVM chains, unchanged for bitcoin.
func NormalizeAddress(b Blockchain, addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if b == Bitcoin {
		if _, err := btcutil.DecodeAddress(addr, &chaincfg.MainNetParams); err != nil {
			return "", fmt.Errorf("%s is not a bitcoin address", addr)
		}
		return addr, nil
	}
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("%s is not a valid %s address", addr, b)
	}
	return common.HexToAddress(addr).Hex(), nil
}

// Entry is one calendar reminder. Counterparty, Address and Blockchain
// are optional; Address and Blockchain are set together.
type Entry struct {
	Identifier   int64      `json:"identifier"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Counterparty string     `json:"counterparty,omitempty"`
	Address      string     `json:"address,omitempty"`
	Blockchain   Blockchain `json:"blockchain,omitempty"`
	Timestamp    int64      `json:"timestamp"`
}

// Account selects entries by address, optionally on one chain
type Account struct {
	Address    string     `json:"address"`
	Blockchain Blockchain `json:"blockchain,omitempty"`
}

// Filter narrows a query. Zero fields do not filter.
type Filter struct {
	FromTimestamp int64     `json:"from_timestamp,omitempty"`
	ToTimestamp   int64     `json:"to_timestamp,omitempty"`
	Accounts      []Account `json:"accounts,omitempty"`
	Counterparty  string    `json:"counterparty,omitempty"`

	// Name matches a case-insensitive substring of the entry name
	Name string `json:"name,omitempty"`
}

// Result is the answer to a query
type Result struct {
	Entries      []Entry `json:"entries"`
	EntriesFound int     `json:"entries_found"`
	EntriesTotal int     `json:"entries_total"`

	// EntriesLimit is -1, queries are not paginated
	EntriesLimit int `json:"entries_limit"`
}

// ValidationError reports an entry or filter that cannot be stored or run
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}
