// Package events reads classified history events from JSON or YAML files.
//
// A file holds either a list of events or an object with an "events" key.
package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jokarl/taxrules/internal/types"
)

// Format is an input encoding
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// Load reads events from a file. "-" reads standard input.
func Load(path string) ([]types.Event, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	evs, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return evs, nil
}

// Decode parses events in the given format. FormatAuto tries YAML first,
// then JSON.
func Decode(data []byte, format Format) ([]types.Event, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		evs, err := decodeYAML(data)
		if err != nil {
			if jevs, jerr := decodeJSON(data); jerr == nil {
				return jevs, nil
			}
			return nil, err
		}
		return evs, nil
	}
}

func decodeJSON(data []byte) ([]types.Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var evs []types.Event
	if data[0] == '[' {
		if err := json.Unmarshal(data, &evs); err != nil {
			return nil, fmt.Errorf("invalid events JSON: %w", err)
		}
		return evs, nil
	}

	var doc struct {
		Events []types.Event `json:"events"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid events JSON: %w", err)
	}
	return doc.Events, nil
}

// yamlEvent keeps every scalar as written so amounts never pass through a
// float and enum errors name the offending event.
type yamlEvent struct {
	Identifier    string `yaml:"identifier"`
	Timestamp     int64  `yaml:"timestamp"`
	EventType     string `yaml:"event_type"`
	EventSubtype  string `yaml:"event_subtype"`
	Counterparty  string `yaml:"counterparty"`
	Asset         string `yaml:"asset"`
	Amount        string `yaml:"amount"`
	LocationLabel string `yaml:"location_label"`
	Notes         string `yaml:"notes"`
}

func decodeYAML(data []byte) ([]types.Event, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid events YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	var raw []yamlEvent
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid events YAML: %w", err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Events []yamlEvent `yaml:"events"`
		}
		if err := doc.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("invalid events YAML: %w", err)
		}
		raw = wrapped.Events
	default:
		return nil, fmt.Errorf("invalid events YAML: expected a list or an events mapping at line %d", doc.Line)
	}

	evs := make([]types.Event, 0, len(raw))
	for i, r := range raw {
		ev, err := r.event()
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, r.Identifier, err)
		}
		evs = append(evs, ev)
	}
	return evs, nil
}

func (r yamlEvent) event() (types.Event, error) {
	et, err := types.ParseEventType(r.EventType)
	if err != nil {
		return types.Event{}, err
	}
	st, err := types.ParseEventSubtype(r.EventSubtype)
	if err != nil {
		return types.Event{}, err
	}
	amount := decimal.Zero
	if r.Amount != "" {
		if amount, err = decimal.NewFromString(r.Amount); err != nil {
			return types.Event{}, fmt.Errorf("invalid amount %q: %w", r.Amount, err)
		}
	}
	return types.Event{
		Identifier:    r.Identifier,
		Timestamp:     r.Timestamp,
		Type:          et,
		Subtype:       st,
		Counterparty:  r.Counterparty,
		Asset:         r.Asset,
		Amount:        amount,
		LocationLabel: r.LocationLabel,
		Notes:         r.Notes,
	}, nil
}
