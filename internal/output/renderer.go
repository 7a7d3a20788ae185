package output

import (
	"fmt"
	"io"

	"github.com/jokarl/taxrules/internal/types"
)

// Renderer defines the interface for output renderers
type Renderer interface {
	// Render writes the resolve result to the writer
	Render(w io.Writer, result *types.ResolveResult) error
}

// Format represents an output format
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatCompact Format = "compact"
	FormatCSV     Format = "csv"
)

// Formats returns the supported formats
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatCompact, FormatCSV}
}

// ParseFormat parses a format name
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format: %s", s)
}

// Options tune the renderers that support them
type Options struct {
	// Color enables ANSI colors in text output
	Color bool

	// Quiet limits text output to unmatched events and the result
	Quiet bool
}

// NewRenderer creates a renderer for the given format
func NewRenderer(format Format, opts Options) Renderer {
	switch format {
	case FormatJSON:
		return &JSONRenderer{}
	case FormatCompact:
		return &CompactRenderer{}
	case FormatCSV:
		return &CSVRenderer{}
	default:
		return &TextRenderer{ColorEnabled: opts.Color, Quiet: opts.Quiet}
	}
}
