package output

import (
	"encoding/json"
	"io"

	"github.com/jokarl/taxrules/internal/types"
)

// JSONRenderer renders output in JSON format
type JSONRenderer struct{}

// jsonOutput is the structure for JSON output
type jsonOutput struct {
	Version     string              `json:"version"`
	ID          string              `json:"id,omitempty"`
	Source      string              `json:"source"`
	Resolutions []*types.Resolution `json:"resolutions"`
	Summary     types.Summary       `json:"summary"`
	Result      string              `json:"result"`
	Policy      string              `json:"policy"`
}

// Render writes the resolve result in JSON format
func (r *JSONRenderer) Render(w io.Writer, result *types.ResolveResult) error {
	resolutions := result.Resolutions
	if resolutions == nil {
		resolutions = []*types.Resolution{}
	}
	output := jsonOutput{
		Version:     "1.0",
		ID:          result.ID,
		Source:      result.Source,
		Resolutions: resolutions,
		Summary:     result.Summary,
		Result:      result.Result,
		Policy:      result.Policy.String(),
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
