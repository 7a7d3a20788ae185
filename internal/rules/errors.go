package rules

import (
	"errors"
	"fmt"

	"github.com/jokarl/taxrules/internal/types"
)

// ErrConfiguration is matched by every ConfigurationError via errors.Is
var ErrConfiguration = errors.New("rule configuration error")

// ConfigurationError reports an authored rule list that cannot become a table.
// It is fatal to the registration of the protocol.
type ConfigurationError struct {
	// Protocol is the protocol whose rules were rejected
	Protocol string

	// Key is the offending key, zero when the error is not about a single key
	Key types.EventKey

	// Source names where the rules came from (file path, plugin name), if known
	Source string

	// Reason is a short description of the problem
	Reason string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("protocol %q: %s", e.Protocol, e.Reason)
	if e.Key.Type != types.EventTypeUnknown || e.Key.Subtype != types.EventSubtypeUnknown {
		msg = fmt.Sprintf("%s (%s/%s)", msg, e.Key.Type, e.Key.Subtype)
	}
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	return msg
}

// Is implements errors.Is support for ErrConfiguration
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
