package plugin

import (
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"

	"github.com/jokarl/taxrules/internal/rules"
	"github.com/jokarl/taxrules/internal/types"
)

// Handshake is shared by taxrules and accountant plugins. A plugin built
// against a different ProtocolVersion is refused at launch.
var Handshake = goplugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "TAXRULES_PLUGIN",
	MagicCookieValue: "accountant",
}

// PluginName is the name the accountant is dispensed under
const PluginName = "accountant"

// PluginMap is the plugin set used by the host
var PluginMap = map[string]goplugin.Plugin{
	PluginName: &AccountantPlugin{},
}

// Serve runs a plugin binary serving a. It is called from the plugin's main.
func Serve(a rules.Accountant) {
	goplugin.Serve(&goplugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]goplugin.Plugin{
			PluginName: &AccountantPlugin{Impl: a},
		},
	})
}

// AccountantPlugin is the go-plugin definition of an accountant over net/rpc
type AccountantPlugin struct {
	// Impl is set on the plugin side only
	Impl rules.Accountant
}

// Server implements goplugin.Plugin
func (p *AccountantPlugin) Server(*goplugin.MuxBroker) (interface{}, error) {
	return &AccountantRPCServer{Impl: p.Impl}, nil
}

// Client implements goplugin.Plugin
func (p *AccountantPlugin) Client(_ *goplugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &AccountantRPC{client: c}, nil
}

// AccountantRPC is the host side of an accountant plugin. It satisfies
// rules.Accountant and rules.Describer.
type AccountantRPC struct {
	client *rpc.Client
}

// Protocol implements rules.Accountant. It returns an empty string when
// the plugin cannot be reached.
func (a *AccountantRPC) Protocol() string {
	var resp string
	if err := a.client.Call("Plugin.Protocol", new(interface{}), &resp); err != nil {
		return ""
	}
	return resp
}

// Description implements rules.Describer
func (a *AccountantRPC) Description() string {
	var resp string
	if err := a.client.Call("Plugin.Description", new(interface{}), &resp); err != nil {
		return ""
	}
	return resp
}

// EventSettings implements rules.Accountant
func (a *AccountantRPC) EventSettings() ([]types.Rule, error) {
	var resp []types.Rule
	if err := a.client.Call("Plugin.EventSettings", new(interface{}), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AccountantRPCServer is the plugin side of AccountantRPC
type AccountantRPCServer struct {
	Impl rules.Accountant
}

// Protocol serves AccountantRPC.Protocol
func (s *AccountantRPCServer) Protocol(_ interface{}, resp *string) error {
	*resp = s.Impl.Protocol()
	return nil
}

// Description serves AccountantRPC.Description
func (s *AccountantRPCServer) Description(_ interface{}, resp *string) error {
	*resp = rules.Description(s.Impl)
	return nil
}

// EventSettings serves AccountantRPC.EventSettings
func (s *AccountantRPCServer) EventSettings(_ interface{}, resp *[]types.Rule) error {
	r, err := s.Impl.EventSettings()
	if err != nil {
		return err
	}
	*resp = r
	return nil
}
