package corefuncplugin

import (
	"errors"
	"net/rpc"

	hashiplug "github.com/hashicorp/go-plugin"
)

// HandshakeConfig is the go-plugin handshake. Host and plugin processes
// must agree on it exactly, the same way the teacher's pluginsdk pins
// one magic cookie per protocol generation.
var HandshakeConfig = hashiplug.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "DOGMA_COREFUNC_PLUGIN",
	MagicCookieValue: "dogma-corefunc-v1",
}

// Handler is what a plugin process implements: one core function's
// synchronous body. Bound-args arrive pre-lowered to literal values
// (spec §4.4's "bound-args"); the plugin has no access to the world
// handle, since out-of-process core functions are not trusted with
// pattern lookups.
type Handler interface {
	Call(input WireValue, args []WireValue) (CallReply, error)
}

// PluginMap is the go-plugin plugin-name -> Plugin table shared by host
// and plugin binaries; both sides must use the same key ("corefunc").
var PluginMap = map[string]hashiplug.Plugin{
	"corefunc": &rpcPlugin{},
}

// rpcPlugin implements go-plugin's net/rpc Plugin interface (Server on
// the plugin side, Client on the host side).
type rpcPlugin struct {
	Impl Handler
}

func (p *rpcPlugin) Server(*hashiplug.MuxBroker) (interface{}, error) {
	if p.Impl == nil {
		return nil, errors.New("corefuncplugin: no Handler registered")
	}
	return &rpcServer{impl: p.Impl}, nil
}

func (p *rpcPlugin) Client(_ *hashiplug.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}

// rpcServer is the net/rpc-visible object in the plugin process; Call is
// the sole exported method, matching net/rpc's
// func(Args, *Reply) error convention.
type rpcServer struct {
	impl Handler
}

func (s *rpcServer) Call(args CallArgs, reply *CallReply) error {
	result, err := s.impl.Call(args.Input, args.Args)
	if err != nil {
		return err
	}
	*reply = result
	return nil
}

// RPCClient is the host-side net/rpc stub, implementing Handler by
// dialing across the process boundary.
type RPCClient struct {
	client *rpc.Client
}

func (c *RPCClient) Call(input WireValue, args []WireValue) (CallReply, error) {
	var reply CallReply
	err := c.client.Call("Plugin.Call", CallArgs{Input: input, Args: args}, &reply)
	return reply, err
}

// ServeConfig configures a plugin process.
type ServeConfig struct {
	// Handler implements the core function's body. Required.
	Handler Handler
}

// Serve starts the plugin process. Call from main(); it blocks and
// never returns under normal operation.
func Serve(cfg *ServeConfig) {
	if cfg == nil || cfg.Handler == nil {
		panic("corefuncplugin: ServeConfig.Handler is required")
	}
	hashiplug.Serve(&hashiplug.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins: map[string]hashiplug.Plugin{
			"corefunc": &rpcPlugin{Impl: cfg.Handler},
		},
	})
}
