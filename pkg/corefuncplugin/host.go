package corefuncplugin

import (
	"context"
	"fmt"
	"os/exec"

	hashiplug "github.com/hashicorp/go-plugin"

	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// Client launches and owns one core-function plugin subprocess.
type Client struct {
	id        string
	hashi     *hashiplug.Client
	rpcClient Handler
}

// Dial launches execPath as a plugin process implementing the core
// function registered under id. Callers should defer Close.
func Dial(id, execPath string) (*Client, error) {
	hc := hashiplug.NewClient(&hashiplug.ClientConfig{
		HandshakeConfig:  HandshakeConfig,
		Plugins:          PluginMap,
		Cmd:              exec.Command(execPath), // #nosec G204 -- execPath is operator-supplied plugin configuration, not untrusted input
		AllowedProtocols: []hashiplug.Protocol{hashiplug.ProtocolNetRPC},
	})

	protocol, err := hc.Client()
	if err != nil {
		hc.Kill()
		return nil, fmt.Errorf("corefuncplugin: dial %s: %w", execPath, err)
	}
	raw, err := protocol.Dispense("corefunc")
	if err != nil {
		hc.Kill()
		return nil, fmt.Errorf("corefuncplugin: dispense %s: %w", execPath, err)
	}
	handler, ok := raw.(Handler)
	if !ok {
		hc.Kill()
		return nil, fmt.Errorf("corefuncplugin: %s did not implement Handler", execPath)
	}

	return &Client{id: id, hashi: hc, rpcClient: handler}, nil
}

// Close terminates the plugin process.
func (c *Client) Close() {
	c.hashi.Kill()
}

// Impl adapts the plugin call to the corefunc.Impl signature, so a
// registered plugin is indistinguishable to the evaluator from a core
// function implemented in-process.
func (c *Client) Impl() corefunc.Impl {
	return func(ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle) (rationale.Verdict, value.V, *rationale.R) {
		wireArgs := make([]WireValue, len(args))
		for i, a := range args {
			wireArgs[i] = ToWire(a)
		}

		reply, err := c.rpcClient.Call(ToWire(input), wireArgs)
		if err != nil {
			return rationale.Err(dogmaerr.KindCoreFunction), value.Null(), nil
		}

		output := FromWire(reply.Output)
		switch reply.Verdict {
		case "satisfied":
			return rationale.Ok(), output, nil
		case "unsatisfied":
			return rationale.No(), output, nil
		default:
			return rationale.Err(dogmaerr.Kind(reply.ErrorKind)), output, nil
		}
	}
}
