// Command dogma-like-plugin is a reference out-of-process core function
// plugin, demonstrating pkg/corefuncplugin's host/plugin split: it
// implements the same glob match as pkg/dogmafunc/like, but runs as its
// own subprocess rather than linked into the engine binary, the way a
// third party would ship a core function without access to engine
// internals.
package main

import (
	"github.com/gobwas/glob"

	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/pkg/corefuncplugin"
)

type likeHandler struct{}

func (likeHandler) Call(input corefuncplugin.WireValue, args []corefuncplugin.WireValue) (corefuncplugin.CallReply, error) {
	if len(args) != 1 || value.Kind(args[0].Kind) != value.KindString || value.Kind(input.Kind) != value.KindString {
		return corefuncplugin.CallReply{Verdict: "error", ErrorKind: "core_function_error"}, nil
	}

	g, err := glob.Compile(args[0].Str)
	if err != nil {
		return corefuncplugin.CallReply{Verdict: "error", ErrorKind: "core_function_error"}, nil
	}

	if g.Match(input.Str) {
		return corefuncplugin.CallReply{Verdict: "satisfied", Output: input}, nil
	}
	return corefuncplugin.CallReply{Verdict: "unsatisfied", Output: input}, nil
}

func main() {
	corefuncplugin.Serve(&corefuncplugin.ServeConfig{Handler: likeHandler{}})
}
