// Package like implements the demo "Like" core function (spec §4.4): a
// shell-glob match against a string input, grounded in gobwas/glob
// (the only glob-matching dependency in the example corpus).
package like

import (
	"context"

	"github.com/gobwas/glob"

	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// FuncID is the qualified name this core function registers under.
const FuncID = "Like"

// Arity is its declared parameter arity: the glob pattern, bound as
// e.g. Like<"deploy:*">.
const Arity = 1

// Register adds the Like core function to reg.
func Register(reg *corefunc.Registry) error {
	return reg.Register(FuncID, Arity, "Match a string input against a shell glob pattern.", func(
		ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle,
	) (rationale.Verdict, value.V, *rationale.R) {
		pattern, ok := args[0].AsString()
		if !ok {
			return rationale.Err(dogmaerr.KindCoreFunction), value.Null(), nil
		}
		s, ok := input.AsString()
		if !ok {
			return rationale.No(), value.Null(), nil
		}

		g, err := glob.Compile(pattern)
		if err != nil {
			return rationale.Err(dogmaerr.KindCoreFunction), value.Null(), nil
		}

		if g.Match(s) {
			return rationale.Ok(), input, nil
		}
		return rationale.No(), input, nil
	})
}
