// Package base64 implements the demo "Base64" core function (spec
// §4.4), the canonical example from the spec's concrete scenarios
// (pattern refined = { v: Base64("hi") }): decode a base64 string and
// let the refinement check run against the decoded text. Plain
// encoding/base64 is used directly; none of the example repos bring in
// a third-party base64 codec, so there is nothing in the corpus to
// ground a replacement on.
package base64

import (
	"context"
	"encoding/base64"

	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// FuncID is the qualified name this core function registers under.
const FuncID = "Base64"

// Arity is its declared parameter arity: no bound arguments.
const Arity = 0

// Register adds the Base64 core function to reg. Input must be a
// standard-base64-encoded String; output is the decoded String (for
// refining against a string literal), unsatisfied rather than erroring
// on malformed input.
func Register(reg *corefunc.Registry) error {
	return reg.Register(FuncID, Arity, "Decode a base64 string.", func(
		ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle,
	) (rationale.Verdict, value.V, *rationale.R) {
		s, ok := input.AsString()
		if !ok {
			return rationale.Err(dogmaerr.KindType), value.Null(), nil
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return rationale.No(), value.Null(), nil
		}
		return rationale.Ok(), value.Str(string(decoded)), nil
	})
}
