// Package digest implements the demo "Digest" core function (spec
// §4.4): a blake2b hash of octets or UTF-8 string input, grounded in
// golang.org/x/crypto/blake2b (the example corpus's cryptographic
// primitives dependency).
package digest

import (
	"context"

	"golang.org/x/crypto/blake2b"

	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// FuncID is the qualified name this core function registers under.
const FuncID = "Digest"

// Arity is its declared parameter arity: no bound arguments.
const Arity = 0

// Register adds the Digest core function to reg. Input may be String or
// Octets; output is always Octets holding the 32-byte blake2b-256 sum.
func Register(reg *corefunc.Registry) error {
	return reg.Register(FuncID, Arity, "Compute the blake2b-256 digest of the input.", func(
		ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle,
	) (rationale.Verdict, value.V, *rationale.R) {
		var data []byte
		switch input.Kind() {
		case value.KindString:
			s, _ := input.AsString()
			data = []byte(s)
		case value.KindOctets:
			data, _ = input.AsOctets()
		default:
			return rationale.Err(dogmaerr.KindType), value.Null(), nil
		}

		sum := blake2b.Sum256(data)
		return rationale.Ok(), value.Octets(sum[:]), nil
	})
}
