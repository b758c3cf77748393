package rationale

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seedwing-io/dogma-engine/internal/dogma/ir"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

func TestNew_PullsMetadataFromArena(t *testing.T) {
	arena := ir.NewArena()
	h := arena.Add(ir.Anything{})
	arena.SetMeta(h, ir.Metadata{Severity: "critical", Authoritative: true})

	r := New(arena, h, value.Int(1), value.Int(1), Ok())
	assert.Equal(t, "critical", r.Severity)
	assert.True(t, r.Authoritative)
}

func TestWithLabel(t *testing.T) {
	r := &R{Verdict: Ok()}
	r.WithLabel("age")
	assert.Equal(t, "age", r.Label)
}

func TestCombineAnd(t *testing.T) {
	assert.True(t, CombineAnd([]*R{{Verdict: Ok()}, {Verdict: Ok()}}).IsOk())
	assert.False(t, CombineAnd([]*R{{Verdict: Ok()}, {Verdict: No()}}).IsOk())
	assert.False(t, CombineAnd([]*R{{Verdict: Ok()}, {Verdict: No()}}).IsError())

	errVerdict := CombineAnd([]*R{{Verdict: Ok()}, {Verdict: Err(dogmaerr.KindType)}})
	assert.True(t, errVerdict.IsError())
	assert.Equal(t, dogmaerr.KindType, errVerdict.ErrorKind)
}

func TestCombineOr(t *testing.T) {
	assert.False(t, CombineOr(nil).IsOk())
	assert.False(t, CombineOr([]*R{{Verdict: Err(dogmaerr.KindType)}, {Verdict: No()}}).IsError())

	allErrored := CombineOr([]*R{{Verdict: Err(dogmaerr.KindType)}, {Verdict: Err(dogmaerr.KindCoreFunction)}})
	assert.True(t, allErrored.IsError())
}
