package eval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/seedwing-io/dogma-engine/internal/dogma/ast"
	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/resolve"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
)

func compile(t *testing.T, src string, reg *corefunc.Registry) *resolve.World {
	t.Helper()
	f, err := ast.ParseFile("m.dog", []byte(src))
	require.NoError(t, err)
	world, err := resolve.Compile([]resolve.SourceFile{{Stem: "m", File: f}}, reg)
	require.NoError(t, err)
	return world
}

func TestEvaluate_PrimordialAndConst(t *testing.T) {
	world := compile(t, `
pattern nr = 18
pattern kind = integer
`, nil)
	e := New(nil, 0)

	v, _, _, err := e.Evaluate(context.Background(), world, "m::nr", nil, value.Int(18))
	require.NoError(t, err)
	assert.True(t, v.IsOk())

	v, _, _, err = e.Evaluate(context.Background(), world, "m::nr", nil, value.Int(19))
	require.NoError(t, err)
	assert.False(t, v.IsOk())

	v, _, _, err = e.Evaluate(context.Background(), world, "m::kind", nil, value.Int(1))
	require.NoError(t, err)
	assert.True(t, v.IsOk())
}

func TestEvaluate_ObjectPassesThroughExtraFields(t *testing.T) {
	world := compile(t, `pattern p = { nr: integer }`, nil)
	e := New(nil, 0)

	input := value.Object([]value.Field{
		{Name: "nr", Value: value.Int(18)},
		{Name: "extra", Value: value.Str("kept")},
	})
	v, out, r, err := e.Evaluate(context.Background(), world, "m::p", nil, input)
	require.NoError(t, err)
	assert.True(t, v.IsOk())
	extra, ok := out.Field("extra")
	require.True(t, ok)
	assert.Equal(t, "kept", mustStr(extra))
	assert.Len(t, r.Children, 1)
}

func TestEvaluate_ObjectMissingRequiredField(t *testing.T) {
	world := compile(t, `pattern p = { nr: integer, name?: string }`, nil)
	e := New(nil, 0)

	input := value.Object([]value.Field{{Name: "name", Value: value.Str("bob")}})
	v, _, _, err := e.Evaluate(context.Background(), world, "m::p", nil, input)
	require.NoError(t, err)
	assert.False(t, v.IsOk())
}

func TestEvaluate_OrShortCircuitsButRecordsAttempts(t *testing.T) {
	world := compile(t, `pattern p = "bob" || "jim" || "team"`, nil)
	e := New(nil, 0)

	v, _, r, err := e.Evaluate(context.Background(), world, "m::p", nil, value.Str("jim"))
	require.NoError(t, err)
	assert.True(t, v.IsOk())
	require.Len(t, r.Children, 2) // bob attempted and failed, jim attempted and won
}

func TestEvaluate_AndNeverShortCircuits(t *testing.T) {
	world := compile(t, `pattern p = ${ self >= 21 } && ${ self < 18 }`, nil)
	e := New(nil, 0)

	_, _, r, err := e.Evaluate(context.Background(), world, "m::p", nil, value.Int(25))
	require.NoError(t, err)
	assert.Len(t, r.Children, 2)
}

func TestEvaluate_ExpressionRefinement(t *testing.T) {
	world := compile(t, `pattern adult = integer(${ self >= 21 })`, nil)
	e := New(nil, 0)

	v, _, _, err := e.Evaluate(context.Background(), world, "m::adult", nil, value.Int(25))
	require.NoError(t, err)
	assert.True(t, v.IsOk())

	v, _, _, err = e.Evaluate(context.Background(), world, "m::adult", nil, value.Int(10))
	require.NoError(t, err)
	assert.False(t, v.IsOk())
}

func TestEvaluate_SelfReferenceRecursionTerminates(t *testing.T) {
	world := compile(t, `pattern tree = { left?: tree, right?: tree }`, nil)
	e := New(nil, 0)

	node := value.Object(nil)
	input := value.Object([]value.Field{
		{Name: "left", Value: node},
		{Name: "right", Value: node},
	})
	v, _, _, err := e.Evaluate(context.Background(), world, "m::tree", nil, input)
	require.NoError(t, err)
	assert.True(t, v.IsOk())
}

func TestEvaluate_ParameterSubstitution(t *testing.T) {
	world := compile(t, `
pattern wrapped<T> = { v: T }
pattern a = wrapped<integer>
`, nil)
	e := New(nil, 0)

	v, _, _, err := e.Evaluate(context.Background(), world, "m::a", nil, value.Object([]value.Field{
		{Name: "v", Value: value.Int(1)},
	}))
	require.NoError(t, err)
	assert.True(t, v.IsOk())

	v, _, _, err = e.Evaluate(context.Background(), world, "m::a", nil, value.Object([]value.Field{
		{Name: "v", Value: value.Str("nope")},
	}))
	require.NoError(t, err)
	assert.False(t, v.IsOk())
}

func TestEvaluate_CoreFunctionRefinement(t *testing.T) {
	reg := corefunc.NewRegistry()
	require.NoError(t, reg.Register("Base64", 0, "decodes base64", func(
		ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle,
	) (rationale.Verdict, value.V, *rationale.R) {
		s, ok := input.AsString()
		if !ok {
			return rationale.Err("type_error"), value.Null(), nil
		}
		if s == "aGk=" {
			return rationale.Ok(), value.Str("hi"), nil
		}
		return rationale.No(), value.Null(), nil
	}))

	world := compile(t, `pattern refined = { v: Base64("hi") }`, reg)
	e := New(reg, 0)

	input := value.Object([]value.Field{{Name: "v", Value: value.Str("aGk=")}})
	v, _, _, err := e.Evaluate(context.Background(), world, "m::refined", nil, input)
	require.NoError(t, err)
	assert.True(t, v.IsOk())
}

func TestEvaluate_DerefReifiesOutputAsPattern(t *testing.T) {
	reg := corefunc.NewRegistry()
	require.NoError(t, reg.Register("Expected", 0, "returns the expected literal", func(
		ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle,
	) (rationale.Verdict, value.V, *rationale.R) {
		return rationale.Ok(), value.Int(42), nil
	}))

	world := compile(t, `pattern p = *Expected`, reg)
	e := New(reg, 0)

	v, _, _, err := e.Evaluate(context.Background(), world, "m::p", nil, value.Int(42))
	require.NoError(t, err)
	assert.True(t, v.IsOk())

	v, _, _, err = e.Evaluate(context.Background(), world, "m::p", nil, value.Int(7))
	require.NoError(t, err)
	assert.False(t, v.IsOk())
}

func TestEvaluate_NoGoroutineLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	world := compile(t, `pattern nr = 18`, nil)
	e := New(nil, 0)
	_, _, _, err := e.Evaluate(context.Background(), world, "m::nr", nil, value.Int(18))
	require.NoError(t, err)
}

func mustStr(v value.V) string {
	s, _ := v.AsString()
	return s
}
