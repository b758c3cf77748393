package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedwing-io/dogma-engine/internal/dogma/ast"
	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/ir"
	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

func parseSrc(t *testing.T, modulePrefix, stem, src string) SourceFile {
	t.Helper()
	f, err := ast.ParseFile(stem+".dog", []byte(src))
	require.NoError(t, err)
	return SourceFile{ModulePrefix: modulePrefix, Stem: stem, File: f}
}

func TestCompile_ModulePrefixNaming(t *testing.T) {
	src := parseSrc(t, "sre", "deploy", `pattern nr = 18`)
	world, err := Compile([]SourceFile{src}, nil)
	require.NoError(t, err)
	_, ok := world.Patterns["sre::deploy::nr"]
	assert.True(t, ok)
}

func TestCompile_ForwardReference(t *testing.T) {
	src := parseSrc(t, "", "m", `
pattern a = b
pattern b = 18
`)
	world, err := Compile([]SourceFile{src}, nil)
	require.NoError(t, err)
	a := world.Arena.Get(world.Patterns["m::a"])
	ref, ok := a.(ir.Ref)
	require.True(t, ok)
	assert.Equal(t, world.Patterns["m::b"], ref.Target)
}

func TestCompile_SelfReferenceCycle(t *testing.T) {
	src := parseSrc(t, "", "m", `
pattern loop = { next: loop }
`)
	world, err := Compile([]SourceFile{src}, nil)
	require.NoError(t, err)
	obj, ok := world.Arena.Get(world.Patterns["m::loop"]).(ir.Object)
	require.True(t, ok)
	require.Len(t, obj.Fields, 1)
	ref, ok := world.Arena.Get(obj.Fields[0].Pattern).(ir.Ref)
	require.True(t, ok)
	assert.Equal(t, world.Patterns["m::loop"], ref.Target)
}

func TestCompile_DuplicateDefinitionFatal(t *testing.T) {
	src := parseSrc(t, "", "m", `
pattern a = 1
pattern a = 2
`)
	_, err := Compile([]SourceFile{src}, nil)
	require.Error(t, err)
	assert.True(t, dogmaerr.IsResolutionError(err))
}

func TestCompile_UnknownReferenceFatal(t *testing.T) {
	src := parseSrc(t, "", "m", `pattern a = nope`)
	_, err := Compile([]SourceFile{src}, nil)
	require.Error(t, err)
}

func TestCompile_ArityMismatchFatal(t *testing.T) {
	src := parseSrc(t, "", "m", `
pattern wrapped<T> = { v: T }
pattern a = wrapped<integer, string>
`)
	_, err := Compile([]SourceFile{src}, nil)
	require.Error(t, err)
	assert.True(t, dogmaerr.IsResolutionError(err))
}

func TestCompile_UseStatementAliasing(t *testing.T) {
	base := parseSrc(t, "", "base", `pattern nr = 18`)
	user := parseSrc(t, "", "user", `
use base::nr as n
pattern a = n
`)
	world, err := Compile([]SourceFile{base, user}, nil)
	require.NoError(t, err)
	ref, ok := world.Arena.Get(world.Patterns["user::a"]).(ir.Ref)
	require.True(t, ok)
	assert.Equal(t, world.Patterns["base::nr"], ref.Target)
}

func TestCompile_ParameterSubstitution(t *testing.T) {
	src := parseSrc(t, "", "m", `
pattern wrapped<T> = { v: T }
pattern a = wrapped<integer>
`)
	world, err := Compile([]SourceFile{src}, nil)
	require.NoError(t, err)
	wrappedHandle := world.Patterns["m::wrapped"]
	obj, ok := world.Arena.Get(wrappedHandle).(ir.Object)
	require.True(t, ok)
	_, isParam := world.Arena.Get(obj.Fields[0].Pattern).(ir.Parameter)
	assert.True(t, isParam)

	ref, ok := world.Arena.Get(world.Patterns["m::a"]).(ir.Ref)
	require.True(t, ok)
	require.Len(t, ref.Args, 1)
	prim, ok := world.Arena.Get(ref.Args[0]).(ir.Primordial)
	require.True(t, ok)
	assert.Equal(t, value.KindInteger, prim.Kind)
}

func TestCompile_CoreFunctionReference(t *testing.T) {
	reg := corefunc.NewRegistry()
	require.NoError(t, reg.Register("Base64", 0, "decodes base64", func(
		ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle,
	) (rationale.Verdict, value.V, *rationale.R) {
		return rationale.Ok(), value.Str("hi"), nil
	}))

	src := parseSrc(t, "", "m", `pattern refined = { v: Base64("hi") }`)
	world, err := Compile([]SourceFile{src}, reg)
	require.NoError(t, err)

	obj, ok := world.Arena.Get(world.Patterns["m::refined"]).(ir.Object)
	require.True(t, ok)
	ref, ok := world.Arena.Get(obj.Fields[0].Pattern).(ir.Refinement)
	require.True(t, ok)
	fn, ok := world.Arena.Get(ref.Inner).(ir.Function)
	require.True(t, ok)
	assert.Equal(t, "Base64", fn.FuncID)
	assert.Empty(t, fn.Args)

	check, ok := world.Arena.Get(ref.Check).(ir.Const)
	require.True(t, ok)
	assert.True(t, value.Equal(value.Str("hi"), check.Value))
}

func TestCompile_CoreFunctionArityMismatch(t *testing.T) {
	reg := corefunc.NewRegistry()
	require.NoError(t, reg.Register("Like", 1, "glob match", func(
		ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle,
	) (rationale.Verdict, value.V, *rationale.R) {
		return rationale.Ok(), input, nil
	}))

	src := parseSrc(t, "", "m", `pattern a = Like`)
	_, err := Compile([]SourceFile{src}, reg)
	require.Error(t, err)
	assert.True(t, dogmaerr.IsResolutionError(err))
}

func TestCompile_PatternNameCollidesWithCoreFunctionFatal(t *testing.T) {
	reg := corefunc.NewRegistry()
	require.NoError(t, reg.Register("Base64", 0, "decodes base64", func(
		ctx context.Context, input value.V, args []value.V, world corefunc.WorldHandle,
	) (rationale.Verdict, value.V, *rationale.R) {
		return rationale.Ok(), value.Str("hi"), nil
	}))

	src := parseSrc(t, "sre", "m", `pattern Base64 = "shadow"`)
	_, err := Compile([]SourceFile{src}, reg)
	require.Error(t, err)
	assert.True(t, dogmaerr.IsResolutionError(err))
}
