package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_SimplePattern(t *testing.T) {
	f, err := ParseFile("nr.dog", []byte(`pattern nr = 18`))
	require.NoError(t, err)
	require.Len(t, f.Patterns, 1)
	assert.Equal(t, "nr", f.Patterns[0].Name)
}

func TestParseFile_ObjectPattern(t *testing.T) {
	f, err := ParseFile("nr.dog", []byte(`pattern nr = { nr: integer }`))
	require.NoError(t, err)
	body := f.Patterns[0].Body
	require.Len(t, body.Ands, 1)
	atom := body.Ands[0].Refined[0].Atom
	require.NotNil(t, atom.Object)
	assert.Equal(t, "nr", atom.Object.Fields[0].Name)
}

func TestParseFile_OrPattern(t *testing.T) {
	src := "pattern bob = \"bob@x\"\npattern jim = \"jim@x\"\npattern team = bob || jim\n"
	f, err := ParseFile("team.dog", []byte(src))
	require.NoError(t, err)
	require.Len(t, f.Patterns, 3)
	team := f.Patterns[2].Body
	require.Len(t, team.Ands, 2)
}

func TestParseFile_ExpressionRefinement(t *testing.T) {
	f, err := ParseFile("adult.dog", []byte(`pattern adult = { age: ${self >= 21} }`))
	require.NoError(t, err)
	field := f.Patterns[0].Body.Ands[0].Refined[0].Atom.Object.Fields[0]
	require.NotNil(t, field.Value.Ands[0].Refined[0].Atom.Expr)
}

func TestParseFile_RefinementAndCoreFunctionCall(t *testing.T) {
	f, err := ParseFile("refined.dog", []byte(`pattern refined = { v: Base64("hi") }`))
	require.NoError(t, err)
	field := f.Patterns[0].Body.Ands[0].Refined[0].Atom.Object.Fields[0]
	refined := field.Value.Ands[0].Refined[0]
	require.NotNil(t, refined.Atom.Ref)
	assert.Equal(t, []string{"Base64"}, refined.Atom.Ref.Path)
	require.NotNil(t, refined.Check)
}

func TestParseFile_UseStatement(t *testing.T) {
	f, err := ParseFile("m.dog", []byte("use sre::deploy::target as dep\npattern p = dep\n"))
	require.NoError(t, err)
	require.Len(t, f.Uses, 1)
	assert.Equal(t, []string{"sre", "deploy", "target"}, f.Uses[0].Path)
	assert.Equal(t, "dep", f.Uses[0].Alias)
}

func TestParseFile_StringLiteral_NoEscapeProcessing(t *testing.T) {
	f, err := ParseFile("path.dog", []byte(`pattern p = "C:\foo"`))
	require.NoError(t, err)
	atom := f.Patterns[0].Body.Ands[0].Refined[0].Atom
	require.NotNil(t, atom.StrLit)
	assert.Equal(t, `C:\foo`, *atom.StrLit)
}

func TestParseFile_StringLiteral_InvalidGoEscapeStillParses(t *testing.T) {
	f, err := ParseFile("re.dog", []byte(`pattern p = "\d+"`))
	require.NoError(t, err)
	atom := f.Patterns[0].Body.Ands[0].Refined[0].Atom
	require.NotNil(t, atom.StrLit)
	assert.Equal(t, `\d+`, *atom.StrLit)
}

func TestParseFile_IntegerBoundary(t *testing.T) {
	_, err := ParseFile("big.dog", []byte(`pattern nr = 9223372036854775807`))
	assert.NoError(t, err)
}

func TestPrettyPrint_RoundTripForTrivialSubset(t *testing.T) {
	src := `pattern adult = { age: integer, name: string }`
	f, err := ParseFile("a.dog", []byte(src))
	require.NoError(t, err)
	printed := f.Patterns[0].String()

	reparsed, err := ParseFile("a2.dog", []byte(printed))
	require.NoError(t, err)
	assert.Equal(t, printed, reparsed.Patterns[0].String())
}

func TestParseFile_DerefOperator(t *testing.T) {
	f, err := ParseFile("deref.dog", []byte(`pattern dyn = *self.shape`))
	require.NoError(t, err)
	atom := f.Patterns[0].Body.Ands[0].Refined[0].Atom
	require.NotNil(t, atom.Deref)
	assert.NotNil(t, atom.Deref.SelfPath)
}

func TestParseFile_ListPattern(t *testing.T) {
	f, err := ParseFile("list.dog", []byte(`pattern pair = [integer, string]`))
	require.NoError(t, err)
	atom := f.Patterns[0].Body.Ands[0].Refined[0].Atom
	require.NotNil(t, atom.List)
	assert.Len(t, atom.List.Items, 2)
}
