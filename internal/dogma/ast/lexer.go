// Package ast defines the Dogma lexer, grammar, and AST, built with
// participle in the same style as an ABAC policy DSL: ordered lexer rules,
// struct-tag grammar, and pretty-printers used for diagnostics and for the
// parse round-trip property.
package ast

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// dogmaLexer defines Dogma's tokens. Order matters: longer patterns must
// precede shorter ones sharing a prefix (e.g. "::" before ":", "///"
// before "//").
var dogmaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "DocComment", Pattern: `///[^\n]*`},
	{Name: "LineComment", Pattern: `//[^\n]*`},
	{Name: "AttrComment", Pattern: `#\[[^\]]*\]`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Decimal", Pattern: `-?[0-9]+\.[0-9]+`},
	{Name: "Integer", Pattern: `-?[0-9]+`},
	{Name: "ExprOpen", Pattern: `\$\{`},
	{Name: "ScopeSep", Pattern: `::`},
	{Name: "OpAnd", Pattern: `&&`},
	{Name: "OpOr", Pattern: `\|\|`},
	{Name: "OpEq", Pattern: `==`},
	{Name: "OpNe", Pattern: `!=`},
	{Name: "OpGe", Pattern: `>=`},
	{Name: "OpLe", Pattern: `<=`},
	{Name: "OpGt", Pattern: `>`},
	{Name: "OpLt", Pattern: `<`},
	{Name: "Ident", Pattern: `@?[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Punct", Pattern: `[{}\[\]<>(),:;?!.$*=+\-/%]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// GrammarVersion identifies the Dogma dialect a .dog file parses against;
// checked for compatibility on world load (see internal/dogma/world).
const GrammarVersion = "1.0.0"

// reservedWords must not be used as pattern or parameter names.
var reservedWords = map[string]bool{
	"pattern": true, "use": true, "as": true, "self": true,
	"true": true, "false": true, "anything": true, "nothing": true,
	"integer": true, "decimal": true, "string": true, "boolean": true,
}

// IsReservedWord reports whether word is a Dogma reserved word.
func IsReservedWord(word string) bool {
	return reservedWords[word]
}
