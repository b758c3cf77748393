package ast

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"

	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// NewParser constructs a participle parser for the Dogma grammar.
// MaxLookahead enables full backtracking: many atom alternatives share a
// common Ident prefix (primordial keywords vs. pattern references), and
// the expression sub-language's cmp/add/mul levels need to backtrack past
// an absent right-hand side.
func NewParser() (*participle.Parser[File], error) {
	return participle.Build[File](
		participle.Lexer(dogmaLexer),
		participle.Map(stripQuotes, "String"),
		participle.UseLookahead(participle.MaxLookahead),
	)
}

// stripQuotes removes the surrounding double quotes from a String token.
// It does not process backslash escapes: the lexer rule for String
// ("[^"]*") admits no escapes, so a literal like "C:\foo" or "\d" must
// come through unchanged rather than being run through Go's escape
// semantics (which would mangle the former and reject the latter).
func stripQuotes(t lexer.Token) (lexer.Token, error) {
	if len(t.Value) >= 2 {
		t.Value = t.Value[1 : len(t.Value)-1]
	}
	return t, nil
}

var defaultParser = mustParser()

func mustParser() *participle.Parser[File] {
	p, err := NewParser()
	if err != nil {
		panic(err)
	}
	return p
}

// ParseFile parses one .dog source file's contents. filename is used only
// for error spans.
func ParseFile(filename string, source []byte) (*File, error) {
	file, err := defaultParser.ParseBytes(filename, source)
	if err != nil {
		return nil, oops.Code(dogmaerr.CodeParseError).In("ast").With("file", filename).Hint("parse error").Wrap(err)
	}
	return file, nil
}
