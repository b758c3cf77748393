package ast

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// File is the parsed contents of one .dog source file.
//
// Grammar: file := use_stmt* pattern_def*
type File struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Uses     []*UseStmt     `parser:"@@*" json:"uses,omitempty"`
	Patterns []*PatternDef  `parser:"@@*" json:"patterns,omitempty"`
}

// UseStmt imports a qualified pattern name into the file's local scope,
// optionally under an alias.
//
// Grammar: use_stmt := 'use' qualified_name ('as' ident)?
type UseStmt struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Path  []string       `parser:"'use' @Ident (ScopeSep @Ident)*" json:"path"`
	Alias string         `parser:"('as' @Ident)?" json:"alias,omitempty"`
}

// PatternDef declares one named pattern, optionally parameterised and
// preceded by doc comments and #[...] attribute comments.
//
// Grammar: pattern_def := attr* 'pattern' ident type_params? '=' type_expr
type PatternDef struct {
	Pos         lexer.Position `parser:"" json:"-"`
	Attrs       []string       `parser:"@AttrComment*" json:"attrs,omitempty"`
	Doc         []string       `parser:"@DocComment*" json:"doc,omitempty"`
	Name        string         `parser:"'pattern' @Ident" json:"name"`
	TypeParams  []string       `parser:"('<' @Ident (',' @Ident)* '>')?" json:"type_params,omitempty"`
	Body        *TypeExpr      `parser:"'=' @@" json:"body"`
}

// TypeExpr is the disjunction at the top of every type expression.
//
// Grammar: type_expr := or_expr ; or_expr := and_expr ('||' and_expr)*
type TypeExpr struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Ands []*AndExpr     `parser:"@@ (OpOr @@)*" json:"ands"`
}

// AndExpr is a conjunction of refined atoms.
//
// Grammar: and_expr := refined ('&&' refined)*
type AndExpr struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Refined  []*Refined     `parser:"@@ (OpAnd @@)*" json:"refined"`
}

// Refined is an atom optionally followed by a parenthesised refinement.
//
// Grammar: refined := atom ('(' type_expr ')')?
type Refined struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Atom  *Atom          `parser:"@@" json:"atom"`
	Check *TypeExpr      `parser:"('(' @@ ')')?" json:"check,omitempty"`
}

// Atom is the leaf of the type-expression grammar. Exactly one field is
// non-nil, chosen by PEG ordered choice with full backtracking.
//
// Grammar:
//
//	atom := primordial | literal | ident type_args? | object | list
//	      | '${' expr '}' | 'self' ('.' ident)* | '*' atom
type Atom struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Anything   bool           `parser:"  @'anything'" json:"anything,omitempty"`
	Nothing    bool           `parser:"| @'nothing'" json:"nothing,omitempty"`
	Primordial string         `parser:"| @('integer' | 'decimal' | 'string' | 'boolean')" json:"primordial,omitempty"`
	BoolLit    *bool          `parser:"| @('true' | 'false')" json:"bool_lit,omitempty"`
	StrLit     *string        `parser:"| @String" json:"str_lit,omitempty"`
	DecimalLit *float64       `parser:"| @Decimal" json:"decimal_lit,omitempty"`
	IntLit     *int64         `parser:"| @Integer" json:"int_lit,omitempty"`
	Expr       *Expr          `parser:"| ExprOpen @@ '}'" json:"expr,omitempty"`
	SelfPath   *SelfPath      `parser:"| @@" json:"self_path,omitempty"`
	Deref      *Atom          `parser:"| '*' @@" json:"deref,omitempty"`
	Ref        *Ref           `parser:"| @@" json:"ref,omitempty"`
	Object     *ObjectExpr    `parser:"| @@" json:"object,omitempty"`
	List       *ListExpr      `parser:"| @@" json:"list,omitempty"`
}

// SelfPath is a bare field-traversal expression: self, or self.a.b.c.
//
// Grammar: 'self' ('.' ident)*
type SelfPath struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Path []string       `parser:"'self' ('.' @Ident)*" json:"path,omitempty"`
}

// Ref is a reference to another pattern, optionally instantiated with
// type arguments.
//
// Grammar: ident type_args? ; type_args := '<' type_expr (',' type_expr)* '>'
type Ref struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Path []string       `parser:"@Ident (ScopeSep @Ident)*" json:"path"`
	Args []*TypeExpr    `parser:"('<' @@ (',' @@)* '>')?" json:"args,omitempty"`
}

// ObjectExpr is an object-shaped pattern.
//
// Grammar: object := '{' (field (',' field)* ','?)? '}'
type ObjectExpr struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Fields []*FieldExpr   `parser:"'{' (@@ (',' @@)* ','?)? '}'" json:"fields,omitempty"`
}

// FieldExpr is one object field declaration.
//
// Grammar: field := ident '?'? ':' type_expr
type FieldExpr struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"@Ident" json:"name"`
	Optional bool           `parser:"@'?'?" json:"optional,omitempty"`
	Value    *TypeExpr      `parser:"':' @@" json:"value"`
}

// ListExpr is a list-shaped pattern.
//
// Grammar: list := '[' (type_expr (',' type_expr)* ','?)? ']'
type ListExpr struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Items []*TypeExpr    `parser:"'[' (@@ (',' @@)* ','?)? ']'" json:"items,omitempty"`
}

// --- String() pretty-printers, used for diagnostics and the parse
// round-trip property (spec §8, property 5). ---

func (f *File) String() string {
	var b strings.Builder
	for _, u := range f.Uses {
		b.WriteString(u.String())
		b.WriteByte('\n')
	}
	for i, p := range f.Patterns {
		if i > 0 || len(f.Uses) > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (u *UseStmt) String() string {
	s := "use " + strings.Join(u.Path, "::")
	if u.Alias != "" {
		s += " as " + u.Alias
	}
	return s
}

func (p *PatternDef) String() string {
	s := "pattern " + p.Name
	if len(p.TypeParams) > 0 {
		s += "<" + strings.Join(p.TypeParams, ", ") + ">"
	}
	return s + " = " + p.Body.String()
}

func (t *TypeExpr) String() string {
	parts := make([]string, len(t.Ands))
	for i, a := range t.Ands {
		parts[i] = a.String()
	}
	return strings.Join(parts, " || ")
}

func (a *AndExpr) String() string {
	parts := make([]string, len(a.Refined))
	for i, r := range a.Refined {
		parts[i] = r.String()
	}
	return strings.Join(parts, " && ")
}

func (r *Refined) String() string {
	s := r.Atom.String()
	if r.Check != nil {
		s += "(" + r.Check.String() + ")"
	}
	return s
}

func (a *Atom) String() string {
	switch {
	case a.Anything:
		return "anything"
	case a.Nothing:
		return "nothing"
	case a.Primordial != "":
		return a.Primordial
	case a.BoolLit != nil:
		if *a.BoolLit {
			return "true"
		}
		return "false"
	case a.StrLit != nil:
		return strconv.Quote(*a.StrLit)
	case a.DecimalLit != nil:
		return strconv.FormatFloat(*a.DecimalLit, 'g', -1, 64)
	case a.IntLit != nil:
		return strconv.FormatInt(*a.IntLit, 10)
	case a.Expr != nil:
		return "${" + a.Expr.String() + "}"
	case a.SelfPath != nil:
		return a.SelfPath.String()
	case a.Deref != nil:
		return "*" + a.Deref.String()
	case a.Ref != nil:
		return a.Ref.String()
	case a.Object != nil:
		return a.Object.String()
	case a.List != nil:
		return a.List.String()
	default:
		return "<empty>"
	}
}

func (s *SelfPath) String() string {
	if len(s.Path) == 0 {
		return "self"
	}
	return "self." + strings.Join(s.Path, ".")
}

func (r *Ref) String() string {
	s := strings.Join(r.Path, "::")
	if len(r.Args) > 0 {
		parts := make([]string, len(r.Args))
		for i, a := range r.Args {
			parts[i] = a.String()
		}
		s += "<" + strings.Join(parts, ", ") + ">"
	}
	return s
}

func (o *ObjectExpr) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = f.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (f *FieldExpr) String() string {
	s := f.Name
	if f.Optional {
		s += "?"
	}
	return s + ": " + f.Value.String()
}

func (l *ListExpr) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
