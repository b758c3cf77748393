package ast

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Expr is the minimal arithmetic/comparison sub-language used inside
// ${ ... }, per spec §4.3: literals, self, binary + - * / %, comparisons
// < <= > >= == !=, and logical && || !.
//
// Grammar (precedence climbing, lowest to highest):
//
//	expr  := or
//	or    := and ('||' and)*
//	and   := not ('&&' not)*
//	not   := '!'? cmp
//	cmp   := add (('==' | '!=' | '<' | '<=' | '>' | '>=') add)?
//	add   := mul (('+' | '-') mul)*
//	mul   := unary (('*' | '/' | '%') unary)*
//	unary := '-'? primary
type Expr struct {
	Pos lexer.Position `parser:"" json:"-"`
	Or  *ExprOr        `parser:"@@" json:"or"`
}

type ExprOr struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Ands []*ExprAnd     `parser:"@@ (OpOr @@)*" json:"ands"`
}

type ExprAnd struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Nots []*ExprNot     `parser:"@@ (OpAnd @@)*" json:"nots"`
}

type ExprNot struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Negate bool           `parser:"@'!'?" json:"negate,omitempty"`
	Cmp    *ExprCmp       `parser:"@@" json:"cmp"`
}

type ExprCmp struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Left  *ExprAdd       `parser:"@@" json:"left"`
	Op    string         `parser:"(@(OpEq | OpNe | OpGe | OpLe | OpGt | OpLt)" json:"op,omitempty"`
	Right *ExprAdd       `parser:" @@)?" json:"right,omitempty"`
}

type ExprAdd struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Head *ExprMul       `parser:"@@" json:"head"`
	Rest []*ExprAddOp   `parser:"@@*" json:"rest,omitempty"`
}

type ExprAddOp struct {
	Pos lexer.Position `parser:"" json:"-"`
	Op  string         `parser:"@('+' | '-')" json:"op"`
	Rhs *ExprMul       `parser:"@@" json:"rhs"`
}

type ExprMul struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Head *ExprUnary     `parser:"@@" json:"head"`
	Rest []*ExprMulOp   `parser:"@@*" json:"rest,omitempty"`
}

type ExprMulOp struct {
	Pos lexer.Position `parser:"" json:"-"`
	Op  string         `parser:"@('*' | '/' | '%')" json:"op"`
	Rhs *ExprUnary     `parser:"@@" json:"rhs"`
}

type ExprUnary struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Negate  bool           `parser:"@'-'?" json:"negate,omitempty"`
	Primary *ExprPrimary   `parser:"@@" json:"primary"`
}

// ExprPrimary is the leaf of the expression grammar.
type ExprPrimary struct {
	Pos        lexer.Position `parser:"" json:"-"`
	IntLit     *int64         `parser:"  @Integer" json:"int_lit,omitempty"`
	DecimalLit *float64       `parser:"| @Decimal" json:"decimal_lit,omitempty"`
	StrLit     *string        `parser:"| @String" json:"str_lit,omitempty"`
	BoolLit    *bool          `parser:"| @('true' | 'false')" json:"bool_lit,omitempty"`
	SelfPath   *SelfPath      `parser:"| @@" json:"self_path,omitempty"`
	Paren      *Expr          `parser:"| '(' @@ ')'" json:"paren,omitempty"`
}

func (e *Expr) String() string { return e.Or.String() }

func (o *ExprOr) String() string {
	parts := make([]string, len(o.Ands))
	for i, a := range o.Ands {
		parts[i] = a.String()
	}
	return strings.Join(parts, " || ")
}

func (a *ExprAnd) String() string {
	parts := make([]string, len(a.Nots))
	for i, n := range a.Nots {
		parts[i] = n.String()
	}
	return strings.Join(parts, " && ")
}

func (n *ExprNot) String() string {
	if n.Negate {
		return "!" + n.Cmp.String()
	}
	return n.Cmp.String()
}

func (c *ExprCmp) String() string {
	if c.Op == "" {
		return c.Left.String()
	}
	return c.Left.String() + " " + c.Op + " " + c.Right.String()
}

func (a *ExprAdd) String() string {
	s := a.Head.String()
	for _, r := range a.Rest {
		s += " " + r.Op + " " + r.Rhs.String()
	}
	return s
}

func (m *ExprMul) String() string {
	s := m.Head.String()
	for _, r := range m.Rest {
		s += " " + r.Op + " " + r.Rhs.String()
	}
	return s
}

func (u *ExprUnary) String() string {
	if u.Negate {
		return "-" + u.Primary.String()
	}
	return u.Primary.String()
}

func (p *ExprPrimary) String() string {
	switch {
	case p.IntLit != nil:
		return strconv.FormatInt(*p.IntLit, 10)
	case p.DecimalLit != nil:
		return strconv.FormatFloat(*p.DecimalLit, 'g', -1, 64)
	case p.StrLit != nil:
		return strconv.Quote(*p.StrLit)
	case p.BoolLit != nil:
		if *p.BoolLit {
			return "true"
		}
		return "false"
	case p.SelfPath != nil:
		return p.SelfPath.String()
	case p.Paren != nil:
		return "(" + p.Paren.String() + ")"
	default:
		return "<empty>"
	}
}
