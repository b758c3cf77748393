package resolve

import (
	"fmt"

	"github.com/seedwing-io/dogma-engine/internal/dogma/ast"
	"github.com/seedwing-io/dogma-engine/internal/dogma/ir"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
)

// lowerExpr lowers the ${ ... } arithmetic/comparison AST (ast.Expr) into
// the evaluator's closed ir.ExprNode form, one precedence level at a time,
// collapsing any level with a single operand rather than wrapping it in a
// needless binary/not node.
func lowerExpr(e *ast.Expr) (ir.ExprNode, error) {
	return lowerExprOr(e.Or)
}

func lowerExprOr(o *ast.ExprOr) (ir.ExprNode, error) {
	node, err := lowerExprAnd(o.Ands[0])
	if err != nil {
		return nil, err
	}
	for _, rest := range o.Ands[1:] {
		rhs, err := lowerExprAnd(rest)
		if err != nil {
			return nil, err
		}
		node = ir.ExprBinary{Op: ir.OpOr, Left: node, Right: rhs}
	}
	return node, nil
}

func lowerExprAnd(a *ast.ExprAnd) (ir.ExprNode, error) {
	node, err := lowerExprNot(a.Nots[0])
	if err != nil {
		return nil, err
	}
	for _, rest := range a.Nots[1:] {
		rhs, err := lowerExprNot(rest)
		if err != nil {
			return nil, err
		}
		node = ir.ExprBinary{Op: ir.OpAnd, Left: node, Right: rhs}
	}
	return node, nil
}

func lowerExprNot(n *ast.ExprNot) (ir.ExprNode, error) {
	node, err := lowerExprCmp(n.Cmp)
	if err != nil {
		return nil, err
	}
	if n.Negate {
		return ir.ExprNot{Operand: node}, nil
	}
	return node, nil
}

func lowerExprCmp(c *ast.ExprCmp) (ir.ExprNode, error) {
	left, err := lowerExprAdd(c.Left)
	if err != nil {
		return nil, err
	}
	if c.Op == "" {
		return left, nil
	}
	right, err := lowerExprAdd(c.Right)
	if err != nil {
		return nil, err
	}
	op, err := cmpOp(c.Op)
	if err != nil {
		return nil, err
	}
	return ir.ExprBinary{Op: op, Left: left, Right: right}, nil
}

func cmpOp(s string) (ir.ExprBinaryOp, error) {
	switch s {
	case "==":
		return ir.OpEq, nil
	case "!=":
		return ir.OpNe, nil
	case "<":
		return ir.OpLt, nil
	case "<=":
		return ir.OpLe, nil
	case ">":
		return ir.OpGt, nil
	case ">=":
		return ir.OpGe, nil
	default:
		return "", fmt.Errorf("resolve: unknown comparison operator %q", s)
	}
}

func lowerExprAdd(a *ast.ExprAdd) (ir.ExprNode, error) {
	node, err := lowerExprMul(a.Head)
	if err != nil {
		return nil, err
	}
	for _, op := range a.Rest {
		rhs, err := lowerExprMul(op.Rhs)
		if err != nil {
			return nil, err
		}
		var bop ir.ExprBinaryOp
		if op.Op == "+" {
			bop = ir.OpAdd
		} else {
			bop = ir.OpSub
		}
		node = ir.ExprBinary{Op: bop, Left: node, Right: rhs}
	}
	return node, nil
}

func lowerExprMul(m *ast.ExprMul) (ir.ExprNode, error) {
	node, err := lowerExprUnary(m.Head)
	if err != nil {
		return nil, err
	}
	for _, op := range m.Rest {
		rhs, err := lowerExprUnary(op.Rhs)
		if err != nil {
			return nil, err
		}
		var bop ir.ExprBinaryOp
		switch op.Op {
		case "*":
			bop = ir.OpMul
		case "/":
			bop = ir.OpDiv
		default:
			bop = ir.OpMod
		}
		node = ir.ExprBinary{Op: bop, Left: node, Right: rhs}
	}
	return node, nil
}

func lowerExprUnary(u *ast.ExprUnary) (ir.ExprNode, error) {
	node, err := lowerExprPrimary(u.Primary)
	if err != nil {
		return nil, err
	}
	if u.Negate {
		return ir.ExprNeg{Operand: node}, nil
	}
	return node, nil
}

func lowerExprPrimary(p *ast.ExprPrimary) (ir.ExprNode, error) {
	switch {
	case p.IntLit != nil:
		return ir.ExprConst{Value: value.Int(*p.IntLit)}, nil
	case p.DecimalLit != nil:
		return ir.ExprConst{Value: value.Decimal(*p.DecimalLit)}, nil
	case p.StrLit != nil:
		return ir.ExprConst{Value: value.Str(*p.StrLit)}, nil
	case p.BoolLit != nil:
		return ir.ExprConst{Value: value.Bool(*p.BoolLit)}, nil
	case p.SelfPath != nil:
		return ir.ExprSelf{Path: p.SelfPath.Path}, nil
	case p.Paren != nil:
		return lowerExpr(p.Paren)
	default:
		return nil, fmt.Errorf("resolve: empty expression primary")
	}
}
