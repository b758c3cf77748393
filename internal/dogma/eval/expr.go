package eval

import (
	"fmt"

	"github.com/seedwing-io/dogma-engine/internal/dogma/ir"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
)

// evalExpr evaluates the ${ ... } arithmetic/comparison sub-language
// (spec §4.3) with self bound to the pattern's current input. Operand
// kinds must agree; cross-kind arithmetic and ordering are errors, but
// == and != accept any pair (deferring to structural equality, which
// already treats cross-kind operands as simply unequal).
func evalExpr(node ir.ExprNode, self value.V) (value.V, error) {
	switch n := node.(type) {
	case ir.ExprConst:
		return n.Value, nil
	case ir.ExprSelf:
		v := self
		for _, step := range n.Path {
			next, ok := v.Field(step)
			if !ok {
				return value.V{}, fmt.Errorf("eval: self.%s: no such field", step)
			}
			v = next
		}
		return v, nil
	case ir.ExprNot:
		v, err := evalExpr(n.Operand, self)
		if err != nil {
			return value.V{}, err
		}
		b, ok := v.AsBool()
		if !ok {
			return value.V{}, fmt.Errorf("eval: ! requires a boolean operand")
		}
		return value.Bool(!b), nil
	case ir.ExprNeg:
		v, err := evalExpr(n.Operand, self)
		if err != nil {
			return value.V{}, err
		}
		switch v.Kind() {
		case value.KindInteger:
			i, _ := v.AsInt()
			return value.Int(-i), nil
		case value.KindDecimal:
			d, _ := v.AsDecimal()
			return value.Decimal(-d), nil
		default:
			return value.V{}, fmt.Errorf("eval: unary - requires an integer or decimal operand")
		}
	case ir.ExprBinary:
		return evalExprBinary(n, self)
	default:
		return value.V{}, fmt.Errorf("eval: unknown expression node %T", node)
	}
}

func evalExprBinary(n ir.ExprBinary, self value.V) (value.V, error) {
	left, err := evalExpr(n.Left, self)
	if err != nil {
		return value.V{}, err
	}

	switch n.Op {
	case ir.OpEq:
		right, err := evalExpr(n.Right, self)
		if err != nil {
			return value.V{}, err
		}
		return value.Bool(value.Equal(left, right)), nil
	case ir.OpNe:
		right, err := evalExpr(n.Right, self)
		if err != nil {
			return value.V{}, err
		}
		return value.Bool(!value.Equal(left, right)), nil
	case ir.OpAnd, ir.OpOr:
		lb, ok := left.AsBool()
		if !ok {
			return value.V{}, fmt.Errorf("eval: %s requires boolean operands", n.Op)
		}
		right, err := evalExpr(n.Right, self)
		if err != nil {
			return value.V{}, err
		}
		rb, ok := right.AsBool()
		if !ok {
			return value.V{}, fmt.Errorf("eval: %s requires boolean operands", n.Op)
		}
		if n.Op == ir.OpAnd {
			return value.Bool(lb && rb), nil
		}
		return value.Bool(lb || rb), nil
	}

	right, err := evalExpr(n.Right, self)
	if err != nil {
		return value.V{}, err
	}

	if left.Kind() == value.KindInteger && right.Kind() == value.KindInteger {
		li, _ := left.AsInt()
		ri, _ := right.AsInt()
		return evalIntOp(n.Op, li, ri)
	}
	if left.Kind() == value.KindDecimal && right.Kind() == value.KindDecimal {
		ld, _ := left.AsDecimal()
		rd, _ := right.AsDecimal()
		return evalDecimalOp(n.Op, ld, rd)
	}
	return value.V{}, fmt.Errorf("eval: %s requires operands of the same numeric kind, got %s and %s", n.Op, left.Kind(), right.Kind())
}

func evalIntOp(op ir.ExprBinaryOp, l, r int64) (value.V, error) {
	switch op {
	case ir.OpAdd:
		return value.Int(l + r), nil
	case ir.OpSub:
		return value.Int(l - r), nil
	case ir.OpMul:
		return value.Int(l * r), nil
	case ir.OpDiv:
		if r == 0 {
			return value.V{}, fmt.Errorf("eval: integer division by zero")
		}
		return value.Int(l / r), nil
	case ir.OpMod:
		if r == 0 {
			return value.V{}, fmt.Errorf("eval: integer modulo by zero")
		}
		return value.Int(l % r), nil
	case ir.OpLt:
		return value.Bool(l < r), nil
	case ir.OpLe:
		return value.Bool(l <= r), nil
	case ir.OpGt:
		return value.Bool(l > r), nil
	case ir.OpGe:
		return value.Bool(l >= r), nil
	default:
		return value.V{}, fmt.Errorf("eval: operator %s not valid for integers", op)
	}
}

func evalDecimalOp(op ir.ExprBinaryOp, l, r float64) (value.V, error) {
	switch op {
	case ir.OpAdd:
		return value.Decimal(l + r), nil
	case ir.OpSub:
		return value.Decimal(l - r), nil
	case ir.OpMul:
		return value.Decimal(l * r), nil
	case ir.OpDiv:
		return value.Decimal(l / r), nil
	case ir.OpMod:
		return value.V{}, fmt.Errorf("eval: %% is not defined for decimals")
	case ir.OpLt:
		return value.Bool(l < r), nil
	case ir.OpLe:
		return value.Bool(l <= r), nil
	case ir.OpGt:
		return value.Bool(l > r), nil
	case ir.OpGe:
		return value.Bool(l >= r), nil
	default:
		return value.V{}, fmt.Errorf("eval: operator %s not valid for decimals", op)
	}
}
