// Package eval implements the Pattern IR evaluator (spec §4.3): a
// recursive, cooperatively-async matcher producing a three-way verdict,
// an output value, and a rationale tree for every Dogma pattern. Its
// control-flow shape mirrors the teacher's policy/dsl/evaluator.go
// recursive Condition walker, generalised from a single ABAC condition
// tree to the full Pattern IR closed variant.
package eval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/ir"
	"github.com/seedwing-io/dogma-engine/internal/dogma/metrics"
	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/resolve"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// DefaultMaxDepth bounds non-cyclic recursion when a caller does not
// configure one explicitly.
const DefaultMaxDepth = 1000

// Evaluator evaluates patterns from a single immutable World. It holds no
// per-evaluation state, so one Evaluator is safe to share across
// concurrent evaluations (spec §5).
type Evaluator struct {
	corefuncs *corefunc.Registry
	maxDepth  int
}

// New returns an Evaluator. corefuncs may be nil if the World registers
// none. maxDepth <= 0 selects DefaultMaxDepth.
func New(corefuncs *corefunc.Registry, maxDepth int) *Evaluator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Evaluator{corefuncs: corefuncs, maxDepth: maxDepth}
}

// Evaluate runs patternID from world against input, with args bound as
// the pattern's parameter environment if it is parameterised. This is
// the evaluate(world, pattern_id, args, input) operation of spec §4.3.
func (e *Evaluator) Evaluate(ctx context.Context, world *resolve.World, patternID string, args []ir.Handle, input value.V) (rationale.Verdict, value.V, *rationale.R, error) {
	h, ok := world.Patterns[patternID]
	if !ok {
		return rationale.Verdict{}, value.Null(), nil, fmt.Errorf("eval: unknown pattern %q", patternID)
	}

	corrID := ulid.Make().String()
	ctx = context.WithValue(ctx, correlationIDKey{}, corrID)
	slog.DebugContext(ctx, "evaluation started", "pattern", patternID, "correlation_id", corrID)

	stop := startTimer()
	defer func() { metrics.EvaluationDuration.Observe(stop()) }()

	s := &session{
		arena:     world.Arena,
		corefuncs: e.corefuncs,
		maxDepth:  e.maxDepth,
		world:     worldHandle{world},
		trail:     make(map[trailKey]bool),
	}

	var env *envFrame
	if len(args) > 0 {
		env = &envFrame{args: args}
	}

	verdict, output, r := s.eval(ctx, h, env, input, 0)
	metrics.EvaluationsTotal.WithLabelValues(verdictLabel(verdict)).Inc()
	slog.DebugContext(ctx, "evaluation finished", "pattern", patternID, "correlation_id", corrID, "verdict", verdictLabel(verdict))
	return verdict, output, r, nil
}

func verdictLabel(v rationale.Verdict) string {
	switch v.Kind {
	case rationale.Satisfied:
		return "satisfied"
	case rationale.Unsatisfied:
		return "unsatisfied"
	default:
		return "error"
	}
}

type correlationIDKey struct{}

// envFrame is one activation record of a Ref/Parameter pair: args are the
// handles a Ref bound to the callee's formal parameters, evaluated (when
// a Parameter node is reached) in outer, the caller's own frame — a
// parameterised pattern's type argument is itself written in the
// caller's scope, not the callee's.
type envFrame struct {
	args  []ir.Handle
	outer *envFrame
}

// trailKey identifies one (pattern, input) activation for the recursion
// trail (spec §4.3).
type trailKey struct {
	target ir.Handle
	input  string
}

// worldHandle adapts a resolve.World to corefunc.WorldHandle, the narrow
// read-only view core functions receive.
type worldHandle struct {
	w *resolve.World
}

func (h worldHandle) Lookup(qualifiedID string) (any, bool) {
	patternHandle, ok := h.w.Patterns[qualifiedID]
	if !ok {
		return nil, false
	}
	return patternHandle, true
}

// session carries the state of one top-level Evaluate call: the World's
// arena, the recursion trail, and the depth counter. It is not safe for
// concurrent use by design — one evaluation is single-threaded (spec
// §5); concurrency across evaluations comes from running multiple
// sessions in parallel goroutines, each against the shared World.
type session struct {
	arena     *ir.Arena
	corefuncs *corefunc.Registry
	world     worldHandle
	maxDepth  int
	trail     map[trailKey]bool
}

func (s *session) eval(ctx context.Context, h ir.Handle, env *envFrame, input value.V, depth int) (rationale.Verdict, value.V, *rationale.R) {
	if err := ctx.Err(); err != nil {
		return leaf(s.arena, h, input, rationale.Err(dogmaerr.KindCancelled))
	}
	if depth > s.maxDepth {
		metrics.RecursionBoundHit.Inc()
		return leaf(s.arena, h, input, rationale.Err(dogmaerr.KindRecursionExceeded))
	}

	switch node := s.arena.Get(h).(type) {
	case ir.Anything:
		return leaf(s.arena, h, input, rationale.Ok())
	case ir.Nothing:
		return leaf(s.arena, h, input, rationale.No())
	case ir.Primordial:
		if node.Kind == input.Kind() {
			return leaf(s.arena, h, input, rationale.Ok())
		}
		return leaf(s.arena, h, input, rationale.No())
	case ir.Const:
		if value.Equal(input, node.Value) {
			return leaf(s.arena, h, input, rationale.Ok())
		}
		return leaf(s.arena, h, input, rationale.No())
	case ir.Object:
		return s.evalObject(ctx, h, node, env, input, depth)
	case ir.List:
		return s.evalList(ctx, h, node, env, input, depth)
	case ir.Expression:
		return s.evalExpression(h, node, input)
	case ir.Traversal:
		return s.evalTraversal(h, node, input)
	case ir.Refinement:
		return s.evalRefinement(ctx, h, node, env, input, depth)
	case ir.Logical:
		return s.evalLogical(ctx, h, node, env, input, depth)
	case ir.Ref:
		return s.evalRef(ctx, h, node, env, input, depth)
	case ir.Parameter:
		return s.evalParameter(ctx, h, node, env, input, depth)
	case ir.Function:
		return s.evalFunction(ctx, h, node, input)
	case ir.Deref:
		return s.evalDeref(ctx, h, node, env, input, depth)
	default:
		return leaf(s.arena, h, input, rationale.Err(dogmaerr.KindType))
	}
}

func (s *session) evalObject(ctx context.Context, h ir.Handle, node ir.Object, env *envFrame, input value.V, depth int) (rationale.Verdict, value.V, *rationale.R) {
	fields, ok := input.AsObject()
	if !ok {
		return leaf(s.arena, h, input, rationale.No())
	}

	byName := make(map[string]ir.ObjectField, len(node.Fields))
	for _, f := range node.Fields {
		byName[f.Name] = f
	}

	var children []*rationale.R
	matched := make(map[string]bool, len(node.Fields))
	outFields := make([]value.Field, 0, len(fields))

	// Object fields evaluate in the input's iteration order (spec §5).
	for _, f := range fields {
		pf, declared := byName[f.Name]
		if !declared {
			outFields = append(outFields, f)
			continue
		}
		matched[f.Name] = true
		v, out, r := s.eval(ctx, pf.Pattern, env, f.Value, depth+1)
		children = append(children, r.WithLabel(f.Name))
		_ = v
		outFields = append(outFields, value.Field{Name: f.Name, Value: out})
	}

	for _, pf := range node.Fields {
		if !pf.Optional && !matched[pf.Name] {
			children = append(children, &rationale.R{
				Verdict: rationale.No(),
				Pattern: pf.Pattern,
				Input:   value.Null(),
				Output:  value.Null(),
				Label:   pf.Name + " (missing)",
			})
		}
	}

	verdict := rationale.CombineAnd(children)
	output := value.Object(outFields)
	return verdict, output, rationale.New(s.arena, h, input, output, verdict, children...)
}

func (s *session) evalList(ctx context.Context, h ir.Handle, node ir.List, env *envFrame, input value.V, depth int) (rationale.Verdict, value.V, *rationale.R) {
	items, ok := input.AsList()
	if !ok || len(items) != len(node.Elems) {
		return leaf(s.arena, h, input, rationale.No())
	}

	children := make([]*rationale.R, len(items))
	outItems := make([]value.V, len(items))
	for i, elemHandle := range node.Elems {
		_, out, r := s.eval(ctx, elemHandle, env, items[i], depth+1)
		children[i] = r
		outItems[i] = out
	}

	verdict := rationale.CombineAnd(children)
	output := value.List(outItems)
	return verdict, output, rationale.New(s.arena, h, input, output, verdict, children...)
}

func (s *session) evalExpression(h ir.Handle, node ir.Expression, input value.V) (rationale.Verdict, value.V, *rationale.R) {
	result, err := evalExpr(node.Expr, input)
	if err != nil {
		return leaf(s.arena, h, input, rationale.Err(dogmaerr.KindType))
	}
	b, ok := result.AsBool()
	if !ok {
		return leaf(s.arena, h, input, rationale.Err(dogmaerr.KindType))
	}
	if b {
		return leaf(s.arena, h, input, rationale.Ok())
	}
	return leaf(s.arena, h, input, rationale.No())
}

func (s *session) evalTraversal(h ir.Handle, node ir.Traversal, input value.V) (rationale.Verdict, value.V, *rationale.R) {
	v := input
	for _, step := range node.Path {
		next, ok := v.Field(step)
		if !ok {
			return leaf(s.arena, h, input, rationale.No())
		}
		v = next
	}
	verdict := rationale.Ok()
	return verdict, v, rationale.New(s.arena, h, input, v, verdict)
}

func (s *session) evalRefinement(ctx context.Context, h ir.Handle, node ir.Refinement, env *envFrame, input value.V, depth int) (rationale.Verdict, value.V, *rationale.R) {
	innerVerdict, innerOutput, innerR := s.eval(ctx, node.Inner, env, input, depth+1)
	if !innerVerdict.IsOk() {
		return innerVerdict, innerOutput, rationale.New(s.arena, h, input, innerOutput, innerVerdict, innerR)
	}
	checkVerdict, checkOutput, checkR := s.eval(ctx, node.Check, env, innerOutput, depth+1)
	return checkVerdict, checkOutput, rationale.New(s.arena, h, input, checkOutput, checkVerdict, innerR, checkR)
}

func (s *session) evalLogical(ctx context.Context, h ir.Handle, node ir.Logical, env *envFrame, input value.V, depth int) (rationale.Verdict, value.V, *rationale.R) {
	if node.Op == ir.LogicalAnd {
		children := make([]*rationale.R, len(node.Branches))
		for i, b := range node.Branches {
			_, _, r := s.eval(ctx, b, env, input, depth+1)
			children[i] = r
		}
		verdict := rationale.CombineAnd(children)
		return verdict, input, rationale.New(s.arena, h, input, input, verdict, children...)
	}

	// Logical or: evaluate branches in declaration order, short-circuit
	// at the first success, but still report every attempted branch.
	var children []*rationale.R
	for _, b := range node.Branches {
		v, out, r := s.eval(ctx, b, env, input, depth+1)
		children = append(children, r)
		if v.IsOk() {
			return v, out, rationale.New(s.arena, h, input, out, v, children...)
		}
	}
	verdict := rationale.CombineOr(children)
	return verdict, input, rationale.New(s.arena, h, input, input, verdict, children...)
}

func (s *session) evalRef(ctx context.Context, h ir.Handle, node ir.Ref, env *envFrame, input value.V, depth int) (rationale.Verdict, value.V, *rationale.R) {
	key := trailKey{target: node.Target, input: identityKey(input)}
	if s.trail[key] {
		// Re-entering the same pattern with an identical input: treated
		// as satisfied to guarantee termination (spec §4.3, least
		// fixed-point approximation for cyclic references).
		verdict := rationale.Ok()
		return verdict, input, (&rationale.R{Verdict: verdict, Pattern: h, Input: input, Output: input, Label: "cyclic re-entry"})
	}
	s.trail[key] = true
	defer delete(s.trail, key)

	childEnv := env
	if len(node.Args) > 0 {
		childEnv = &envFrame{args: node.Args, outer: env}
	}

	verdict, output, childR := s.eval(ctx, node.Target, childEnv, input, depth+1)
	return verdict, output, rationale.New(s.arena, h, input, output, verdict, childR)
}

func (s *session) evalParameter(ctx context.Context, h ir.Handle, node ir.Parameter, env *envFrame, input value.V, depth int) (rationale.Verdict, value.V, *rationale.R) {
	if env == nil || node.Index < 0 || node.Index >= len(env.args) {
		return leaf(s.arena, h, input, rationale.Err(dogmaerr.KindType))
	}
	// The bound argument pattern was written in the caller's scope, so it
	// evaluates against the caller's (outer) parameter environment.
	verdict, output, childR := s.eval(ctx, env.args[node.Index], env.outer, input, depth+1)
	return verdict, output, rationale.New(s.arena, h, input, output, verdict, childR)
}

func (s *session) evalFunction(ctx context.Context, h ir.Handle, node ir.Function, input value.V) (rationale.Verdict, value.V, *rationale.R) {
	boundArgs := make([]value.V, len(node.Args))
	for i, argHandle := range node.Args {
		c, ok := s.arena.Get(argHandle).(ir.Const)
		if !ok {
			return leaf(s.arena, h, input, rationale.Err(dogmaerr.KindCoreFunction))
		}
		boundArgs[i] = c.Value
	}

	if s.corefuncs == nil {
		return leaf(s.arena, h, input, rationale.Err(dogmaerr.KindPatternNotFound))
	}

	verdict, output, child := s.corefuncs.Call(ctx, node.FuncID, input, boundArgs, s.world)
	if child != nil {
		return verdict, output, rationale.New(s.arena, h, input, output, verdict, child)
	}
	return verdict, output, rationale.New(s.arena, h, input, output, verdict)
}

func (s *session) evalDeref(ctx context.Context, h ir.Handle, node ir.Deref, env *envFrame, input value.V, depth int) (rationale.Verdict, value.V, *rationale.R) {
	innerVerdict, innerOutput, innerR := s.eval(ctx, node.Inner, env, input, depth+1)
	if !innerVerdict.IsOk() {
		return innerVerdict, innerOutput, rationale.New(s.arena, h, input, innerOutput, innerVerdict, innerR)
	}

	reified := reify(s.arena, innerOutput)
	verdict, output, reifiedR := s.eval(ctx, reified, env, input, depth+1)
	return verdict, output, rationale.New(s.arena, h, input, output, verdict, innerR, reifiedR)
}

// reify allocates an ephemeral Pattern IR node reproducing v's exact
// structure: scalars become Const, lists and objects recurse
// structurally (spec §4.2's "data-driven pattern reification"). Object
// fields reified this way are never optional — a concrete value has no
// notion of an absent field.
func reify(arena *ir.Arena, v value.V) ir.Handle {
	switch v.Kind() {
	case value.KindList:
		items, _ := v.AsList()
		elems := make([]ir.Handle, len(items))
		for i, it := range items {
			elems[i] = reify(arena, it)
		}
		return arena.Add(ir.List{Elems: elems})
	case value.KindObject:
		fields, _ := v.AsObject()
		out := make([]ir.ObjectField, len(fields))
		for i, f := range fields {
			out[i] = ir.ObjectField{Name: f.Name, Optional: false, Pattern: reify(arena, f.Value)}
		}
		return arena.Add(ir.Object{Fields: out})
	default:
		return arena.Add(ir.Const{Value: v})
	}
}

func leaf(arena *ir.Arena, h ir.Handle, input value.V, verdict rationale.Verdict) (rationale.Verdict, value.V, *rationale.R) {
	return verdict, input, rationale.New(arena, h, input, input, verdict)
}
