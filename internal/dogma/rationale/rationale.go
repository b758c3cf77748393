// Package rationale implements the rationale tree (spec §3, §4.5): a tree
// isomorphic to the pattern being evaluated, carrying a verdict and
// per-sub-pattern detail. Rationales are build-once, read-many.
package rationale

import (
	"github.com/seedwing-io/dogma-engine/internal/dogma/ir"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// VerdictKind is the three-way result of one sub-evaluation.
type VerdictKind int

const (
	Satisfied VerdictKind = iota
	Unsatisfied
	Error
)

// Verdict carries the three-way result plus, for Error, the error kind.
type Verdict struct {
	Kind      VerdictKind
	ErrorKind dogmaerr.Kind
}

func Ok() Verdict           { return Verdict{Kind: Satisfied} }
func No() Verdict           { return Verdict{Kind: Unsatisfied} }
func Err(k dogmaerr.Kind) Verdict { return Verdict{Kind: Error, ErrorKind: k} }

func (v Verdict) IsError() bool { return v.Kind == Error }
func (v Verdict) IsOk() bool    { return v.Kind == Satisfied }

// R is one node of the rationale tree, per spec §3.
type R struct {
	Verdict       Verdict
	Pattern       ir.Handle
	Input         value.V
	Output        value.V
	Children      []*R
	Severity      string
	Authoritative bool
	// Reason is the pattern's reason metadata, if it has any.
	Reason string
	// Label annotates why this node exists when Pattern alone is
	// ambiguous (e.g. which object field, which or-branch).
	Label string
}

// New builds a rationale node, applying metadata looked up from arena for
// Pattern, per spec §4.5 ("metadata attributes ... propagate to the
// rationale node created for that pattern").
func New(arena *ir.Arena, pattern ir.Handle, input, output value.V, verdict Verdict, children ...*R) *R {
	r := &R{
		Verdict:  verdict,
		Pattern:  pattern,
		Input:    input,
		Output:   output,
		Children: children,
	}
	if meta, ok := arena.Meta(pattern); ok {
		r.Severity = meta.Severity
		r.Authoritative = meta.Authoritative
		r.Reason = meta.Reason
	}
	return r
}

// WithLabel returns r annotated with a label (e.g. a failing field name),
// for callers building per-field or per-branch rationale nodes.
func (r *R) WithLabel(label string) *R {
	r.Label = label
	return r
}

// CombineAnd computes the spec §4.3/§7 and-verdict from evaluated
// children: error if any child errored, else unsatisfied if any child is
// unsatisfied, else satisfied. and never short-circuits — callers must
// have already evaluated every child.
func CombineAnd(children []*R) Verdict {
	anyUnsatisfied := false
	for _, c := range children {
		if c.Verdict.IsError() {
			return Err(c.Verdict.ErrorKind)
		}
		if !c.Verdict.IsOk() {
			anyUnsatisfied = true
		}
	}
	if anyUnsatisfied {
		return No()
	}
	return Ok()
}

// CombineOr computes the spec §7 or-verdict for the case where every
// branch has been attempted and none is satisfied: error if every child
// errored, else unsatisfied.
func CombineOr(children []*R) Verdict {
	if len(children) == 0 {
		return No()
	}
	for _, c := range children {
		if !c.Verdict.IsError() {
			return No()
		}
	}
	return Err(children[len(children)-1].Verdict.ErrorKind)
}
