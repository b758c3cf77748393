// Package ir defines the Pattern IR (spec §3): the compiled, linked
// representation each Dogma pattern evaluates to. Nodes are addressed by
// stable Handle values into an Arena so that Ref nodes can point at
// patterns not yet allocated (forward references) and at themselves
// (cyclic pattern graphs), per spec §9.
package ir

import "github.com/seedwing-io/dogma-engine/internal/dogma/value"

// Handle addresses a node in an Arena. The zero Handle is never valid;
// arenas allocate starting at 1 so a missing Handle reads as invalid.
type Handle int

// Pattern is the closed set of Pattern IR node kinds from spec §3. It is
// a marker interface: the evaluator type-switches over the concrete
// implementations below rather than doing virtual dispatch, mirroring
// how the teacher's evaluator dispatches on which Condition field is set.
type Pattern interface {
	isPattern()
}

type Anything struct{}

type Nothing struct{}

// Primordial matches values of a single runtime kind.
type Primordial struct {
	Kind value.Kind
}

// Const matches values structurally equal to Value.
type Const struct {
	Value value.V
}

// ObjectField is one declared field of an Object pattern.
type ObjectField struct {
	Name     string
	Optional bool
	Pattern  Handle
}

// Object matches an Object value against named field patterns.
type Object struct {
	Fields []ObjectField
}

// List matches a List value element-by-element against Elems.
type List struct {
	Elems []Handle
}

// Expression evaluates an arithmetic/comparison expression against the
// input (self); satisfied iff the result is Boolean true.
type Expression struct {
	Expr ExprNode
}

// Traversal projects into the input by walking Path.
type Traversal struct {
	Path []string
}

// Refinement evaluates Inner, then evaluates Check against Inner's output.
type Refinement struct {
	Inner Handle
	Check Handle
}

// LogicalOp distinguishes Logical's two combinators.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

// Logical is the and/or combinator over Branches.
type Logical struct {
	Op       LogicalOp
	Branches []Handle
}

// Ref references another pattern, with Args bound to the target's formal
// parameters (by position, matching Target's own Parameter nodes).
type Ref struct {
	Target Handle
	Args   []Handle
}

// Parameter looks up the bound sub-pattern at Index in the evaluator's
// current parameter environment.
type Parameter struct {
	Index int
}

// Function calls a registered core function by id with Args as its
// (already-IR) argument patterns.
type Function struct {
	FuncID string
	Args   []Handle
}

// Deref evaluates Inner purely to produce a value, then reifies that
// value as an ephemeral pattern (spec §9) evaluated against the original
// input.
type Deref struct {
	Inner Handle
}

func (Anything) isPattern()   {}
func (Nothing) isPattern()    {}
func (Primordial) isPattern() {}
func (Const) isPattern()      {}
func (Object) isPattern()     {}
func (List) isPattern()       {}
func (Expression) isPattern() {}
func (Traversal) isPattern()  {}
func (Refinement) isPattern() {}
func (Logical) isPattern()    {}
func (Ref) isPattern()        {}
func (Parameter) isPattern()  {}
func (Function) isPattern()   {}
func (Deref) isPattern()      {}

// Metadata carries the severity/authoritative/reason attributes attached
// to a pattern definition via #[...] attribute comments (spec §4.5).
type Metadata struct {
	Severity      string
	Authoritative bool
	Reason        string
}

// Arena is an append-only store of Pattern nodes addressed by Handle,
// allowing forward references: Alloc reserves a Handle before the node's
// contents are known, and Set fills it in once linking completes.
type Arena struct {
	nodes []Pattern
	meta  map[Handle]Metadata
}

// NewArena returns an empty Arena.
func NewArena() *Arena {
	return &Arena{nodes: make([]Pattern, 1), meta: make(map[Handle]Metadata)}
}

// Alloc reserves a new Handle with a nil node, to be filled by Set.
func (a *Arena) Alloc() Handle {
	a.nodes = append(a.nodes, nil)
	return Handle(len(a.nodes) - 1)
}

// Set fills in the node at h, previously reserved by Alloc.
func (a *Arena) Set(h Handle, p Pattern) {
	a.nodes[h] = p
}

// Add allocates and sets a node in one step, for nodes with no internal
// forward references.
func (a *Arena) Add(p Pattern) Handle {
	h := a.Alloc()
	a.Set(h, p)
	return h
}

// Get returns the node at h. Panics if h is out of range or was never
// Set; both indicate a linker bug, not a runtime condition.
func (a *Arena) Get(h Handle) Pattern {
	p := a.nodes[h]
	if p == nil {
		panic("ir: handle was allocated but never linked")
	}
	return p
}

// SetMeta attaches metadata to h.
func (a *Arena) SetMeta(h Handle, m Metadata) {
	a.meta[h] = m
}

// Meta returns the metadata attached to h, if any.
func (a *Arena) Meta(h Handle) (Metadata, bool) {
	m, ok := a.meta[h]
	return m, ok
}

// Len reports the number of allocated handles, including the unused zero
// handle.
func (a *Arena) Len() int { return len(a.nodes) }
