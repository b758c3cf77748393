// Package resolve implements the resolver and linker (spec §4.2): name
// binding across modules, use-statement rewriting, parameter arity
// checking, and AST-to-Pattern-IR lowering. It follows the teacher's
// policy/compiler.go two-pass shape: one pass to assemble the qualified-id
// table (so forward references and cycles resolve), one pass to lower
// bodies against that table.
package resolve

import (
	"fmt"
	"strings"

	"github.com/seedwing-io/dogma-engine/internal/dogma/ast"
	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/ir"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// SourceFile pairs a parsed file with the module path it was loaded from,
// per spec §4.2's module-layout rule: the directory path from a policy
// root to the file, joined with "::".
type SourceFile struct {
	ModulePrefix string // e.g. "sre", or "" for a root-level file.
	Stem         string // the file's basename without extension, e.g. "deploy".
	File         *ast.File
}

// ModuleID returns the module prefix this file's patterns are defined
// under, e.g. "sre::deploy".
func (s SourceFile) ModuleID() string {
	if s.ModulePrefix == "" {
		return s.Stem
	}
	return s.ModulePrefix + "::" + s.Stem
}

// World is the resolver/linker's output: an arena of linked Pattern IR
// nodes plus the qualified-id -> top-level-Handle table.
type World struct {
	Arena    *ir.Arena
	Patterns map[string]ir.Handle
}

type patternInfo struct {
	handle ir.Handle
	arity  int
}

// Compile resolves and links every pattern definition across sources.
// Name collisions, unresolved references, and arity mismatches are fatal,
// per spec §4.2. corefuncs resolves identifiers that name a registered
// core function rather than a user pattern (spec §4.4); it may be nil if
// no core functions are in play.
func Compile(sources []SourceFile, corefuncs *corefunc.Registry) (*World, error) {
	arena := ir.NewArena()
	globals := make(map[string]patternInfo)

	// Pass 1: assemble qualified ids and reserve handles, so Ref nodes
	// can be linked regardless of declaration order (forward references
	// are legal per spec §4.2) and self-reference (cycles) resolves.
	for _, src := range sources {
		for _, pd := range src.File.Patterns {
			qid := src.ModuleID() + "::" + pd.Name
			if _, exists := globals[qid]; exists {
				return nil, dogmaerr.NewResolutionError("duplicate pattern definition", "pattern", qid)
			}
			// A pattern's short name is what shadows a built-in in scope
			// lookups (lowerRef checks l.scope before l.corefuncs), so the
			// collision has to be caught here, across all sources and
			// built-ins together, per spec §4.2 step 1 — not left to
			// silently shadow the core function at reference time.
			if corefuncs != nil {
				if _, ok := corefuncs.Lookup(pd.Name); ok {
					return nil, dogmaerr.NewResolutionError("pattern name collides with a built-in core function", "name", pd.Name)
				}
			}
			globals[qid] = patternInfo{handle: arena.Alloc(), arity: len(pd.TypeParams)}
		}
	}

	// Pass 2: build each file's local scope (use-statements + same-file
	// short names) and lower pattern bodies into the reserved handles.
	for _, src := range sources {
		scope, err := buildScope(src, globals)
		if err != nil {
			return nil, err
		}
		for _, pd := range src.File.Patterns {
			qid := src.ModuleID() + "::" + pd.Name
			info := globals[qid]
			typeParams := make(map[string]int, len(pd.TypeParams))
			for i, p := range pd.TypeParams {
				typeParams[p] = i
			}
			l := &linker{arena: arena, globals: globals, scope: scope, typeParams: typeParams, corefuncs: corefuncs}
			h, err := l.lowerTypeExpr(pd.Body)
			if err != nil {
				return nil, fmt.Errorf("pattern %s: %w", qid, err)
			}
			// The reserved top-level handle for this pattern is an
			// alias of its body's handle, keeping Ref nodes elsewhere
			// (already pointing at info.handle) valid without a
			// second rewrite pass.
			arena.Set(info.handle, arena.Get(h))
			if meta, ok := arena.Meta(h); ok {
				arena.SetMeta(info.handle, meta)
			}
			if meta := parseAttrs(pd.Attrs); meta != (ir.Metadata{}) {
				arena.SetMeta(info.handle, meta)
			}
		}
	}

	patterns := make(map[string]ir.Handle, len(globals))
	for qid, info := range globals {
		patterns[qid] = info.handle
	}
	return &World{Arena: arena, Patterns: patterns}, nil
}

// buildScope assembles { short-name -> qualified id } from use statements
// and same-file pattern definitions, per spec §4.2 step 2. Conflicts
// within a file are fatal.
func buildScope(src SourceFile, globals map[string]patternInfo) (map[string]string, error) {
	scope := make(map[string]string)
	for _, pd := range src.File.Patterns {
		short := pd.Name
		qid := src.ModuleID() + "::" + pd.Name
		if existing, ok := scope[short]; ok && existing != qid {
			return nil, dogmaerr.NewResolutionError("duplicate local name", "name", short, "file", src.ModuleID())
		}
		scope[short] = qid
	}
	for _, u := range src.File.Uses {
		qid := strings.Join(u.Path, "::")
		short := u.Alias
		if short == "" {
			short = u.Path[len(u.Path)-1]
		}
		if _, ok := globals[qid]; !ok {
			return nil, dogmaerr.NewResolutionError("use of unknown pattern", "pattern", qid)
		}
		if existing, ok := scope[short]; ok && existing != qid {
			return nil, dogmaerr.NewResolutionError("duplicate use alias", "name", short, "file", src.ModuleID())
		}
		scope[short] = qid
	}
	return scope, nil
}

// parseAttrs parses #[...] attribute comments into Metadata. The
// informal syntax is a comma-separated list of bare flags
// (e.g. authoritative) or key="value" pairs (e.g. severity="high").
func parseAttrs(attrs []string) ir.Metadata {
	var meta ir.Metadata
	for _, a := range attrs {
		inner := strings.TrimSuffix(strings.TrimPrefix(a, "#["), "]")
		for _, part := range strings.Split(inner, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if part == "authoritative" {
				meta.Authoritative = true
				continue
			}
			if k, v, ok := strings.Cut(part, "="); ok {
				k = strings.TrimSpace(k)
				v = strings.Trim(strings.TrimSpace(v), `"`)
				switch k {
				case "severity":
					meta.Severity = v
				case "reason":
					meta.Reason = v
				}
			}
		}
	}
	return meta
}

// linker lowers one pattern definition's AST into Pattern IR.
type linker struct {
	arena      *ir.Arena
	globals    map[string]patternInfo
	scope      map[string]string
	typeParams map[string]int
	corefuncs  *corefunc.Registry
}

func (l *linker) lowerTypeExpr(t *ast.TypeExpr) (ir.Handle, error) {
	if len(t.Ands) == 1 {
		return l.lowerAndExpr(t.Ands[0])
	}
	branches := make([]ir.Handle, len(t.Ands))
	for i, a := range t.Ands {
		h, err := l.lowerAndExpr(a)
		if err != nil {
			return 0, err
		}
		branches[i] = h
	}
	return l.arena.Add(ir.Logical{Op: ir.LogicalOr, Branches: branches}), nil
}

func (l *linker) lowerAndExpr(a *ast.AndExpr) (ir.Handle, error) {
	if len(a.Refined) == 1 {
		return l.lowerRefined(a.Refined[0])
	}
	branches := make([]ir.Handle, len(a.Refined))
	for i, r := range a.Refined {
		h, err := l.lowerRefined(r)
		if err != nil {
			return 0, err
		}
		branches[i] = h
	}
	return l.arena.Add(ir.Logical{Op: ir.LogicalAnd, Branches: branches}), nil
}

func (l *linker) lowerRefined(r *ast.Refined) (ir.Handle, error) {
	inner, err := l.lowerAtom(r.Atom)
	if err != nil {
		return 0, err
	}
	if r.Check == nil {
		return inner, nil
	}
	check, err := l.lowerTypeExpr(r.Check)
	if err != nil {
		return 0, err
	}
	return l.arena.Add(ir.Refinement{Inner: inner, Check: check}), nil
}

func (l *linker) lowerAtom(a *ast.Atom) (ir.Handle, error) {
	switch {
	case a.Anything:
		return l.arena.Add(ir.Anything{}), nil
	case a.Nothing:
		return l.arena.Add(ir.Nothing{}), nil
	case a.Primordial != "":
		return l.arena.Add(ir.Primordial{Kind: primordialKind(a.Primordial)}), nil
	case a.BoolLit != nil:
		return l.arena.Add(ir.Const{Value: value.Bool(*a.BoolLit)}), nil
	case a.StrLit != nil:
		return l.arena.Add(ir.Const{Value: value.Str(*a.StrLit)}), nil
	case a.DecimalLit != nil:
		return l.arena.Add(ir.Const{Value: value.Decimal(*a.DecimalLit)}), nil
	case a.IntLit != nil:
		return l.arena.Add(ir.Const{Value: value.Int(*a.IntLit)}), nil
	case a.Expr != nil:
		node, err := lowerExpr(a.Expr)
		if err != nil {
			return 0, err
		}
		return l.arena.Add(ir.Expression{Expr: node}), nil
	case a.SelfPath != nil:
		if len(a.SelfPath.Path) == 0 {
			return l.arena.Add(ir.Anything{}), nil
		}
		return l.arena.Add(ir.Traversal{Path: a.SelfPath.Path}), nil
	case a.Deref != nil:
		inner, err := l.lowerAtom(a.Deref)
		if err != nil {
			return 0, err
		}
		return l.arena.Add(ir.Deref{Inner: inner}), nil
	case a.Ref != nil:
		return l.lowerRef(a.Ref)
	case a.Object != nil:
		return l.lowerObject(a.Object)
	case a.List != nil:
		return l.lowerList(a.List)
	default:
		return 0, fmt.Errorf("resolve: empty atom")
	}
}

func (l *linker) lowerRef(ref *ast.Ref) (ir.Handle, error) {
	if len(ref.Path) == 1 {
		name := ref.Path[0]
		if idx, ok := l.typeParams[name]; ok {
			if len(ref.Args) > 0 {
				return 0, dogmaerr.NewResolutionError("type parameters cannot take arguments", "name", name)
			}
			return l.arena.Add(ir.Parameter{Index: idx}), nil
		}
		if qid, ok := l.scope[name]; ok {
			return l.lowerRefTo(qid, ref.Args)
		}
		if l.corefuncs != nil {
			if entry, ok := l.corefuncs.Lookup(name); ok {
				return l.lowerFunction(entry.ID, entry.Arity, ref.Args)
			}
		}
	}
	qid := strings.Join(ref.Path, "::")
	if _, ok := l.globals[qid]; ok {
		return l.lowerRefTo(qid, ref.Args)
	}
	if l.corefuncs != nil {
		if entry, ok := l.corefuncs.Lookup(qid); ok {
			return l.lowerFunction(entry.ID, entry.Arity, ref.Args)
		}
	}
	return 0, dogmaerr.NewResolutionError("unknown pattern or core function reference", "name", qid)
}

// lowerFunction lowers a reference to a registered core function. Its
// type-argument list supplies the function's bound-args (spec §4.4); each
// must be a literal, since core functions are called with concrete
// values, not sub-patterns to evaluate.
func (l *linker) lowerFunction(id string, arity int, astArgs []*ast.TypeExpr) (ir.Handle, error) {
	if len(astArgs) != arity {
		return 0, dogmaerr.NewResolutionError("core function arity mismatch", "function", id, "want", arity, "got", len(astArgs))
	}
	args := make([]ir.Handle, len(astArgs))
	for i, a := range astArgs {
		h, err := l.lowerTypeExpr(a)
		if err != nil {
			return 0, err
		}
		if _, isConst := l.arena.Get(h).(ir.Const); !isConst {
			return 0, dogmaerr.NewResolutionError("core function arguments must be literals", "function", id)
		}
		args[i] = h
	}
	return l.arena.Add(ir.Function{FuncID: id, Args: args}), nil
}

func (l *linker) lowerRefTo(qid string, astArgs []*ast.TypeExpr) (ir.Handle, error) {
	info, ok := l.globals[qid]
	if !ok {
		return 0, dogmaerr.NewResolutionError("unknown pattern reference", "pattern", qid)
	}
	if len(astArgs) != info.arity {
		return 0, dogmaerr.NewResolutionError("parameter arity mismatch", "pattern", qid, "want", info.arity, "got", len(astArgs))
	}
	args := make([]ir.Handle, len(astArgs))
	for i, a := range astArgs {
		h, err := l.lowerTypeExpr(a)
		if err != nil {
			return 0, err
		}
		args[i] = h
	}
	return l.arena.Add(ir.Ref{Target: info.handle, Args: args}), nil
}

func (l *linker) lowerObject(o *ast.ObjectExpr) (ir.Handle, error) {
	fields := make([]ir.ObjectField, 0, len(o.Fields))
	seen := make(map[string]struct{}, len(o.Fields))
	for _, f := range o.Fields {
		if _, dup := seen[f.Name]; dup {
			return 0, dogmaerr.NewResolutionError("duplicate object field", "field", f.Name)
		}
		seen[f.Name] = struct{}{}
		h, err := l.lowerTypeExpr(f.Value)
		if err != nil {
			return 0, err
		}
		fields = append(fields, ir.ObjectField{Name: f.Name, Optional: f.Optional, Pattern: h})
	}
	return l.arena.Add(ir.Object{Fields: fields}), nil
}

func (l *linker) lowerList(lst *ast.ListExpr) (ir.Handle, error) {
	elems := make([]ir.Handle, len(lst.Items))
	for i, it := range lst.Items {
		h, err := l.lowerTypeExpr(it)
		if err != nil {
			return 0, err
		}
		elems[i] = h
	}
	return l.arena.Add(ir.List{Elems: elems}), nil
}

func primordialKind(name string) value.Kind {
	switch name {
	case "integer":
		return value.KindInteger
	case "decimal":
		return value.KindDecimal
	case "string":
		return value.KindString
	case "boolean":
		return value.KindBoolean
	default:
		return value.KindNull
	}
}
