// Package corefunc implements the Core Function Interface (spec §4.4):
// the only extension point for I/O, cryptography, and foreign-format
// parsing. Dispatch is grounded in the teacher's attribute.Resolver
// provider-registration pattern: a table of named implementations, each
// call wrapped so a misbehaving function cannot crash the evaluator.
package corefunc

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/oops"

	"github.com/seedwing-io/dogma-engine/internal/dogma/rationale"
	"github.com/seedwing-io/dogma-engine/internal/dogma/value"
	"github.com/seedwing-io/dogma-engine/internal/dogmaerr"
)

// WorldHandle is the read-only view of the World a core function receives,
// kept narrow so core functions cannot mutate pattern state.
type WorldHandle interface {
	Lookup(qualifiedID string) (any, bool)
}

// Impl is the async implementation signature from spec §4.4.
type Impl func(ctx context.Context, input value.V, args []value.V, world WorldHandle) (rationale.Verdict, value.V, *rationale.R)

// Entry is one registered core function.
type Entry struct {
	ID    string
	Arity int
	Doc   string
	Impl  Impl
}

var corefuncPanics = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dogma",
	Subsystem: "corefunc",
	Name:      "panics_total",
	Help:      "Core function invocations that recovered from a panic.",
}, []string{"id"})

// Registry is the qualified-id -> Entry dispatch table, built once per
// World (spec §9 "Dynamic dispatch to core functions").
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds a core function. Registration only happens at world
// construction time (spec §6); re-registering an id is fatal.
func (r *Registry) Register(id string, arity int, doc string, impl Impl) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		return oops.In("corefunc").New("core function id must not be empty")
	}
	if _, exists := r.entries[id]; exists {
		return oops.In("corefunc").With("id", id).New("core function already registered")
	}
	r.entries[id] = Entry{ID: id, Arity: arity, Doc: doc, Impl: impl}
	return nil
}

// Lookup returns the entry for id.
func (r *Registry) Lookup(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e, ok
}

// Call dispatches to the registered implementation for id, recovering
// from panics so a misbehaving core function yields an error verdict
// rather than crashing the evaluator — the same guarantee the teacher's
// attribute.Resolver gives misbehaving attribute providers.
func (r *Registry) Call(ctx context.Context, id string, input value.V, args []value.V, world WorldHandle) (verdict rationale.Verdict, output value.V, child *rationale.R) {
	entry, ok := r.Lookup(id)
	if !ok {
		slog.WarnContext(ctx, "core function not found", "id", id)
		return rationale.Err(dogmaerr.KindPatternNotFound), value.Null(), nil
	}
	if len(args) != entry.Arity {
		slog.WarnContext(ctx, "core function arity mismatch", "id", id, "want", entry.Arity, "got", len(args))
		return rationale.Err(dogmaerr.KindCoreFunction), value.Null(), nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			corefuncPanics.WithLabelValues(id).Inc()
			slog.ErrorContext(ctx, "core function panicked", "id", id, "recover", fmt.Sprint(rec))
			verdict, output, child = rationale.Err(dogmaerr.KindCoreFunction), value.Null(), nil
		}
	}()

	return entry.Impl(ctx, input, args, world)
}
