// Package world owns the live, atomically-swapped World the evaluator
// reads from (spec §5 "Reloading"). It is grounded in the teacher's
// policy.Cache: a read-mostly snapshot behind an RWMutex, rebuilt
// off-line and swapped in a lock held only for the pointer assignment.
package world

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"

	"github.com/seedwing-io/dogma-engine/internal/dogma/ast"
	"github.com/seedwing-io/dogma-engine/internal/dogma/corefunc"
	"github.com/seedwing-io/dogma-engine/internal/dogma/metrics"
	"github.com/seedwing-io/dogma-engine/internal/dogma/resolve"
)

// CompatibleGrammarConstraint is the range of grammar versions this build
// of the engine understands. Raised deliberately, never silently, when
// the grammar changes in a way old sources can't express.
const CompatibleGrammarConstraint = "^1.0.0"

// Source is one policy directory to scan for .dog files.
type Source struct {
	// Root is the filesystem directory to walk.
	Root string
	// ModulePrefix is prepended to every module path derived under Root,
	// e.g. a Root mounted at "vendor/" might set ModulePrefix "vendor".
	ModulePrefix string
}

// Loader builds resolve.World snapshots from policy sources and a fixed
// core-function registry.
type Loader struct {
	Sources   []Source
	CoreFuncs *corefunc.Registry

	constraint *semver.Constraints
}

// NewLoader validates CompatibleGrammarConstraint once so Reload never
// fails on a malformed constant.
func NewLoader(sources []Source, coreFuncs *corefunc.Registry) (*Loader, error) {
	c, err := semver.NewConstraint(CompatibleGrammarConstraint)
	if err != nil {
		return nil, fmt.Errorf("world: invalid grammar constraint: %w", err)
	}
	return &Loader{Sources: sources, CoreFuncs: coreFuncs, constraint: c}, nil
}

// Load scans every configured Source for .dog files, parses and compiles
// them, and returns the resulting World. It does not touch any live
// World; callers compose it with a Holder to get atomic swap semantics.
func (l *Loader) Load() (*resolve.World, error) {
	grammarVersion, err := semver.NewVersion(ast.GrammarVersion)
	if err != nil {
		return nil, fmt.Errorf("world: invalid grammar version %q: %w", ast.GrammarVersion, err)
	}
	if !l.constraint.Check(grammarVersion) {
		return nil, oops.In("world").With("grammar_version", ast.GrammarVersion).New("grammar version incompatible with this build")
	}

	var sources []resolve.SourceFile
	for _, src := range l.Sources {
		found, err := scanDir(src)
		if err != nil {
			return nil, err
		}
		sources = append(sources, found...)
	}

	return resolve.Compile(sources, l.CoreFuncs)
}

func scanDir(src Source) ([]resolve.SourceFile, error) {
	var out []resolve.SourceFile
	err := filepath.WalkDir(src.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".dog" {
			return nil
		}

		rel, err := filepath.Rel(src.Root, path)
		if err != nil {
			return err
		}
		dir := filepath.Dir(rel)
		stem := strings.TrimSuffix(filepath.Base(rel), ".dog")

		modulePrefix := src.ModulePrefix
		if dir != "." {
			segments := strings.Split(filepath.ToSlash(dir), "/")
			if modulePrefix != "" {
				segments = append([]string{modulePrefix}, segments...)
			}
			modulePrefix = strings.Join(segments, "::")
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		file, err := ast.ParseFile(path, data)
		if err != nil {
			return err
		}
		out = append(out, resolve.SourceFile{ModulePrefix: modulePrefix, Stem: stem, File: file})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("world: scanning %s: %w", src.Root, err)
	}
	return out, nil
}

// Holder holds the currently active World behind an RWMutex, swapped
// wholesale by Reload (spec §5: "a new World is built off-line and
// atomically swapped in; in-flight evaluations continue against their
// snapshot").
type Holder struct {
	loader *Loader

	mu    sync.RWMutex
	world *resolve.World

	lastReload atomic.Int64 // unix nanos; 0 = never reloaded
}

// NewHolder returns a Holder with no World loaded; call Reload before
// first use.
func NewHolder(loader *Loader) *Holder {
	return &Holder{loader: loader}
}

// Current returns the active World, or nil if Reload has never
// succeeded.
func (h *Holder) Current() *resolve.World {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.world
}

// Reload builds a fresh World and swaps it in. The write lock is held
// only for the pointer assignment; parsing and compilation happen
// outside it, mirroring the teacher's Cache.Reload.
func (h *Holder) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w, err := h.loader.Load()
	if err != nil {
		metrics.WorldReloads.WithLabelValues("error").Inc()
		return err
	}

	h.mu.Lock()
	h.world = w
	h.mu.Unlock()

	h.lastReload.Store(time.Now().UnixNano())
	metrics.WorldReloads.WithLabelValues("ok").Inc()
	metrics.WorldPatterns.Set(float64(len(w.Patterns)))
	return nil
}

// LastReload reports when Reload last succeeded, and whether it ever
// has.
func (h *Holder) LastReload() (time.Time, bool) {
	ns := h.lastReload.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}
