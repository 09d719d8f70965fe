// modules.go — the file-based module loader (spec §3/§6).
//
// Grounded on the teacher's module cache/loader shape — a Loader owning a
// canonical-path cache and re-entering the full pipeline for a dependency
// — but reworked around Corrosion's own three phases (parse, check,
// evaluate) instead of MindScript's ImportAST/ImportCode. OS-level
// failures (missing file, unresolvable path) are wrapped with
// github.com/pkg/errors to attach "while importing %q" context without
// discarding the underlying cause, then translated into a RuntimeError at
// the call site — the boundary the rest of the pipeline expects.
package corrosion

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Loader resolves `import "path" as alias;` against the filesystem,
// caching each canonical path's Module after first load and rejecting
// cycles eagerly (spec §3: "cached by canonical path; cycles are a
// load-time error", spec §9's "maintain a load-in-progress set").
type Loader struct {
	cache      map[string]*Module // canonical path -> loaded module
	inProgress []string           // stack of canonical paths currently loading, for cycle diagnostics
}

func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*Module)}
}

// Load resolves path relative to fromDir, parsing, type-checking, and
// evaluating it if not already cached, and returns the resulting Module.
func (l *Loader) Load(path, fromDir string, importSpan Span) (*Module, *RuntimeError) {
	full, err := resolveImportPath(path, fromDir)
	if err != nil {
		return nil, newRuntimeError(importSpan, "Failed import '%s': %s", path, err)
	}

	if mod, ok := l.cache[full]; ok {
		return mod, nil
	}
	if idx := slices.Index(l.inProgress, full); idx != -1 {
		return nil, newRuntimeError(importSpan, "Import cycle: %s", cyclePath(l.inProgress[idx:], full))
	}

	src, err := os.ReadFile(full)
	if err != nil {
		return nil, newRuntimeError(importSpan, "Failed import '%s': %s", path, errors.Wrapf(err, "while importing %q", path))
	}

	l.inProgress = append(l.inProgress, full)
	defer func() { l.inProgress = l.inProgress[:len(l.inProgress)-1] }()

	mod, rtErr := l.loadSource(string(src), filepath.Dir(full), filepath.Base(full), importSpan)
	if rtErr != nil {
		return nil, rtErr
	}
	l.cache[full] = mod
	return mod, nil
}

// loadSource re-enters the full pipeline (parse, check, evaluate) for one
// dependency file, per spec §2 step 3: "resolves ... by re-entering
// phases 1-4 for the dependency, then exposing its top-level bindings
// under a qualified prefix."
func (l *Loader) loadSource(src, dir, name string, importSpan Span) (*Module, *RuntimeError) {
	prog, perr := Parse(src)
	if perr != nil {
		return nil, newRuntimeError(importSpan, "Failed import '%s': %s", name, perr.Error())
	}

	moduleTypes, rtErr := ResolveImports(prog, dir, l)
	if rtErr != nil {
		return nil, rtErr
	}

	checker := NewChecker()
	typeEnv := NewTypeEnv(nil)
	if err := checker.CheckProgram(prog, typeEnv, moduleTypes); err != nil {
		return nil, newRuntimeError(importSpan, "Failed import '%s': %s", name, err.Error())
	}

	ip := NewInterpreter()
	ip.Modules = moduleTypes
	ip.Types = checker.Unifier()
	valueEnv := NewValueEnv(nil)
	if _, err := ip.EvalProgram(prog, valueEnv); err != nil {
		return nil, newRuntimeError(importSpan, "Failed import '%s': %s", name, err.Error())
	}

	return snapshotModule(name, prog, typeEnv, valueEnv, checker.u), nil
}

// snapshotModule captures a loaded file's top-level let-bound names as a
// Module value, in declaration order, per spec §3's Module value shape.
// Sorted enumeration of the underlying maps (used for the deterministic
// Order slice and anywhere the loader needs a stable name listing) goes
// through golang.org/x/exp/maps + slices rather than a hand-rolled sort.
func snapshotModule(name string, prog *Program, typeEnv *TypeEnv, valueEnv *ValueEnv, u *Unifier) *Module {
	bindings := make(map[string]Value)
	types := make(map[string]*Ty)
	var order []string

	for _, s := range prog.Statements {
		let, ok := s.(*LetStatement)
		if !ok {
			continue
		}
		if v, ok := valueEnv.Get(let.Name); ok {
			bindings[let.Name] = v
		}
		if t, ok := typeEnv.Get(let.Name); ok {
			types[let.Name] = u.Resolve(t)
		}
		order = append(order, let.Name)
	}

	// Append, sorted, any key of bindings not already in order, so Order
	// lists every exported name exactly once. Import aliases are not
	// exported: bindings holds only the let-bound names collected above,
	// so this pass finds them all in order already and appends none.
	known := make(map[string]bool, len(order))
	for _, n := range order {
		known[n] = true
	}
	extra := maps.Keys(bindings)
	slices.Sort(extra)
	for _, n := range extra {
		if !known[n] {
			order = append(order, n)
		}
	}

	return &Module{Name: name, Bindings: bindings, Types: types, Order: order}
}

// knownExportsClause lists a module's exports, in declaration order, as a
// parenthetical clause for a qualified-lookup-failure diagnostic — e.g.
// "Undefined variable 'mathx.triple' (known: double, half)". Consumed by
// both the checker and the evaluator's QualifiedIdent case. Empty when the
// module exports nothing, so the clause disappears rather than rendering
// "(known: )".
func knownExportsClause(mod *Module) string {
	if len(mod.Order) == 0 {
		return ""
	}
	return " (known: " + strings.Join(mod.Order, ", ") + ")"
}

// ResolveImports walks prog's top-level import statements, loading each
// dependency through l and returning a map keyed by the import's literal
// path string — the same key the checker and evaluator use to look up a
// module before binding it under its alias. Run once per program before
// type-checking, per spec §2's phase ordering (module loader precedes the
// type checker).
func ResolveImports(prog *Program, dir string, l *Loader) (map[string]*Module, *RuntimeError) {
	out := make(map[string]*Module)
	for _, s := range prog.Statements {
		imp, ok := s.(*ImportStatement)
		if !ok {
			continue
		}
		mod, err := l.Load(imp.Path, dir, imp.Span)
		if err != nil {
			return nil, err
		}
		out[imp.Path] = mod
	}
	return out, nil
}

func resolveImportPath(path, fromDir string) (string, error) {
	joined := path
	if !filepath.IsAbs(path) {
		joined = filepath.Join(fromDir, path)
	}
	full, err := filepath.Abs(joined)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %q", path)
	}
	return full, nil
}

func cyclePath(stack []string, closing string) string {
	names := make([]string, 0, len(stack)+1)
	for _, p := range stack {
		names = append(names, filepath.Base(p))
	}
	names = append(names, filepath.Base(closing))
	out := names[0]
	for _, n := range names[1:] {
		out += " -> " + n
	}
	return out
}
