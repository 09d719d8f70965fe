// types.go — the Ty variant set and a union-find unifier over it.
//
// Grounded on the teacher's duck-typed S-expression type lattice
// (`isType`/`unifyTypes`/`resolveType` in the teacher's own types.go,
// which unify structurally over S-expr trees) but reworked from structural
// duck-typing into real Hindley-Milner unification with type variables,
// because the spec calls for closed nominal variants plus Var/occurs-check
// (spec §4.2) rather than MindScript's open, optional-field object types.
// The union-find representation and path compression follow spec §9's
// design note directly.
package corrosion

import "fmt"

// Kind is the closed variant tag for Ty.
type Kind int

const (
	KInt Kind = iota
	KBool
	KString
	KUnit
	KList
	KPair
	KSum
	KArrow
	KFix
	KVar
	KUnknown
)

// Ty is a type node. Operand fields are only meaningful for the Kinds
// that use them: List uses A; Pair/Sum/Arrow use A and B; Fix uses A; Var
// uses ID as the union-find variable identity.
type Ty struct {
	Kind Kind
	A, B *Ty
	ID   int // valid when Kind == KVar
}

func TyInt() *Ty    { return &Ty{Kind: KInt} }
func TyBool() *Ty   { return &Ty{Kind: KBool} }
func TyString() *Ty { return &Ty{Kind: KString} }
func TyUnit() *Ty   { return &Ty{Kind: KUnit} }
func TyUnknown() *Ty { return &Ty{Kind: KUnknown} }

func TyList(elem *Ty) *Ty        { return &Ty{Kind: KList, A: elem} }
func TyPair(a, b *Ty) *Ty        { return &Ty{Kind: KPair, A: a, B: b} }
func TySum(l, r *Ty) *Ty         { return &Ty{Kind: KSum, A: l, B: r} }
func TyArrow(param, res *Ty) *Ty { return &Ty{Kind: KArrow, A: param, B: res} }
func TyFix(inner *Ty) *Ty        { return &Ty{Kind: KFix, A: inner} }

// Unifier owns the union-find substitution for a single type-check pass.
// It is not safe for concurrent use (the spec's pipeline is
// single-threaded throughout).
type Unifier struct {
	subst  map[int]*Ty // var id -> bound type (may itself be an unresolved var)
	nextID int
}

func NewUnifier() *Unifier {
	return &Unifier{subst: make(map[int]*Ty)}
}

// Fresh allocates a new, unbound type variable.
func (u *Unifier) Fresh() *Ty {
	id := u.nextID
	u.nextID++
	return &Ty{Kind: KVar, ID: id}
}

// prune follows a variable's binding chain to its current representative,
// compressing the path as it goes (spec §9: "path-compress during
// lookup"). A ground type, or an unbound variable, is returned unchanged.
func (u *Unifier) prune(t *Ty) *Ty {
	if t.Kind != KVar {
		return t
	}
	bound, ok := u.subst[t.ID]
	if !ok {
		return t
	}
	root := u.prune(bound)
	if root != bound {
		u.subst[t.ID] = root // path compression
	}
	return root
}

// Resolve fully dereferences a type for use after checking succeeds: no
// reachable Var may survive (spec §3's invariant). Operand types are
// resolved recursively.
func (u *Unifier) Resolve(t *Ty) *Ty {
	t = u.prune(t)
	switch t.Kind {
	case KList, KFix:
		return &Ty{Kind: t.Kind, A: u.Resolve(t.A)}
	case KPair, KSum, KArrow:
		return &Ty{Kind: t.Kind, A: u.Resolve(t.A), B: u.Resolve(t.B)}
	default:
		return t
	}
}

// Unify makes a and b structurally equal by binding variables, reporting
// a *TypeError at span on mismatch. Per spec §4.2, failure text is
// "Type mismatch at L:C: expected 'A', found 'B'" where A/B are the
// outermost types passed to the top-level call — callers that want that
// exact framing should catch the error and re-render with their own
// expected/found pair; Unify itself renders with whatever two types it
// was actually comparing at the point of failure, which for leaf mismatches
// is usually what the caller wants already.
func (u *Unifier) Unify(a, b *Ty, span Span) *TypeError {
	a = u.prune(a)
	b = u.prune(b)

	if a.Kind == KUnknown || b.Kind == KUnknown {
		return nil
	}
	if a.Kind == KVar {
		return u.bind(a, b, span)
	}
	if b.Kind == KVar {
		return u.bind(b, a, span)
	}
	// A Fix type stands for the function type it wraps: fix(f) has the
	// type of f's fixed point, and the Fix tag only makes type(e) render
	// FixedPoint.
	if a.Kind == KFix && b.Kind != KFix {
		return u.Unify(a.A, b, span)
	}
	if b.Kind == KFix && a.Kind != KFix {
		return u.Unify(a, b.A, span)
	}
	if a.Kind != b.Kind {
		return newTypeError(span, "Type mismatch: expected '%s', found '%s'", u.Render(b), u.Render(a))
	}
	switch a.Kind {
	case KInt, KBool, KString, KUnit:
		return nil
	case KList, KFix:
		return u.Unify(a.A, b.A, span)
	case KPair, KSum, KArrow:
		if err := u.Unify(a.A, b.A, span); err != nil {
			return err
		}
		return u.Unify(a.B, b.B, span)
	default:
		return newTypeError(span, "Type mismatch: expected '%s', found '%s'", u.Render(b), u.Render(a))
	}
}

// bind binds unresolved variable v to type t, after an occurs-check. v is
// assumed already pruned; t is pruned here before the check.
func (u *Unifier) bind(v *Ty, t *Ty, span Span) *TypeError {
	t = u.prune(t)
	if t.Kind == KVar && t.ID == v.ID {
		return nil // already the same variable
	}
	if u.occurs(v.ID, t) {
		return newTypeError(span, "Occurs check failed: infinite type constructing '%s'", u.Render(t))
	}
	u.subst[v.ID] = t
	return nil
}

func (u *Unifier) occurs(id int, t *Ty) bool {
	t = u.prune(t)
	switch t.Kind {
	case KVar:
		return t.ID == id
	case KList, KFix:
		return u.occurs(id, t.A)
	case KPair, KSum, KArrow:
		return u.occurs(id, t.A) || u.occurs(id, t.B)
	default:
		return false
	}
}

// Render produces the type's textual form for diagnostics and for the
// `type(e)` primitive, per spec §6's table. Unresolved variables render
// as "unknown" uniformly; the checker's fst/snd argument-mismatch
// diagnostic overrides this with the literal "(error, error)" wording
// spec §4.2 calls for at that one call site (see checker.go's
// applyMismatch) rather than Render ever emitting "error" itself. Each
// node is pruned to its representative and its operands are rendered
// recursively; bind's occurs-check keeps every binding acyclic, so the
// display always terminates.
func (u *Unifier) Render(t *Ty) string {
	t = u.prune(t)
	switch t.Kind {
	case KInt:
		return "Int"
	case KBool:
		return "Bool"
	case KString:
		return "String"
	case KUnit:
		return "Unit"
	case KList:
		return fmt.Sprintf("List %s", u.renderShallow(t.A))
	case KPair:
		return fmt.Sprintf("(%s, %s)", u.renderShallow(t.A), u.renderShallow(t.B))
	case KSum:
		return fmt.Sprintf("(%s + %s)", u.renderShallow(t.A), u.renderShallow(t.B))
	case KArrow:
		return u.renderArrow(t)
	case KFix:
		return "FixedPoint"
	case KVar, KUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// renderShallow renders a nested operand type. It is Render itself under
// another name, used at the nested call sites.
func (u *Unifier) renderShallow(t *Ty) string { return u.Render(t) }

// renderArrow right-associates and parenthesizes a function-typed domain,
// per spec §6: "A -> B (arrow is right-associative; parenthesize the
// domain when it is an arrow)".
func (u *Unifier) renderArrow(t *Ty) string {
	param := u.prune(t.A)
	var paramStr string
	if param.Kind == KArrow {
		paramStr = "(" + u.Render(param) + ")"
	} else {
		paramStr = u.Render(param)
	}
	return fmt.Sprintf("%s -> %s", paramStr, u.Render(t.B))
}
