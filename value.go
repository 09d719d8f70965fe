// value.go — the runtime Value variant set.
//
// Grounded on the teacher's Value{Tag, Data} shape (interpreter.go:
// `type Value struct { Tag ValueTag; Data any }` with constructor
// functions Bool/Int/Str/Arr/...). Corrosion keeps the same tagged-union
// encoding rather than a Go interface per variant, because the evaluator
// (like the teacher's) dispatches on the tag far more often than it needs
// dynamic method behavior, and a flat struct avoids an allocation per
// wrapped primitive.
package corrosion

// ValueKind is the closed variant tag for Value.
type ValueKind int

const (
	VInt ValueKind = iota
	VBool
	VString
	VUnit
	VList
	VPair
	VLeft
	VRight
	VClosure
	VFixedPoint
	VModule
	VPrimitive
)

// Value is a tagged runtime value. Exactly one of the Data-bearing fields
// is meaningful, selected by Kind. Values are never mutated after
// construction (spec §3: "Values are immutable once constructed").
type Value struct {
	Kind ValueKind

	Int    int64
	Bool   bool
	Str    string
	List   []Value // VList: ordered, immutable once built
	Pair   *PairValue
	Inner  *Value // VLeft/VRight: the wrapped value
	Clo    *Closure
	Fixed  *FixedPoint
	Module *Module
	Prim   *PrimitiveApp
}

// PrimitiveApp is an unapplied or partially-applied builtin (spec §4.2's
// cons/head/tail/fst/snd/inl/inr/range/print/type/length/char/concat/
// toString). Builtins flow through Apply exactly like user closures; a
// PrimitiveApp simply accumulates arguments until its fixed arity is
// reached, at which point applyValue (interpreter.go) computes the result
// instead of recursing further.
type PrimitiveApp struct {
	Op   PrimitiveOp
	Args []Value // arguments supplied so far, left to right
}

type PairValue struct {
	First, Second Value
}

// Closure pairs a function body with the environment captured at
// construction time (spec §3/§4.3). The captured environment's lifetime
// is at least as long as the closure's, guaranteed here simply by Go's
// GC keeping Env reachable through the pointer.
type Closure struct {
	Param string
	Body  *Block
	Env   *ValueEnv
}

// FixedPoint is the runtime realization of `fix(f)`. Corrosion uses
// design note strategy (i) from spec §9: on each application of a
// FixedPoint, Apply substitutes the FixedPoint value itself for the
// inner closure's parameter before calling the body — i.e. `(fix
// f)(x)` evaluates `f`'s body with `self ↦ fix f` bound, then applies
// the result to `x`. No cyclic Go pointer is ever constructed.
type FixedPoint struct {
	Inner *Closure
}

// Module is the result of `import`: a loaded source file's top-level
// bindings, exposed under the import alias (spec §3/§6).
type Module struct {
	Name     string
	Bindings map[string]Value
	Types    map[string]*Ty
	// Order lists exported names in declaration order. knownExportsClause
	// (modules.go) reads it to list a module's exports in the "Undefined
	// variable 'm.x'" diagnostic.
	Order []string
}

func IntVal(i int64) Value    { return Value{Kind: VInt, Int: i} }
func BoolVal(b bool) Value    { return Value{Kind: VBool, Bool: b} }
func StringVal(s string) Value { return Value{Kind: VString, Str: s} }
func UnitVal() Value          { return Value{Kind: VUnit} }
func ListVal(xs []Value) Value { return Value{Kind: VList, List: xs} }
func PairVal(a, b Value) Value { return Value{Kind: VPair, Pair: &PairValue{First: a, Second: b}} }
func LeftVal(v Value) Value    { return Value{Kind: VLeft, Inner: &v} }
func RightVal(v Value) Value   { return Value{Kind: VRight, Inner: &v} }
func ClosureVal(c *Closure) Value { return Value{Kind: VClosure, Clo: c} }
func FixedVal(f *FixedPoint) Value { return Value{Kind: VFixedPoint, Fixed: f} }
func ModuleVal(m *Module) Value    { return Value{Kind: VModule, Module: m} }
func PrimitiveVal(op PrimitiveOp) Value { return Value{Kind: VPrimitive, Prim: &PrimitiveApp{Op: op}} }

// primitiveArity lists how many arguments each builtin consumes before it
// evaluates, per spec §4.2's primitive signatures.
func primitiveArity(op PrimitiveOp) int {
	switch op {
	case PrimCons, PrimRange, PrimChar, PrimConcat:
		return 2
	default:
		return 1
	}
}
