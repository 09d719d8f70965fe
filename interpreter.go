// interpreter.go — the call-by-value tree-walking evaluator.
//
// Grounded on the teacher's interpreter.go evaluation loop (one function
// per AST case dispatching over a Value-carrying Env) but built over
// Corrosion's own closed Value/Expression sets instead of MindScript's
// S-expressions. `fix` is realized with design-note strategy (i) from
// spec §9: substitution-on-apply rather than a cyclic Go value (see
// applyValue's VFixedPoint branch).
package corrosion

import (
	"fmt"
	"os"
)

// Interpreter owns the printer's output stream so tests can substitute
// another file (such as the write end of an os.Pipe) for the host's stdout.
type Interpreter struct {
	Out     *os.File
	Modules map[string]*Module // import path as written -> loaded module
	// Types is the Unifier of the Checker pass that type-checked the
	// program this Interpreter is evaluating. `type(e)` uses it to render
	// e's statically inferred type (spec §6's type print table) rather
	// than reconstructing a type from the runtime value, which cannot
	// recover an Arrow's parameter/result types or an unvisited sum arm.
	// Left nil when a program is evaluated without having gone through a
	// Checker; `type` then falls back to renderRuntimeType.
	Types *Unifier
}

func NewInterpreter() *Interpreter {
	return &Interpreter{Out: os.Stdout, Modules: make(map[string]*Module)}
}

// EvalProgram evaluates every statement of prog in order against env,
// executing `print` side effects as it goes, per spec §4.3.
func (ip *Interpreter) EvalProgram(prog *Program, env *ValueEnv) (Value, *RuntimeError) {
	last := UnitVal()
	for _, s := range prog.Statements {
		v, err := ip.evalStatement(s, env)
		if err != nil {
			return Value{}, err
		}
		last = v
	}
	return last, nil
}

func (ip *Interpreter) evalStatement(s Statement, env *ValueEnv) (Value, *RuntimeError) {
	switch s := s.(type) {
	case *LetStatement:
		v, err := ip.eval(s.Value, env)
		if err != nil {
			return Value{}, err
		}
		env.Define(s.Name, v)
		return UnitVal(), nil
	case *ExprStatement:
		return ip.eval(s.Expr, env)
	case *ImportStatement:
		mod, ok := ip.Modules[s.Path]
		if !ok {
			return Value{}, newRuntimeError(s.Span, "Failed import '%s'", s.Path)
		}
		env.Define(s.Alias, ModuleVal(mod))
		return UnitVal(), nil
	default:
		return Value{}, newRuntimeError(s.Pos(), "Unsupported statement")
	}
}

// evalBlock evaluates a block's statements in a fresh child scope and
// returns the value of its tail expression, or Unit.
func (ip *Interpreter) evalBlock(b *Block, parent *ValueEnv) (Value, *RuntimeError) {
	scope := NewValueEnv(parent)
	for _, s := range b.Statements {
		if _, err := ip.evalStatement(s, scope); err != nil {
			return Value{}, err
		}
	}
	if b.Tail == nil {
		return UnitVal(), nil
	}
	return ip.eval(b.Tail, scope)
}

func (ip *Interpreter) eval(e Expression, env *ValueEnv) (Value, *RuntimeError) {
	switch e := e.(type) {
	case *IntLit:
		return IntVal(e.Value), nil
	case *BoolLit:
		return BoolVal(e.Value), nil
	case *StringLit:
		return StringVal(e.Value), nil
	case *UnitLit:
		return UnitVal(), nil
	case *Ident:
		v, ok := env.Get(e.Name)
		if !ok {
			return Value{}, newRuntimeError(e.Span, "Undefined variable '%s'", e.Name)
		}
		return v, nil
	case *QualifiedIdent:
		modVal, ok := env.Get(e.Module)
		if !ok || modVal.Kind != VModule {
			return Value{}, newRuntimeError(e.Span, "Undefined variable '%s.%s'", e.Module, e.Name)
		}
		v, ok := modVal.Module.Bindings[e.Name]
		if !ok {
			return Value{}, newRuntimeError(e.Span, "Undefined variable '%s.%s'%s", e.Module, e.Name, knownExportsClause(modVal.Module))
		}
		return v, nil
	case *ListLit:
		xs := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := ip.eval(el, env)
			if err != nil {
				return Value{}, err
			}
			xs = append(xs, v)
		}
		return ListVal(xs), nil
	case *PairLit:
		a, err := ip.eval(e.First, env)
		if err != nil {
			return Value{}, err
		}
		b, err := ip.eval(e.Second, env)
		if err != nil {
			return Value{}, err
		}
		return PairVal(a, b), nil
	case *BinaryOp:
		return ip.evalBinaryOp(e, env)
	case *UnaryOp:
		return ip.evalUnaryOp(e, env)
	case *If:
		return ip.evalIf(e, env)
	case *For:
		return ip.evalFor(e, env)
	case *Lambda:
		return ClosureVal(&Closure{Param: e.Param, Body: e.Body, Env: env}), nil
	case *Apply:
		return ip.evalApply(e, env)
	case *Fix:
		fn, err := ip.eval(e.Fn, env)
		if err != nil {
			return Value{}, err
		}
		if fn.Kind != VClosure {
			return Value{}, newRuntimeError(e.Span, "fix requires a function")
		}
		return FixedVal(&FixedPoint{Inner: fn.Clo}), nil
	case *PrimitiveRef:
		return PrimitiveVal(e.Op), nil
	case *Case:
		return ip.evalCase(e, env)
	default:
		return Value{}, newRuntimeError(e.Pos(), "Unsupported expression")
	}
}

func (ip *Interpreter) evalBinaryOp(e *BinaryOp, env *ValueEnv) (Value, *RuntimeError) {
	// Short-circuit && and || before evaluating the right operand.
	if e.Op == OpAnd {
		l, err := ip.eval(e.Left, env)
		if err != nil {
			return Value{}, err
		}
		if !l.Bool {
			return BoolVal(false), nil
		}
		return ip.eval(e.Right, env)
	}
	if e.Op == OpOr {
		l, err := ip.eval(e.Left, env)
		if err != nil {
			return Value{}, err
		}
		if l.Bool {
			return BoolVal(true), nil
		}
		return ip.eval(e.Right, env)
	}

	l, err := ip.eval(e.Left, env)
	if err != nil {
		return Value{}, err
	}
	r, err := ip.eval(e.Right, env)
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case OpAdd:
		if l.Kind == VString || r.Kind == VString {
			return StringVal(l.Str + r.Str), nil
		}
		return IntVal(l.Int + r.Int), nil
	case OpSub:
		return IntVal(l.Int - r.Int), nil
	case OpMul:
		return IntVal(l.Int * r.Int), nil
	case OpDiv:
		if r.Int == 0 {
			return Value{}, newRuntimeError(e.Span, "Division by zero")
		}
		return IntVal(l.Int / r.Int), nil
	case OpEq:
		return BoolVal(valuesEqual(l, r)), nil
	case OpNeq:
		return BoolVal(!valuesEqual(l, r)), nil
	case OpLt, OpLe, OpGt, OpGe:
		return BoolVal(compareValues(l, r, e.Op)), nil
	default:
		return Value{}, newRuntimeError(e.Span, "Unsupported binary operator")
	}
}

func compareValues(l, r Value, op BinOp) bool {
	switch l.Kind {
	case VInt:
		switch op {
		case OpLt:
			return l.Int < r.Int
		case OpLe:
			return l.Int <= r.Int
		case OpGt:
			return l.Int > r.Int
		default:
			return l.Int >= r.Int
		}
	case VString:
		switch op {
		case OpLt:
			return l.Str < r.Str
		case OpLe:
			return l.Str <= r.Str
		case OpGt:
			return l.Str > r.Str
		default:
			return l.Str >= r.Str
		}
	case VBool:
		li, ri := 0, 0
		if l.Bool {
			li = 1
		}
		if r.Bool {
			ri = 1
		}
		switch op {
		case OpLt:
			return li < ri
		case OpLe:
			return li <= ri
		case OpGt:
			return li > ri
		default:
			return li >= ri
		}
	default:
		return false
	}
}

// valuesEqual implements the structural equality spec §4.2/§9 calls for
// over everything except function values (rejected at type-check time, so
// VClosure/VFixedPoint/VPrimitive never reach here in a type-checked
// program).
func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case VInt:
		return a.Int == b.Int
	case VBool:
		return a.Bool == b.Bool
	case VString:
		return a.Str == b.Str
	case VUnit:
		return true
	case VList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !valuesEqual(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case VPair:
		return valuesEqual(a.Pair.First, b.Pair.First) && valuesEqual(a.Pair.Second, b.Pair.Second)
	case VLeft, VRight:
		return valuesEqual(*a.Inner, *b.Inner)
	default:
		return false
	}
}

func (ip *Interpreter) evalUnaryOp(e *UnaryOp, env *ValueEnv) (Value, *RuntimeError) {
	v, err := ip.eval(e.Operand, env)
	if err != nil {
		return Value{}, err
	}
	switch e.Op {
	case OpNot:
		return BoolVal(!v.Bool), nil
	case OpNeg:
		return IntVal(-v.Int), nil
	default:
		return Value{}, newRuntimeError(e.Span, "Unsupported unary operator")
	}
}

func (ip *Interpreter) evalIf(e *If, env *ValueEnv) (Value, *RuntimeError) {
	cond, err := ip.eval(e.Cond, env)
	if err != nil {
		return Value{}, err
	}
	if cond.Bool {
		return ip.evalBlock(e.Then, env)
	}
	if e.Else == nil {
		return UnitVal(), nil
	}
	return ip.evalBlock(e.Else, env)
}

func (ip *Interpreter) evalFor(e *For, env *ValueEnv) (Value, *RuntimeError) {
	iter, err := ip.eval(e.Iter, env)
	if err != nil {
		return Value{}, err
	}
	for _, el := range iter.List {
		scope := NewValueEnv(env)
		scope.Define(e.Var, el)
		if _, err := ip.evalBlock(e.Body, scope); err != nil {
			return Value{}, err
		}
	}
	return UnitVal(), nil
}

func (ip *Interpreter) evalApply(e *Apply, env *ValueEnv) (Value, *RuntimeError) {
	fn, err := ip.eval(e.Fn, env)
	if err != nil {
		return Value{}, err
	}
	arg, err := ip.eval(e.Arg, env)
	if err != nil {
		return Value{}, err
	}
	// A direct `type(e)` call renders e's statically inferred type (spec
	// §6), not a reconstruction from the runtime value — the two diverge
	// for Arrow (a closure carries no record of its own parameter/result
	// types at runtime) and for a Sum's unvisited arm.
	if pr, ok := e.Fn.(*PrimitiveRef); ok && pr.Op == PrimTypeOf && ip.Types != nil {
		return StringVal(ip.Types.Render(e.Arg.Type())), nil
	}
	return ip.applyValue(fn, arg, e.Span)
}

// applyValue applies fn to arg, handling ordinary closures, builtins
// (which accumulate arguments in a PrimitiveApp until their fixed arity
// is reached), and the substitution-on-apply realization of fix (spec §9
// strategy (i)): `(fix f)(x)` evaluates f's body with its own parameter
// bound to the FixedPoint value itself, then applies the *result* of that
// unfolding to x.
func (ip *Interpreter) applyValue(fn, arg Value, span Span) (Value, *RuntimeError) {
	switch fn.Kind {
	case VClosure:
		scope := NewValueEnv(fn.Clo.Env)
		scope.Define(fn.Clo.Param, arg)
		return ip.evalBlock(fn.Clo.Body, scope)
	case VFixedPoint:
		scope := NewValueEnv(fn.Fixed.Inner.Env)
		scope.Define(fn.Fixed.Inner.Param, fn)
		unfolded, err := ip.evalBlock(fn.Fixed.Inner.Body, scope)
		if err != nil {
			return Value{}, err
		}
		return ip.applyValue(unfolded, arg, span)
	case VPrimitive:
		args := append(append([]Value{}, fn.Prim.Args...), arg)
		if len(args) < primitiveArity(fn.Prim.Op) {
			return Value{Kind: VPrimitive, Prim: &PrimitiveApp{Op: fn.Prim.Op, Args: args}}, nil
		}
		return ip.applyPrimitive(fn.Prim.Op, args, span)
	default:
		return Value{}, newRuntimeError(span, "Attempt to call a non-function value")
	}
}

func (ip *Interpreter) evalCase(e *Case, env *ValueEnv) (Value, *RuntimeError) {
	v, err := ip.eval(e.Scrutinee, env)
	if err != nil {
		return Value{}, err
	}
	scope := NewValueEnv(env)
	if v.Kind == VLeft {
		scope.Define(e.LeftName, *v.Inner)
		return ip.eval(e.LeftBody, scope)
	}
	scope.Define(e.RightName, *v.Inner)
	return ip.eval(e.RightBody, scope)
}

// applyPrimitive implements every built-in from spec §4.2/§4.3's table
// once its full argument list has been accumulated.
func (ip *Interpreter) applyPrimitive(op PrimitiveOp, args []Value, span Span) (Value, *RuntimeError) {
	switch op {
	case PrimHead:
		l := args[0]
		if len(l.List) == 0 {
			return Value{}, newRuntimeError(span, "head of empty list")
		}
		return l.List[0], nil
	case PrimTail:
		l := args[0]
		if len(l.List) == 0 {
			return Value{}, newRuntimeError(span, "tail of empty list")
		}
		rest := make([]Value, len(l.List)-1)
		copy(rest, l.List[1:])
		return ListVal(rest), nil
	case PrimFst:
		return args[0].Pair.First, nil
	case PrimSnd:
		return args[0].Pair.Second, nil
	case PrimInl:
		return LeftVal(args[0]), nil
	case PrimInr:
		return RightVal(args[0]), nil
	case PrimPrint:
		fmt.Fprintln(ip.Out, FormatValue(args[0]))
		return UnitVal(), nil
	case PrimTypeOf:
		return StringVal(renderRuntimeType(args[0])), nil
	case PrimLength:
		return IntVal(int64(len([]rune(args[0].Str)))), nil
	case PrimToString:
		return StringVal(FormatValue(args[0])), nil
	case PrimCons:
		elem, list := args[0], args[1]
		xs := make([]Value, 0, len(list.List)+1)
		xs = append(xs, elem)
		xs = append(xs, list.List...)
		return ListVal(xs), nil
	case PrimRange:
		lo, hi := args[0].Int, args[1].Int
		if hi < lo {
			return ListVal(nil), nil
		}
		xs := make([]Value, 0, hi-lo)
		for i := lo; i < hi; i++ {
			xs = append(xs, IntVal(i))
		}
		return ListVal(xs), nil
	case PrimChar:
		runes := []rune(args[0].Str)
		idx := args[1].Int
		if idx < 0 || idx >= int64(len(runes)) {
			return Value{}, newRuntimeError(span, "char index out of range")
		}
		return StringVal(string(runes[idx])), nil
	case PrimConcat:
		return StringVal(args[0].Str + args[1].Str), nil
	default:
		return Value{}, newRuntimeError(span, "Unsupported primitive")
	}
}

func renderRuntimeType(v Value) string {
	switch v.Kind {
	case VInt:
		return "Int"
	case VBool:
		return "Bool"
	case VString:
		return "String"
	case VUnit:
		return "Unit"
	case VList:
		if len(v.List) == 0 {
			return "List unknown"
		}
		return fmt.Sprintf("List %s", renderRuntimeType(v.List[0]))
	case VPair:
		return fmt.Sprintf("(%s, %s)", renderRuntimeType(v.Pair.First), renderRuntimeType(v.Pair.Second))
	case VLeft:
		return fmt.Sprintf("(%s + unknown)", renderRuntimeType(*v.Inner))
	case VRight:
		return fmt.Sprintf("(unknown + %s)", renderRuntimeType(*v.Inner))
	case VClosure, VPrimitive:
		return "Arrow"
	case VFixedPoint:
		return "FixedPoint"
	case VModule:
		return "Module"
	default:
		return "unknown"
	}
}
