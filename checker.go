// checker.go — Hindley-Milner-style type inference over the Corrosion AST.
//
// Grounded on the teacher's checking walk shape (one function per AST case,
// threading an expected-type hint and returning an inferred type) but
// rewritten around the real Unifier (types.go) instead of the teacher's
// structural duck-typing, per spec §4.2's rule table, which this file
// follows rule-by-rule in the same order the spec lists them.
package corrosion

// Checker runs one type-check pass over a Program, sharing a single
// Unifier so every inferred variable in the program can unify against
// every other.
type Checker struct {
	u       *Unifier
	modules map[string]*Module // import path as written, and import alias -> already-loaded module, for qualified lookups
}

func NewChecker() *Checker {
	return &Checker{u: NewUnifier(), modules: make(map[string]*Module)}
}

// Unifier exposes the checker's Unifier so a later phase (the evaluator's
// `type(e)` primitive) can render a node's statically inferred type after
// checking has finished resolving every type variable it touches.
func (c *Checker) Unifier() *Unifier { return c.u }

// CheckProgram type-checks every statement in order against a root scope,
// returning the first error encountered (spec §7: "each phase returns on
// the first error").
func (c *Checker) CheckProgram(prog *Program, env *TypeEnv, modEnv map[string]*Module) *TypeError {
	for k, v := range modEnv {
		c.modules[k] = v
	}
	for _, s := range prog.Statements {
		if err := c.checkStatement(s, env); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStatement(s Statement, env *TypeEnv) *TypeError {
	switch s := s.(type) {
	case *LetStatement:
		return c.checkLet(s, env)
	case *ExprStatement:
		_, err := c.infer(s.Expr, env)
		return err
	case *ImportStatement:
		mod, ok := c.modules[s.Path]
		if !ok {
			return newTypeError(s.Span, "Undefined module '%s'", s.Path)
		}
		if !env.Define(s.Alias, TyUnit()) {
			return newTypeError(s.Span, "Variable '%s' redefined", s.Alias)
		}
		c.modules[s.Alias] = mod
		return nil
	default:
		return newTypeError(s.Pos(), "Unsupported statement")
	}
}

func (c *Checker) checkLet(s *LetStatement, env *TypeEnv) *TypeError {
	valTy, err := c.infer(s.Value, env)
	if err != nil {
		return err
	}
	if s.Annotation != nil {
		annTy := c.resolveTypeExpr(s.Annotation)
		if err := c.u.Unify(valTy, annTy, s.Span); err != nil {
			return mismatchError(c.u, s.Span, annTy, valTy)
		}
	}
	if !env.Define(s.Name, valTy) {
		return newTypeError(s.Span, "Variable '%s' redefined", s.Name)
	}
	return nil
}

// checkBlock type-checks a block's statements in a fresh child scope and
// returns the block's resulting type (the tail expression's type, or Unit
// when no tail is present).
func (c *Checker) checkBlock(b *Block, parent *TypeEnv) (*Ty, *TypeError) {
	scope := NewTypeEnv(parent)
	for _, s := range b.Statements {
		if err := c.checkStatement(s, scope); err != nil {
			return nil, err
		}
	}
	if b.Tail == nil {
		return TyUnit(), nil
	}
	return c.infer(b.Tail, scope)
}

// mismatchError renders spec §4.2's exact "Type mismatch at L:C: expected
// 'A', found 'B'" wording. The location is embedded in the message itself,
// so callers must use newTypeErrorWithLocation (not newTypeError).
func mismatchError(u *Unifier, span Span, expected, found *Ty) *TypeError {
	return newTypeErrorWithLocation(span, "Type mismatch at line %d, column %d: expected '%s', found '%s'",
		span.Line, span.Column, u.Render(expected), u.Render(found))
}

func (c *Checker) resolveTypeExpr(te TypeExpr) *Ty {
	switch te := te.(type) {
	case *IntTypeExpr:
		return TyInt()
	case *BoolTypeExpr:
		return TyBool()
	case *StringTypeExpr:
		return TyString()
	case *UnitTypeExpr:
		return TyUnit()
	case *ListTypeExpr:
		return TyList(c.resolveTypeExpr(te.Element))
	case *PairTypeExpr:
		return TyPair(c.resolveTypeExpr(te.First), c.resolveTypeExpr(te.Second))
	case *SumTypeExpr:
		return TySum(c.resolveTypeExpr(te.Left), c.resolveTypeExpr(te.Right))
	case *ArrowTypeExpr:
		return TyArrow(c.resolveTypeExpr(te.Param), c.resolveTypeExpr(te.Result))
	default:
		return c.u.Fresh()
	}
}

// infer returns the type of e, recording it on the node via setType and
// unifying as dictated by spec §4.2's per-construct rule table.
func (c *Checker) infer(e Expression, env *TypeEnv) (*Ty, *TypeError) {
	t, err := c.inferRaw(e, env)
	if err != nil {
		return nil, err
	}
	e.setType(t)
	return t, nil
}

func (c *Checker) inferRaw(e Expression, env *TypeEnv) (*Ty, *TypeError) {
	switch e := e.(type) {
	case *IntLit:
		return TyInt(), nil
	case *BoolLit:
		return TyBool(), nil
	case *StringLit:
		return TyString(), nil
	case *UnitLit:
		return TyUnit(), nil
	case *Ident:
		t, ok := env.Get(e.Name)
		if !ok {
			return nil, newTypeError(e.Span, "Undefined variable '%s'", e.Name)
		}
		return t, nil
	case *QualifiedIdent:
		mod, ok := c.modules[e.Module]
		if !ok {
			return nil, newTypeError(e.Span, "Undefined variable '%s.%s'", e.Module, e.Name)
		}
		t, ok := mod.Types[e.Name]
		if !ok {
			return nil, newTypeError(e.Span, "Undefined variable '%s.%s'%s", e.Module, e.Name, knownExportsClause(mod))
		}
		return t, nil
	case *ListLit:
		return c.inferListLit(e, env)
	case *PairLit:
		fst, err := c.infer(e.First, env)
		if err != nil {
			return nil, err
		}
		snd, err := c.infer(e.Second, env)
		if err != nil {
			return nil, err
		}
		return TyPair(fst, snd), nil
	case *BinaryOp:
		return c.inferBinaryOp(e, env)
	case *UnaryOp:
		return c.inferUnaryOp(e, env)
	case *If:
		return c.inferIf(e, env)
	case *For:
		return c.inferFor(e, env)
	case *Lambda:
		return c.inferLambda(e, env)
	case *Apply:
		return c.inferApply(e, env)
	case *Fix:
		return c.inferFix(e, env)
	case *PrimitiveRef:
		return c.primitiveSignature(e), nil
	case *Case:
		return c.inferCase(e, env)
	default:
		return nil, newTypeError(e.Pos(), "Unsupported expression")
	}
}

func (c *Checker) inferListLit(e *ListLit, env *TypeEnv) (*Ty, *TypeError) {
	elem := c.u.Fresh()
	for _, el := range e.Elements {
		t, err := c.infer(el, env)
		if err != nil {
			return nil, err
		}
		if err := c.u.Unify(elem, t, el.Pos()); err != nil {
			return nil, mismatchError(c.u, el.Pos(), elem, t)
		}
	}
	return TyList(elem), nil
}

func (c *Checker) inferBinaryOp(e *BinaryOp, env *TypeEnv) (*Ty, *TypeError) {
	lt, err := c.infer(e.Left, env)
	if err != nil {
		return nil, err
	}
	rt, err := c.infer(e.Right, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case OpAdd:
		// '+' is overloaded for strings: if either side is String, both
		// must be String; otherwise both must be Int (spec §4.2).
		if c.u.prune(lt).Kind == KString || c.u.prune(rt).Kind == KString {
			if err := c.u.Unify(lt, TyString(), e.Left.Pos()); err != nil {
				return nil, invalidBinOp(c.u, e.Span, lt, rt, "+")
			}
			if err := c.u.Unify(rt, TyString(), e.Right.Pos()); err != nil {
				return nil, invalidBinOp(c.u, e.Span, lt, rt, "+")
			}
			return TyString(), nil
		}
		if err := c.u.Unify(lt, TyInt(), e.Left.Pos()); err != nil {
			return nil, invalidBinOp(c.u, e.Span, lt, rt, "+")
		}
		if err := c.u.Unify(rt, TyInt(), e.Right.Pos()); err != nil {
			return nil, invalidBinOp(c.u, e.Span, lt, rt, "+")
		}
		return TyInt(), nil
	case OpSub, OpMul, OpDiv:
		opStr := map[BinOp]string{OpSub: "-", OpMul: "*", OpDiv: "/"}[e.Op]
		if err := c.u.Unify(lt, TyInt(), e.Left.Pos()); err != nil {
			return nil, invalidBinOp(c.u, e.Span, lt, rt, opStr)
		}
		if err := c.u.Unify(rt, TyInt(), e.Right.Pos()); err != nil {
			return nil, invalidBinOp(c.u, e.Span, lt, rt, opStr)
		}
		return TyInt(), nil
	case OpEq, OpNeq:
		// Structural equality over any unifiable shape, per spec §4.2;
		// closures, plain or fix-built, are deliberately excluded (spec §9
		// open question) by checking the pruned kind before allowing the
		// unify.
		if lk, rk := c.u.prune(lt).Kind, c.u.prune(rt).Kind; lk == KArrow || rk == KArrow || lk == KFix || rk == KFix {
			return nil, invalidBinOp(c.u, e.Span, lt, rt, opSym(e.Op))
		}
		if err := c.u.Unify(lt, rt, e.Span); err != nil {
			return nil, invalidBinOp(c.u, e.Span, lt, rt, opSym(e.Op))
		}
		return TyBool(), nil
	case OpLt, OpLe, OpGt, OpGe:
		if err := c.u.Unify(lt, rt, e.Span); err != nil {
			return nil, invalidBinOp(c.u, e.Span, lt, rt, opSym(e.Op))
		}
		switch c.u.prune(lt).Kind {
		case KInt, KString, KBool, KVar:
			return TyBool(), nil
		default:
			return nil, invalidBinOp(c.u, e.Span, lt, rt, opSym(e.Op))
		}
	case OpAnd, OpOr:
		if err := c.u.Unify(lt, TyBool(), e.Left.Pos()); err != nil {
			return nil, invalidBinOp(c.u, e.Span, lt, rt, opSym(e.Op))
		}
		if err := c.u.Unify(rt, TyBool(), e.Right.Pos()); err != nil {
			return nil, invalidBinOp(c.u, e.Span, lt, rt, opSym(e.Op))
		}
		return TyBool(), nil
	default:
		return nil, newTypeError(e.Span, "Unsupported binary operator")
	}
}

func opSym(op BinOp) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

func invalidBinOp(u *Unifier, span Span, lt, rt *Ty, op string) *TypeError {
	return newTypeErrorWithLocation(span, "Invalid binary operation at line %d, column %d: '%s' %s '%s'",
		span.Line, span.Column, u.Render(lt), op, u.Render(rt))
}

func (c *Checker) inferUnaryOp(e *UnaryOp, env *TypeEnv) (*Ty, *TypeError) {
	t, err := c.infer(e.Operand, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case OpNot:
		if err := c.u.Unify(t, TyBool(), e.Span); err != nil {
			return nil, invalidUnaryOp(c.u, e.Span, t, "!")
		}
		return TyBool(), nil
	case OpNeg:
		if err := c.u.Unify(t, TyInt(), e.Span); err != nil {
			return nil, invalidUnaryOp(c.u, e.Span, t, "-")
		}
		return TyInt(), nil
	default:
		return nil, newTypeError(e.Span, "Unsupported unary operator")
	}
}

// invalidUnaryOp renders a unary-operator type mismatch in the same
// "Invalid binary operation" wording spec §4.2 uses for binary operators —
// the spec's operator-mismatch rule covers both under one bullet.
func invalidUnaryOp(u *Unifier, span Span, operand *Ty, op string) *TypeError {
	return newTypeErrorWithLocation(span, "Invalid binary operation at line %d, column %d: '%s' '%s'",
		span.Line, span.Column, op, u.Render(operand))
}

func (c *Checker) inferIf(e *If, env *TypeEnv) (*Ty, *TypeError) {
	condTy, err := c.infer(e.Cond, env)
	if err != nil {
		return nil, err
	}
	if err := c.u.Unify(condTy, TyBool(), e.Cond.Pos()); err != nil {
		return nil, mismatchError(c.u, e.Cond.Pos(), TyBool(), condTy)
	}
	thenTy, err := c.checkBlock(e.Then, env)
	if err != nil {
		return nil, err
	}
	if e.Else == nil {
		if err := c.u.Unify(thenTy, TyUnit(), e.Span); err != nil {
			return nil, mismatchError(c.u, e.Span, TyUnit(), thenTy)
		}
		return TyUnit(), nil
	}
	elseTy, err := c.checkBlock(e.Else, env)
	if err != nil {
		return nil, err
	}
	if err := c.u.Unify(thenTy, elseTy, e.Span); err != nil {
		return nil, mismatchError(c.u, e.Span, thenTy, elseTy)
	}
	return thenTy, nil
}

func (c *Checker) inferFor(e *For, env *TypeEnv) (*Ty, *TypeError) {
	iterTy, err := c.infer(e.Iter, env)
	if err != nil {
		return nil, err
	}
	elem := c.u.Fresh()
	if err := c.u.Unify(iterTy, TyList(elem), e.Iter.Pos()); err != nil {
		return nil, mismatchError(c.u, e.Iter.Pos(), TyList(elem), iterTy)
	}
	scope := NewTypeEnv(env)
	scope.Define(e.Var, elem)
	bodyTy, err := c.checkBlock(e.Body, scope)
	if err != nil {
		return nil, err
	}
	if err := c.u.Unify(bodyTy, TyUnit(), e.Span); err != nil {
		return nil, mismatchError(c.u, e.Span, TyUnit(), bodyTy)
	}
	return TyUnit(), nil
}

func (c *Checker) inferLambda(e *Lambda, env *TypeEnv) (*Ty, *TypeError) {
	var param *Ty
	if e.Annotation != nil {
		param = c.resolveTypeExpr(e.Annotation)
	} else {
		param = c.u.Fresh()
	}
	scope := NewTypeEnv(env)
	scope.Define(e.Param, param)
	bodyTy, err := c.checkBlock(e.Body, scope)
	if err != nil {
		return nil, err
	}
	if e.ReturnAnnotation != nil {
		retTy := c.resolveTypeExpr(e.ReturnAnnotation)
		if err := c.u.Unify(bodyTy, retTy, e.Body.Span); err != nil {
			return nil, mismatchError(c.u, e.Body.Span, retTy, bodyTy)
		}
	}
	return TyArrow(param, bodyTy), nil
}

func (c *Checker) inferApply(e *Apply, env *TypeEnv) (*Ty, *TypeError) {
	fnTy, err := c.infer(e.Fn, env)
	if err != nil {
		return nil, err
	}
	argTy, err := c.infer(e.Arg, env)
	if err != nil {
		return nil, err
	}

	// When fnTy is already known to be an Arrow (every primitive signature
	// and every checked lambda/fix resolves to one immediately), unify the
	// argument against its actual parameter type directly, so a mismatch
	// reports the offending leaf types (spec §8 scenario 6: "expected
	// 'String', found 'Int'") instead of the whole reconstructed arrow.
	pruned := c.u.prune(fnTy)
	if pruned.Kind == KFix {
		pruned = c.u.prune(pruned.A)
	}
	if pruned.Kind == KArrow {
		if err := c.u.Unify(pruned.A, argTy, e.Arg.Pos()); err != nil {
			return nil, c.applyMismatch(e, pruned.A, argTy)
		}
		return pruned.B, nil
	}

	result := c.u.Fresh()
	if err := c.u.Unify(fnTy, TyArrow(argTy, result), e.Span); err != nil {
		return nil, mismatchError(c.u, e.Fn.Pos(), TyArrow(argTy, result), fnTy)
	}
	return result, nil
}

// applyMismatch renders a failed argument-unification for one Apply node.
// fst/snd get spec §4.2's special-cased wording — a non-pair argument is
// reported against the literal "(error, error)" placeholder, not the
// fresh-variable pair type's ordinary "(unknown, unknown)" rendering.
// Every other callee (including head/tail, whose "List unknown" wording
// already falls out of Render on a List of a fresh, unresolved element)
// uses the regular mismatchError rendering.
func (c *Checker) applyMismatch(e *Apply, expected, found *Ty) *TypeError {
	if pr, ok := e.Fn.(*PrimitiveRef); ok && (pr.Op == PrimFst || pr.Op == PrimSnd) {
		span := e.Fn.Pos()
		return newTypeErrorWithLocation(span, "Type mismatch at line %d, column %d: expected '(error, error)', found '%s'",
			span.Line, span.Column, c.u.Render(found))
	}
	return mismatchError(c.u, e.Fn.Pos(), expected, found)
}

func (c *Checker) inferFix(e *Fix, env *TypeEnv) (*Ty, *TypeError) {
	fnTy, err := c.infer(e.Fn, env)
	if err != nil {
		return nil, err
	}
	alpha := c.u.Fresh()
	beta := c.u.Fresh()
	gamma := c.u.Fresh()
	if err := c.u.Unify(alpha, TyArrow(beta, gamma), e.Span); err != nil {
		return nil, mismatchError(c.u, e.Span, TyArrow(beta, gamma), alpha)
	}
	if err := c.u.Unify(fnTy, TyArrow(alpha, alpha), e.Span); err != nil {
		return nil, mismatchError(c.u, e.Span, TyArrow(alpha, alpha), fnTy)
	}
	return TyFix(alpha), nil
}

func (c *Checker) inferCase(e *Case, env *TypeEnv) (*Ty, *TypeError) {
	scrutTy, err := c.infer(e.Scrutinee, env)
	if err != nil {
		return nil, err
	}
	alpha := c.u.Fresh()
	beta := c.u.Fresh()
	if err := c.u.Unify(scrutTy, TySum(alpha, beta), e.Span); err != nil {
		return nil, mismatchError(c.u, e.Span, TySum(alpha, beta), scrutTy)
	}
	leftScope := NewTypeEnv(env)
	leftScope.Define(e.LeftName, alpha)
	leftTy, err := c.infer(e.LeftBody, leftScope)
	if err != nil {
		return nil, err
	}
	rightScope := NewTypeEnv(env)
	rightScope.Define(e.RightName, beta)
	rightTy, err := c.infer(e.RightBody, rightScope)
	if err != nil {
		return nil, err
	}
	if err := c.u.Unify(leftTy, rightTy, e.Span); err != nil {
		return nil, mismatchError(c.u, e.Span, leftTy, rightTy)
	}
	return leftTy, nil
}

// primitiveSignature instantiates a fresh type for a built-in, per spec
// §4.2's table: cons/head/tail/fst/snd/inl/inr are polymorphic (a fresh
// Var per occurrence is the structural placeholder mechanism spec §1
// allows in lieu of real generics); range/length/char/concat/toString/
// type/print are monomorphic except toString/type/print which accept any
// type via a fresh Var argument.
func (c *Checker) primitiveSignature(e *PrimitiveRef) *Ty {
	switch e.Op {
	case PrimCons:
		elem := c.u.Fresh()
		return TyArrow(elem, TyArrow(TyList(elem), TyList(elem)))
	case PrimHead:
		elem := c.u.Fresh()
		return TyArrow(TyList(elem), elem)
	case PrimTail:
		elem := c.u.Fresh()
		return TyArrow(TyList(elem), TyList(elem))
	case PrimFst:
		a, b := c.u.Fresh(), c.u.Fresh()
		return TyArrow(TyPair(a, b), a)
	case PrimSnd:
		a, b := c.u.Fresh(), c.u.Fresh()
		return TyArrow(TyPair(a, b), b)
	case PrimInl:
		a, b := c.u.Fresh(), c.u.Fresh()
		return TyArrow(a, TySum(a, b))
	case PrimInr:
		a, b := c.u.Fresh(), c.u.Fresh()
		return TyArrow(b, TySum(a, b))
	case PrimRange:
		return TyArrow(TyInt(), TyArrow(TyInt(), TyList(TyInt())))
	case PrimPrint:
		return TyArrow(c.u.Fresh(), TyUnit())
	case PrimTypeOf:
		return TyArrow(c.u.Fresh(), TyString())
	case PrimLength:
		return TyArrow(TyString(), TyInt())
	case PrimChar:
		return TyArrow(TyString(), TyArrow(TyInt(), TyString()))
	case PrimConcat:
		return TyArrow(TyString(), TyArrow(TyString(), TyString()))
	case PrimToString:
		return TyArrow(c.u.Fresh(), TyString())
	default:
		return c.u.Fresh()
	}
}
