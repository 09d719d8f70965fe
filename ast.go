// ast.go — the Corrosion abstract syntax tree.
//
// Mirrors the closed variant sets from the spec's data model. Every node is
// a concrete Go struct (not an untyped S-expression, unlike the teacher's
// MindScript AST) because the spec pins a fixed grammar with no end-user
// extensibility — a typed tree makes the checker and evaluator exhaustive
// over a `switch` instead of probing tags at runtime. Each node embeds its
// own Span directly, and expressions additionally carry a *Ty slot that the
// checker fills in during inference (the "decorated AST" of spec §2 step 4).
package corrosion

// Program is the root of a parsed source file: a sequence of statements.
type Program struct {
	Statements []Statement
	Span       Span
}

// Statement is the closed set of top-level/block-level forms.
type Statement interface {
	Spanned
	statementNode()
}

// LetStatement is `let name [: T] = e;`.
type LetStatement struct {
	Name       string
	Annotation TypeExpr // nil if unannotated
	Value      Expression
	Span       Span
}

// ExprStatement is an expression used as a statement (`e;`).
type ExprStatement struct {
	Expr Expression
	Span Span
}

// ImportStatement is `import "path" as alias;`.
type ImportStatement struct {
	Path  string
	Alias string
	Span  Span
}

func (s *LetStatement) statementNode()   {}
func (s *ExprStatement) statementNode()  {}
func (s *ImportStatement) statementNode() {}

func (s *LetStatement) Pos() Span    { return s.Span }
func (s *ExprStatement) Pos() Span   { return s.Span }
func (s *ImportStatement) Pos() Span { return s.Span }

// Block is `{ stmt; stmt; ... [tailExpr] }`. It is not itself an
// Expression variant — it is the body shape shared by lambdas, if/for
// branches, and the program's own implicit top-level block.
type Block struct {
	Statements []Statement
	Tail       Expression // nil when the block has no trailing expression
	Span       Span
}

func (b *Block) Pos() Span { return b.Span }

// Expression is the closed set of expression forms from spec §3.
type Expression interface {
	Spanned
	expressionNode()
	// Type returns the slot the checker fills with the node's inferred
	// type. Populated after a successful type-check pass; nil before.
	Type() *Ty
	setType(*Ty)
}

// exprBase is embedded by every concrete expression and carries the
// span/type bookkeeping so each variant need not repeat it.
type exprBase struct {
	Span Span
	ty   *Ty
}

func (e *exprBase) Pos() Span     { return e.Span }
func (e *exprBase) Type() *Ty     { return e.ty }
func (e *exprBase) setType(t *Ty) { e.ty = t }
func (e *exprBase) expressionNode() {}

type IntLit struct {
	exprBase
	Value int64
}

type BoolLit struct {
	exprBase
	Value bool
}

type StringLit struct {
	exprBase
	Value string
}

type UnitLit struct {
	exprBase
}

// Ident is a bare variable reference.
type Ident struct {
	exprBase
	Name string
}

// QualifiedIdent is `module.name`.
type QualifiedIdent struct {
	exprBase
	Module string
	Name   string
}

type ListLit struct {
	exprBase
	Elements []Expression
}

type PairLit struct {
	exprBase
	First, Second Expression
}

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

type BinaryOp struct {
	exprBase
	Op          BinOp
	Left, Right Expression
}

type UnOp int

const (
	OpNot UnOp = iota
	OpNeg
)

type UnaryOp struct {
	exprBase
	Op      UnOp
	Operand Expression
}

// If covers both the bare-if statement form (Else == nil, type Unit) and
// the if/else expression form; the parser always emits this single node,
// per spec §4.1, leaving the Unit requirement to the checker.
type If struct {
	exprBase
	Cond       Expression
	Then, Else *Block // Else is nil when absent
}

// For is `for name in iter { body }`; its value is always Unit.
type For struct {
	exprBase
	Var  string
	Iter Expression
	Body *Block
}

// Lambda is a single-parameter function literal. Multi-parameter surface
// syntax `fn(a, b) { body }` is desugared into nested single-param Lambdas
// at parse time, per spec §3's note on currying.
type Lambda struct {
	exprBase
	Param      string
	Annotation TypeExpr // nil if unannotated
	Body       *Block
	// ReturnAnnotation is only ever set by the named-function-declaration
	// desugaring (`fn name(...) -> T { ... }`, spec §4.1): it is the `-> T`
	// applied to the innermost lambda in the curried chain. Plain `fn(x)
	// { ... }` literals never populate it.
	ReturnAnnotation TypeExpr
}

// Apply is single-argument application; `f(a, b)` desugars at parse time
// into Apply{Apply{f, a}, b}.
type Apply struct {
	exprBase
	Fn, Arg Expression
}

// Fix is the fixed-point operator.
type Fix struct {
	exprBase
	Fn Expression
}

// PrimitiveOp enumerates the built-in operations that are syntactically
// applications of a reserved or distinguished name (spec §3's "cons /
// head / tail / fst / snd / inl / inr / range / print / type / length /
// char / concat / toString"). Each behaves exactly like an identifier
// bound to a built-in function: it flows through Apply/currying the same
// way a user closure would, so no separate multi-arity call node is
// needed for them.
type PrimitiveOp int

const (
	PrimCons PrimitiveOp = iota
	PrimHead
	PrimTail
	PrimFst
	PrimSnd
	PrimInl
	PrimInr
	PrimRange
	PrimPrint
	PrimTypeOf
	PrimLength
	PrimChar
	PrimConcat
	PrimToString
)

func (op PrimitiveOp) String() string {
	switch op {
	case PrimCons:
		return "cons"
	case PrimHead:
		return "head"
	case PrimTail:
		return "tail"
	case PrimFst:
		return "fst"
	case PrimSnd:
		return "snd"
	case PrimInl:
		return "inl"
	case PrimInr:
		return "inr"
	case PrimRange:
		return "range"
	case PrimPrint:
		return "print"
	case PrimTypeOf:
		return "type"
	case PrimLength:
		return "length"
	case PrimChar:
		return "char"
	case PrimConcat:
		return "concat"
	case PrimToString:
		return "toString"
	default:
		return "<primitive>"
	}
}

// PrimitiveRef references a built-in by name, e.g. the bare `head` in
// `head(l)`. Its type is instantiated fresh at every occurrence — the
// structural-placeholder polymorphism spec §1 allows in lieu of real
// generics.
type PrimitiveRef struct {
	exprBase
	Op PrimitiveOp
}

// Case implements `case v of inl x => eL | inr y => eR`.
type Case struct {
	exprBase
	Scrutinee           Expression
	LeftName, RightName string
	LeftBody, RightBody Expression
}

func (*IntLit) expressionNode()        {}
func (*BoolLit) expressionNode()       {}
func (*StringLit) expressionNode()     {}
func (*UnitLit) expressionNode()       {}
func (*Ident) expressionNode()         {}
func (*QualifiedIdent) expressionNode() {}
func (*ListLit) expressionNode()       {}
func (*PairLit) expressionNode()       {}
func (*BinaryOp) expressionNode()      {}
func (*UnaryOp) expressionNode()       {}
func (*If) expressionNode()            {}
func (*For) expressionNode()           {}
func (*Lambda) expressionNode()        {}
func (*Apply) expressionNode()         {}
func (*Fix) expressionNode()           {}
func (*PrimitiveRef) expressionNode()  {}
func (*Case) expressionNode()          {}

// TypeExpr is the small surface syntax for type annotations (`: Int`,
// `-> List Int`, ...). It is distinct from Ty (types.go): TypeExpr is what
// the parser produces from annotation syntax; Ty is what the checker
// infers and unifies. resolveTypeExpr (checker.go) converts one to the
// other, instantiating a fresh Ty tree with no shared variables.
type TypeExpr interface {
	Spanned
	typeExprNode()
}

type typeExprBase struct{ Span Span }

func (t typeExprBase) Pos() Span     { return t.Span }
func (typeExprBase) typeExprNode()   {}

type IntTypeExpr struct{ typeExprBase }
type BoolTypeExpr struct{ typeExprBase }
type StringTypeExpr struct{ typeExprBase }
type UnitTypeExpr struct{ typeExprBase }

type ListTypeExpr struct {
	typeExprBase
	Element TypeExpr
}

type PairTypeExpr struct {
	typeExprBase
	First, Second TypeExpr
}

type SumTypeExpr struct {
	typeExprBase
	Left, Right TypeExpr
}

type ArrowTypeExpr struct {
	typeExprBase
	Param, Result TypeExpr
}
