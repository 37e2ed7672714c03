package ast

// Ident is a bare name reference: a variable, constant, enum member, or
// (in call position) a subroutine/cast name. Spec.md's `var` node.
type Ident struct {
	base
	Name string // canonical, already lowercased
}

func (*Ident) expressionNode() {}

func NewIdent(line int, name string) *Ident {
	return &Ident{base: base{line}, Name: name}
}

// ArrayAccess is `base[index]`. Spec.md's `array` node.
type ArrayAccess struct {
	base
	Base  Expression
	Index Expression
}

func (*ArrayAccess) expressionNode() {}

func NewArrayAccess(line int, base_ Expression, index Expression) *ArrayAccess {
	return &ArrayAccess{base: base{line}, Base: base_, Index: index}
}

// FieldAccess is `base.field`. Spec.md's `field` node.
type FieldAccess struct {
	base
	Base  Expression
	Field string
}

func (*FieldAccess) expressionNode() {}

func NewFieldAccess(line int, base_ Expression, field string) *FieldAccess {
	return &FieldAccess{base: base{line}, Base: base_, Field: field}
}

// LiteralKind tags the scalar kind of a ConstLiteral.
type LiteralKind int

const (
	LitInteger LiteralKind = iota
	LitReal
	LitBoolean
	LitChar
	LitText
)

// ConstLiteral is a literal scalar value: integer, real, boolean, char, or
// text. Spec.md's `const` node. It also stands in for `const_expr` wherever
// the grammar restricts an expression to a constant form — the restriction
// is enforced by the parser's production, not by a distinct node shape (an
// `id` const-expr is simply an *Ident).
type ConstLiteral struct {
	base
	Kind    LiteralKind
	IntVal  int64
	FloatVal float64
	BoolVal bool
	Text    string // holds the char (as a 1-byte string) or the full text
}

func (*ConstLiteral) expressionNode() {}

func NewIntLiteral(line int, v int64) *ConstLiteral {
	return &ConstLiteral{base: base{line}, Kind: LitInteger, IntVal: v}
}

func NewRealLiteral(line int, v float64) *ConstLiteral {
	return &ConstLiteral{base: base{line}, Kind: LitReal, FloatVal: v}
}

func NewBoolLiteral(line int, v bool) *ConstLiteral {
	return &ConstLiteral{base: base{line}, Kind: LitBoolean, BoolVal: v}
}

func NewCharLiteral(line int, v string) *ConstLiteral {
	return &ConstLiteral{base: base{line}, Kind: LitChar, Text: v}
}

func NewTextLiteral(line int, v string) *ConstLiteral {
	return &ConstLiteral{base: base{line}, Kind: LitText, Text: v}
}

// BinaryOp enumerates the binary operators of §4.2's precedence table.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpDivInt // div
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpIn
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpDivInt:
		return "div"
	case OpMod:
		return "mod"
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpIn:
		return "in"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	base
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (*BinaryExpr) expressionNode() {}

func NewBinaryExpr(line int, op BinaryOp, left, right Expression) *BinaryExpr {
	return &BinaryExpr{base: base{line}, Op: op, Left: left, Right: right}
}

// NotExpr is `not expr`.
type NotExpr struct {
	base
	Expr Expression
}

func (*NotExpr) expressionNode() {}

func NewNotExpr(line int, expr Expression) *NotExpr {
	return &NotExpr{base: base{line}, Expr: expr}
}

// CallExpr is `name(args)` — a subroutine call, built-in invocation, or
// scalar-type cast, disambiguated during semantic analysis.
type CallExpr struct {
	base
	Name string
	Args []Expression
}

func (*CallExpr) expressionNode() {}

func NewCallExpr(line int, name string, args []Expression) *CallExpr {
	return &CallExpr{base: base{line}, Name: name, Args: args}
}

// FormatExpr is `expr : width [: precision]`, rewritten post-parse from the
// low-precedence ':' operator (§4.2).
type FormatExpr struct {
	base
	Expr      Expression
	Width     Expression
	Precision Expression // nil if absent
}

func (*FormatExpr) expressionNode() {}

func NewFormatExpr(line int, expr, width, precision Expression) *FormatExpr {
	return &FormatExpr{base: base{line}, Expr: expr, Width: width, Precision: precision}
}

// SetLiteral is `[e1, e2, ...]`.
type SetLiteral struct {
	base
	Elements []Expression
}

func (*SetLiteral) expressionNode() {}

func NewSetLiteral(line int, elements []Expression) *SetLiteral {
	return &SetLiteral{base: base{line}, Elements: elements}
}
