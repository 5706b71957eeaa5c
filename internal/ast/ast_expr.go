package ast

// Ident is a (optionally module-qualified) identifier reference.
type Ident struct {
	ExprBase
	Qualifier string // empty unless written as Module.Name
	Name      string
}

// BinaryExpr is `left op right`.
type BinaryExpr struct {
	ExprBase
	Op    string
	Left  Expr
	Right Expr
}

// UnaryExpr is `op operand` (not, +, -).
type UnaryExpr struct {
	ExprBase
	Op      string
	Operand Expr
}

// FieldAccessExpr is `receiver.field`. Unknown keywords used as field
// selectors after '.' are accepted here too (§4.3), so Field is a bare
// string, not constrained to IDENT tokens.
type FieldAccessExpr struct {
	ExprBase
	Receiver Expr
	Field    string
}

// IndexExpr is `arr[index]`.
type IndexExpr struct {
	ExprBase
	Array Expr
	Index Expr
}

// DerefExpr is `ptr^`.
type DerefExpr struct {
	ExprBase
	Operand Expr
}

// CastExpr is `expr as T`.
type CastExpr struct {
	ExprBase
	Operand Expr
	Type    TypeExpr
}

// TypeTestExpr is `expr is T`.
type TypeTestExpr struct {
	ExprBase
	Operand Expr
	Type    TypeExpr
}

// CallReceiverKind classifies a dotted call's receiver, resolved by the
// semantic analyzer (§4.5, §9 design notes: "tagged variants (Module,
// Instance, Unknown)").
type CallReceiverKind int

const (
	ReceiverNone CallReceiverKind = iota
	ReceiverUnknownForeign
	ReceiverModuleQualified
	ReceiverMethodInstance
)

// CallExpr is a routine or method call. ReceiverKind/ReceiverExpr are
// only meaningful when the call was parsed with a dotted receiver;
// Callee carries the bare function/method name expression otherwise.
type CallExpr struct {
	ExprBase
	Callee       Expr // Ident (possibly qualified) for a plain call
	Args         []Expr
	ReceiverKind CallReceiverKind
	ReceiverExpr Expr // the left-hand side of the dot, when dotted
	MethodName   string

	ResolvedCallee interface{} // *symbols.Symbol once bound (routine or method)
}

// Literal kinds.

type IntLit struct {
	ExprBase
	Value int64
}

type FloatLit struct {
	ExprBase
	Value float64
}

type StringLit struct {
	ExprBase
	Value string
}

type CharLit struct {
	ExprBase
	Value rune
}

type WideStringLit struct {
	ExprBase
	Value string
}

type WideCharLit struct {
	ExprBase
	Value rune
}

type BoolLit struct {
	ExprBase
	Value bool
}

type NilLit struct{ ExprBase }

// SetElem is one element of a set literal: either a single expression or
// a `low..high` range.
type SetElem struct {
	Low, High Expr // High is nil for a single-element entry
}

type SetLit struct {
	ExprBase
	Elems []SetElem
}

// RangeExpr is a bare `a..b`, used in case labels and for-loop bounds
// contexts where a range (not a set) is expected.
type RangeExpr struct {
	ExprBase
	Low, High Expr
}

// LenExpr is `length(x)`.
type LenExpr struct {
	ExprBase
	Operand Expr
}

// ArgCountExpr is the variadic argument-count intrinsic.
type ArgCountExpr struct{ ExprBase }

// ArgByIndexExpr is the variadic argument-by-index intrinsic.
type ArgByIndexExpr struct {
	ExprBase
	Index Expr
}

// ForeignExpr is an expression-level passthrough node (§4.3's
// passthrough rule, cases 2 and 3): Raw is the exact source slice
// from StartOffset up to EndOffset, which is one past the last consumed
// byte, preserved byte-for-byte
// per invariant 2.
type ForeignExpr struct {
	ExprBase
	Raw         string
	StartOffset int
	EndOffset   int
}

var (
	_ Expr = (*Ident)(nil)
	_ Expr = (*BinaryExpr)(nil)
	_ Expr = (*UnaryExpr)(nil)
	_ Expr = (*FieldAccessExpr)(nil)
	_ Expr = (*IndexExpr)(nil)
	_ Expr = (*DerefExpr)(nil)
	_ Expr = (*CastExpr)(nil)
	_ Expr = (*TypeTestExpr)(nil)
	_ Expr = (*CallExpr)(nil)
	_ Expr = (*IntLit)(nil)
	_ Expr = (*FloatLit)(nil)
	_ Expr = (*StringLit)(nil)
	_ Expr = (*CharLit)(nil)
	_ Expr = (*WideStringLit)(nil)
	_ Expr = (*WideCharLit)(nil)
	_ Expr = (*BoolLit)(nil)
	_ Expr = (*NilLit)(nil)
	_ Expr = (*SetLit)(nil)
	_ Expr = (*RangeExpr)(nil)
	_ Expr = (*LenExpr)(nil)
	_ Expr = (*ArgCountExpr)(nil)
	_ Expr = (*ArgByIndexExpr)(nil)
	_ Expr = (*ForeignExpr)(nil)
)
