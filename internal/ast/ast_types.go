package ast

import "github.com/myra-lang/myrac/internal/token"

// TypeExpr is a syntactic type form appearing after "=" in a type
// declaration, as a parameter/field/return type, or after "as"/"is".
type TypeExpr interface {
	Node
	typeExprNode()
}

type TypeExprBase struct{ Position token.Position }

func (t *TypeExprBase) Pos() token.Position { return t.Position }
func (t *TypeExprBase) typeExprNode()       {}

// NamedTypeExpr references a previously declared (or forward-declared)
// type by name — also used for a plain type alias's target.
type NamedTypeExpr struct {
	TypeExprBase
	Name string
}

// PointerTypeExpr is `pointer` (opaque) or `pointer to T`.
type PointerTypeExpr struct {
	TypeExprBase
	To TypeExpr // nil for the bare opaque `pointer` form
}

// SetRangeTypeExpr is `set of low..high`.
type SetRangeTypeExpr struct {
	TypeExprBase
	Low, High Expr
}

// SetOfTypeExpr is `set of TypeName` (an enumerated base type).
type SetOfTypeExpr struct {
	TypeExprBase
	ElemTypeName string
}

// ArrayStaticTypeExpr is `array [low..high] of T`.
type ArrayStaticTypeExpr struct {
	TypeExprBase
	Low, High Expr
	Elem      TypeExpr
}

// ArrayDynamicTypeExpr is `array [] of T` or `array of T`.
type ArrayDynamicTypeExpr struct {
	TypeExprBase
	Elem TypeExpr
}

// RoutineTypeExpr is `routine (params) : T` used as a type (function
// pointer alias).
type RoutineTypeExpr struct {
	TypeExprBase
	Params            []*Param
	Return            TypeExpr // nil for a procedure
	CallingConvention string
}

// RecordField is one field of a record type.
type RecordField struct {
	Position token.Position
	Name     string
	Type     TypeExpr
}

// RecordTypeExpr is `record (Parent)? fields end`.
type RecordTypeExpr struct {
	TypeExprBase
	Parent string // empty when there is no base type
	Fields []*RecordField
}

// Param is one routine parameter.
type Param struct {
	Position  token.Position
	Name      string
	Type      TypeExpr
	ByRef     bool // true for `var`
	IsConst   bool // true for `const`
	IsVariadic bool
}
