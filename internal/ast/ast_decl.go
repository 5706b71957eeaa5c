package ast

import "github.com/myra-lang/myrac/internal/token"

// ConstDecl is `name : T = expr;` or the untyped `name = expr;`.
type ConstDecl struct {
	Position token.Position
	Name     string
	Type     TypeExpr // nil when untyped; the analyzer infers from Value
	Value    Expr

	ResolvedType interface{} // *symbols.Symbol, filled in by the analyzer
}

func (c *ConstDecl) Pos() token.Position { return c.Position }
func (c *ConstDecl) declNode()           {}

// TypeDecl is `type name = <form>;`.
type TypeDecl struct {
	Position token.Position
	Name     string
	Value    TypeExpr
}

func (t *TypeDecl) Pos() token.Position { return t.Position }
func (t *TypeDecl) declNode()           {}

// VarDecl is `name : T [= expr];` inside a `var` section or as a local.
type VarDecl struct {
	Position token.Position
	Name     string
	Type     TypeExpr
	Init     Expr // nil when uninitialised
	Public   bool // module-level vars only; locals always leave this false

	ResolvedType interface{}
}

func (v *VarDecl) Pos() token.Position { return v.Position }
func (v *VarDecl) declNode()           {}
func (v *VarDecl) stmtNode()           {}

// RoutineFlags records the surface modifiers on a routine/method
// declaration.
type RoutineFlags struct {
	Public           bool
	Variadic         bool
	ForeignABIExport bool // an ABI-C directive was active at declaration
	External         bool
	ExternalLibrary  string
	Method           bool // declared with the explicit `method` keyword
	CallingConvention string
}

// RoutineDecl is a routine or method declaration. External routines have
// a nil Body. BoundToType is filled in by the parser with the receiver
// type name of an explicit `method`, or of a plain routine whose first
// parameter is `var Self`/`var ASelf`, and confirmed by the analyzer's
// method-binding detection.
type RoutineDecl struct {
	Position     token.Position
	Name         string
	Params       []*Param
	Return       TypeExpr // nil for a procedure
	Locals       []*VarDecl
	Body         *BlockStmt // nil for external routines
	Flags        RoutineFlags
	BoundToType  string // non-empty when this is (or claims to be) a method

	ResolvedSymbol interface{} // *symbols.Symbol, filled in by the analyzer
}

func (r *RoutineDecl) Pos() token.Position { return r.Position }
func (r *RoutineDecl) declNode()           {}
