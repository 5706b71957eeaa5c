// Package ast defines the closed set of tagged node variants that make
// up a Myra module's abstract syntax tree: declarations, statements, and
// expressions, each carrying a source position and a late-bound type
// reference that the semantic analyzer fills in.
package ast

import "github.com/myra-lang/myrac/internal/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
}

// Decl is a top-level or nested declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a routine body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression. ResolvedType is filled in by the semantic
// analyzer; nil means the expression is foreign and was never
// type-checked (invariant 3 in the spec's data model).
type Expr interface {
	Node
	exprNode()
	ResolvedType() interface{}
	SetResolvedType(interface{})
}

// ExprBase factors the position + resolved-type bookkeeping shared by
// every expression node.
type ExprBase struct {
	Position token.Position
	Type     interface{} // *symbols.Symbol once resolved; nil until/unless resolvable
}

func (e *ExprBase) Pos() token.Position           { return e.Position }
func (e *ExprBase) exprNode()                     {}
func (e *ExprBase) ResolvedType() interface{}      { return e.Type }
func (e *ExprBase) SetResolvedType(t interface{}) { e.Type = t }

// ModuleKind is the output artifact flavour declared in the module
// header.
type ModuleKind string

const (
	KindExecutable    ModuleKind = "exe"
	KindLibrary       ModuleKind = "lib"
	KindSharedLibrary ModuleKind = "dll"
)

// Import names another module to pull public symbols from.
type Import struct {
	Position token.Position
	Name     string
}

func (i *Import) Pos() token.Position { return i.Position }

// TestBlock is a top-level `test 'description'; … end;` tail block.
type TestBlock struct {
	Position    token.Position
	Description string
	Body        *BlockStmt
}

func (t *TestBlock) Pos() token.Position { return t.Position }

// DirectiveNode records an interpreted directive's name/argument so the
// emitter-facing configuration container can read it back (§4.3).
type DirectiveNode struct {
	Position token.Position
	Name     string
	Arg      string
}

func (d *DirectiveNode) Pos() token.Position { return d.Position }

// Module is the root of one translation unit's AST.
type Module struct {
	Position  token.Position
	Name      string
	Kind      ModuleKind
	Imports   []*Import
	Constants []*ConstDecl
	Types     []*TypeDecl
	Variables []*VarDecl
	Routines  []*RoutineDecl
	Tests     []*TestBlock
	Directives []*DirectiveNode
	Foreign   []*ForeignBlockDecl
	Body      *BlockStmt // only set when Kind == KindExecutable
}

func (m *Module) Pos() token.Position { return m.Position }

// ForeignBlockDecl is a top-level `#startcpp [header|source] … #endcpp`
// block captured verbatim; Target selects which emitted file it is
// written into.
type ForeignBlockDecl struct {
	Position token.Position
	Target   string // "header", "source", or "" (falls back to the configured #emit target)
	Raw      string
}

func (f *ForeignBlockDecl) Pos() token.Position { return f.Position }
func (f *ForeignBlockDecl) declNode()           {}
