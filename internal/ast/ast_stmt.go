package ast

import "github.com/myra-lang/myrac/internal/token"

type StmtBase struct{ Position token.Position }

func (s *StmtBase) Pos() token.Position { return s.Position }
func (s *StmtBase) stmtNode()           {}

// BlockStmt is `begin … end` (or the implicit sequence inside
// if/while/for/case arms).
type BlockStmt struct {
	StmtBase
	Statements []Stmt
}

// IfStmt is `if cond then thenStmt [else elseStmt]`.
type IfStmt struct {
	StmtBase
	Cond Expr
	Then Stmt
	Else Stmt // nil when there is no else branch
}

// WhileStmt is `while cond do body`.
type WhileStmt struct {
	StmtBase
	Cond Expr
	Body Stmt
}

// ForStmt is `for v := start (to|downto) end do body`.
type ForStmt struct {
	StmtBase
	Var        string
	Start, End Expr
	Descending bool
	Body       Stmt
}

// RepeatStmt is `repeat body until cond`.
type RepeatStmt struct {
	StmtBase
	Body []Stmt
	Cond Expr
}

// CaseArm is one `label[, label...]: stmt` arm. A label may be a Range.
type CaseArm struct {
	Labels []Expr
	Body   Stmt
}

// CaseStmt is `case expr of arms [else default] end`.
type CaseStmt struct {
	StmtBase
	Subject Expr
	Arms    []*CaseArm
	Default Stmt // nil when there is no else arm
}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	StmtBase
	Value Expr // nil for a bare return
}

// AssignStmt is `target := value`.
type AssignStmt struct {
	StmtBase
	Target Expr
	Value  Expr
}

// ExprStmt wraps a call expression used as a statement.
type ExprStmt struct {
	StmtBase
	X Expr
}

// NewStmt is `new(ptr [as T])`.
type NewStmt struct {
	StmtBase
	Target Expr
	As     TypeExpr // nil when no explicit cast was given

	InferredTypeName string // filled in by the analyzer, per the 3-layer rule
}

// DisposeStmt is `dispose(ptr)`.
type DisposeStmt struct {
	StmtBase
	Target Expr
}

// SetLengthStmt is `setlength(arr, n)`.
type SetLengthStmt struct {
	StmtBase
	Target Expr
	Length Expr
}

// TryStmt is `try … [except …] [finally …] end`, any subset accepted as
// long as try itself is present.
type TryStmt struct {
	StmtBase
	Body      []Stmt
	HasExcept bool
	Except    []Stmt
	HasFinally bool
	Finally   []Stmt
}

// InheritedStmt is `inherited [name](args)`.
type InheritedStmt struct {
	StmtBase
	MethodName string // empty means "defaults to the enclosing routine's name"
	Args       []Expr

	ResolvedParentType string // filled in by the analyzer
}

// DirectiveStmt is an interpreted directive encountered inside a
// routine body (e.g. a `#breakpoint` hint attached to a specific
// line); its effect on the build configuration already happened during
// parsing, so the emitter simply skips this node.
type DirectiveStmt struct {
	StmtBase
	Name string
	Arg  string
}

// ForeignStmt is a statement-level passthrough node: raw source text
// captured verbatim because the parser did not recognise native
// statement syntax at this point (§4.3's passthrough rule, case 1).
type ForeignStmt struct {
	StmtBase
	Raw string
}
