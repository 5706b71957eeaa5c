package emitter

import (
	"fmt"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/symbols"
)

func (e *Emitter) emitStmtList(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		e.emitStmt(s)
	}
}

// needsParens reports whether a condition expression still needs its
// own surrounding parentheses. Binary, unary and dereference
// expressions already emit self-parenthesised, so wrapping them again
// would only trigger -Wparentheses-equality style warnings.
func needsParens(e ast.Expr) bool {
	switch e.(type) {
	case *ast.BinaryExpr, *ast.UnaryExpr, *ast.DerefExpr:
		return false
	default:
		return true
	}
}

func (e *Emitter) cond(x ast.Expr) string {
	s := e.emitExpr(x)
	if needsParens(x) {
		return "(" + s + ")"
	}
	return s
}

func (e *Emitter) emitStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.BlockStmt:
		e.source.line("{")
		e.source.indent++
		e.emitStmtList(st)
		e.source.indent--
		e.source.line("}")
	case *ast.VarDecl:
		sym, _ := st.ResolvedType.(*symbols.Symbol)
		init := ""
		if st.Init != nil {
			init = " = " + e.emitExpr(st.Init)
		}
		e.source.lineDirective(st.Position)
		e.source.line("%s%s;", e.declWithName(sym, st.Name), init)
	case *ast.IfStmt:
		e.source.lineDirective(st.Position)
		e.source.line("if %s", e.cond(st.Cond))
		e.emitBranch(st.Then)
		if st.Else != nil {
			e.source.line("else")
			e.emitBranch(st.Else)
		}
	case *ast.WhileStmt:
		e.source.lineDirective(st.Position)
		e.source.line("while %s", e.cond(st.Cond))
		e.emitBranch(st.Body)
	case *ast.ForStmt:
		e.emitForStmt(st)
	case *ast.RepeatStmt:
		e.source.lineDirective(st.Position)
		e.source.line("do {")
		e.source.indent++
		for _, inner := range st.Body {
			e.emitStmt(inner)
		}
		e.source.indent--
		e.source.line("} while (!%s);", e.emitExpr(st.Cond))
	case *ast.CaseStmt:
		e.emitCaseStmt(st)
	case *ast.ReturnStmt:
		e.source.lineDirective(st.Position)
		if st.Value != nil {
			e.source.line("return %s;", e.emitExpr(st.Value))
		} else {
			e.source.line("return;")
		}
	case *ast.AssignStmt:
		e.source.lineDirective(st.Position)
		e.source.line("%s = %s;", e.emitExpr(st.Target), e.emitExpr(st.Value))
	case *ast.ExprStmt:
		e.source.lineDirective(st.Position)
		e.source.line("%s;", e.emitExpr(st.X))
	case *ast.NewStmt:
		e.emitNewStmt(st)
	case *ast.DisposeStmt:
		e.source.lineDirective(st.Position)
		e.source.line("delete %s;", e.emitExpr(st.Target))
	case *ast.SetLengthStmt:
		e.source.lineDirective(st.Position)
		e.source.line("%s.resize(%s);", e.emitExpr(st.Target), e.emitExpr(st.Length))
	case *ast.TryStmt:
		e.emitTryStmt(st)
	case *ast.InheritedStmt:
		e.emitInheritedStmt(st)
	case *ast.DirectiveStmt:
		// already acted on during parsing; nothing to emit
	case *ast.ForeignStmt:
		e.source.raw(st.Raw)
		e.source.raw("\n")
	}
}

// emitBranch emits s as an if/while body, wrapping non-block statements
// in braces so a dangling `#line` directive inside never attaches to the
// wrong statement.
func (e *Emitter) emitBranch(s ast.Stmt) {
	if _, ok := s.(*ast.BlockStmt); ok {
		e.emitStmt(s)
		return
	}
	e.source.line("{")
	e.source.indent++
	e.emitStmt(s)
	e.source.indent--
	e.source.line("}")
}

func (e *Emitter) emitForStmt(st *ast.ForStmt) {
	op := "<="
	step := fmt.Sprintf("%s++", st.Var)
	if st.Descending {
		op = ">="
		step = fmt.Sprintf("%s--", st.Var)
	}
	e.source.lineDirective(st.Position)
	e.source.line("for (%s = %s; %s %s %s; %s)", st.Var, e.emitExpr(st.Start), st.Var, op, e.emitExpr(st.End), step)
	e.emitBranch(st.Body)
}

func (e *Emitter) emitCaseStmt(st *ast.CaseStmt) {
	e.source.lineDirective(st.Position)
	e.source.line("switch (%s) {", e.emitExpr(st.Subject))
	e.source.indent++
	for _, arm := range st.Arms {
		for _, label := range arm.Labels {
			e.emitCaseLabel(label)
		}
		e.source.indent++
		e.emitStmt(arm.Body)
		e.source.line("break;")
		e.source.indent--
	}
	if st.Default != nil {
		e.source.line("default:")
		e.source.indent++
		e.emitStmt(st.Default)
		e.source.line("break;")
		e.source.indent--
	}
	e.source.indent--
	e.source.line("}")
}

// emitCaseLabel unrolls an integer-literal range into consecutive `case`
// labels; a range with a non-literal bound is dropped to a comment
// placeholder, per the source's own (unresolved) design note — see §9.
func (e *Emitter) emitCaseLabel(label ast.Expr) {
	rng, ok := label.(*ast.RangeExpr)
	if !ok {
		e.source.line("case %s:", e.emitExpr(label))
		return
	}
	lowLit, lowOK := rng.Low.(*ast.IntLit)
	highLit, highOK := rng.High.(*ast.IntLit)
	if lowOK && highOK {
		for v := lowLit.Value; v <= highLit.Value; v++ {
			e.source.line("case %d:", v)
		}
		return
	}
	e.source.line("// case range %s..%s: non-literal bounds, not unrolled", e.emitExpr(rng.Low), e.emitExpr(rng.High))
}

func (e *Emitter) emitNewStmt(st *ast.NewStmt) {
	e.source.lineDirective(st.Position)
	if st.InferredTypeName == "" {
		e.Diags.AddAt(diagnostics.Error, diagnostics.E217, st.Position.File, st.Position.Line, st.Position.Column,
			"new() could not infer a concrete pointee type")
		e.source.line("// new(): could not infer pointee type")
		return
	}
	e.source.line("%s = new %s();", e.emitExpr(st.Target), st.InferredTypeName)
}

// emitTryStmt follows §4.6: except catches std::exception& then ...;
// finally wraps the tried region (nesting around the except handlers
// when both are present), re-throws, then runs the finally body again on
// the normal exit path.
func (e *Emitter) emitTryStmt(st *ast.TryStmt) {
	e.source.lineDirective(st.Position)
	if st.HasFinally {
		e.source.line("try {")
		e.source.indent++
		e.emitTryCore(st)
		e.source.indent--
		e.source.line("} catch (...) {")
		e.source.indent++
		for _, inner := range st.Finally {
			e.emitStmt(inner)
		}
		e.source.line("throw;")
		e.source.indent--
		e.source.line("}")
		for _, inner := range st.Finally {
			e.emitStmt(inner)
		}
		return
	}
	e.emitTryCore(st)
}

// emitTryCore renders the try body with its except handlers. With no
// except clause the body still gets a rethrowing catch-all, since a C++
// try block must carry at least one handler.
func (e *Emitter) emitTryCore(st *ast.TryStmt) {
	e.source.line("try {")
	e.source.indent++
	for _, inner := range st.Body {
		e.emitStmt(inner)
	}
	e.source.indent--
	if !st.HasExcept {
		e.source.line("} catch (...) {")
		e.source.indent++
		e.source.line("throw;")
		e.source.indent--
		e.source.line("}")
		return
	}
	e.source.line("} catch (const std::exception&) {")
	e.source.indent++
	for _, inner := range st.Except {
		e.emitStmt(inner)
	}
	e.source.indent--
	e.source.line("} catch (...) {")
	e.source.indent++
	for _, inner := range st.Except {
		e.emitStmt(inner)
	}
	e.source.indent--
	e.source.line("}")
}

func (e *Emitter) emitInheritedStmt(st *ast.InheritedStmt) {
	e.source.lineDirective(st.Position)
	name := st.MethodName
	if name == "" {
		name = "/* enclosing routine name unresolved */"
	}
	var args []string
	args = append(args, fmt.Sprintf("static_cast<%s&>(Self)", st.ResolvedParentType))
	for _, a := range st.Args {
		args = append(args, e.emitExpr(a))
	}
	e.source.line("%s(%s);", name, joinArgs(args))
}
