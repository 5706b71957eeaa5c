package analyzer

import (
	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/symbols"
)

// analyzeRoutineBody pushes a fresh scope holding the routine's parameters
// and declared locals, then walks the body. External routines have no
// body and are skipped.
func (a *Analyzer) analyzeRoutineBody(r *ast.RoutineDecl) {
	if r.Body == nil {
		return
	}
	sym, _ := r.ResolvedSymbol.(*symbols.Symbol)
	a.currentRoutine = r
	a.currentSymbol = sym

	scope := a.Table.EnterScope()
	pi := 0
	for _, p := range r.Params {
		if p.IsVariadic {
			continue
		}
		var ptype *symbols.Symbol
		if sym != nil && pi < len(sym.Params) {
			ptype = sym.Params[pi].Type
		}
		pi++
		symbols.DefineIn(scope, &symbols.Symbol{Name: p.Name, Kind: symbols.ParameterSymbol, DeclaredType: ptype})
	}
	for _, l := range r.Locals {
		a.registerOneVariable(l, false)
	}
	a.analyzeBlock(r.Body)
	a.Table.LeaveScope()

	a.currentRoutine = nil
	a.currentSymbol = nil
}

func (a *Analyzer) analyzeBlock(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		a.analyzeStmt(s)
		if a.Abort != nil {
			return
		}
	}
}

func (a *Analyzer) analyzeStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.BlockStmt:
		a.analyzeBlock(st)
	case *ast.VarDecl:
		a.registerOneVariable(st, false)
	case *ast.IfStmt:
		a.checkBoolean(st.Cond)
		a.analyzeStmt(st.Then)
		if st.Else != nil {
			a.analyzeStmt(st.Else)
		}
	case *ast.WhileStmt:
		a.checkBoolean(st.Cond)
		a.analyzeStmt(st.Body)
	case *ast.RepeatStmt:
		for _, inner := range st.Body {
			a.analyzeStmt(inner)
		}
		a.checkBoolean(st.Cond)
	case *ast.ForStmt:
		a.analyzeForStmt(st)
	case *ast.CaseStmt:
		a.analyzeCaseStmt(st)
	case *ast.ReturnStmt:
		a.analyzeReturnStmt(st)
	case *ast.AssignStmt:
		a.analyzeAssignStmt(st)
	case *ast.ExprStmt:
		a.analyzeExpr(st.X)
	case *ast.NewStmt:
		a.analyzeExpr(st.Target)
		if st.As != nil {
			if typ := a.resolveTypeExpr(st.As); typ != nil {
				st.InferredTypeName = typ.Name
			}
		} else if targetType := st.Target.ResolvedType(); targetType != nil {
			// Three-layer read (§9): explicit `as` first, then the
			// target's own declared pointee type.
			if sym, ok := targetType.(*symbols.Symbol); ok && sym.Constructed == symbols.PointerTo && sym.ElemType != nil {
				st.InferredTypeName = sym.ElemType.Name
			}
		}
	case *ast.DisposeStmt:
		a.analyzeExpr(st.Target)
	case *ast.SetLengthStmt:
		a.analyzeExpr(st.Target)
		a.checkInteger(st.Length)
	case *ast.TryStmt:
		for _, inner := range st.Body {
			a.analyzeStmt(inner)
		}
		for _, inner := range st.Except {
			a.analyzeStmt(inner)
		}
		for _, inner := range st.Finally {
			a.analyzeStmt(inner)
		}
	case *ast.InheritedStmt:
		a.analyzeInheritedStmt(st)
	case *ast.DirectiveStmt, *ast.ForeignStmt:
		// opaque to analysis; the emitter passes these through untouched
	}
}

func (a *Analyzer) checkBoolean(e ast.Expr) {
	t := a.analyzeExpr(e)
	if t != nil && t.Name != config.TypeBoolean {
		a.errorf(a.posTok(e.Pos()), diagnostics.E204, "condition must be Boolean")
	}
}

func (a *Analyzer) checkInteger(e ast.Expr) {
	t := a.analyzeExpr(e)
	if t != nil && t.Name != config.TypeInteger && t.Name != config.TypeUInteger {
		a.errorf(a.posTok(e.Pos()), diagnostics.E205, "expression must be Integer")
	}
}

func (a *Analyzer) analyzeForStmt(st *ast.ForStmt) {
	if _, ok := a.Table.Lookup(st.Var); !ok {
		a.errorf(a.posTok(st.Position), diagnostics.E201, "unknown loop variable '%s'", st.Var)
	}
	a.checkInteger(st.Start)
	a.checkInteger(st.End)
	a.analyzeStmt(st.Body)
}

func (a *Analyzer) analyzeCaseStmt(st *ast.CaseStmt) {
	a.analyzeExpr(st.Subject)
	for _, arm := range st.Arms {
		for _, label := range arm.Labels {
			a.analyzeExpr(label)
		}
		a.analyzeStmt(arm.Body)
	}
	if st.Default != nil {
		a.analyzeStmt(st.Default)
	}
}

func (a *Analyzer) analyzeReturnStmt(st *ast.ReturnStmt) {
	var retType *symbols.Symbol
	if a.currentSymbol != nil {
		retType = a.currentSymbol.Return
	}
	if st.Value == nil {
		if retType != nil {
			a.errorf(a.posTok(st.Position), diagnostics.E207, "return value expected")
		}
		return
	}
	if retType == nil {
		a.errorf(a.posTok(st.Position), diagnostics.E208, "void routine may not return a value")
	}
	valueType := a.analyzeExpr(st.Value)
	if retType != nil && valueType != nil && !a.typesCompatible(retType, valueType) {
		a.errorf(a.posTok(st.Position), diagnostics.E206, "return type mismatch")
	}
}

func (a *Analyzer) analyzeAssignStmt(st *ast.AssignStmt) {
	targetType := a.analyzeExpr(st.Target)
	valueType := a.analyzeExpr(st.Value)
	if targetType != nil && valueType != nil && !a.typesCompatible(targetType, valueType) {
		a.errorf(a.posTok(st.Position), diagnostics.E203, "assignment type mismatch")
	}
}

func (a *Analyzer) analyzeInheritedStmt(st *ast.InheritedStmt) {
	if a.currentSymbol == nil || !a.currentSymbol.IsMethod {
		a.errorf(a.posTok(st.Position), diagnostics.E210, "'inherited' used outside a method")
		return
	}
	boundTypeName := a.currentRoutine.BoundToType
	boundType, ok := a.Table.Lookup(boundTypeName)
	if !ok || boundType.BaseType == nil {
		a.errorf(a.posTok(st.Position), diagnostics.E211, "type '%s' has no parent", boundTypeName)
		return
	}
	name := st.MethodName
	if name == "" {
		name = a.currentRoutine.Name
		st.MethodName = name
	}
	method, found := symbols.FindMethod(boundType.BaseType, name)
	if !found {
		a.errorf(a.posTok(st.Position), diagnostics.E213, "unknown method '%s'", name)
	} else {
		a.analyzeArgs(st.Args, method.Params)
	}
	st.ResolvedParentType = boundType.BaseType.Name
}
