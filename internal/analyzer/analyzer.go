// Package analyzer implements the two-phase semantic analysis pass: phase
// one registers every module-level declaration (so self-referential and
// mutually-referential types resolve regardless of declaration order),
// phase two walks routine bodies, checking statement contracts and
// annotating every expression with its resolved type.
package analyzer

import (
	"strings"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/symbols"
	"github.com/myra-lang/myrac/internal/token"
)

// Analyzer walks one module's AST against a shared symbol table that
// persists across every module in the translation unit (so imports
// resolve against already-analyzed modules).
type Analyzer struct {
	Table  *symbols.Table
	Diags  *diagnostics.Bag
	Config *config.BuildConfig

	// Abort mirrors the parser's field: set once a fatal diagnostic or
	// the error cap fires, checked by the driver after each module.
	Abort error

	module        *ast.Module
	currentRoutine *ast.RoutineDecl
	currentSymbol  *symbols.Symbol // the routine symbol being analyzed, for return-type checks
}

// New creates an Analyzer sharing table, diags and build config across
// every module the driver processes in one compilation.
func New(table *symbols.Table, diags *diagnostics.Bag, cfg *config.BuildConfig) *Analyzer {
	return &Analyzer{Table: table, Diags: diags, Config: cfg}
}

// AnalyzeModule runs both phases over mod. Imports must already have been
// registered (their module scopes populated) by the driver before this is
// called, since phase 1's import walk only records the names as visible
// for unqualified fallback lookup.
func (a *Analyzer) AnalyzeModule(mod *ast.Module) {
	a.module = mod
	a.Table.EnterModuleScope(mod.Name)
	defer a.Table.LeaveModuleScope()

	for _, imp := range mod.Imports {
		a.Table.AddImport(imp.Name)
	}

	a.registerTypes(mod.Types)
	a.registerConstants(mod.Constants)
	a.registerVariables(mod.Variables)
	a.registerRoutines(mod.Routines)
	a.checkTestBlocks(mod)
	if a.Abort != nil {
		return
	}

	for _, r := range mod.Routines {
		a.analyzeRoutineBody(r)
		if a.Abort != nil {
			return
		}
	}

	if mod.Kind == ast.KindExecutable && mod.Body != nil {
		a.currentRoutine = nil
		a.currentSymbol = nil
		a.Table.EnterScope()
		a.analyzeBlock(mod.Body)
		a.Table.LeaveScope()
	}

	for _, t := range mod.Tests {
		a.currentRoutine = nil
		a.currentSymbol = nil
		a.Table.EnterScope()
		a.analyzeBlock(t.Body)
		a.Table.LeaveScope()
		if a.Abort != nil {
			return
		}
	}
}

// checkTestBlocks enforces invariant 7: a module's test blocks require
// the project-wide unit-test-mode flag and are always rejected in a
// shared-library module, regardless of that flag.
func (a *Analyzer) checkTestBlocks(mod *ast.Module) {
	if len(mod.Tests) == 0 {
		return
	}
	if mod.Kind == ast.KindSharedLibrary {
		a.errorf(a.posTok(mod.Tests[0].Position), diagnostics.E215, "test blocks are not permitted in a shared-library module")
		return
	}
	if a.Config != nil && !a.Config.UnitTestMode {
		a.errorf(a.posTok(mod.Tests[0].Position), diagnostics.E215, "test blocks require #unittestmode on")
	}
}

func (a *Analyzer) errorf(tok token.Token, code diagnostics.Code, format string, args ...interface{}) {
	if err := a.Diags.Add(diagnostics.Error, code, tok, format, args...); err != nil {
		a.Abort = err
	}
}

func (a *Analyzer) posTok(pos token.Position) token.Token {
	return token.Token{Pos: pos}
}

// isSelfParamName mirrors the parser's own check (spec invariant 5's
// case-insensitive "Self"/"ASelf" acceptance).
func isSelfParamName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "self" || lower == "aself"
}
