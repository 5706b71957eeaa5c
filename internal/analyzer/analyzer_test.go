package analyzer_test

import (
	"testing"

	"github.com/myra-lang/myrac/internal/analyzer"
	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/parser"
	"github.com/myra-lang/myrac/internal/symbols"
)

func analyze(t *testing.T, src string) (*ast.Module, *diagnostics.Bag) {
	t.Helper()
	diags := diagnostics.NewBag(nil)
	cfg := config.NewBuildConfig(nil)
	p := parser.New("test.myra", src, diags, cfg)
	mod := p.ParseModule()
	if p.Abort != nil {
		t.Fatalf("parser aborted: %v", p.Abort)
	}
	table := symbols.NewTable()
	a := analyzer.New(table, diags, cfg)
	a.AnalyzeModule(mod)
	if a.Abort != nil {
		t.Fatalf("analyzer aborted: %v", a.Abort)
	}
	return mod, diags
}

func TestMethodBindingPromotesRoutine(t *testing.T) {
	src := `module lib Shapes;
type
  Shape = record
    Width: Integer;
  end;
routine Area(var Self: Shape): Integer;
begin
  return Self.Width;
end;
end.
`
	mod, diags := analyze(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	r := mod.Routines[0]
	sym, ok := r.ResolvedSymbol.(*symbols.Symbol)
	if !ok || !sym.IsMethod {
		t.Fatalf("ResolvedSymbol.IsMethod = %v, want true", sym)
	}
}

func TestDuplicateIdentifierDiagnosed(t *testing.T) {
	src := `module lib Dup;
var
  x: Integer;
var
  x: Integer;
end.
`
	_, diags := analyze(t, src)
	if !diags.HasErrors() {
		t.Fatal("expected E200 for a duplicate top-level identifier")
	}
}

func TestUnknownIdentifierDiagnosed(t *testing.T) {
	src := `module exe Bad;
begin
  y := 1;
end.
`
	_, diags := analyze(t, src)
	if !diags.HasErrors() {
		t.Fatal("expected E202 for an assignment to an undeclared identifier's resolved value")
	}
}

func TestModuleQualifiedCallClassification(t *testing.T) {
	srcLib := `module lib Util;
public routine Square(n: Integer): Integer;
begin
  return n;
end;
end.
`
	diags := diagnostics.NewBag(nil)
	cfg := config.NewBuildConfig(nil)
	table := symbols.NewTable()

	libParser := parser.New("util.myra", srcLib, diags, cfg)
	libMod := libParser.ParseModule()
	libAnalyzer := analyzer.New(table, diags, cfg)
	libAnalyzer.AnalyzeModule(libMod)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics analyzing Util: %v", diags.Items())
	}

	srcMain := `module exe Main;
import Util;
var r: Integer;
begin
  r := Util.Square(4);
end.
`
	mainParser := parser.New("main.myra", srcMain, diags, cfg)
	mainMod := mainParser.ParseModule()
	mainAnalyzer := analyzer.New(table, diags, cfg)
	mainAnalyzer.AnalyzeModule(mainMod)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics analyzing Main: %v", diags.Items())
	}

	assign := mainMod.Body.Statements[0].(*ast.AssignStmt)
	call := assign.Value.(*ast.CallExpr)
	if call.ReceiverKind != ast.ReceiverModuleQualified {
		t.Fatalf("ReceiverKind = %v, want ReceiverModuleQualified", call.ReceiverKind)
	}
}

func TestMethodInstanceCallClassification(t *testing.T) {
	src := `module exe Main;
type
  Shape = record
    Width: Integer;
  end;
routine Area(var Self: Shape): Integer;
begin
  return Self.Width;
end;
var s: Shape;
var r: Integer;
begin
  r := s.Area();
end.
`
	mod, diags := analyze(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	assign := mod.Body.Statements[0].(*ast.AssignStmt)
	call := assign.Value.(*ast.CallExpr)
	if call.ReceiverKind != ast.ReceiverMethodInstance {
		t.Fatalf("ReceiverKind = %v, want ReceiverMethodInstance", call.ReceiverKind)
	}
}

func TestUnknownForeignDottedCall(t *testing.T) {
	src := `module exe Main;
var s: Integer;
begin
  s.nonexistentMethod();
end.
`
	mod, diags := analyze(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	exprStmt := mod.Body.Statements[0].(*ast.ExprStmt)
	call := exprStmt.X.(*ast.CallExpr)
	if call.ReceiverKind != ast.ReceiverUnknownForeign {
		t.Fatalf("ReceiverKind = %v, want ReceiverUnknownForeign", call.ReceiverKind)
	}
}

func TestIntegerAndFloatPromotion(t *testing.T) {
	src := `module exe Main;
var a: Float;
begin
  a := 1 + 2.0;
end.
`
	mod, diags := analyze(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	assign := mod.Body.Statements[0].(*ast.AssignStmt)
	sym, ok := assign.Value.ResolvedType().(*symbols.Symbol)
	if !ok || sym.Name != config.TypeFloat {
		t.Fatalf("resolved type = %+v, want Float", sym)
	}
}

func TestNumericCompatibilityIsAsymmetric(t *testing.T) {
	widening := `module exe Main;
var f: Float;
begin
  f := 1;
end.
`
	_, diags := analyze(t, widening)
	if diags.HasErrors() {
		t.Fatalf("assigning Integer to Float must widen silently, got %v", diags.Items())
	}

	narrowing := `module exe Main;
var i: Integer;
begin
  i := 1.5;
end.
`
	_, diags = analyze(t, narrowing)
	if !diags.HasErrors() {
		t.Fatal("assigning Float to Integer must be rejected (the rule is asymmetric)")
	}
}

func TestCyclicInheritanceDiagnosed(t *testing.T) {
	src := `module lib Cycle;
type
  A = record (B)
  end;
  B = record (A)
  end;
end.
`
	_, diags := analyze(t, src)
	if !diags.HasErrors() {
		t.Fatal("expected E214 for cyclic record inheritance")
	}
}

func TestTestBlockRejectedInSharedLibrary(t *testing.T) {
	src := `module dll Plugin;
end.
test 'does nothing';
end;
`
	_, diags := analyze(t, src)
	if !diags.HasErrors() {
		t.Fatal("expected E215 for a test block in a shared-library module")
	}
}

func TestTestBlockRejectedWithoutUnitTestMode(t *testing.T) {
	src := `module exe Main;
begin
end.
test 'does nothing';
end;
`
	_, diags := analyze(t, src)
	if !diags.HasErrors() {
		t.Fatal("expected E215 for a test block without #unittestmode on")
	}
}

func TestInheritedStmtDefaultsMethodName(t *testing.T) {
	src := `module exe Main;
type
  Base = record
  end;
  Derived = record (Base)
  end;
routine Greet(var Self: Base);
begin
end;
routine Greet(var Self: Derived);
begin
  inherited;
end;
end.
`
	mod, diags := analyze(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	derivedGreet := mod.Routines[1]
	inh := derivedGreet.Body.Statements[0].(*ast.InheritedStmt)
	if inh.MethodName != "Greet" {
		t.Fatalf("InheritedStmt.MethodName = %q, want it defaulted back to %q", inh.MethodName, "Greet")
	}
}
