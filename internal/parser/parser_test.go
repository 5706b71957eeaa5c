package parser_test

import (
	"testing"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/parser"
)

func parseModule(t *testing.T, src string) (*ast.Module, *diagnostics.Bag) {
	t.Helper()
	diags := diagnostics.NewBag(nil)
	cfg := config.NewBuildConfig(nil)
	p := parser.New("test.myra", src, diags, cfg)
	mod := p.ParseModule()
	if p.Abort != nil {
		t.Fatalf("parser aborted: %v", p.Abort)
	}
	return mod, diags
}

func TestParseMinimalExecutable(t *testing.T) {
	src := `module exe Hello;
begin
end.
`
	mod, diags := parseModule(t, src)
	if diags.HasErrors() {
		for _, d := range diags.Items() {
			t.Errorf("unexpected diagnostic: %s", d.Message)
		}
	}
	if mod.Name != "Hello" || mod.Kind != ast.KindExecutable {
		t.Fatalf("got Name=%q Kind=%q, want Hello/exe", mod.Name, mod.Kind)
	}
	if mod.Body == nil {
		t.Fatal("expected a non-nil module body")
	}
}

func TestLibraryModuleRejectsBody(t *testing.T) {
	src := `module lib Util;
begin
end.
`
	_, diags := parseModule(t, src)
	if !diags.HasErrors() {
		t.Fatal("expected E216 for a library module with a body")
	}
}

func TestConstVarTypeSections(t *testing.T) {
	src := `module lib Util;
const
  Max = 10;
type
  Pair = record
    X: Integer;
    Y: Integer;
  end;
var
  total: Integer;
end.
`
	mod, diags := parseModule(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	if len(mod.Constants) != 1 || mod.Constants[0].Name != "Max" {
		t.Fatalf("Constants = %+v", mod.Constants)
	}
	if len(mod.Types) != 1 || mod.Types[0].Name != "Pair" {
		t.Fatalf("Types = %+v", mod.Types)
	}
	rec, ok := mod.Types[0].Value.(*ast.RecordTypeExpr)
	if !ok || len(rec.Fields) != 2 {
		t.Fatalf("Pair's type = %+v, want a 2-field record", mod.Types[0].Value)
	}
	if len(mod.Variables) != 1 || mod.Variables[0].Name != "total" {
		t.Fatalf("Variables = %+v", mod.Variables)
	}
}

func TestPublicSectionPrefix(t *testing.T) {
	src := `module lib Util;
public var
  Shared: Integer;
public routine DoThing();
begin
end;
end.
`
	mod, diags := parseModule(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	if len(mod.Variables) != 1 || !mod.Variables[0].Public {
		t.Fatalf("Variables = %+v, want one public var", mod.Variables)
	}
	if len(mod.Routines) != 1 || !mod.Routines[0].Flags.Public {
		t.Fatalf("Routines = %+v, want one public routine", mod.Routines)
	}
}

func TestMethodRequiresVarSelfFirstParam(t *testing.T) {
	src := `module lib Util;
method Greet(var Self: Greeter);
begin
end;
end.
`
	_, diags := parseModule(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics for a well-formed method: %v", diags.Items())
	}

	badSrc := `module lib Util;
method Greet(name: String);
begin
end;
end.
`
	_, diags = parseModule(t, badSrc)
	if !diags.HasErrors() {
		t.Fatal("expected E209 when a method's first parameter is not 'var Self'")
	}
}

func TestMethodShapeWithoutKeyword(t *testing.T) {
	src := `module lib Util;
routine Greet(var Self: Greeter);
begin
end;
end.
`
	mod, diags := parseModule(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	r := mod.Routines[0]
	if r.BoundToType != "Greeter" {
		t.Fatalf("BoundToType = %q, want Greeter (shape-detected without 'method' keyword)", r.BoundToType)
	}
}

func TestSetLiteralWithRange(t *testing.T) {
	src := `module lib Util;
const
  Digits = {0..9, 'a'};
end.
`
	mod, diags := parseModule(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	lit, ok := mod.Constants[0].Value.(*ast.SetLit)
	if !ok || len(lit.Elems) != 2 {
		t.Fatalf("Digits value = %+v, want a 2-element set literal", mod.Constants[0].Value)
	}
	if lit.Elems[0].High == nil {
		t.Fatal("first set element should carry a range (0..9)")
	}
	if lit.Elems[1].High != nil {
		t.Fatal("second set element ('a') should not carry a range")
	}
}

func TestForStmtAscendingAndDescending(t *testing.T) {
	src := `module exe Loops;
var i: Integer;
begin
  for i := 1 to 10 do
  begin
  end;
  for i := 10 downto 1 do
  begin
  end;
end.
`
	mod, diags := parseModule(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	stmts := mod.Body.Statements
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	up, ok := stmts[0].(*ast.ForStmt)
	if !ok || up.Descending {
		t.Fatalf("first loop = %+v, want ascending", stmts[0])
	}
	down, ok := stmts[1].(*ast.ForStmt)
	if !ok || !down.Descending {
		t.Fatalf("second loop = %+v, want descending", stmts[1])
	}
}

func TestForeignPassthroughStatement(t *testing.T) {
	src := `module exe Mixed;
begin
  someTemplate<T>(1, 2);
end.
`
	mod, diags := parseModule(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	if len(mod.Body.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(mod.Body.Statements))
	}
	fs, ok := mod.Body.Statements[0].(*ast.ForeignStmt)
	if !ok {
		t.Fatalf("statement = %T, want *ast.ForeignStmt", mod.Body.Statements[0])
	}
	if fs.Raw == "" {
		t.Fatal("expected a non-empty verbatim capture for the template-call passthrough")
	}
}

func TestForeignBlockDecl(t *testing.T) {
	src := "module lib Native;\n#startcpp header\nint native_helper();\n#endcpp\nend.\n"
	mod, diags := parseModule(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	if len(mod.Foreign) != 1 {
		t.Fatalf("Foreign = %+v, want one block", mod.Foreign)
	}
	if mod.Foreign[0].Target != "header" {
		t.Fatalf("Target = %q, want %q from the block's selector", mod.Foreign[0].Target, "header")
	}
	if mod.Foreign[0].Raw != "int native_helper();\n" {
		t.Fatalf("Raw = %q, want the exact interior bytes", mod.Foreign[0].Raw)
	}
}

func TestDirectiveMutatesBuildConfig(t *testing.T) {
	src := `module lib Native;
#abi c
end.
`
	diags := diagnostics.NewBag(nil)
	cfg := config.NewBuildConfig(nil)
	p := parser.New("test.myra", src, diags, cfg)
	p.ParseModule()
	if p.Abort != nil {
		t.Fatalf("parser aborted: %v", p.Abort)
	}
	if cfg.ABI != "c" {
		t.Fatalf("cfg.ABI = %q, want %q after '#abi c' directive", cfg.ABI, "c")
	}
}

func TestDottedCallAmbiguityDeferred(t *testing.T) {
	src := `module exe Mixed;
begin
  Foo.Bar(1);
end.
`
	mod, diags := parseModule(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	stmt, ok := mod.Body.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("statement = %T, want *ast.ExprStmt", mod.Body.Statements[0])
	}
	call, ok := stmt.X.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expression = %T, want *ast.CallExpr", stmt.X)
	}
	if call.MethodName != "Bar" || call.ReceiverKind != ast.ReceiverNone {
		t.Fatalf("call = %+v, want MethodName=Bar and ReceiverKind left unresolved for the analyzer", call)
	}
}
