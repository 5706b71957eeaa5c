package emitter

import "github.com/myra-lang/myrac/internal/ast"

// emitMain renders the executable entry point: runtime init, an
// optional unit-test dispatch gated on a compile-time macro (set by the
// build driver from the accumulated #unittestmode directive state),
// then the module body, per §4.6.
func (e *Emitter) emitMain(mod *ast.Module) {
	e.source.line("")
	e.source.line("int main(int argc, char** argv) {")
	e.source.indent++
	e.source.line("Runtime::SetCommandLine(argc, argv);")
	e.source.line("Runtime::InitConsole();")
	e.source.line("#ifdef MYRA_UNIT_TEST_MODE")
	e.source.indent++
	e.source.line("return UnitTest::RunTests();")
	e.source.indent--
	e.source.line("#endif")
	if mod.Body != nil {
		e.emitStmtList(mod.Body)
	}
	e.source.line("return 0;")
	e.source.indent--
	e.source.line("}")
}
