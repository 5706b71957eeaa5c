package emitter

import (
	"fmt"
	"strings"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/symbols"
)

// emitTypeDecl renders one `type Name = …;` declaration. Record forms
// get a full struct body; every other form becomes a `using` alias,
// following the closed type map in §4.6.
func (e *Emitter) emitTypeDecl(t *ast.TypeDecl) {
	sym, _ := e.Table.LookupLocal(t.Name)
	if sym == nil {
		sym, _ = e.Table.Lookup(t.Name)
	}

	if rec, ok := t.Value.(*ast.RecordTypeExpr); ok {
		e.emitRecordStruct(t.Name, rec, sym)
		return
	}

	e.header.lineDirective(t.Position)
	if sym == nil {
		e.header.line("// unresolved type '%s'", t.Name)
		return
	}
	if sym.AliasOf != nil {
		e.header.line("using %s = %s;", t.Name, e.typeName(sym.AliasOf))
		return
	}
	switch sym.Constructed {
	case symbols.PointerTo:
		if sym.ElemType != nil {
			e.header.line("using %s = %s*;", t.Name, e.typeName(sym.ElemType))
		} else {
			e.header.line("using %s = void*;", t.Name)
		}
	case symbols.SetOfRange, symbols.SetOfType:
		e.header.line("using %s = uint64_t;", t.Name)
	case symbols.ArrayDynamic:
		e.header.line("using %s = std::vector<%s>;", t.Name, e.typeName(sym.ElemType))
	case symbols.ArrayStatic:
		width := sym.ArrayHigh - sym.ArrayLow + 1
		e.header.line("using %s = %s[%d];", t.Name, e.typeName(sym.ElemType), width)
	case symbols.RoutineType:
		e.header.line("using %s = %s;", t.Name, e.functionPointerType(sym))
	default:
		e.header.line("// type '%s': unsupported form", t.Name)
	}
}

func (e *Emitter) emitRecordStruct(name string, rec *ast.RecordTypeExpr, sym *symbols.Symbol) {
	e.header.lineDirective(rec.Position)
	if rec.Parent != "" {
		e.header.line("struct %s : %s {", name, rec.Parent)
	} else {
		e.header.line("struct %s {", name)
	}
	e.header.indent++
	e.header.line("virtual ~%s()=default;", name)
	for i, f := range rec.Fields {
		var fieldSym *symbols.Symbol
		if sym != nil && i < len(sym.Fields) {
			fieldSym = sym.Fields[i].Type
		}
		e.header.line("%s;", e.declWithName(fieldSym, f.Name))
	}
	e.header.indent--
	e.header.line("};")
}

func (e *Emitter) emitConstDecl(c *ast.ConstDecl) {
	e.header.lineDirective(c.Position)
	sym, _ := c.ResolvedType.(*symbols.Symbol)
	valueExpr := e.emitExpr(c.Value)
	e.header.line("constexpr %s;", e.declWithName(sym, c.Name+" = "+valueExpr))
}

// emitVarDecl renders a module-level variable: `extern` declaration in
// the header, definition in the source, with dllimport/dllexport
// decoration in shared-library modules (§4.6).
func (e *Emitter) emitVarDecl(v *ast.VarDecl) {
	sym, _ := v.ResolvedType.(*symbols.Symbol)
	init := ""
	if v.Init != nil {
		init = " = " + e.emitExpr(v.Init)
	}

	if v.Public {
		e.header.lineDirective(v.Position)
		decl := e.declWithName(sym, v.Name)
		if e.module.Kind == ast.KindSharedLibrary {
			e.header.line("__declspec(dllimport) extern %s;", decl)
		} else {
			e.header.line("extern %s;", decl)
		}
		e.source.lineDirective(v.Position)
		if e.module.Kind == ast.KindSharedLibrary {
			e.source.line("__declspec(dllexport) %s%s;", decl, init)
		} else {
			e.source.line("%s%s;", decl, init)
		}
		return
	}

	e.source.lineDirective(v.Position)
	e.source.line("static %s%s;", e.declWithName(sym, v.Name), init)
}

// emitRoutineDecl renders a routine or method. External routines are
// declaration-only; variadic routines are emitted as a header-only
// template (§4.6); everything else gets a header declaration (public)
// or stays file-local static in source (non-public), plus a source
// definition.
func (e *Emitter) emitRoutineDecl(r *ast.RoutineDecl) {
	sym, _ := r.ResolvedSymbol.(*symbols.Symbol)

	if r.Flags.External {
		e.emitExternalRoutine(r, sym)
		return
	}
	if r.Flags.Variadic {
		e.emitVariadicRoutine(r, sym)
		return
	}

	retName := "void"
	if sym != nil && sym.Return != nil {
		retName = e.typeName(sym.Return)
	}
	params := e.paramList(r.Params, sym)

	prefix := ""
	switch {
	case e.module.Kind == ast.KindSharedLibrary && r.Flags.Public && r.Flags.ForeignABIExport:
		prefix = `extern "C" __declspec(dllexport) `
	case e.module.Kind == ast.KindSharedLibrary && r.Flags.Public:
		prefix = "__declspec(dllexport) "
	case r.Flags.ForeignABIExport:
		prefix = `extern "C" `
	}

	sig := fmt.Sprintf("%s%s %s(%s)", prefix, retName, r.Name, params)

	if r.Flags.Public {
		e.header.lineDirective(r.Position)
		e.header.line("%s;", sig)
	}

	e.source.lineDirective(r.Position)
	staticKw := ""
	if !r.Flags.Public {
		staticKw = "static "
	}
	e.source.line("%s%s {", staticKw, sig)
	e.source.indent++
	for _, l := range r.Locals {
		lsym, _ := l.ResolvedType.(*symbols.Symbol)
		init := ""
		if l.Init != nil {
			init = " = " + e.emitExpr(l.Init)
		}
		e.source.line("%s%s;", e.declWithName(lsym, l.Name), init)
	}
	e.emitStmtList(r.Body)
	e.source.indent--
	e.source.line("}")
}

func (e *Emitter) emitExternalRoutine(r *ast.RoutineDecl, sym *symbols.Symbol) {
	retName := "void"
	if sym != nil && sym.Return != nil {
		retName = e.typeName(sym.Return)
	}
	params := e.paramList(r.Params, sym)
	prefix := ""
	if e.abiIsC() {
		prefix = `extern "C" `
	}
	e.header.lineDirective(r.Position)
	e.header.line("%s%s %s(%s);", prefix, retName, r.Name, params)
}

// emitVariadicRoutine emits a template function taking the declared
// fixed parameters plus a trailing Args... pack; the body sees the
// variadic arguments packed into a std::any array so ArgCountExpr and
// ArgByIndexExpr (whose element types are unknown until emission) have
// a uniform runtime representation to index into.
func (e *Emitter) emitVariadicRoutine(r *ast.RoutineDecl, sym *symbols.Symbol) {
	retName := "void"
	if sym != nil && sym.Return != nil {
		retName = e.typeName(sym.Return)
	}
	fixed := e.paramList(r.Params, sym)
	if fixed != "" {
		fixed += ", "
	}

	e.header.lineDirective(r.Position)
	e.header.line("template<typename... __MyraArgs>")
	e.header.line("%s %s(%sconst __MyraArgs&... myra_varargs) {", retName, r.Name, fixed)
	e.header.indent++
	e.header.line("std::any myra_varargs_any[] = { std::any(myra_varargs)... };")
	e.header.line("const size_t myra_argc = sizeof...(__MyraArgs);")
	e.header.line("(void)myra_argc;")
	for _, l := range r.Locals {
		lsym, _ := l.ResolvedType.(*symbols.Symbol)
		init := ""
		if l.Init != nil {
			init = " = " + e.emitExpr(l.Init)
		}
		e.header.line("%s%s;", e.declWithName(lsym, l.Name), init)
	}
	saved := e.source
	e.source = e.header // variadic bodies must live in the header (template)
	e.emitStmtList(r.Body)
	e.source = saved
	e.header.indent--
	e.header.line("}")
}

func (e *Emitter) paramList(params []*ast.Param, sym *symbols.Symbol) string {
	var parts []string
	pi := 0
	for _, p := range params {
		if p.IsVariadic {
			continue
		}
		var psym *symbols.Symbol
		if sym != nil && pi < len(sym.Params) {
			psym = sym.Params[pi].Type
		}
		pi++
		t := e.typeName(psym)
		if p.ByRef || p.IsConst {
			t += "&"
		}
		if p.IsConst {
			t = "const " + t
		}
		parts = append(parts, fmt.Sprintf("%s %s", t, p.Name))
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) emitTestBlock(index int, t *ast.TestBlock) {
	name := fmt.Sprintf("myra_test_%d", index)
	e.source.lineDirective(t.Position)
	e.source.line("static void %s() {", name)
	e.source.indent++
	e.emitStmtList(t.Body)
	e.source.indent--
	e.source.line("}")
	e.source.line("namespace { bool %s_registered = (UnitTest::RegisterTest(%q, &%s, %q, %d), true); }",
		name, t.Description, name, t.Position.File, t.Position.Line)
}
