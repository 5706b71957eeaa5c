// Package emitter walks an analyzed module AST and produces the paired
// C++23 header and source text for it, writing `#line` directives so a
// source debugger maps generated lines back to Myra lines.
package emitter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/symbols"
	"github.com/myra-lang/myrac/internal/token"
)

// writer is a small indent-tracking buffer, in the spirit of the
// teacher's prettyprinter.CodePrinter, adapted to C-style braces and
// #line directives rather than Pascal-family indentation rules.
type writer struct {
	buf    bytes.Buffer
	indent int
}

func (w *writer) line(format string, args ...interface{}) {
	for i := 0; i < w.indent; i++ {
		w.buf.WriteString("    ")
	}
	fmt.Fprintf(&w.buf, format, args...)
	w.buf.WriteByte('\n')
}

func (w *writer) raw(s string) { w.buf.WriteString(s) }

func (w *writer) lineDirective(pos token.Position) {
	path := strings.ReplaceAll(pos.File, "\\", "/")
	w.line(`#line %d "%s"`, pos.Line, path)
}

func (w *writer) String() string { return w.buf.String() }

// Emitter walks one module's AST against the shared symbol table built
// by the analyzer, producing a header/source pair.
type Emitter struct {
	Table  *symbols.Table
	Diags  *diagnostics.Bag
	Config *config.BuildConfig

	header *writer
	source *writer

	module *ast.Module
	// mangled remembers synthesized standalone-type aliases (used for
	// constructed types, like a static array, that cannot appear inline
	// in every C++ type position) so each shape is typedef'd once per
	// module — the name-mangling the spec calls for in §4.6.
	mangled map[string]string
}

// New creates an Emitter sharing table/diags/config across every module
// in a compilation.
func New(table *symbols.Table, diags *diagnostics.Bag, cfg *config.BuildConfig) *Emitter {
	return &Emitter{Table: table, Diags: diags, Config: cfg}
}

// Result is one module's emitted output pair.
type Result struct {
	Header string // <Name>.h contents
	Source string // <Name>.cpp contents
}

// EmitModule renders mod's header and source files. mod must already
// have been through the analyzer (every expression's ResolvedType is
// populated or deliberately nil for foreign surface).
func (e *Emitter) EmitModule(mod *ast.Module) Result {
	e.module = mod
	e.mangled = make(map[string]string)
	e.header = &writer{}
	e.source = &writer{}

	e.Table.EnterModuleScope(mod.Name)
	defer e.Table.LeaveModuleScope()

	e.emitHeaderPreamble()
	e.emitSourcePreamble()

	wrap := mod.Kind == ast.KindLibrary
	if wrap {
		e.header.line("namespace %s {", mod.Name)
		e.header.indent++
		e.source.line("namespace %s {", mod.Name)
		e.source.indent++
	}

	e.emitForwardDecls()
	for _, fb := range mod.Foreign {
		e.emitForeignBlockDecl(fb)
	}
	for _, t := range mod.Types {
		e.emitTypeDecl(t)
	}
	for _, c := range mod.Constants {
		e.emitConstDecl(c)
	}
	for _, v := range mod.Variables {
		e.emitVarDecl(v)
	}
	for _, r := range mod.Routines {
		e.emitRoutineDecl(r)
	}
	for i, t := range mod.Tests {
		e.emitTestBlock(i, t)
	}

	if wrap {
		e.header.indent--
		e.header.line("} // namespace %s", mod.Name)
		e.source.indent--
		e.source.line("} // namespace %s", mod.Name)
	}

	if mod.Kind == ast.KindExecutable {
		e.emitMain(mod)
	}

	return Result{Header: e.header.String(), Source: e.source.String()}
}

func (e *Emitter) emitHeaderPreamble() {
	e.header.line("#pragma once")
	e.header.line("")
	e.header.line("#include <cstdint>")
	e.header.line("#include <string>")
	e.header.line("#include <vector>")
	e.header.line("#include <array>")
	e.header.line("#include <any>")
	e.header.line("#include <stdexcept>")
	for _, imp := range e.module.Imports {
		e.header.line(`#include "%s.h"`, imp.Name)
	}
	for _, inc := range e.Config.IncludeHeaders {
		e.header.line(`#include %s`, inc)
	}
	e.header.line("")
}

func (e *Emitter) emitSourcePreamble() {
	e.source.line(`#include "%s.h"`, e.module.Name)
	e.source.line("")
}

// emitForwardDecls writes `struct Name;` for every record type declared
// in this module, ahead of any full definition, so mutually-referencing
// record fields (pointers to each other) resolve regardless of
// declaration order.
func (e *Emitter) emitForwardDecls() {
	any := false
	for _, t := range e.module.Types {
		if _, ok := t.Value.(*ast.RecordTypeExpr); ok {
			e.header.line("struct %s;", t.Name)
			any = true
		}
	}
	if any {
		e.header.line("")
	}
}

func (e *Emitter) emitForeignBlockDecl(fb *ast.ForeignBlockDecl) {
	selected := fb.Target
	if selected == "" {
		selected = e.Config.EmitTarget // the #emit directive's accumulated default
	}
	w := e.source
	if selected == "header" {
		w = e.header
	}
	w.lineDirective(fb.Position)
	w.raw(fb.Raw)
	w.raw("\n")
}

// abiIsC reports whether the C ABI is selected — emitter-side ABI decoration reads the final
// accumulated config value, matching the directive-interleaved-with-
// parsing model: by the time emission runs, Config reflects the value
// current at the *last* directive seen, which for a single-module
// compile is also what was current at each declaration after it.
func (e *Emitter) abiIsC() bool { return strings.EqualFold(e.Config.ABI, "c") }
