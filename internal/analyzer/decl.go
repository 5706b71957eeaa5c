package analyzer

import (
	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/symbols"
)

// defineChecked installs sym in the current scope, raising E200 when a
// symbol of the same name is already visible there. Installation still
// proceeds on a duplicate so later references resolve to *something*
// rather than cascading into spurious "unknown" errors.
func (a *Analyzer) defineChecked(name string, tokPos ast.Node, sym *symbols.Symbol) {
	if _, ok := a.Table.LookupLocal(name); ok {
		a.errorf(a.posTok(tokPos.Pos()), diagnostics.E200, "duplicate identifier '%s'", name)
	}
	a.Table.Define(sym)
}

// registerTypes implements phase 1's type pass: every type symbol is
// created and installed before any of their forms are resolved, so
// self-referential pointers and mutually-referencing record fields see
// a complete set of names regardless of declaration order.
func (a *Analyzer) registerTypes(decls []*ast.TypeDecl) {
	stubs := make([]*symbols.Symbol, len(decls))
	for i, d := range decls {
		stub := &symbols.Symbol{Name: d.Name, Kind: symbols.TypeSym, Public: true}
		a.defineChecked(d.Name, d, stub)
		stubs[i] = stub
	}
	for i, d := range decls {
		a.fillTypeSymbol(stubs[i], d.Value)
	}
	for i, d := range decls {
		if symbols.DetectInheritanceCycle(stubs[i]) {
			a.errorf(a.posTok(d.Position), diagnostics.E214, "cyclic record inheritance involving '%s'", d.Name)
			stubs[i].BaseType = nil // break the cycle so method lookup never loops
		}
	}
}

// fillTypeSymbol resolves decl's type form into the already-installed
// stub in place, so any reference to stub's own name (found via table
// lookup while resolving its own fields) returns the same symbol.
func (a *Analyzer) fillTypeSymbol(stub *symbols.Symbol, form ast.TypeExpr) {
	switch te := form.(type) {
	case *ast.RecordTypeExpr:
		filled := a.buildRecordSymbol(stub.Name, te)
		stub.BaseType = filled.BaseType
		stub.Fields = filled.Fields
	case *ast.NamedTypeExpr:
		alias, ok := a.Table.Lookup(te.Name)
		if !ok {
			a.errorf(a.posTok(te.Position), diagnostics.E201, "unknown type '%s'", te.Name)
			return
		}
		stub.AliasOf = alias
	default:
		resolved := a.resolveTypeExpr(form)
		if resolved == nil {
			return
		}
		stub.Constructed = resolved.Constructed
		stub.ElemType = resolved.ElemType
		stub.ArrayLow, stub.ArrayHigh, stub.IsDynamic = resolved.ArrayLow, resolved.ArrayHigh, resolved.IsDynamic
		stub.SetLow, stub.SetHigh, stub.HasLiteralSetRange = resolved.SetLow, resolved.SetHigh, resolved.HasLiteralSetRange
		stub.Params, stub.Return, stub.CallingConvention = resolved.Params, resolved.Return, resolved.CallingConvention
	}
}

func (a *Analyzer) registerConstants(decls []*ast.ConstDecl) {
	for _, d := range decls {
		declaredType := a.resolveTypeExpr(d.Type)
		valueType := a.analyzeExpr(d.Value)
		if declaredType != nil && valueType != nil && !a.typesCompatible(declaredType, valueType) {
			a.errorf(a.posTok(d.Position), diagnostics.E203, "constant '%s' initializer type mismatch", d.Name)
		}
		resolved := declaredType
		if resolved == nil {
			resolved = valueType
		}
		d.ResolvedType = resolved
		a.defineChecked(d.Name, d, &symbols.Symbol{Name: d.Name, Kind: symbols.ConstantSymbol, Public: true, DeclaredType: resolved})
	}
}

func (a *Analyzer) registerVariables(decls []*ast.VarDecl) {
	for _, d := range decls {
		a.registerOneVariable(d, d.Public)
	}
}

func (a *Analyzer) registerOneVariable(d *ast.VarDecl, public bool) {
	declaredType := a.resolveTypeExpr(d.Type)
	d.ResolvedType = declaredType
	if d.Init != nil {
		initType := a.analyzeExpr(d.Init)
		if declaredType != nil && initType != nil && !a.typesCompatible(declaredType, initType) {
			a.errorf(a.posTok(d.Position), diagnostics.E203, "variable '%s' initializer type mismatch", d.Name)
		}
	}
	a.defineChecked(d.Name, d, &symbols.Symbol{Name: d.Name, Kind: symbols.VariableSymbol, Public: public, DeclaredType: declaredType, OwnerModule: a.module.Name})
}

// registerRoutines resolves every routine's signature and installs its
// symbol, confirming (or rejecting) method binding per §4.5. Bodies are
// analysed afterwards, once every routine and type in the module is
// visible, so forward calls between routines in the same module resolve.
func (a *Analyzer) registerRoutines(decls []*ast.RoutineDecl) {
	for _, r := range decls {
		params := a.resolveParams(r.Params)
		var ret *symbols.Symbol
		if r.Return != nil {
			ret = a.resolveTypeExpr(r.Return)
		}
		sym := &symbols.Symbol{
			Name: r.Name, Kind: symbols.RoutineSymbol, Public: r.Flags.Public,
			Params: params, Return: ret, Variadic: r.Flags.Variadic,
			External: r.Flags.External, ExternalLibrary: r.Flags.ExternalLibrary,
			CallingConvention: r.Flags.CallingConvention,
		}

		if r.BoundToType != "" {
			boundTo, ok := a.Table.Lookup(r.BoundToType)
			if !ok {
				a.errorf(a.posTok(r.Position), diagnostics.E201, "unknown type '%s'", r.BoundToType)
			} else if len(r.Params) == 0 || !r.Params[0].ByRef || !isSelfParamName(r.Params[0].Name) {
				// Shape slipped past the parser's own check only when it
				// was never flagged `method`; re-validate here too.
				a.errorf(a.posTok(r.Position), diagnostics.E209, "routine '%s' does not qualify as a method", r.Name)
			} else {
				sym.IsMethod = true
				boundTo.Methods = append(boundTo.Methods, sym)
			}
		}

		r.ResolvedSymbol = sym
		if sym.IsMethod {
			// Methods disambiguate by their bound type (symbols.FindMethod),
			// not by module-scope name uniqueness — the same method name on
			// two different record types is the ordinary override case, not
			// a duplicate identifier.
			a.Table.Define(sym)
		} else {
			a.defineChecked(r.Name, r, sym)
		}
	}
}
