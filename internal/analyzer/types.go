package analyzer

import (
	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/symbols"
)

// resolveTypeExpr turns a syntactic type form into a type symbol. Named
// references are looked up in the table (raising E201 when unknown);
// every other form constructs a fresh, anonymous constructed-type symbol
// per the closed type map in §4.6 (pointer/array/set/routine-type).
func (a *Analyzer) resolveTypeExpr(t ast.TypeExpr) *symbols.Symbol {
	switch te := t.(type) {
	case nil:
		return nil
	case *ast.NamedTypeExpr:
		sym, ok := a.Table.Lookup(te.Name)
		if !ok {
			a.errorf(a.posTok(te.Position), diagnostics.E201, "unknown type '%s'", te.Name)
			return nil
		}
		return sym
	case *ast.PointerTypeExpr:
		sym := &symbols.Symbol{Kind: symbols.TypeSym, Constructed: symbols.PointerTo}
		if te.To != nil {
			sym.ElemType = a.resolveTypeExpr(te.To)
		}
		return sym
	case *ast.ArrayStaticTypeExpr:
		sym := &symbols.Symbol{Kind: symbols.TypeSym, Constructed: symbols.ArrayStatic}
		sym.ElemType = a.resolveTypeExpr(te.Elem)
		low, lowOK := a.constIntValue(te.Low)
		high, highOK := a.constIntValue(te.High)
		if lowOK && highOK {
			sym.ArrayLow, sym.ArrayHigh = low, high
		} else {
			sym.IsDynamic = true
		}
		a.analyzeExpr(te.Low)
		a.analyzeExpr(te.High)
		return sym
	case *ast.ArrayDynamicTypeExpr:
		sym := &symbols.Symbol{Kind: symbols.TypeSym, Constructed: symbols.ArrayDynamic, IsDynamic: true}
		sym.ElemType = a.resolveTypeExpr(te.Elem)
		return sym
	case *ast.SetRangeTypeExpr:
		sym := &symbols.Symbol{Kind: symbols.TypeSym, Constructed: symbols.SetOfRange}
		low, lowOK := a.constIntValue(te.Low)
		high, highOK := a.constIntValue(te.High)
		if lowOK && highOK {
			sym.SetLow, sym.SetHigh, sym.HasLiteralSetRange = low, high, true
		}
		a.analyzeExpr(te.Low)
		a.analyzeExpr(te.High)
		return sym
	case *ast.SetOfTypeExpr:
		sym := &symbols.Symbol{Kind: symbols.TypeSym, Constructed: symbols.SetOfType}
		elem, ok := a.Table.Lookup(te.ElemTypeName)
		if !ok {
			a.errorf(a.posTok(te.Position), diagnostics.E201, "unknown type '%s'", te.ElemTypeName)
		} else {
			sym.ElemType = elem
		}
		return sym
	case *ast.RoutineTypeExpr:
		sym := &symbols.Symbol{Kind: symbols.TypeSym, Constructed: symbols.RoutineType, CallingConvention: te.CallingConvention}
		sym.Params = a.resolveParams(te.Params)
		if te.Return != nil {
			sym.Return = a.resolveTypeExpr(te.Return)
		}
		return sym
	case *ast.RecordTypeExpr:
		// Reached only for a record form that was never pre-registered by
		// registerTypes (e.g. a malformed forward reference); build it
		// anonymously rather than losing the fields entirely.
		return a.buildRecordSymbol("", te)
	default:
		return nil
	}
}

func (a *Analyzer) resolveParams(params []*ast.Param) []*symbols.Param {
	var out []*symbols.Param
	for _, p := range params {
		if p.IsVariadic {
			continue
		}
		out = append(out, &symbols.Param{Name: p.Name, Type: a.resolveTypeExpr(p.Type), ByRef: p.ByRef})
	}
	return out
}

// buildRecordSymbol fills in (or creates, when stub is nil) a record type
// symbol's parent link and fields. Called with the type's own stub symbol
// already installed in the table, so self-referential pointer fields
// (`pointer to SameType`) resolve through the normal lookup path.
func (a *Analyzer) buildRecordSymbol(name string, rec *ast.RecordTypeExpr) *symbols.Symbol {
	sym := &symbols.Symbol{Name: name, Kind: symbols.TypeSym}
	if rec.Parent != "" {
		base, ok := a.Table.Lookup(rec.Parent)
		if !ok {
			a.errorf(a.posTok(rec.Position), diagnostics.E201, "unknown type '%s'", rec.Parent)
		} else {
			sym.BaseType = base
		}
	}
	for _, f := range rec.Fields {
		sym.Fields = append(sym.Fields, &symbols.Field{Name: f.Name, Type: a.resolveTypeExpr(f.Type)})
	}
	return sym
}

// constIntValue extracts a literal integer value from a bound expression,
// for array/set bounds where both ends are known at compile time (§4.5's
// case-label range-unrolling note applies the same literal-bounds test).
func (a *Analyzer) constIntValue(e ast.Expr) (int64, bool) {
	if lit, ok := e.(*ast.IntLit); ok {
		return lit.Value, true
	}
	return 0, false
}
