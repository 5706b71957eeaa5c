package symbols

import (
	"testing"

	"github.com/myra-lang/myrac/internal/config"
)

func TestNewTablePrePopulatesBuiltins(t *testing.T) {
	table := NewTable()
	for _, name := range config.BuiltinTypeNames {
		sym, ok := table.Lookup(name)
		if !ok || sym.Kind != TypeSym || !sym.Public {
			t.Errorf("Lookup(%q) = %+v, %v; want a public TypeSym", name, sym, ok)
		}
	}
}

func TestDefineAppendsRatherThanReplaces(t *testing.T) {
	table := NewTable()
	table.EnterModuleScope("M")
	table.Define(&Symbol{Name: "Square", Kind: RoutineSymbol})
	table.Define(&Symbol{Name: "Square", Kind: RoutineSymbol, Variadic: true})

	list := table.Current().store["square"] // stored under the case-folded key
	if len(list) != 2 {
		t.Fatalf("got %d entries for 'Square', want 2 (Define must not dedupe)", len(list))
	}
	sym, ok := table.LookupLocal("Square")
	if !ok || !sym.Variadic {
		t.Fatalf("LookupLocal(%q) = %+v, want the most recently defined entry", "Square", sym)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	table := NewTable()
	for _, spelling := range []string{"integer", "INTEGER", "Integer"} {
		sym, ok := table.Lookup(spelling)
		if !ok || sym.Name != config.TypeInteger {
			t.Errorf("Lookup(%q) = %+v, %v; identifiers compare case-insensitively", spelling, sym, ok)
		}
	}
}

func TestLookupLocalDoesNotChainToParent(t *testing.T) {
	table := NewTable()
	table.EnterModuleScope("M")
	if _, ok := table.LookupLocal(config.TypeInteger); ok {
		t.Fatal("LookupLocal should not see root-scope built-ins from a module scope")
	}
	if _, ok := table.Lookup(config.TypeInteger); !ok {
		t.Fatal("Lookup should chain up to the root scope and find the built-in")
	}
}

func TestEnterModuleScopeIsPersistentAndReentrant(t *testing.T) {
	table := NewTable()
	first := table.EnterModuleScope("Util")
	table.Define(&Symbol{Name: "Shared", Kind: VariableSymbol, Public: true})
	table.LeaveModuleScope()

	if table.Current() != table.Root {
		t.Fatal("LeaveModuleScope should return the active scope to Root")
	}

	second := table.EnterModuleScope("Util")
	if first != second {
		t.Fatal("EnterModuleScope should return the same persistent scope on re-entry")
	}
	if _, ok := table.LookupLocal("Shared"); !ok {
		t.Fatal("re-entering a module scope should still see symbols defined on the earlier visit")
	}
}

func TestEnterScopeChainsToCurrentAndLeaveScopePops(t *testing.T) {
	table := NewTable()
	table.EnterModuleScope("M")
	table.Define(&Symbol{Name: "Outer", Kind: VariableSymbol})

	inner := table.EnterScope()
	DefineIn(inner, &Symbol{Name: "Inner", Kind: VariableSymbol})

	if _, ok := table.Lookup("Outer"); !ok {
		t.Fatal("a nested scope should still resolve names from its parent chain")
	}
	if _, ok := table.Lookup("Inner"); !ok {
		t.Fatal("expected the just-defined inner symbol to resolve")
	}

	table.LeaveScope()
	if _, ok := table.LookupLocal("Inner"); ok {
		t.Fatal("LookupLocal after LeaveScope should no longer see the popped scope's symbols")
	}
	if _, ok := table.LookupLocal("Outer"); !ok {
		t.Fatal("LeaveScope should return to the module scope where 'Outer' lives")
	}
}

func TestLeaveScopeAtRootIsNoop(t *testing.T) {
	table := NewTable()
	table.LeaveScope()
	if table.Current() != table.Root {
		t.Fatal("LeaveScope on the root scope should be a no-op, not panic or wander past root")
	}
}

func TestLookupQualifiedOnlySeesPublicSymbols(t *testing.T) {
	table := NewTable()
	table.EnterModuleScope("Util")
	table.Define(&Symbol{Name: "Internal", Kind: VariableSymbol, Public: false})
	table.Define(&Symbol{Name: "Exposed", Kind: VariableSymbol, Public: true})
	table.LeaveModuleScope()

	if _, ok := table.LookupQualified("Util", "Internal"); ok {
		t.Fatal("LookupQualified should not resolve a non-public symbol")
	}
	sym, ok := table.LookupQualified("Util", "Exposed")
	if !ok || sym.Name != "Exposed" {
		t.Fatalf("LookupQualified(Util, Exposed) = %+v, %v", sym, ok)
	}
	if _, ok := table.LookupQualified("NoSuchModule", "Exposed"); ok {
		t.Fatal("LookupQualified against an unknown module should fail")
	}
}

func TestAddImportEnablesUnqualifiedFallback(t *testing.T) {
	table := NewTable()
	table.EnterModuleScope("Util")
	table.Define(&Symbol{Name: "Square", Kind: RoutineSymbol, Public: true})
	table.LeaveModuleScope()

	table.EnterModuleScope("Main")
	if _, ok := table.Lookup("Square"); ok {
		t.Fatal("unqualified lookup should not see another module's symbols before it is imported")
	}
	table.AddImport("Util")
	sym, ok := table.Lookup("Square")
	if !ok || sym.Name != "Square" {
		t.Fatalf("Lookup(Square) after AddImport(Util) = %+v, %v", sym, ok)
	}
}

func TestFindMethodWalksInheritanceNearestFirst(t *testing.T) {
	baseGreet := &Symbol{Name: "Greet", Kind: RoutineSymbol, IsMethod: true}
	base := &Symbol{Name: "Base", Kind: TypeSym, Methods: []*Symbol{baseGreet}}

	derivedGreet := &Symbol{Name: "Greet", Kind: RoutineSymbol, IsMethod: true}
	derived := &Symbol{Name: "Derived", Kind: TypeSym, BaseType: base, Methods: []*Symbol{derivedGreet}}

	found, ok := FindMethod(derived, "Greet")
	if !ok || found != derivedGreet {
		t.Fatalf("FindMethod should find Derived's own override before walking up to Base, got %+v", found)
	}

	farewell := &Symbol{Name: "Farewell", Kind: RoutineSymbol, IsMethod: true}
	base.Methods = append(base.Methods, farewell)
	found, ok = FindMethod(derived, "Farewell")
	if !ok || found != farewell {
		t.Fatalf("FindMethod should walk up BaseType to find an inherited method, got %+v", found)
	}

	if _, ok := FindMethod(derived, "NoSuchMethod"); ok {
		t.Fatal("FindMethod should report false for a method absent from the whole chain")
	}
}

func TestIsDescendantOf(t *testing.T) {
	base := &Symbol{Name: "Base", Kind: TypeSym}
	derived := &Symbol{Name: "Derived", Kind: TypeSym, BaseType: base}
	unrelated := &Symbol{Name: "Unrelated", Kind: TypeSym}

	if !IsDescendantOf(derived, base) {
		t.Fatal("Derived should be a descendant of Base")
	}
	if IsDescendantOf(base, derived) {
		t.Fatal("Base should not be a descendant of Derived")
	}
	if IsDescendantOf(derived, unrelated) {
		t.Fatal("Derived should not be a descendant of an unrelated type")
	}
}

func TestDetectInheritanceCycle(t *testing.T) {
	a := &Symbol{Name: "A", Kind: TypeSym}
	b := &Symbol{Name: "B", Kind: TypeSym, BaseType: a}
	a.BaseType = b // A -> B -> A

	if !DetectInheritanceCycle(a) {
		t.Fatal("expected a cycle to be detected for A -> B -> A")
	}

	clean := &Symbol{Name: "Clean", Kind: TypeSym}
	if DetectInheritanceCycle(clean) {
		t.Fatal("a type with no BaseType should never report a cycle")
	}
}
