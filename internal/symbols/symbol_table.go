// Package symbols implements the nested-scope symbol table: a tree of
// scopes where module scopes persist for a whole translation unit,
// built-in types are pre-populated at the root, and imported modules
// expose their public symbols through qualified lookup.
package symbols

import (
	"strings"

	"github.com/myra-lang/myrac/internal/config"
)

// Kind is the closed set of symbol kinds.
type Kind int

const (
	ConstantSymbol Kind = iota
	VariableSymbol
	TypeSym
	RoutineSymbol
	ParameterSymbol
	FieldSymbol
)

// Field is one ordered field of a record type symbol.
type Field struct {
	Name string
	Type *Symbol
}

// Param mirrors a routine's declared parameter for a routine-type
// symbol or a routine symbol's own signature.
type Param struct {
	Name  string
	Type  *Symbol
	ByRef bool
}

// Symbol is one named entity: a constant, variable, type, or routine.
//
// Type symbols additionally carry an optional BaseType (single
// inheritance) and owned Fields (ordered); non-owning Methods point at
// routine symbols owned by the routine's defining scope. Routine-type
// symbols (and routine symbols) additionally carry Params and Return.
type Symbol struct {
	Name   string
	Kind   Kind
	Public bool

	// Type symbols.
	BaseType *Symbol // nil for a type with no parent
	Fields   []*Field
	Methods  []*Symbol // non-owning; routine symbols bound to this type
	AliasOf  *Symbol   // set for `type X = Y;` plain aliases

	// Constructed types (set/array/pointer), closed per §4.6's type map.
	Constructed ConstructedKind
	ElemType    *Symbol // pointer-to / array-of / set-of(type) element
	ArrayLow    int64
	ArrayHigh   int64
	IsDynamic   bool // dynamic array / open set range unresolved at compile time
	SetLow      int64
	SetHigh     int64
	HasLiteralSetRange bool

	// Routine / routine-type symbols.
	Params            []*Param
	Return            *Symbol // nil for a procedure
	Variadic          bool
	IsMethod          bool
	External          bool
	ExternalLibrary   string
	CallingConvention string

	// Variable/constant symbols.
	DeclaredType *Symbol
	OwnerModule  string
}

// ConstructedKind tags a type symbol built from a type constructor.
type ConstructedKind int

const (
	NotConstructed ConstructedKind = iota
	PointerTo
	SetOfRange
	SetOfType
	ArrayStatic
	ArrayDynamic
	RoutineType
)

// Scope is one node in the symbol-table tree. A scope owns the symbols
// it stores; Parent is a non-owning link used for chained lookup.
type Scope struct {
	Parent  *Scope
	Name    string // module name for a module scope, "" otherwise
	IsModule bool

	store   map[string][]*Symbol // ordered-duplicate map: overloading/foreign surface
	imports []string             // imported module names, for unqualified fallback lookup
}

func newScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, store: make(map[string][]*Symbol)}
}

// keyOf folds a symbol name for storage and lookup — Myra identifiers,
// like its keywords, compare case-insensitively. Symbol.Name keeps the
// declared spelling for emission.
func keyOf(name string) string { return strings.ToLower(name) }

// Table is the whole symbol table for one translation unit: a Root
// scope pre-populated with built-ins, plus a persistent set of module
// scopes keyed by module name.
type Table struct {
	Root    *Scope
	modules map[string]*Scope
	current *Scope // the currently active scope (module or nested)
}

// NewTable creates a fresh table with built-in types pre-populated at
// the root, all marked public.
func NewTable() *Table {
	root := newScope(nil)
	t := &Table{Root: root, modules: make(map[string]*Scope), current: root}
	for _, name := range config.BuiltinTypeNames {
		t.Define(&Symbol{Name: name, Kind: TypeSym, Public: true})
	}
	return t
}

// Current returns the scope currently active for Define/Lookup.
func (t *Table) Current() *Scope { return t.current }

// EnterModuleScope creates (or re-enters) a persistent scope keyed by
// module name, parented at the root.
func (t *Table) EnterModuleScope(name string) *Scope {
	if s, ok := t.modules[name]; ok {
		t.current = s
		return s
	}
	s := newScope(t.Root)
	s.Name = name
	s.IsModule = true
	t.modules[name] = s
	t.current = s
	return s
}

// LeaveModuleScope returns the active scope to the root.
func (t *Table) LeaveModuleScope() {
	t.current = t.Root
}

// EnterScope pushes a new transient (e.g. routine-body) scope chained
// off the currently active scope.
func (t *Table) EnterScope() *Scope {
	s := newScope(t.current)
	t.current = s
	return s
}

// LeaveScope pops the currently active scope back to its parent.
func (t *Table) LeaveScope() {
	if t.current.Parent != nil {
		t.current = t.current.Parent
	}
}

// AddImport records name as importable from the current (module) scope;
// unqualified Lookup falls back to scanning each imported module's
// public symbols.
func (t *Table) AddImport(name string) {
	t.current.imports = append(t.current.imports, name)
}

// ModuleScope returns the persistent scope for an already-entered
// module name, or nil.
func (t *Table) ModuleScope(name string) *Scope {
	return t.modules[name]
}

// Define installs sym in the currently active scope. Symbols sharing a
// name are appended to that name's list (routines/foreign overloads),
// never silently replaced — duplicate-identifier checking is the
// analyzer's job, not the table's.
func (t *Table) Define(sym *Symbol) {
	key := keyOf(sym.Name)
	t.current.store[key] = append(t.current.store[key], sym)
}

// DefineIn installs sym into an explicit scope (used by the analyzer
// when building routine-body scopes for parameters/locals).
func DefineIn(scope *Scope, sym *Symbol) {
	key := keyOf(sym.Name)
	scope.store[key] = append(scope.store[key], sym)
}

// LookupLocal looks up name only in the currently active scope (no
// parent chaining, no import fallback); returns the most recently
// defined match.
func (t *Table) LookupLocal(name string) (*Symbol, bool) {
	return lookupIn(t.current, name)
}

func lookupIn(scope *Scope, name string) (*Symbol, bool) {
	list, ok := scope.store[keyOf(name)]
	if !ok || len(list) == 0 {
		return nil, false
	}
	return list[len(list)-1], true
}

// Lookup resolves name by walking the scope chain from current to root,
// then — only if nothing local was found — scanning each module the
// current module scope imports for a public symbol of that name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for s := t.current; s != nil; s = s.Parent {
		if sym, ok := lookupIn(s, name); ok {
			return sym, true
		}
	}
	for _, modName := range t.importsVisible() {
		if modScope, ok := t.modules[modName]; ok {
			if sym, ok := lookupIn(modScope, name); ok && sym.Public {
				return sym, true
			}
		}
	}
	return nil, false
}

// importsVisible collects the import list of the nearest enclosing
// module scope (routine-body scopes chain up to it).
func (t *Table) importsVisible() []string {
	for s := t.current; s != nil; s = s.Parent {
		if s.IsModule {
			return s.imports
		}
	}
	return nil
}

// LookupQualified searches only the named module's persistent scope.
func (t *Table) LookupQualified(module, name string) (*Symbol, bool) {
	modScope, ok := t.modules[module]
	if !ok {
		return nil, false
	}
	sym, ok := lookupIn(modScope, name)
	if !ok || !sym.Public {
		return nil, false
	}
	return sym, true
}

// FindMethod walks sym's BaseType chain looking for a method named
// name, returning the first match (nearest ancestor wins, i.e. the
// receiver's own type is checked before its parent).
func FindMethod(sym *Symbol, name string) (*Symbol, bool) {
	for t := sym; t != nil; t = t.BaseType {
		for _, m := range t.Methods {
			if strings.EqualFold(m.Name, name) {
				return m, true
			}
		}
	}
	return nil, false
}

// IsDescendantOf reports whether sym inherits from ancestor (directly or
// transitively) by walking the BaseType chain.
func IsDescendantOf(sym, ancestor *Symbol) bool {
	for t := sym.BaseType; t != nil; t = t.BaseType {
		if t == ancestor || t.Name == ancestor.Name {
			return true
		}
	}
	return false
}
