package analyzer

import (
	"strings"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/symbols"
)

func (a *Analyzer) builtin(name string) *symbols.Symbol {
	sym, _ := a.Table.Lookup(name)
	return sym
}

// analyzeExpr resolves e's type, annotating the node via SetResolvedType.
// A nil result (and a nil stored type) marks a foreign expression that is
// never type-checked, per invariant 3.
func (a *Analyzer) analyzeExpr(e ast.Expr) *symbols.Symbol {
	if e == nil {
		return nil
	}
	t := a.resolveExprType(e)
	e.SetResolvedType(t)
	return t
}

func (a *Analyzer) resolveExprType(e ast.Expr) *symbols.Symbol {
	switch n := e.(type) {
	case *ast.ForeignExpr:
		return nil
	case *ast.IntLit:
		return a.builtin(config.TypeInteger)
	case *ast.FloatLit:
		return a.builtin(config.TypeFloat)
	case *ast.StringLit, *ast.WideStringLit:
		return a.builtin(config.TypeString)
	case *ast.CharLit:
		return a.builtin(config.TypeChar)
	case *ast.WideCharLit:
		return a.builtin(config.TypeUChar)
	case *ast.BoolLit:
		return a.builtin(config.TypeBoolean)
	case *ast.NilLit:
		return a.builtin(config.TypePointer)
	case *ast.SetLit:
		for _, elem := range n.Elems {
			a.analyzeExpr(elem.Low)
			if elem.High != nil {
				a.analyzeExpr(elem.High)
			}
		}
		return a.builtin(config.TypeSet)
	case *ast.RangeExpr:
		a.analyzeExpr(n.Low)
		a.analyzeExpr(n.High)
		return a.builtin(config.TypeInteger)
	case *ast.LenExpr:
		a.analyzeExpr(n.Operand)
		return a.builtin(config.TypeInteger)
	case *ast.ArgCountExpr:
		return a.builtin(config.TypeInteger)
	case *ast.ArgByIndexExpr:
		a.analyzeExpr(n.Index)
		return nil // variadic argument's static type is unknown until emission
	case *ast.Ident:
		return a.resolveIdent(n)
	case *ast.UnaryExpr:
		return a.resolveUnary(n)
	case *ast.BinaryExpr:
		return a.resolveBinary(n)
	case *ast.FieldAccessExpr:
		return a.resolveFieldAccess(n)
	case *ast.IndexExpr:
		arr := a.analyzeExpr(n.Array)
		a.analyzeExpr(n.Index)
		if arr != nil && (arr.Constructed == symbols.ArrayStatic || arr.Constructed == symbols.ArrayDynamic) {
			return arr.ElemType
		}
		return nil
	case *ast.DerefExpr:
		ptr := a.analyzeExpr(n.Operand)
		if ptr != nil && ptr.Constructed == symbols.PointerTo {
			return ptr.ElemType
		}
		return nil
	case *ast.CastExpr:
		a.analyzeExpr(n.Operand)
		return a.resolveTypeExpr(n.Type)
	case *ast.TypeTestExpr:
		a.analyzeExpr(n.Operand)
		a.resolveTypeExpr(n.Type)
		return a.builtin(config.TypeBoolean)
	case *ast.CallExpr:
		return a.resolveCall(n)
	default:
		return nil
	}
}

func (a *Analyzer) resolveIdent(n *ast.Ident) *symbols.Symbol {
	var sym *symbols.Symbol
	var ok bool
	if n.Qualifier != "" {
		sym, ok = a.Table.LookupQualified(n.Qualifier, n.Name)
	} else {
		sym, ok = a.Table.Lookup(n.Name)
	}
	if !ok {
		a.errorf(a.posTok(n.Position), diagnostics.E202, "unknown identifier '%s'", n.Name)
		return nil
	}
	if sym.Kind == symbols.VariableSymbol || sym.Kind == symbols.ParameterSymbol || sym.Kind == symbols.FieldSymbol {
		return sym.DeclaredType
	}
	if sym.Kind == symbols.ConstantSymbol {
		return sym.DeclaredType
	}
	return sym // a bare type name used as a value (e.g. in `is`/`as`) — callers route this through resolveTypeExpr instead
}

func (a *Analyzer) resolveUnary(n *ast.UnaryExpr) *symbols.Symbol {
	operand := a.analyzeExpr(n.Operand)
	if n.Op == "not" {
		return a.builtin(config.TypeBoolean)
	}
	return operand
}

// resolveBinary implements §4.5's arithmetic/comparison promotion table.
func (a *Analyzer) resolveBinary(n *ast.BinaryExpr) *symbols.Symbol {
	left := a.analyzeExpr(n.Left)
	right := a.analyzeExpr(n.Right)

	switch n.Op {
	case "=", "<>", "<", "<=", ">", ">=", "and", "or", "in":
		if left != nil && right != nil && isCharStringPair(left, right) {
			promoted := a.builtin(config.TypeString)
			n.Left.SetResolvedType(promoted)
			n.Right.SetResolvedType(promoted)
		}
		return a.builtin(config.TypeBoolean)
	}

	if isSetType(left) || isSetType(right) {
		if isSetType(left) {
			return left
		}
		return right
	}
	if isStringType(left) && isStringType(right) && n.Op == "+" {
		return a.builtin(config.TypeString)
	}
	if isFloatType(left) || isFloatType(right) {
		return a.builtin(config.TypeFloat)
	}
	if isUIntType(left) && isUIntType(right) {
		return a.builtin(config.TypeUInteger)
	}
	return a.builtin(config.TypeInteger)
}

func (a *Analyzer) resolveFieldAccess(n *ast.FieldAccessExpr) *symbols.Symbol {
	// `Module.Name` reaching for an imported module's public constant or
	// variable parses as a field access; resolve it through the module
	// scope before treating the receiver as a value.
	if id, ok := n.Receiver.(*ast.Ident); ok && id.Qualifier == "" {
		if _, shadowed := a.Table.Lookup(id.Name); !shadowed && a.Table.ModuleScope(id.Name) != nil {
			if sym, found := a.Table.LookupQualified(id.Name, n.Field); found {
				if sym.Kind == symbols.VariableSymbol || sym.Kind == symbols.ConstantSymbol {
					return sym.DeclaredType
				}
				return sym
			}
			a.errorf(a.posTok(n.Position), diagnostics.E202, "module '%s' has no public symbol '%s'", id.Name, n.Field)
			return nil
		}
	}

	recv := a.analyzeExpr(n.Receiver)
	if recv == nil {
		return nil // foreign receiver: field access is itself foreign passthrough
	}
	for t := recv; t != nil; t = t.BaseType {
		for _, f := range t.Fields {
			if strings.EqualFold(f.Name, n.Field) {
				return f.Type
			}
		}
	}
	a.errorf(a.posTok(n.Position), diagnostics.E212, "unknown field '%s'", n.Field)
	return nil
}

// resolveCall implements §4.5's three-way call classification: native
// method call on the receiver's resolved type, module-qualified call when
// the receiver names an imported module, else foreign passthrough.
func (a *Analyzer) resolveCall(n *ast.CallExpr) *symbols.Symbol {
	if n.ReceiverExpr != nil {
		return a.resolveDottedCall(n)
	}

	id, ok := n.Callee.(*ast.Ident)
	if !ok {
		for _, arg := range n.Args {
			a.analyzeExpr(arg)
		}
		return nil
	}
	sym, found := a.Table.Lookup(id.Name)
	if !found || sym.Kind != symbols.RoutineSymbol {
		a.errorf(a.posTok(n.Position), diagnostics.E202, "unknown routine '%s'", id.Name)
		a.analyzeArgs(n.Args, nil)
		return nil
	}
	n.ResolvedCallee = sym
	a.analyzeArgs(n.Args, sym.Params)
	return sym.Return
}

func (a *Analyzer) resolveDottedCall(n *ast.CallExpr) *symbols.Symbol {
	recvIdent, recvIsIdent := n.ReceiverExpr.(*ast.Ident)

	if recvIsIdent && recvIdent.Qualifier == "" {
		if modScope := a.Table.ModuleScope(recvIdent.Name); modScope != nil {
			if sym, ok := a.Table.LookupQualified(recvIdent.Name, n.MethodName); ok && sym.Kind == symbols.RoutineSymbol {
				n.ReceiverKind = ast.ReceiverModuleQualified
				n.ResolvedCallee = sym
				a.analyzeArgs(n.Args, sym.Params)
				return sym.Return
			}
		}
	}

	recvType := a.analyzeExpr(n.ReceiverExpr)
	if recvType != nil {
		if method, ok := symbols.FindMethod(recvType, n.MethodName); ok {
			n.ReceiverKind = ast.ReceiverMethodInstance
			n.ResolvedCallee = method
			a.analyzeArgs(n.Args, method.Params)
			return method.Return
		}
	}

	n.ReceiverKind = ast.ReceiverUnknownForeign
	a.analyzeArgs(n.Args, nil)
	return nil
}

func (a *Analyzer) analyzeArgs(args []ast.Expr, params []*symbols.Param) {
	for i, arg := range args {
		argType := a.analyzeExpr(arg)
		if i < len(params) && params[i].Type != nil && argType != nil {
			if !a.typesCompatible(params[i].Type, argType) {
				a.errorf(a.posTok(arg.Pos()), diagnostics.E203, "argument %d type mismatch", i+1)
			} else {
				// The declared parameter type wins over the literal's own
				// classification so the emitter can flip char/string
				// literal spellings to match the callee (§4.5). Foreign
				// arguments keep their nil type and are never touched.
				arg.SetResolvedType(params[i].Type)
			}
		}
	}
}

func isFloatType(s *symbols.Symbol) bool { return s != nil && s.Name == config.TypeFloat }
func isUIntType(s *symbols.Symbol) bool  { return s != nil && s.Name == config.TypeUInteger }
func isStringType(s *symbols.Symbol) bool {
	return s != nil && (s.Name == config.TypeString || s.Name == config.TypeChar)
}
func isSetType(s *symbols.Symbol) bool {
	return s != nil && (s.Name == config.TypeSet || s.Constructed == symbols.SetOfRange || s.Constructed == symbols.SetOfType)
}
func isCharStringPair(a, b *symbols.Symbol) bool {
	return (a.Name == config.TypeChar && b.Name == config.TypeString) ||
		(a.Name == config.TypeString && b.Name == config.TypeChar)
}

// typesCompatible implements §4.5's compatibility rule exactly.
func (a *Analyzer) typesCompatible(left, right *symbols.Symbol) bool {
	if left == nil || right == nil {
		return true // foreign surface: never type-checked
	}
	if left == right {
		return true
	}
	if left.Name != "" && left.Name == right.Name {
		return true
	}
	if right.Name == config.TypePointer {
		return true
	}
	if left.Name == config.TypeFloat && (right.Name == config.TypeInteger || right.Name == config.TypeUInteger) {
		return true
	}
	if (left.Name == config.TypeInteger || left.Name == config.TypeUInteger) &&
		(right.Name == config.TypeInteger || right.Name == config.TypeUInteger) {
		return true
	}
	if left.AliasOf != nil && a.typesCompatible(left.AliasOf, right) {
		return true
	}
	if right.Name == config.TypeSet && (isSetType(left) || left.Constructed == symbols.ArrayStatic || left.Constructed == symbols.ArrayDynamic) {
		return true
	}
	if symbols.IsDescendantOf(right, left) {
		return true
	}
	return false
}
