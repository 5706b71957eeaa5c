package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/symbols"
)

func joinArgs(args []string) string { return strings.Join(args, ", ") }

func (e *Emitter) emitExpr(x ast.Expr) string {
	switch n := x.(type) {
	case *ast.Ident:
		if n.Qualifier != "" {
			return n.Qualifier + "::" + n.Name
		}
		return n.Name
	case *ast.BinaryExpr:
		return e.emitBinary(n)
	case *ast.UnaryExpr:
		return e.emitUnary(n)
	case *ast.FieldAccessExpr:
		// A receiver naming an imported module is a scope qualifier, not
		// a value (the analyzer left its type unresolved in that case).
		if id, ok := n.Receiver.(*ast.Ident); ok && id.Qualifier == "" && id.ResolvedType() == nil {
			if e.Table.ModuleScope(id.Name) != nil {
				return fmt.Sprintf("%s::%s", id.Name, n.Field)
			}
		}
		return fmt.Sprintf("%s.%s", e.emitExpr(n.Receiver), n.Field)
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", e.emitExpr(n.Array), e.emitExpr(n.Index))
	case *ast.DerefExpr:
		return fmt.Sprintf("(*%s)", e.emitExpr(n.Operand))
	case *ast.CastExpr:
		return e.emitCast(n)
	case *ast.TypeTestExpr:
		typeSym := e.resolveTypeExprForEmit(n.Type)
		return fmt.Sprintf("(dynamic_cast<%s*>(%s) != nullptr)", e.typeName(typeSym), e.emitExpr(n.Operand))
	case *ast.CallExpr:
		return e.emitCall(n)
	case *ast.IntLit:
		return strconv.FormatInt(n.Value, 10)
	case *ast.FloatLit:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *ast.StringLit:
		return e.emitStringLitAs(n.Value, n)
	case *ast.WideStringLit:
		return fmt.Sprintf("L%s", cppQuote(n.Value))
	case *ast.CharLit:
		return e.emitCharLitAs(n.Value, n)
	case *ast.WideCharLit:
		return fmt.Sprintf("L'%s'", cppEscapeChar(n.Value))
	case *ast.BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case *ast.NilLit:
		return "nullptr"
	case *ast.SetLit:
		return e.emitSetLit(n)
	case *ast.RangeExpr:
		return fmt.Sprintf("/* range */ %s, %s", e.emitExpr(n.Low), e.emitExpr(n.High))
	case *ast.LenExpr:
		return fmt.Sprintf("(int64_t)(%s).size()", e.emitExpr(n.Operand))
	case *ast.ArgCountExpr:
		return "(int64_t)myra_argc"
	case *ast.ArgByIndexExpr:
		return fmt.Sprintf("myra_varargs_any[%s]", e.emitExpr(n.Index))
	case *ast.ForeignExpr:
		return n.Raw
	default:
		return "/* unsupported expression */"
	}
}

// emitStringLitAs renders a string literal, flipping to a char literal
// when the analyzer resolved the node to Char (only possible for
// one-character content — the lexer already classifies those as CharLit,
// so this covers literals re-typed against a declared Char target).
func (e *Emitter) emitStringLitAs(v string, n *ast.StringLit) string {
	if sym, ok := n.ResolvedType().(*symbols.Symbol); ok && sym != nil && sym.Name == config.TypeChar {
		if runes := []rune(v); len(runes) == 1 {
			return fmt.Sprintf("'%s'", cppEscapeChar(runes[0]))
		}
	}
	return cppQuote(v)
}

func (e *Emitter) emitCharLitAs(v rune, n *ast.CharLit) string {
	if sym, ok := n.ResolvedType().(*symbols.Symbol); ok && sym != nil && sym.Name == config.TypeString {
		return cppQuote(string(v))
	}
	return fmt.Sprintf("'%s'", cppEscapeChar(v))
}

func cppEscapeChar(r rune) string {
	switch r {
	case '\'':
		return "\\'"
	case '\\':
		return "\\\\"
	case '\n':
		return "\\n"
	case '\t':
		return "\\t"
	default:
		return string(r)
	}
}

// cppQuote double-quotes s for C++, escaping double quotes and lone
// backslashes while preserving deliberate \x / \0.. \7 byte escapes
// already present in the source text (§4.6).
func cppQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (e *Emitter) resolveTypeExprForEmit(t ast.TypeExpr) *symbols.Symbol {
	named, ok := t.(*ast.NamedTypeExpr)
	if !ok {
		return nil
	}
	sym, _ := e.Table.Lookup(named.Name)
	return sym
}

func (e *Emitter) emitCast(n *ast.CastExpr) string {
	target := e.resolveTypeExprForEmit(n.Type)
	operand := e.emitExpr(n.Operand)
	if target != nil && target.Name == config.TypeString {
		srcType, _ := n.Operand.ResolvedType().(*symbols.Symbol)
		return e.cppCastToString(operand, srcType)
	}
	return fmt.Sprintf("static_cast<%s>(%s)", e.typeName(target), operand)
}

func isSetExpr(x ast.Expr) bool {
	sym, ok := x.ResolvedType().(*symbols.Symbol)
	if !ok || sym == nil {
		return false
	}
	return sym.Name == config.TypeSet || sym.Constructed == symbols.SetOfRange || sym.Constructed == symbols.SetOfType
}

func (e *Emitter) emitBinary(n *ast.BinaryExpr) string {
	if n.Op == "in" {
		return fmt.Sprintf("((%s & (1ULL << %s)) != 0)", e.emitExpr(n.Right), e.emitExpr(n.Left))
	}

	left := e.emitExpr(n.Left)
	right := e.emitExpr(n.Right)

	if isSetExpr(n.Left) || isSetExpr(n.Right) {
		switch n.Op {
		case "+":
			return fmt.Sprintf("(%s | %s)", left, right)
		case "-":
			return fmt.Sprintf("(%s & ~%s)", left, right)
		case "*":
			return fmt.Sprintf("(%s & %s)", left, right)
		}
	}

	op, ok := binaryOpTable[n.Op]
	if !ok {
		op = n.Op
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right)
}

var binaryOpTable = map[string]string{
	"=": "==", "<>": "!=", "<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"+": "+", "-": "-", "*": "*", "/": "/",
	"div": "/", "mod": "%",
	"and": "&&", "or": "||",
}

func (e *Emitter) emitUnary(n *ast.UnaryExpr) string {
	operand := e.emitExpr(n.Operand)
	switch strings.ToLower(n.Op) {
	case "not":
		return fmt.Sprintf("(!%s)", operand)
	case "-":
		return fmt.Sprintf("(-%s)", operand)
	default:
		return fmt.Sprintf("(+%s)", operand)
	}
}

// emitCall dispatches on the analyzer's receiver classification (§4.5):
// a native method call, a module-qualified call, or a foreign dotted
// member call, versus a plain (possibly module-qualified) function call.
func (e *Emitter) emitCall(n *ast.CallExpr) string {
	var args []string
	for _, a := range n.Args {
		args = append(args, e.emitExpr(a))
	}
	joined := joinArgs(args)

	switch n.ReceiverKind {
	case ast.ReceiverModuleQualified:
		recv := e.emitExpr(n.ReceiverExpr)
		if joined == "" {
			return fmt.Sprintf("%s::%s()", recv, n.MethodName)
		}
		return fmt.Sprintf("%s::%s(%s)", recv, n.MethodName, joined)
	case ast.ReceiverMethodInstance:
		recv := e.emitExpr(n.ReceiverExpr)
		allArgs := append([]string{recv}, args...)
		return fmt.Sprintf("%s(%s)", n.MethodName, joinArgs(allArgs))
	case ast.ReceiverUnknownForeign:
		recv := e.emitExpr(n.ReceiverExpr)
		return fmt.Sprintf("%s.%s(%s)", recv, n.MethodName, joined)
	default:
		callee := e.emitExpr(n.Callee)
		return fmt.Sprintf("%s(%s)", callee, joined)
	}
}

// emitSetLit builds the uint64_t bitmask initializer described in §4.6
// and pinned by invariant 7 / the boundary behaviour on [0..63].
func (e *Emitter) emitSetLit(n *ast.SetLit) string {
	var terms []string
	for _, elem := range n.Elems {
		if elem.High == nil {
			terms = append(terms, fmt.Sprintf("(1ULL << %s)", e.emitExpr(elem.Low)))
			continue
		}
		lowLit, lowOK := elem.Low.(*ast.IntLit)
		highLit, highOK := elem.High.(*ast.IntLit)
		if lowOK && highOK {
			width := highLit.Value - lowLit.Value + 1
			if width >= 64 {
				terms = append(terms, "~0ULL")
			} else {
				terms = append(terms, fmt.Sprintf("(((1ULL << %d) - 1) << %d)", width, lowLit.Value))
			}
			continue
		}
		terms = append(terms, fmt.Sprintf("/* dynamic set range %s..%s */ 0ULL", e.emitExpr(elem.Low), e.emitExpr(elem.High)))
	}
	if len(terms) == 0 {
		return "(uint64_t)(0ULL)"
	}
	return fmt.Sprintf("(uint64_t)(%s)", strings.Join(terms, " | "))
}
