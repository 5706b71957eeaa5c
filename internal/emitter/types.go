package emitter

import (
	"fmt"
	"strings"

	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/symbols"
)

// builtinCppNames is the closed type map from §4.6.
var builtinCppNames = map[string]string{
	config.TypeBoolean:  "bool",
	config.TypeChar:     "char",
	config.TypeUChar:    "uint8_t",
	config.TypeInteger:  "int64_t",
	config.TypeUInteger: "uint64_t",
	config.TypeFloat:    "double",
	config.TypeString:   "std::string",
	config.TypeSet:      "uint64_t",
	config.TypePointer:  "void*",
}

// typeName renders sym as a standalone C++ type expression — valid
// anywhere a type-id is legal (return types, cast targets, generic
// declarations). Static arrays are the one constructed shape that
// cannot be written this way directly (a raw C array return type is
// illegal), so they are mangled into a once-per-module `using` alias.
func (e *Emitter) typeName(sym *symbols.Symbol) string {
	if sym == nil {
		return "auto"
	}
	if name, ok := builtinCppNames[sym.Name]; ok {
		return name
	}
	if sym.AliasOf != nil && sym.Constructed == symbols.NotConstructed && sym.Name == "" {
		return e.typeName(sym.AliasOf)
	}
	switch sym.Constructed {
	case symbols.PointerTo:
		if sym.ElemType == nil {
			return "void*" // opaque `pointer` with no pointee
		}
		return e.typeName(sym.ElemType) + "*"
	case symbols.SetOfRange, symbols.SetOfType:
		return "uint64_t"
	case symbols.ArrayDynamic:
		return "std::vector<" + e.typeName(sym.ElemType) + ">"
	case symbols.ArrayStatic:
		return e.mangleArray(sym)
	case symbols.RoutineType:
		return e.functionPointerType(sym)
	}
	if sym.Name != "" {
		return sym.Name
	}
	return "auto"
}

// mangleArray synthesizes (and memoizes) a `using` alias for an
// anonymous static array shape, so it can stand in wherever a single
// type-id is required.
func (e *Emitter) mangleArray(sym *symbols.Symbol) string {
	elemName := e.typeName(sym.ElemType)
	width := sym.ArrayHigh - sym.ArrayLow + 1
	key := fmt.Sprintf("arr_%s_%d_%d", sanitize(elemName), sym.ArrayLow, sym.ArrayHigh)
	if alias, ok := e.mangled[key]; ok {
		return alias
	}
	alias := "__myra_" + key
	e.header.line("using %s = std::array<%s, %d>;", alias, elemName, width)
	e.mangled[key] = alias
	return alias
}

func sanitize(s string) string {
	r := strings.NewReplacer(":", "_", "<", "_", ">", "_", " ", "_", "*", "ptr", ",", "_")
	return r.Replace(s)
}

func (e *Emitter) functionPointerType(sym *symbols.Symbol) string {
	ret := "void"
	if sym.Return != nil {
		ret = e.typeName(sym.Return)
	}
	var params []string
	for _, p := range sym.Params {
		t := e.typeName(p.Type)
		if p.ByRef {
			t += "&"
		}
		params = append(params, t)
	}
	conv := callingConventionAttr(sym.CallingConvention)
	return fmt.Sprintf("%s (%s*)(%s)", ret, conv, strings.Join(params, ", "))
}

func callingConventionAttr(cc string) string {
	switch strings.ToLower(cc) {
	case "stdcall":
		return "__stdcall "
	case "cdecl":
		return "__cdecl "
	case "fastcall":
		return "__fastcall "
	default:
		return ""
	}
}

// declWithName renders "type name" for a field/variable/parameter
// declaration, placing C-array and function-pointer syntax correctly
// around the identifier instead of going through typeName/mangling —
// these two shapes are legal (and idiomatic) written inline at a
// declaration site even though they are not legal standalone type-ids.
func (e *Emitter) declWithName(sym *symbols.Symbol, name string) string {
	if sym == nil {
		return fmt.Sprintf("auto %s", name)
	}
	switch sym.Constructed {
	case symbols.ArrayStatic:
		width := sym.ArrayHigh - sym.ArrayLow + 1
		return fmt.Sprintf("%s %s[%d]", e.typeName(sym.ElemType), name, width)
	case symbols.RoutineType:
		ret := "void"
		if sym.Return != nil {
			ret = e.typeName(sym.Return)
		}
		var params []string
		for _, p := range sym.Params {
			t := e.typeName(p.Type)
			if p.ByRef {
				t += "&"
			}
			params = append(params, t)
		}
		conv := callingConventionAttr(sym.CallingConvention)
		return fmt.Sprintf("%s (%s*%s)(%s)", ret, conv, name, strings.Join(params, ", "))
	default:
		return fmt.Sprintf("%s %s", e.typeName(sym), name)
	}
}

// cppCastToString mirrors §4.6's five-case ladder for casts targeting
// String specifically.
func (e *Emitter) cppCastToString(exprCpp string, srcType *symbols.Symbol) string {
	switch {
	case srcType == nil:
		return fmt.Sprintf("std::string(%s)", exprCpp)
	case srcType.Name == config.TypeInteger || srcType.Name == config.TypeUInteger ||
		srcType.Name == config.TypeFloat || srcType.Name == config.TypeBoolean:
		return fmt.Sprintf("std::to_string(%s)", exprCpp)
	case srcType.Constructed == symbols.PointerTo:
		return fmt.Sprintf("std::string(reinterpret_cast<const char*>(%s))", exprCpp)
	case srcType.Name == config.TypeChar:
		return fmt.Sprintf("std::string(1, %s)", exprCpp)
	default:
		return fmt.Sprintf("static_cast<std::string>(%s)", exprCpp)
	}
}
