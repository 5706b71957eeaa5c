package parser

import (
	"strings"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/token"
)

// parseConstSection parses `const name [: T] = expr; ...` until the next
// token can't start another constant item.
func (p *Parser) parseConstSection() []*ast.ConstDecl {
	p.expect(token.CONST)
	var decls []*ast.ConstDecl
	for p.curIs(token.IDENT) {
		pos := p.cur().Pos
		name := p.advance().Lexeme
		var typ ast.TypeExpr
		if p.curIs(token.COLON) {
			p.advance()
			typ = p.parseTypeExpr()
		}
		p.expect(token.EQ)
		value := p.parseExpr(precLowest)
		p.expect(token.SEMI)
		decls = append(decls, &ast.ConstDecl{Position: pos, Name: name, Type: typ, Value: value})
	}
	return decls
}

// parseTypeSection parses `type name = <form>; ...`.
func (p *Parser) parseTypeSection() []*ast.TypeDecl {
	p.expect(token.TYPE)
	var decls []*ast.TypeDecl
	for p.curIs(token.IDENT) {
		pos := p.cur().Pos
		name := p.advance().Lexeme
		p.expect(token.EQ)
		value := p.parseTypeExpr()
		p.expect(token.SEMI)
		decls = append(decls, &ast.TypeDecl{Position: pos, Name: name, Value: value})
	}
	return decls
}

// parseVarSection parses `var name [, name...] : T [= expr]; ...`.
func (p *Parser) parseVarSection() []*ast.VarDecl {
	p.expect(token.VAR)
	return p.parseVarItems()
}

func (p *Parser) parseVarItems() []*ast.VarDecl {
	var decls []*ast.VarDecl
	for p.curIs(token.IDENT) {
		pos := p.cur().Pos
		names := []string{p.advance().Lexeme}
		for p.curIs(token.COMMA) {
			p.advance()
			names = append(names, p.expect(token.IDENT).Lexeme)
		}
		p.expect(token.COLON)
		typ := p.parseTypeExpr()
		var init ast.Expr
		if p.curIs(token.EQ) {
			p.advance()
			init = p.parseExpr(precLowest)
		}
		p.expect(token.SEMI)
		for i, n := range names {
			var perItemInit ast.Expr
			if i == len(names)-1 {
				perItemInit = init
			}
			decls = append(decls, &ast.VarDecl{Position: pos, Name: n, Type: typ, Init: perItemInit})
		}
	}
	return decls
}

// parseRoutineDecl parses a `routine`/`method` declaration. External
// declarations (`external '<library>';`) have no body; all others end
// with `begin … end;`, with an optional `var` section of locals between
// the header and the body.
func (p *Parser) parseRoutineDecl() *ast.RoutineDecl {
	pos := p.cur().Pos
	isMethod := p.curIs(token.METHOD)
	p.advance() // ROUTINE or METHOD

	name := p.expect(token.IDENT).Lexeme
	params := p.parseParamList()

	var ret ast.TypeExpr
	if p.curIs(token.COLON) {
		p.advance()
		ret = p.parseTypeExpr()
	}

	r := &ast.RoutineDecl{
		Position: pos,
		Name:     name,
		Params:   params,
		Return:   ret,
		// A declared method is part of its record type's surface, so it
		// shares the type's header visibility without a `public` prefix.
		Flags: ast.RoutineFlags{Method: isMethod, Public: isMethod, CallingConvention: p.config.ABI},
	}

	if isMethod {
		if len(params) == 0 || !params[0].ByRef || !isSelfParamName(params[0].Name) {
			p.errorf(diagnostics.E209, "method '%s' must take 'var Self' as its first parameter", name)
		} else {
			r.BoundToType = namedTypeName(params[0].Type)
		}
	} else if len(params) > 0 && params[0].ByRef && isSelfParamName(params[0].Name) {
		// Shape matches a method even without the explicit keyword; record
		// the candidate binding and let the analyzer confirm it.
		r.BoundToType = namedTypeName(params[0].Type)
	}

	if p.config.ABI == "c" {
		r.Flags.ForeignABIExport = true
	}

	for {
		switch p.cur().Type {
		case token.VARIADIC:
			p.advance()
			r.Flags.Variadic = true
		case token.EXTERNAL:
			p.advance()
			r.Flags.External = true
			if p.curIs(token.STRING) {
				r.Flags.ExternalLibrary, _ = p.cur().Literal.(string)
				p.advance()
			}
		default:
			goto modifiersDone
		}
	}
modifiersDone:

	if r.Flags.External {
		p.expect(token.SEMI)
		return r
	}
	p.expect(token.SEMI)

	if p.curIs(token.VAR) {
		p.advance()
		r.Locals = p.parseVarItems()
	}

	r.Body = p.parseBlock()
	p.expect(token.SEMI)
	return r
}

func isSelfParamName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "self" || lower == "aself"
}

func namedTypeName(t ast.TypeExpr) string {
	if n, ok := t.(*ast.NamedTypeExpr); ok {
		return n.Name
	}
	return ""
}
