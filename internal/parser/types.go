package parser

import (
	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/token"
)

// parseTypeExpr parses the right-hand side of a `type Name = <form>;`
// declaration and the same forms wherever a type is expected (param,
// field, return).
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	pos := p.cur().Pos
	switch p.cur().Type {
	case token.RECORD:
		return p.parseRecordTypeExpr(pos)
	case token.ARRAY:
		return p.parseArrayTypeExpr(pos)
	case token.POINTER:
		return p.parsePointerTypeExpr(pos)
	case token.SET:
		// Bare `set` (no `of`) names the built-in bitmask type itself.
		if !p.peekIs(token.OF) {
			p.advance()
			return &ast.NamedTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, Name: "Set"}
		}
		return p.parseSetTypeExpr(pos)
	case token.ROUTINE:
		return p.parseRoutineTypeExpr(pos)
	case token.IDENT:
		name := p.advance().Lexeme
		return &ast.NamedTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, Name: name}
	default:
		p.errorf(diagnostics.E101, "expected a type, found '%s'", p.cur().Lexeme)
		return &ast.NamedTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, Name: p.advance().Lexeme}
	}
}

func (p *Parser) parseRecordTypeExpr(pos token.Position) *ast.RecordTypeExpr {
	p.expect(token.RECORD)
	parent := ""
	if p.curIs(token.LPAREN) {
		p.advance()
		parent = p.expect(token.IDENT).Lexeme
		p.expect(token.RPAREN)
	}
	rec := &ast.RecordTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, Parent: parent}
	for !p.curIs(token.END) && !p.curIs(token.EOF) {
		fieldPos := p.cur().Pos
		fieldName := p.expect(token.IDENT).Lexeme
		p.expect(token.COLON)
		fieldType := p.parseTypeExpr()
		p.expect(token.SEMI)
		rec.Fields = append(rec.Fields, &ast.RecordField{Position: fieldPos, Name: fieldName, Type: fieldType})
	}
	p.expect(token.END)
	return rec
}

func (p *Parser) parseArrayTypeExpr(pos token.Position) ast.TypeExpr {
	p.expect(token.ARRAY)
	if p.curIs(token.LBRACK) {
		p.advance()
		if p.curIs(token.RBRACK) {
			p.advance()
			p.expect(token.OF)
			elem := p.parseTypeExpr()
			return &ast.ArrayDynamicTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, Elem: elem}
		}
		low := p.parseExpr(precLowest)
		p.expect(token.RANGE)
		high := p.parseExpr(precLowest)
		p.expect(token.RBRACK)
		p.expect(token.OF)
		elem := p.parseTypeExpr()
		return &ast.ArrayStaticTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, Low: low, High: high, Elem: elem}
	}
	p.expect(token.OF)
	elem := p.parseTypeExpr()
	return &ast.ArrayDynamicTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, Elem: elem}
}

func (p *Parser) parsePointerTypeExpr(pos token.Position) *ast.PointerTypeExpr {
	p.expect(token.POINTER)
	if p.curIs(token.TO) {
		p.advance()
		to := p.parseTypeExpr()
		return &ast.PointerTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, To: to}
	}
	return &ast.PointerTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}}
}

func (p *Parser) parseSetTypeExpr(pos token.Position) ast.TypeExpr {
	p.expect(token.SET)
	p.expect(token.OF)
	if p.curIs(token.IDENT) && !p.peekIs(token.RANGE) {
		name := p.advance().Lexeme
		return &ast.SetOfTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, ElemTypeName: name}
	}
	low := p.parseExpr(precLowest)
	p.expect(token.RANGE)
	high := p.parseExpr(precLowest)
	return &ast.SetRangeTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, Low: low, High: high}
}

func (p *Parser) parseRoutineTypeExpr(pos token.Position) *ast.RoutineTypeExpr {
	p.expect(token.ROUTINE)
	params := p.parseParamList()
	rt := &ast.RoutineTypeExpr{TypeExprBase: ast.TypeExprBase{Position: pos}, Params: params, CallingConvention: p.config.ABI}
	if p.curIs(token.COLON) {
		p.advance()
		rt.Return = p.parseTypeExpr()
	}
	return rt
}

// parseParamList parses `( [var|const] name [, name...] : T ; ... )`,
// accepting a trailing `...` marker as a variadic parameter.
func (p *Parser) parseParamList() []*ast.Param {
	p.expect(token.LPAREN)
	var params []*ast.Param
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		if p.curIs(token.ELLIPSIS) {
			pos := p.cur().Pos
			p.advance()
			params = append(params, &ast.Param{Position: pos, IsVariadic: true})
			break
		}
		pos := p.cur().Pos
		byRef, isConst := false, false
		switch p.cur().Type {
		case token.VAR:
			byRef = true
			p.advance()
		case token.CONST:
			isConst = true
			p.advance()
		}
		names := []string{p.parseParamName()}
		for p.curIs(token.COMMA) {
			p.advance()
			names = append(names, p.parseParamName())
		}
		p.expect(token.COLON)
		typ := p.parseTypeExpr()
		for _, n := range names {
			params = append(params, &ast.Param{Position: pos, Name: n, Type: typ, ByRef: byRef, IsConst: isConst})
		}
		if p.curIs(token.SEMI) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return params
}

// parseParamName accepts an ordinary identifier or the `self` keyword —
// method receivers are declared as a first parameter literally named
// Self, which the lexer classifies as a keyword token.
func (p *Parser) parseParamName() string {
	if p.curIs(token.IDENT) || p.curIs(token.SELF) {
		return p.advance().Lexeme
	}
	p.errorf(diagnostics.E100, "expected a parameter name, found '%s'", p.cur().Lexeme)
	p.advance()
	return ""
}
