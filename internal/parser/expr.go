package parser

import (
	"strconv"
	"strings"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/token"
)

// precLowest is a sentinel passed by callers that just want "a full
// expression"; the ladder below is a fixed tier chain, not a generic
// precedence-climbing parser, so the value itself is never inspected.
const precLowest = 0

// parseExpr parses a full expression starting at the relational tier,
// the loosest-binding tier in the ladder (relational/IS/AS → additive/OR
// → multiplicative/AND → unary → primary/postfix).
func (p *Parser) parseExpr(_ int) ast.Expr {
	return p.parseRelational()
}

var relOps = map[token.Type]string{
	token.EQ: "=", token.NEQ: "<>", token.LT: "<", token.LE: "<=",
	token.GT: ">", token.GE: ">=", token.IN: "in",
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for {
		if op, ok := relOps[p.cur().Type]; ok {
			pos := p.cur().Pos
			p.advance()
			right := p.parseAdditive()
			left = &ast.BinaryExpr{ExprBase: ast.ExprBase{Position: pos}, Op: op, Left: left, Right: right}
			continue
		}
		if p.curIs(token.IS) {
			pos := p.cur().Pos
			p.advance()
			typ := p.parseTypeExpr()
			left = &ast.TypeTestExpr{ExprBase: ast.ExprBase{Position: pos}, Operand: left, Type: typ}
			continue
		}
		if p.curIs(token.AS) {
			pos := p.cur().Pos
			p.advance()
			typ := p.parseTypeExpr()
			left = &ast.CastExpr{ExprBase: ast.ExprBase{Position: pos}, Operand: left, Type: typ}
			continue
		}
		break
	}
	return left
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) || p.curIs(token.OR) {
		opTok := p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{ExprBase: ast.ExprBase{Position: opTok.Pos}, Op: strings.ToLower(opTok.Lexeme), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for p.curIs(token.STAR) || p.curIs(token.SLASH) || p.curIs(token.DIV) || p.curIs(token.MOD) || p.curIs(token.AND) {
		opTok := p.advance()
		right := p.parseUnary()
		left = &ast.BinaryExpr{ExprBase: ast.ExprBase{Position: opTok.Pos}, Op: strings.ToLower(opTok.Lexeme), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur().Type {
	case token.NOT, token.PLUS, token.MINUS:
		opTok := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{ExprBase: ast.ExprBase{Position: opTok.Pos}, Op: strings.ToLower(opTok.Lexeme), Operand: operand}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePostfix(atom ast.Expr) ast.Expr {
	for {
		switch p.cur().Type {
		case token.DOT:
			p.advance()
			fieldTok := p.advance() // unknown keywords accepted as field selectors
			if p.curIs(token.LPAREN) {
				pos := atom.Pos()
				args := p.parseArgList()
				atom = &ast.CallExpr{
					ExprBase:     ast.ExprBase{Position: pos},
					ReceiverExpr: atom,
					MethodName:   fieldTok.Lexeme,
					Args:         args,
				}
			} else {
				atom = &ast.FieldAccessExpr{ExprBase: ast.ExprBase{Position: atom.Pos()}, Receiver: atom, Field: fieldTok.Lexeme}
			}
		case token.LBRACK:
			p.advance()
			idx := p.parseExpr(precLowest)
			p.expect(token.RBRACK)
			atom = &ast.IndexExpr{ExprBase: ast.ExprBase{Position: atom.Pos()}, Array: atom, Index: idx}
		case token.CARET:
			p.advance()
			atom = &ast.DerefExpr{ExprBase: ast.ExprBase{Position: atom.Pos()}, Operand: atom}
		case token.LPAREN:
			pos := atom.Pos()
			args := p.parseArgList()
			atom = p.buildCallExpr(pos, atom, args)
		default:
			return atom
		}
	}
}

// buildCallExpr recognises the handful of built-in pseudo-functions the
// AST models as dedicated nodes (length, argument-count, argument-by-
// index) and falls back to a plain CallExpr otherwise.
func (p *Parser) buildCallExpr(pos token.Position, callee ast.Expr, args []ast.Expr) ast.Expr {
	if id, ok := callee.(*ast.Ident); ok && id.Qualifier == "" {
		switch strings.ToLower(id.Name) {
		case "length":
			if len(args) == 1 {
				return &ast.LenExpr{ExprBase: ast.ExprBase{Position: pos}, Operand: args[0]}
			}
		case "argcount":
			if len(args) == 0 {
				return &ast.ArgCountExpr{ExprBase: ast.ExprBase{Position: pos}}
			}
		case "argvalue", "argbyindex":
			if len(args) == 1 {
				return &ast.ArgByIndexExpr{ExprBase: ast.ExprBase{Position: pos}, Index: args[0]}
			}
		}
	}
	return &ast.CallExpr{ExprBase: ast.ExprBase{Position: pos}, Callee: callee, Args: args}
}

func (p *Parser) parseArgList() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		args = append(args, p.parseExprOrPassthrough(token.COMMA, token.RPAREN))
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RPAREN)
	return args
}

// parseExprOrPassthrough implements passthrough rule 3: try a native
// parse first; if it does not land on one of the caller's legal
// terminators, rewind to the saved position and recapture the same
// span as a verbatim foreign expression instead.
func (p *Parser) parseExprOrPassthrough(terminators ...token.Type) ast.Expr {
	if p.curIs(token.IDENT) && p.looksLikeForeignAfterIdent() {
		return p.parseForeignExpr(terminators...)
	}
	save := p.pos
	expr := p.parseExpr(precLowest)
	for _, t := range terminators {
		if p.curIs(t) {
			return expr
		}
	}
	p.pos = save
	return p.parseForeignExpr(terminators...)
}

func (p *Parser) parseForeignExpr(terminators ...token.Type) ast.Expr {
	startTok := p.cur()
	raw, endOffset := p.capturePassthrough(terminators...)
	return &ast.ForeignExpr{
		ExprBase:    ast.ExprBase{Position: startTok.Pos},
		Raw:         raw,
		StartOffset: startTok.Pos.Offset,
		EndOffset:   endOffset,
	}
}

// capturePassthrough advances over tokens, tracking balanced ()/[]/{}
// depth, and halts at the first depth-zero token whose kind is in
// terminators (without consuming it). It returns the exact source slice
// covered and the offset one past the last consumed token.
func (p *Parser) capturePassthrough(terminators ...token.Type) (string, int) {
	termSet := make(map[token.Type]bool, len(terminators))
	for _, t := range terminators {
		termSet[t] = true
	}
	startOffset := p.cur().Pos.Offset
	depth := 0
	lastEnd := startOffset
	for !p.curIs(token.EOF) {
		cur := p.cur()
		if depth == 0 && termSet[cur.Type] {
			break
		}
		switch cur.Type {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			if depth > 0 {
				depth--
			}
		}
		lastEnd = cur.EndOffset
		p.advance()
	}
	return p.sliceSource(startOffset, lastEnd), lastEnd
}

// primaryPassthroughTerminators is the default halting set for
// expression-level passthrough triggered at a primary position (rule
// 2): any statement/expression terminator or a native binary operator,
// so the surrounding native expression can keep parsing around it.
func (p *Parser) primaryPassthroughTerminators() []token.Type {
	return []token.Type{
		token.SEMI, token.COMMA, token.RPAREN, token.RBRACK, token.RBRACE,
		token.END, token.ELSE, token.THEN, token.DO, token.OF, token.UNTIL,
		token.EXCEPT, token.FINALLY, token.ASSIGN,
		token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.AND, token.OR, token.DIV, token.MOD, token.IN, token.IS, token.AS,
	}
}

// looksLikeForeignAfterIdent detects the surface patterns the spec
// names explicitly: "++"/"--", "::", and template-style "<T>(args)"
// immediately following an identifier.
func (p *Parser) looksLikeForeignAfterIdent() bool {
	switch p.peek().Type {
	case token.COLON:
		return p.peekN(2).Type == token.COLON
	case token.PLUS:
		return p.peekN(2).Type == token.PLUS
	case token.MINUS:
		return p.peekN(2).Type == token.MINUS
	case token.LT:
		i := 2
		if p.peekN(i).Type != token.IDENT {
			return false
		}
		i++
		for p.peekN(i).Type == token.COMMA {
			i++
			if p.peekN(i).Type != token.IDENT {
				return false
			}
			i++
		}
		return p.peekN(i).Type == token.GT && p.peekN(i+1).Type == token.LPAREN
	}
	return false
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		return &ast.IntLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: parseIntLiteral(tok.Literal.(string))}
	case token.FLOAT:
		p.advance()
		f, _ := strconv.ParseFloat(tok.Literal.(string), 64)
		return &ast.FloatLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: f}
	case token.STRING:
		p.advance()
		return &ast.StringLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: tok.Literal.(string)}
	case token.CHAR:
		p.advance()
		return &ast.CharLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: firstRune(tok.Literal.(string))}
	case token.WSTRING:
		p.advance()
		return &ast.WideStringLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: tok.Literal.(string)}
	case token.WCHAR:
		p.advance()
		return &ast.WideCharLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: firstRune(tok.Literal.(string))}
	case token.TRUE:
		p.advance()
		return &ast.BoolLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.BoolLit{ExprBase: ast.ExprBase{Position: tok.Pos}, Value: false}
	case token.NIL:
		p.advance()
		return &ast.NilLit{ExprBase: ast.ExprBase{Position: tok.Pos}}
	case token.SELF:
		p.advance()
		return &ast.Ident{ExprBase: ast.ExprBase{Position: tok.Pos}, Name: tok.Lexeme}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpr(precLowest)
		p.expect(token.RPAREN)
		return inner
	case token.LBRACE:
		return p.parseSetLit()
	case token.IDENT:
		// Rule 2: an identifier followed by `::` or a template-call shape
		// is a foreign primary, capturable mid-expression.
		if p.looksLikeForeignAfterIdent() {
			return p.parseForeignExpr(p.primaryPassthroughTerminators()...)
		}
		p.advance()
		return &ast.Ident{ExprBase: ast.ExprBase{Position: tok.Pos}, Name: tok.Lexeme}
	default:
		// No native primary production matches here; fold into the same
		// passthrough mechanism rather than erroring, since arbitrary
		// foreign-language fragments are legal wherever a primary is
		// expected (§4.3's dispatch rule).
		return p.parseForeignExpr(p.primaryPassthroughTerminators()...)
	}
}

func (p *Parser) parseSetLit() *ast.SetLit {
	pos := p.cur().Pos
	p.expect(token.LBRACE)
	lit := &ast.SetLit{ExprBase: ast.ExprBase{Position: pos}}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		low := p.parseExpr(precLowest)
		elem := ast.SetElem{Low: low}
		if p.curIs(token.RANGE) {
			p.advance()
			elem.High = p.parseExpr(precLowest)
		}
		lit.Elems = append(lit.Elems, elem)
		if p.curIs(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return lit
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// parseIntLiteral parses a decimal literal, or an Oberon-hex literal
// (trailing H/h suffix) per the lexer's numeric rule.
func parseIntLiteral(lexeme string) int64 {
	if n := len(lexeme); n > 0 && (lexeme[n-1] == 'H' || lexeme[n-1] == 'h') {
		v, err := strconv.ParseInt(lexeme[:n-1], 16, 64)
		if err != nil {
			return 0
		}
		return v
	}
	v, _ := strconv.ParseInt(lexeme, 10, 64)
	return v
}
