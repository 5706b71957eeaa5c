package parser

import (
	"strings"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/token"
)

func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.cur().Pos
	p.expect(token.BEGIN)
	stmts := p.parseStatementsUntil(token.END)
	p.expect(token.END)
	return &ast.BlockStmt{StmtBase: ast.StmtBase{Position: pos}, Statements: stmts}
}

func (p *Parser) parseStatementsUntil(terminators ...token.Type) []ast.Stmt {
	var stmts []ast.Stmt
	for !p.atAny(terminators...) && !p.curIs(token.EOF) {
		stmts = append(stmts, p.parseStmt())
		for p.curIs(token.SEMI) {
			p.advance()
		}
	}
	return stmts
}

func (p *Parser) atAny(types ...token.Type) bool {
	for _, t := range types {
		if p.curIs(t) {
			return true
		}
	}
	return false
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().Type {
	case token.BEGIN:
		return p.parseBlock()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.REPEAT:
		return p.parseRepeatStmt()
	case token.CASE:
		return p.parseCaseStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.NEW:
		return p.parseNewStmt()
	case token.DISPOSE:
		return p.parseDisposeStmt()
	case token.SETLENGTH:
		return p.parseSetLengthStmt()
	case token.TRY:
		return p.parseTryStmt()
	case token.INHERITED:
		return p.parseInheritedStmt()
	case token.VAR:
		return p.parseLocalVarStmt()
	case token.DIRECTIVE:
		return p.parseDirectiveStmt()
	case token.IDENT, token.SELF:
		if p.curIs(token.IDENT) && p.looksLikeForeignAfterIdent() {
			return p.parseForeignStmt()
		}
		return p.parseSimpleStmt()
	default:
		return p.parseForeignStmt()
	}
}

// statementPassthroughTerminators bounds statement-level foreign
// capture (rule 1) and the assign/call native-parse fallback.
func statementPassthroughTerminators() []token.Type {
	return []token.Type{token.SEMI, token.END, token.ELSE, token.UNTIL, token.EXCEPT, token.FINALLY}
}

func (p *Parser) parseForeignStmt() *ast.ForeignStmt {
	pos := p.cur().Pos
	raw, endOffset := p.capturePassthrough(statementPassthroughTerminators()...)
	// A terminating semicolon belongs to the foreign statement itself —
	// the slice must land in the C++ output complete, not clipped.
	if p.curIs(token.SEMI) {
		endOffset = p.cur().EndOffset
		raw = p.sliceSource(pos.Offset, endOffset)
		p.advance()
	}
	return &ast.ForeignStmt{StmtBase: ast.StmtBase{Position: pos}, Raw: raw}
}

// parseDirectiveStmt interprets recognised directives in place (they
// mutate p.config exactly as at module scope) and otherwise falls back
// to statement-level passthrough captured to end-of-line, per §4.3.
func (p *Parser) parseDirectiveStmt() ast.Stmt {
	tok := p.cur()
	name := strings.ToLower(tok.Literal.(string))
	if name == "startcpp" {
		fb := p.parseForeignBlockDecl()
		return &ast.ForeignStmt{StmtBase: ast.StmtBase{Position: fb.Position}, Raw: fb.Raw}
	}
	if isInterpretedDirective(name) {
		node := p.parseDirective()
		return &ast.DirectiveStmt{StmtBase: ast.StmtBase{Position: tok.Pos}, Name: node.Name, Arg: node.Arg}
	}
	p.advance()
	raw, _ := p.capturePassthroughToEndOfLine(tok.Pos.Line)
	return &ast.ForeignStmt{StmtBase: ast.StmtBase{Position: tok.Pos}, Raw: tok.Lexeme + raw}
}

func (p *Parser) capturePassthroughToEndOfLine(line int) (string, int) {
	startOffset := p.cur().Pos.Offset
	lastEnd := startOffset
	for !p.curIs(token.EOF) && p.cur().Pos.Line == line {
		lastEnd = p.cur().EndOffset
		p.advance()
	}
	return p.sliceSource(startOffset, lastEnd), lastEnd
}

func isInterpretedDirective(name string) bool {
	switch name {
	case config.DirectiveUnitTestMode, config.DirectiveABI, config.DirectiveEmit,
		config.DirectiveOptimization, config.DirectiveTarget, config.DirectiveAppType,
		config.DirectiveIncludeHeader, config.DirectiveIncludePath, config.DirectiveLibraryPath,
		config.DirectiveModulePath, config.DirectiveLink, config.DirectiveBreakpoint:
		return true
	}
	return false
}

func (p *Parser) parseLocalVarStmt() ast.Stmt {
	p.advance()
	decls := p.parseVarItems()
	if len(decls) == 1 {
		return decls[0]
	}
	pos := decls[0].Position
	var stmts []ast.Stmt
	for _, d := range decls {
		stmts = append(stmts, d)
	}
	return &ast.BlockStmt{StmtBase: ast.StmtBase{Position: pos}, Statements: stmts}
}

// parseSimpleStmt parses an assignment or a bare call expression used as
// a statement.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	pos := p.cur().Pos
	target := p.parsePostfix(p.parsePrimary())

	if p.curIs(token.ASSIGN) {
		p.advance()
		value := p.parseExprOrPassthrough(statementPassthroughTerminators()...)
		return &ast.AssignStmt{StmtBase: ast.StmtBase{Position: pos}, Target: target, Value: value}
	}
	if _, ok := target.(*ast.CallExpr); ok {
		return &ast.ExprStmt{StmtBase: ast.StmtBase{Position: pos}, X: target}
	}
	p.errorf(diagnostics.E102, "unexpected token '%s' in statement context", p.cur().Lexeme)
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Position: pos}, X: target}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	pos := p.cur().Pos
	p.expect(token.IF)
	cond := p.parseExpr(precLowest)
	p.expect(token.THEN)
	thenStmt := p.parseStmt()
	stmt := &ast.IfStmt{StmtBase: ast.StmtBase{Position: pos}, Cond: cond, Then: thenStmt}
	if p.curIs(token.ELSE) {
		p.advance()
		stmt.Else = p.parseStmt()
	}
	return stmt
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	pos := p.cur().Pos
	p.expect(token.WHILE)
	cond := p.parseExpr(precLowest)
	p.expect(token.DO)
	body := p.parseStmt()
	return &ast.WhileStmt{StmtBase: ast.StmtBase{Position: pos}, Cond: cond, Body: body}
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	pos := p.cur().Pos
	p.expect(token.FOR)
	varName := p.expect(token.IDENT).Lexeme
	p.expect(token.ASSIGN)
	start := p.parseExpr(precLowest)
	descending := false
	if p.curIs(token.DOWNTO) {
		descending = true
		p.advance()
	} else {
		p.expect(token.TO)
	}
	end := p.parseExpr(precLowest)
	p.expect(token.DO)
	body := p.parseStmt()
	return &ast.ForStmt{StmtBase: ast.StmtBase{Position: pos}, Var: varName, Start: start, End: end, Descending: descending, Body: body}
}

func (p *Parser) parseRepeatStmt() *ast.RepeatStmt {
	pos := p.cur().Pos
	p.expect(token.REPEAT)
	body := p.parseStatementsUntil(token.UNTIL)
	p.expect(token.UNTIL)
	cond := p.parseExpr(precLowest)
	return &ast.RepeatStmt{StmtBase: ast.StmtBase{Position: pos}, Body: body, Cond: cond}
}

func (p *Parser) parseCaseStmt() *ast.CaseStmt {
	pos := p.cur().Pos
	p.expect(token.CASE)
	subject := p.parseExpr(precLowest)
	p.expect(token.OF)

	cs := &ast.CaseStmt{StmtBase: ast.StmtBase{Position: pos}, Subject: subject}
	for !p.curIs(token.END) && !p.curIs(token.ELSE) && !p.curIs(token.EOF) {
		var labels []ast.Expr
		labels = append(labels, p.parseCaseLabel())
		for p.curIs(token.COMMA) {
			p.advance()
			labels = append(labels, p.parseCaseLabel())
		}
		p.expect(token.COLON)
		body := p.parseStmt()
		cs.Arms = append(cs.Arms, &ast.CaseArm{Labels: labels, Body: body})
		if p.curIs(token.SEMI) {
			p.advance()
		}
	}
	if p.curIs(token.ELSE) {
		p.advance()
		cs.Default = &ast.BlockStmt{Statements: p.parseStatementsUntil(token.END)}
	}
	p.expect(token.END)
	return cs
}

func (p *Parser) parseCaseLabel() ast.Expr {
	low := p.parseExpr(precLowest)
	if p.curIs(token.RANGE) {
		pos := p.cur().Pos
		p.advance()
		high := p.parseExpr(precLowest)
		return &ast.RangeExpr{ExprBase: ast.ExprBase{Position: pos}, Low: low, High: high}
	}
	return low
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	pos := p.cur().Pos
	p.expect(token.RETURN)
	r := &ast.ReturnStmt{StmtBase: ast.StmtBase{Position: pos}}
	if !p.atAny(token.SEMI, token.END, token.ELSE, token.UNTIL) {
		r.Value = p.parseExprOrPassthrough(statementPassthroughTerminators()...)
	}
	return r
}

func (p *Parser) parseNewStmt() *ast.NewStmt {
	pos := p.cur().Pos
	p.expect(token.NEW)
	p.expect(token.LPAREN)
	target := p.parseExpr(precLowest)
	n := &ast.NewStmt{StmtBase: ast.StmtBase{Position: pos}, Target: target}
	if p.curIs(token.AS) {
		p.advance()
		n.As = p.parseTypeExpr()
	}
	p.expect(token.RPAREN)
	return n
}

func (p *Parser) parseDisposeStmt() *ast.DisposeStmt {
	pos := p.cur().Pos
	p.expect(token.DISPOSE)
	p.expect(token.LPAREN)
	target := p.parseExpr(precLowest)
	p.expect(token.RPAREN)
	return &ast.DisposeStmt{StmtBase: ast.StmtBase{Position: pos}, Target: target}
}

func (p *Parser) parseSetLengthStmt() *ast.SetLengthStmt {
	pos := p.cur().Pos
	p.expect(token.SETLENGTH)
	p.expect(token.LPAREN)
	target := p.parseExpr(precLowest)
	p.expect(token.COMMA)
	length := p.parseExpr(precLowest)
	p.expect(token.RPAREN)
	return &ast.SetLengthStmt{StmtBase: ast.StmtBase{Position: pos}, Target: target, Length: length}
}

func (p *Parser) parseTryStmt() *ast.TryStmt {
	pos := p.cur().Pos
	p.expect(token.TRY)
	t := &ast.TryStmt{StmtBase: ast.StmtBase{Position: pos}}
	t.Body = p.parseStatementsUntil(token.EXCEPT, token.FINALLY, token.END)
	if p.curIs(token.EXCEPT) {
		t.HasExcept = true
		p.advance()
		t.Except = p.parseStatementsUntil(token.FINALLY, token.END)
	}
	if p.curIs(token.FINALLY) {
		t.HasFinally = true
		p.advance()
		t.Finally = p.parseStatementsUntil(token.END)
	}
	p.expect(token.END)
	return t
}

func (p *Parser) parseInheritedStmt() *ast.InheritedStmt {
	pos := p.cur().Pos
	p.expect(token.INHERITED)
	name := ""
	if p.curIs(token.IDENT) {
		name = p.advance().Lexeme
	}
	var args []ast.Expr
	if p.curIs(token.LPAREN) {
		args = p.parseArgList()
	}
	return &ast.InheritedStmt{StmtBase: ast.StmtBase{Position: pos}, MethodName: name, Args: args}
}
