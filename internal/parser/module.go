package parser

import (
	"strconv"
	"strings"

	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/token"
)

// ParseModule parses one `module … end.` translation unit plus its
// trailing test blocks, interpreting directives as it goes.
func (p *Parser) ParseModule() *ast.Module {
	pos := p.cur().Pos
	p.expect(token.MODULE)

	kind := ast.KindExecutable
	switch p.cur().Type {
	case token.EXE:
		kind = ast.KindExecutable
		p.advance()
	case token.LIB:
		kind = ast.KindLibrary
		p.advance()
	case token.DLL:
		kind = ast.KindSharedLibrary
		p.advance()
	default:
		p.errorf(diagnostics.E101, "expected exe, lib or dll after 'module'")
	}

	name := p.expect(token.IDENT).Lexeme
	p.expect(token.SEMI)

	mod := &ast.Module{Position: pos, Name: name, Kind: kind}

loop:
	for {
		switch p.cur().Type {
		case token.DIRECTIVE:
			if lit, _ := p.cur().Literal.(string); strings.EqualFold(lit, "startcpp") {
				mod.Foreign = append(mod.Foreign, p.parseForeignBlockDecl())
			} else {
				mod.Directives = append(mod.Directives, p.parseDirective())
			}
		case token.FOREIGN_BLOCK:
			tok := p.advance()
			mod.Foreign = append(mod.Foreign, &ast.ForeignBlockDecl{Position: tok.Pos, Raw: tok.Literal.(string)})
		case token.IMPORT:
			mod.Imports = append(mod.Imports, p.parseImport())
		case token.CONST:
			mod.Constants = append(mod.Constants, p.parseConstSection()...)
		case token.TYPE:
			mod.Types = append(mod.Types, p.parseTypeSection()...)
		case token.VAR:
			mod.Variables = append(mod.Variables, p.parseVarSection()...)
		case token.ROUTINE, token.METHOD:
			mod.Routines = append(mod.Routines, p.parseRoutineDecl())
		case token.PUBLIC:
			p.advance()
			switch p.cur().Type {
			case token.VAR:
				for _, v := range p.parseVarSection() {
					v.Public = true
					mod.Variables = append(mod.Variables, v)
				}
			case token.CONST:
				mod.Constants = append(mod.Constants, p.parseConstSection()...)
			case token.TYPE:
				mod.Types = append(mod.Types, p.parseTypeSection()...)
			case token.ROUTINE, token.METHOD:
				r := p.parseRoutineDecl()
				r.Flags.Public = true
				mod.Routines = append(mod.Routines, r)
			default:
				p.errorf(diagnostics.E101, "expected a declaration section after 'public'")
			}
		case token.BEGIN:
			// The module body shares its closing `end` with the module
			// terminator (`end .`), so it is not a self-contained block.
			bodyPos := p.cur().Pos
			p.advance()
			stmts := p.parseStatementsUntil(token.END)
			mod.Body = &ast.BlockStmt{StmtBase: ast.StmtBase{Position: bodyPos}, Statements: stmts}
		case token.END:
			break loop
		case token.EOF:
			p.errorf(diagnostics.E101, "unexpected end of file inside module %s", name)
			break loop
		default:
			p.errorf(diagnostics.E102, "unexpected token '%s' in module body", p.cur().Lexeme)
			p.advance()
		}
	}

	p.expect(token.END)
	p.expect(token.DOT)

	for p.curIs(token.TEST) {
		mod.Tests = append(mod.Tests, p.parseTestBlock())
	}

	if mod.Kind != ast.KindExecutable && mod.Body != nil {
		if err := p.diags.Add(diagnostics.Error, diagnostics.E216, token.Token{Pos: mod.Position}, "only an executable module may have a body"); err != nil {
			p.Abort = err
		}
	}

	return mod
}

func (p *Parser) parseImport() *ast.Import {
	pos := p.cur().Pos
	p.expect(token.IMPORT)
	name := p.expect(token.IDENT).Lexeme
	p.expect(token.SEMI)
	return &ast.Import{Position: pos, Name: name}
}

// parseForeignBlockDecl consumes a `#startcpp [header|source]` marker and
// the opaque body token the lexer captured for it. An absent selector
// leaves Target empty; the emitter then falls back to the `#emit`
// directive's accumulated default.
func (p *Parser) parseForeignBlockDecl() *ast.ForeignBlockDecl {
	start := p.advance() // the #startcpp directive token
	fb := &ast.ForeignBlockDecl{Position: start.Pos}
	if p.curIs(token.IDENT) {
		if lower := strings.ToLower(p.cur().Lexeme); lower == "header" || lower == "source" {
			fb.Target = lower
			p.advance()
		}
	}
	body := p.expect(token.FOREIGN_BLOCK)
	fb.Raw, _ = body.Literal.(string)
	return fb
}

func (p *Parser) parseTestBlock() *ast.TestBlock {
	pos := p.cur().Pos
	p.expect(token.TEST)
	desc := ""
	if p.curIs(token.STRING) {
		desc, _ = p.cur().Literal.(string)
		p.advance()
	}
	p.expect(token.SEMI)
	body := p.parseStatementsUntil(token.END)
	p.expect(token.END)
	p.expect(token.SEMI)
	return &ast.TestBlock{Position: pos, Description: desc, Body: &ast.BlockStmt{Statements: body}}
}

// parseDirective consumes a `#name [arg]` line. Interpreted directives
// mutate p.config; unrecognised directives become an AST node the
// emitter can ignore, keeping the front end forward-compatible.
func (p *Parser) parseDirective() *ast.DirectiveNode {
	tok := p.advance()
	name := strings.ToLower(tok.Literal.(string))
	arg := ""
	if p.cur().Pos.Line == tok.Pos.Line { // directives are line-oriented
		switch p.cur().Type {
		case token.STRING, token.CHAR:
			arg, _ = p.cur().Literal.(string)
			p.advance()
		case token.IDENT, token.INT, token.FLOAT:
			arg = p.cur().Lexeme
			p.advance()
		}
	}

	if p.config != nil {
		p.interpretDirective(name, arg, tok)
	}

	return &ast.DirectiveNode{Position: tok.Pos, Name: name, Arg: arg}
}

func (p *Parser) interpretDirective(name, arg string, tok token.Token) {
	cfg := p.config
	switch name {
	case config.DirectiveUnitTestMode:
		cfg.UnitTestMode = strings.EqualFold(arg, "on")
	case config.DirectiveABI:
		cfg.ABI = strings.ToLower(arg)
	case config.DirectiveEmit:
		cfg.EmitTarget = strings.ToLower(arg)
	case config.DirectiveOptimization:
		cfg.Optimization = strings.ToLower(arg)
	case config.DirectiveTarget:
		cfg.Target = arg
	case config.DirectiveAppType:
		cfg.AppType = strings.ToLower(arg)
	case config.DirectiveIncludeHeader:
		cfg.IncludeHeaders = append(cfg.IncludeHeaders, arg)
	case config.DirectiveIncludePath:
		cfg.IncludePaths = append(cfg.IncludePaths, arg)
	case config.DirectiveLibraryPath:
		cfg.LibraryPaths = append(cfg.LibraryPaths, arg)
	case config.DirectiveModulePath:
		cfg.ModulePaths = append(cfg.ModulePaths, arg)
	case config.DirectiveLink:
		cfg.Libraries = append(cfg.Libraries, arg)
	case config.DirectiveBreakpoint:
		if n, err := strconv.Atoi(arg); err == nil {
			cfg.Breakpoints = append(cfg.Breakpoints, config.Breakpoint{File: tok.Pos.File, Line: n})
		} else {
			cfg.Breakpoints = append(cfg.Breakpoints, config.Breakpoint{File: tok.Pos.File, Line: tok.Pos.Line})
		}
	}
	// All other directive names pass through untouched — opaque to this
	// front end, meaningful only to the downstream build driver.
}
