// Package parser implements the recursive-descent parser over a Myra
// token stream: one-token lookahead, arbitrary peek, and the fallback
// transparency rule that re-reads unrecognised constructs as verbatim
// C++ passthrough.
package parser

import (
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/lexer"
	"github.com/myra-lang/myrac/internal/token"
)

// Parser holds the full pre-tokenized stream for one file plus its raw
// source text, so passthrough nodes can slice exact byte ranges.
type Parser struct {
	file   string
	source string
	toks   []token.Token
	pos    int

	diags  *diagnostics.Bag
	config *config.BuildConfig

	// Abort is set once a fatal diagnostic or the error cap fires; the
	// caller (driver/pipeline) checks it after ParseModule returns.
	Abort error
}

// New tokenizes source and returns a Parser ready to parse one module.
func New(file, source string, diags *diagnostics.Bag, cfg *config.BuildConfig) *Parser {
	if cfg == nil {
		cfg = config.NewBuildConfig(nil)
	}
	toks, err := lexer.Tokenize(file, source, diags)
	p := &Parser{file: file, source: source, toks: toks, diags: diags, config: cfg}
	if err != nil {
		p.Abort = err
	}
	return p
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peek() token.Token {
	return p.peekN(1)
}

func (p *Parser) peekN(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) curIs(tt token.Type) bool  { return p.cur().Type == tt }
func (p *Parser) peekIs(tt token.Type) bool { return p.peek().Type == tt }

func (p *Parser) curKeyword(kw string) bool {
	return string(p.cur().Type) == kw
}

// expect consumes the current token if it has kind tt; otherwise it
// records E100 and still advances, giving downstream productions a
// chance at recovery.
func (p *Parser) expect(tt token.Type) token.Token {
	t := p.cur()
	if t.Type != tt {
		p.errorf(diagnostics.E100, "expected '%s' but found '%s'", tt, t.Lexeme)
	}
	return p.advance()
}

func (p *Parser) errorf(code diagnostics.Code, format string, args ...interface{}) {
	if err := p.diags.Add(diagnostics.Error, code, p.cur(), format, args...); err != nil {
		p.Abort = err
	}
}

func (p *Parser) fatalf(code diagnostics.Code, format string, args ...interface{}) {
	if err := p.diags.Add(diagnostics.Fatal, code, p.cur(), format, args...); err != nil {
		p.Abort = err
	}
}

// syncTo advances tokens (panic-mode recovery) until it reaches one of
// the given terminator kinds or EOF, without consuming the terminator.
func (p *Parser) syncTo(terminators ...token.Type) {
	for !p.curIs(token.EOF) {
		for _, t := range terminators {
			if p.curIs(t) {
				return
			}
		}
		p.advance()
	}
}

// sliceSource returns source[startOffset:endOffset], the exact bytes the
// foreign-passthrough rule must preserve bit-for-bit (invariant 2 in the
// spec's data model).
func (p *Parser) sliceSource(startOffset, endOffset int) string {
	if startOffset < 0 {
		startOffset = 0
	}
	if endOffset > len(p.source) {
		endOffset = len(p.source)
	}
	if startOffset >= endOffset {
		return ""
	}
	return p.source[startOffset:endOffset]
}
