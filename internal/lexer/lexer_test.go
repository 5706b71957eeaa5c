package lexer

import (
	"testing"

	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/token"
)

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	diags := diagnostics.NewBag(nil)
	toks, err := Tokenize("test.myra", src, diags)
	if err != nil {
		t.Fatalf("Tokenize(%q) returned error: %v", src, err)
	}
	return toks
}

func types(toks []token.Token) []token.Type {
	var out []token.Type
	for _, tok := range toks {
		out = append(out, tok.Type)
	}
	return out
}

func TestKeywordsAreCaseInsensitive(t *testing.T) {
	for _, src := range []string{"BEGIN", "Begin", "begin", "bEgIn"} {
		toks := tokenize(t, src)
		if len(toks) < 1 || toks[0].Type != token.BEGIN {
			t.Errorf("Tokenize(%q)[0].Type = %v, want BEGIN", src, toks[0].Type)
		}
	}
}

func TestIdentifierPreservesOriginalCase(t *testing.T) {
	toks := tokenize(t, "MyVariable")
	if toks[0].Type != token.IDENT || toks[0].Lexeme != "MyVariable" {
		t.Fatalf("got %+v, want IDENT %q", toks[0], "MyVariable")
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		typ  token.Type
		want string
	}{
		{"42", token.INT, "42"},
		{"1AH", token.INT, "1AH"},
		{"0FFh", token.INT, "0FFh"},
		{"3.14", token.FLOAT, "3.14"},
		{"2.5e10", token.FLOAT, "2.5e10"},
		{"2e-3", token.FLOAT, "2e-3"},
		{"5e", token.INT, "5"}, // no digits after 'e': not a float, 'e' starts next token
	}
	for _, c := range cases {
		toks := tokenize(t, c.src)
		if toks[0].Type != c.typ || toks[0].Lexeme != c.want {
			t.Errorf("Tokenize(%q)[0] = %v %q, want %v %q", c.src, toks[0].Type, toks[0].Lexeme, c.typ, c.want)
		}
	}
}

func TestQuotedLiteralClassification(t *testing.T) {
	cases := []struct {
		src  string
		typ  token.Type
	}{
		{"'a'", token.CHAR},
		{"'hello'", token.STRING},
		{"''", token.STRING}, // empty content has rune count 0, not 1
		{"'it''s'", token.STRING},
		{"L'a'", token.WCHAR},
		{"L\"wide\"", token.WSTRING},
	}
	for _, c := range cases {
		toks := tokenize(t, c.src)
		if toks[0].Type != c.typ {
			t.Errorf("Tokenize(%q)[0].Type = %v, want %v", c.src, toks[0].Type, c.typ)
		}
	}
}

func TestUnterminatedStringReportsDiagnostic(t *testing.T) {
	diags := diagnostics.NewBag(nil)
	toks, _ := Tokenize("test.myra", "'unterminated", diags)
	if !diags.HasErrors() {
		t.Fatal("expected a diagnostic for an unterminated string literal")
	}
	if toks[len(toks)-1].Type != token.EOF {
		t.Fatal("the token stream must still terminate in EOF after a lex error")
	}
}

func TestDoubleQuotedLiterals(t *testing.T) {
	toks := tokenize(t, `"hello" "x"`)
	if toks[0].Type != token.STRING || toks[0].Literal != "hello" {
		t.Fatalf("toks[0] = %+v, want STRING %q", toks[0], "hello")
	}
	if toks[1].Type != token.CHAR {
		t.Fatalf("toks[1].Type = %v, want CHAR for single-character content", toks[1].Type)
	}
}

func TestTwoAndThreeCharSymbols(t *testing.T) {
	toks := tokenize(t, ":= <> <= >= .. ...")
	got := types(toks)
	want := []token.Type{token.ASSIGN, token.NEQ, token.LE, token.GE, token.RANGE, token.ELLIPSIS, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestUnrecognizedCharacterPassesThroughAsIdent(t *testing.T) {
	toks := tokenize(t, "a $ b")
	if toks[1].Type != token.IDENT || toks[1].Lexeme != "$" {
		t.Fatalf("got %+v, want a bare IDENT token for '$'", toks[1])
	}
}

func TestForeignBlockCapturesVerbatimBytes(t *testing.T) {
	src := "#startcpp header\nint x = 1;\n#endcpp"
	toks := tokenize(t, src)
	if toks[0].Type != token.DIRECTIVE || toks[0].Literal != "startcpp" {
		t.Fatalf("toks[0] = %+v, want DIRECTIVE 'startcpp'", toks[0])
	}
	if toks[1].Type != token.IDENT || toks[1].Literal != "header" {
		t.Fatalf("toks[1] = %+v, want selector IDENT 'header'", toks[1])
	}
	if toks[2].Type != token.FOREIGN_BLOCK {
		t.Fatalf("toks[2].Type = %v, want FOREIGN_BLOCK", toks[2].Type)
	}
	if toks[2].Literal != "int x = 1;\n" {
		t.Fatalf("foreign block body = %q, want exact interior bytes", toks[2].Literal)
	}
}

func TestForeignBlockWithoutSelector(t *testing.T) {
	src := "#startcpp\nraw();\n#endcpp"
	toks := tokenize(t, src)
	if toks[1].Type != token.FOREIGN_BLOCK {
		t.Fatalf("toks[1].Type = %v, want FOREIGN_BLOCK (no selector present)", toks[1].Type)
	}
}

func TestPositionsTrackLineAndColumn(t *testing.T) {
	toks := tokenize(t, "a\nbc")
	if toks[0].Pos.Line != 1 {
		t.Errorf("toks[0].Pos.Line = %d, want 1", toks[0].Pos.Line)
	}
	if toks[1].Pos.Line != 2 {
		t.Errorf("toks[1].Pos.Line = %d, want 2", toks[1].Pos.Line)
	}
}

func TestEndOffsetIsByteExact(t *testing.T) {
	toks := tokenize(t, "abc")
	if toks[0].EndOffset != 3 {
		t.Errorf("EndOffset = %d, want 3", toks[0].EndOffset)
	}
}

func TestEOFIsRepeatable(t *testing.T) {
	l := New("test.myra", "", diagnostics.NewBag(nil))
	for i := 0; i < 3; i++ {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("NextToken() error: %v", err)
		}
		if tok.Type != token.EOF {
			t.Fatalf("NextToken() #%d = %v, want EOF", i, tok.Type)
		}
	}
}
