// Package diagnostics collects severity-tagged compiler messages and
// implements the hard error cap and fatal-abort behaviour described for
// the compiler's Diagnostics component.
package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/myra-lang/myrac/internal/token"
)

// Severity classifies a diagnostic message.
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Code is a short, stable diagnostic code, e.g. "E100".
type Code string

// Lexer and parser codes.
const (
	E001 Code = "E001" // source file not found
	E002 Code = "E002" // unterminated string
	E003 Code = "E003" // unterminated block comment
	E004 Code = "E004" // embedded CR/LF in string literal

	E100 Code = "E100" // expect(kind) mismatch
	E101 Code = "E101" // malformed declaration
	E102 Code = "E102" // unexpected token in statement context
	E103 Code = "E103" // module not found (import)
)

// Semantic analysis codes, E200..E217 per the specification.
const (
	E200 Code = "E200" // duplicate identifier
	E201 Code = "E201" // unknown type
	E202 Code = "E202" // unknown constant / non-constant where constant required
	E203 Code = "E203" // type mismatch
	E204 Code = "E204" // condition must be boolean
	E205 Code = "E205" // loop bound must be integer
	E206 Code = "E206" // return type mismatch
	E207 Code = "E207" // return value expected
	E208 Code = "E208" // return value disallowed (void routine)
	E209 Code = "E209" // method must take var Self as first parameter
	E210 Code = "E210" // inherited used outside a method
	E211 Code = "E211" // inherited on a type with no parent
	E212 Code = "E212" // unknown field
	E213 Code = "E213" // unknown method
	E214 Code = "E214" // cyclic record inheritance
	E215 Code = "E215" // test block outside project test mode / in shared library
	E216 Code = "E216" // executable body required / forbidden by module kind
	E217 Code = "E217" // new() could not infer a concrete pointee type
)

// Linker-phase code, validated after emission.
const E300 Code = "E300" // linked library not found on any configured path

// Diagnostic is one recorded message.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Code     Code
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s(%d,%d): %s %s: %s", d.File, d.Line, d.Column, d.Severity, d.Code, d.Message)
}

// TooManyErrors is raised once the error cap is reached; the driver
// catches it at the top-level compile boundary.
type TooManyErrors struct {
	Count int
}

func (e *TooManyErrors) Error() string {
	return fmt.Sprintf("too many errors (%d) — build failed", e.Count)
}

// FatalDiagnostic wraps a fatal diagnostic as an exceptional transfer.
type FatalDiagnostic struct {
	Diagnostic Diagnostic
}

func (e *FatalDiagnostic) Error() string {
	return e.Diagnostic.String()
}

// MaxErrors is the hard cap (N = 10) on recorded errors before the
// pipeline aborts with TooManyErrors.
const MaxErrors = 10

// Bag collects diagnostics for one compilation.
type Bag struct {
	items      []Diagnostic
	errorCount int
	out        io.Writer
	color      bool
}

// NewBag creates an empty diagnostic bag writing its Print output to w.
// Colorization is enabled automatically when w is a terminal.
func NewBag(w io.Writer) *Bag {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Bag{out: w, color: color}
}

// Add records a diagnostic at a token's position. A Fatal severity
// returns a *FatalDiagnostic error that the caller must propagate
// immediately; reaching MaxErrors on an Error severity returns
// *TooManyErrors. Both signal "stop running phases on this AST."
func (b *Bag) Add(sev Severity, code Code, tok token.Token, format string, args ...interface{}) error {
	d := Diagnostic{
		File:     tok.Pos.File,
		Line:     tok.Pos.Line,
		Column:   tok.Pos.Column,
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
	}
	b.items = append(b.items, d)

	if sev == Fatal {
		return &FatalDiagnostic{Diagnostic: d}
	}
	if sev == Error {
		b.errorCount++
		if b.errorCount >= MaxErrors {
			return &TooManyErrors{Count: b.errorCount}
		}
	}
	return nil
}

// AddAt is Add without a token, for diagnostics not tied to a specific
// source position (e.g. import resolution, linker checks).
func (b *Bag) AddAt(sev Severity, code Code, file string, line, col int, format string, args ...interface{}) error {
	return b.Add(sev, code, token.Token{Pos: token.Position{File: file, Line: line, Column: col}}, format, args...)
}

// HasErrors reports whether any Error or Fatal diagnostic was recorded.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity >= Error {
			return true
		}
	}
	return false
}

// Items returns the recorded diagnostics in the order they were added.
func (b *Bag) Items() []Diagnostic { return b.items }

const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorReset  = "\x1b[0m"
)

// Print renders every diagnostic followed by a final error/warning count,
// matching the IDE-problem-matcher-friendly format from the spec.
func (b *Bag) Print() {
	errs, warns := 0, 0
	for _, d := range b.items {
		line := d.String()
		if b.color {
			switch d.Severity {
			case Error, Fatal:
				line = colorRed + line + colorReset
			case Warning:
				line = colorYellow + line + colorReset
			}
		}
		fmt.Fprintln(b.out, line)
		switch d.Severity {
		case Warning:
			warns++
		default:
			errs++
		}
	}
	fmt.Fprintf(b.out, "%d error(s), %d warning(s)\n", errs, warns)
}

// Summary returns a one-line count without emitting individual messages.
func (b *Bag) Summary() string {
	errs, warns := 0, 0
	for _, d := range b.items {
		if d.Severity == Warning {
			warns++
		} else {
			errs++
		}
	}
	return fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
}
