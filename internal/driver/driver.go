// Package driver implements the compiler driver's core slice: it
// recursively transpiles an entry module and its imports in dependency
// order, maintaining a processed-file set so a module reachable through
// multiple import chains (or an import cycle) is tokenized, parsed,
// analysed, and emitted exactly once (§5's ordering guarantees).
package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/myra-lang/myrac/internal/analyzer"
	"github.com/myra-lang/myrac/internal/ast"
	"github.com/myra-lang/myrac/internal/buildcache"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/emitter"
	"github.com/myra-lang/myrac/internal/parser"
	"github.com/myra-lang/myrac/internal/symbols"
)

// Driver owns everything scoped to one compilation: the shared symbol
// table (persists across every module's imports), the diagnostics bag,
// the accumulated build configuration, and the processed/processing
// file sets that make import recursion cycle-safe.
type Driver struct {
	Diags       *diagnostics.Bag
	Table       *symbols.Table
	Config      *config.BuildConfig
	SearchPaths []string
	OutDir      string
	Cache       *buildcache.Cache // nil disables the incremental cache
	Force       bool              // bypass the cache even when present

	CompilationID uuid.UUID

	// EmittedFiles records, in emission order, every (header, source)
	// pair actually written this run — used for a CLI summary and for
	// cache-agnostic byte-for-byte comparison in tests.
	EmittedFiles []EmittedFile

	processed  map[string]bool
	processing map[string]bool

	// combinedHash remembers, for every module already visited this
	// run, the hash folding its own content together with every
	// transitive import's combinedHash — the cache key an importer
	// needs in order to notice a change anywhere beneath it.
	combinedHash map[string]string
}

// EmittedFile is one written header/source pair.
type EmittedFile struct {
	ModuleName  string
	HeaderPath  string
	SourcePath  string
	HeaderBytes int
	SourceBytes int
	FromCache   bool
}

// New creates a Driver ready to compile one translation unit.
func New(diags *diagnostics.Bag, cfg *config.BuildConfig, searchPaths []string, outDir string, cache *buildcache.Cache, force bool) *Driver {
	return &Driver{
		Diags:        diags,
		Table:        symbols.NewTable(),
		Config:       cfg,
		SearchPaths:  searchPaths,
		OutDir:       outDir,
		Cache:        cache,
		Force:        force,
		processed:    make(map[string]bool),
		processing:   make(map[string]bool),
		combinedHash: make(map[string]string),
	}
}

// ErrBuildFailed is returned when the compilation completes (no fatal
// aborted it) but at least one error-severity diagnostic was recorded,
// meaning emission was skipped for at least one module (§5).
var ErrBuildFailed = errors.New("build failed")

// CompileEntry transpiles entryPath and every module it (transitively)
// imports, stamping the whole run with a fresh compilation ID.
func (d *Driver) CompileEntry(entryPath string) error {
	d.CompilationID = uuid.New()
	abs, err := filepath.Abs(entryPath)
	if err != nil {
		return err
	}
	if _, err := d.compileFile(abs); err != nil {
		return err
	}
	if d.Diags.HasErrors() {
		return ErrBuildFailed
	}
	return nil
}

// resolveImport searches SearchPaths (in order) for "<name>.myra", then
// falls back to the importing file's own directory (§6).
func (d *Driver) resolveImport(importerDir, name string) (string, error) {
	filename := name + config.SourceFileExt
	for _, dir := range d.SearchPaths {
		candidate := filepath.Join(dir, filename)
		if fileExists(candidate) {
			return filepath.Abs(candidate)
		}
	}
	candidate := filepath.Join(importerDir, filename)
	if fileExists(candidate) {
		return filepath.Abs(candidate)
	}
	return "", fmt.Errorf("module '%s' not found in any search path or %s", name, importerDir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// compileFile runs the full per-module pipeline: read -> parse ->
// recurse into imports -> (cache check, now that the transitive
// dependency closure is known) -> analyse -> emit -> write. The
// processing set short-circuits import cycles; the processed set makes
// repeat reachability of the same module a no-op (invariant 3, §8).
// It returns the module's combined hash — its own content folded
// together with every transitive import's combined hash — so an
// importer can fold it into its own cache key in turn, per SPEC_FULL.md
// §4.7: a cache hit on an importer is only valid when nothing beneath
// it, at any depth, has changed.
func (d *Driver) compileFile(absPath string) (string, error) {
	if d.processed[absPath] {
		return d.combinedHash[absPath], nil
	}
	if d.processing[absPath] {
		// Cycle: the enclosing compileFile call will finish this module.
		// There is no combined hash to report yet; the importer folds in
		// a fixed placeholder so a cycle never produces a stable cache
		// key for either side (safe: it just means a cycle participant
		// is never cache-eligible, not a correctness issue).
		return "<cycle>", nil
	}
	d.processing[absPath] = true
	defer delete(d.processing, absPath)

	src, err := os.ReadFile(absPath)
	if err != nil {
		d.Diags.AddAt(diagnostics.Fatal, diagnostics.E001, absPath, 0, 0, "source file not found: %s", absPath)
		return "", fmt.Errorf("%s: %w", absPath, err)
	}

	p := parser.New(absPath, string(src), d.Diags, d.Config)
	mod := p.ParseModule()
	if p.Abort != nil {
		return "", p.Abort
	}

	dir := filepath.Dir(absPath)
	ownHash := buildcache.HashOf(src)
	hashInput := ownHash
	for _, imp := range mod.Imports {
		impPath, err := d.resolveImport(dir, imp.Name)
		if err != nil {
			d.Diags.AddAt(diagnostics.Error, diagnostics.E103, absPath, imp.Position.Line, imp.Position.Column, "%s", err)
			continue
		}
		impHash, err := d.compileFile(impPath)
		if err != nil {
			return "", err
		}
		hashInput += "|" + impHash
	}
	combined := buildcache.HashOf([]byte(hashInput))
	d.combinedHash[absPath] = combined

	// Analysis always runs, hit or miss: importers resolve against this
	// run's in-memory symbol table, which a previous run's cache entry
	// cannot stand in for. The cache only ever saves the emit+write step.
	cached := false
	if d.Cache != nil && !d.Force {
		_, cached, _ = d.Cache.Lookup(absPath, combined)
	}

	an := analyzer.New(d.Table, d.Diags, d.Config)
	an.AnalyzeModule(mod)
	if an.Abort != nil {
		return "", an.Abort
	}

	d.processed[absPath] = true

	if d.Diags.HasErrors() {
		// Emission is skipped once any error is present, but earlier
		// modules already written stay on disk — only the downstream
		// build is withheld, by CompileEntry returning ErrBuildFailed.
		return combined, nil
	}
	if cached {
		// The previously written header/source pair is already current.
		return combined, nil
	}

	em := emitter.New(d.Table, d.Diags, d.Config)
	result := em.EmitModule(mod)

	if err := d.writeOutputs(mod, result); err != nil {
		return "", err
	}
	if d.Cache != nil {
		_ = d.Cache.Record(absPath, combined, d.CompilationID, time.Now())
	}
	return combined, nil
}

func (d *Driver) writeOutputs(mod *ast.Module, result emitter.Result) error {
	if err := os.MkdirAll(d.OutDir, 0o755); err != nil {
		return err
	}
	headerPath := filepath.Join(d.OutDir, mod.Name+".h")
	sourcePath := filepath.Join(d.OutDir, mod.Name+".cpp")
	if err := os.WriteFile(headerPath, []byte(result.Header), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(sourcePath, []byte(result.Source), 0o644); err != nil {
		return err
	}
	d.EmittedFiles = append(d.EmittedFiles, EmittedFile{
		ModuleName:  mod.Name,
		HeaderPath:  headerPath,
		SourcePath:  sourcePath,
		HeaderBytes: len(result.Header),
		SourceBytes: len(result.Source),
	})
	return nil
}

// WriteBreakpoints persists the accumulated `#breakpoint` directive
// hints as JSON alongside the compiled artifact (§6).
func (d *Driver) WriteBreakpoints(path string) error {
	var b strings.Builder
	b.WriteString(`{"version":"1.0","breakpoints":[`)
	for i, bp := range d.Config.Breakpoints {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"file":%q,"line":%d}`, filepath.ToSlash(bp.File), bp.Line)
	}
	b.WriteString("]}")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
