package driver_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myra-lang/myrac/internal/buildcache"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/driver"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

const consoleSrc = `module lib Console;
public routine PrintLn(s: String);
begin
end;
end.
`

const helloSrc = `module exe Hello;
import Console;
begin
  Console.PrintLn('Hi');
end.
`

func TestCompileHelloExecutableWithImport(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeSource(t, srcDir, "Console.myra", consoleSrc)
	entry := writeSource(t, srcDir, "Hello.myra", helloSrc)

	diags := diagnostics.NewBag(nil)
	d := driver.New(diags, config.NewBuildConfig(nil), []string{srcDir}, outDir, nil, false)
	if err := d.CompileEntry(entry); err != nil {
		t.Fatalf("CompileEntry: %v (diagnostics: %v)", err, diags.Items())
	}

	cpp := readOutput(t, filepath.Join(outDir, "Hello.cpp"))
	if !strings.Contains(cpp, "int main(int argc, char** argv)") {
		t.Fatalf("Hello.cpp should synthesize main, got:\n%s", cpp)
	}
	if !strings.Contains(cpp, `Console::PrintLn("Hi")`) {
		t.Fatalf("Hello.cpp should emit the module-qualified call, got:\n%s", cpp)
	}
	if strings.Contains(cpp, "namespace Hello") {
		t.Fatalf("an executable module must not wrap in a namespace, got:\n%s", cpp)
	}
	if !strings.Contains(readOutput(t, filepath.Join(outDir, "Console.h")), "namespace Console {") {
		t.Fatal("the imported library module should wrap its header in a namespace")
	}
}

func TestImportCycleCompilesEachModuleOnce(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeSource(t, srcDir, "A.myra", "module lib A;\nimport B;\nend.\n")
	writeSource(t, srcDir, "B.myra", "module lib B;\nimport A;\nend.\n")
	entry := filepath.Join(srcDir, "A.myra")

	diags := diagnostics.NewBag(nil)
	d := driver.New(diags, config.NewBuildConfig(nil), []string{srcDir}, outDir, nil, false)
	if err := d.CompileEntry(entry); err != nil {
		t.Fatalf("CompileEntry: %v (diagnostics: %v)", err, diags.Items())
	}
	if len(d.EmittedFiles) != 2 {
		t.Fatalf("EmittedFiles = %d, want each cycle participant emitted exactly once", len(d.EmittedFiles))
	}
}

func TestRepeatCompilationIsByteIdentical(t *testing.T) {
	srcDir := t.TempDir()
	writeSource(t, srcDir, "Console.myra", consoleSrc)
	entry := writeSource(t, srcDir, "Hello.myra", helloSrc)

	outputs := make([]map[string]string, 2)
	for run := 0; run < 2; run++ {
		outDir := t.TempDir()
		diags := diagnostics.NewBag(nil)
		d := driver.New(diags, config.NewBuildConfig(nil), []string{srcDir}, outDir, nil, false)
		if err := d.CompileEntry(entry); err != nil {
			t.Fatalf("run %d: CompileEntry: %v", run, err)
		}
		outputs[run] = make(map[string]string)
		for _, f := range d.EmittedFiles {
			outputs[run][f.ModuleName+".h"] = readOutput(t, f.HeaderPath)
			outputs[run][f.ModuleName+".cpp"] = readOutput(t, f.SourcePath)
		}
	}
	for name, content := range outputs[0] {
		if outputs[1][name] != content {
			t.Errorf("%s differs between two identical compilations", name)
		}
	}
}

func TestCacheHitSkipsRewriteButNotDiagnostics(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	writeSource(t, srcDir, "Console.myra", consoleSrc)
	entry := writeSource(t, srcDir, "Hello.myra", helloSrc)
	cachePath := filepath.Join(t.TempDir(), "build.db")

	for run := 0; run < 2; run++ {
		cache, err := buildcache.Open(cachePath)
		if err != nil {
			t.Fatalf("opening cache: %v", err)
		}
		diags := diagnostics.NewBag(nil)
		d := driver.New(diags, config.NewBuildConfig(nil), []string{srcDir}, outDir, cache, false)
		if err := d.CompileEntry(entry); err != nil {
			t.Fatalf("run %d: CompileEntry: %v (diagnostics: %v)", run, err, diags.Items())
		}
		if run == 1 && len(d.EmittedFiles) != 0 {
			t.Fatalf("second run re-emitted %d file pair(s), want a full cache hit", len(d.EmittedFiles))
		}
		cache.Close()
	}

	// The first run's outputs must survive the cached run untouched.
	if !strings.Contains(readOutput(t, filepath.Join(outDir, "Hello.cpp")), `Console::PrintLn("Hi")`) {
		t.Fatal("cached run must leave the previously written output in place")
	}
}

func TestMissingImportFailsBuild(t *testing.T) {
	srcDir := t.TempDir()
	entry := writeSource(t, srcDir, "Broken.myra", "module exe Broken;\nimport Nope;\nbegin\nend.\n")

	diags := diagnostics.NewBag(nil)
	d := driver.New(diags, config.NewBuildConfig(nil), []string{srcDir}, t.TempDir(), nil, false)
	err := d.CompileEntry(entry)
	if err != driver.ErrBuildFailed {
		t.Fatalf("CompileEntry = %v, want ErrBuildFailed", err)
	}
	if len(d.EmittedFiles) != 0 {
		t.Fatal("nothing should be emitted once an import fails to resolve")
	}
	found := false
	for _, item := range diags.Items() {
		if item.Code == diagnostics.E103 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an E103 diagnostic, got %v", diags.Items())
	}
}

func TestWriteBreakpointsJSONShape(t *testing.T) {
	d := driver.New(diagnostics.NewBag(nil), config.NewBuildConfig(nil), nil, t.TempDir(), nil, false)
	d.Config.Breakpoints = []config.Breakpoint{
		{File: "src/Main.myra", Line: 3},
		{File: "src/Util.myra", Line: 17},
	}
	path := filepath.Join(t.TempDir(), "breakpoints.json")
	if err := d.WriteBreakpoints(path); err != nil {
		t.Fatalf("WriteBreakpoints: %v", err)
	}
	got := readOutput(t, path)
	want := `{"version":"1.0","breakpoints":[{"file":"src/Main.myra","line":3},{"file":"src/Util.myra","line":17}]}`
	if got != want {
		t.Fatalf("breakpoints JSON = %s, want %s", got, want)
	}
}
