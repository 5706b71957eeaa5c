package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/myra-lang/myrac/internal/buildcache"
	"github.com/myra-lang/myrac/internal/config"
	"github.com/myra-lang/myrac/internal/diagnostics"
	"github.com/myra-lang/myrac/internal/driver"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: myrac [-o dir] [-I path]... [-force] [-project file] <entry.myra>")
}

// parsedArgs holds the manually-parsed command line; myrac has no
// subcommands yet, so a small hand-rolled switch over os.Args is enough
// and keeps the same texture as the rest of the front end's CLI-free
// design.
type parsedArgs struct {
	entry       string
	outDir      string
	projectPath string
	searchPaths []string
	force       bool
}

func parseArgs(args []string) (parsedArgs, error) {
	pa := parsedArgs{outDir: "generated"}
	i := 1
	for i < len(args) {
		arg := args[i]
		switch {
		case arg == "-o":
			if i+1 >= len(args) {
				return pa, fmt.Errorf("-o requires a directory argument")
			}
			pa.outDir = args[i+1]
			i += 2
		case arg == "-I":
			if i+1 >= len(args) {
				return pa, fmt.Errorf("-I requires a path argument")
			}
			pa.searchPaths = append(pa.searchPaths, args[i+1])
			i += 2
		case arg == "-project":
			if i+1 >= len(args) {
				return pa, fmt.Errorf("-project requires a file argument")
			}
			pa.projectPath = args[i+1]
			i += 2
		case arg == "-force":
			pa.force = true
			i++
		case strings.HasPrefix(arg, "-"):
			return pa, fmt.Errorf("unrecognized option: %s", arg)
		default:
			if pa.entry != "" {
				return pa, fmt.Errorf("only one entry file may be given, already have %s", pa.entry)
			}
			pa.entry = arg
			i++
		}
	}
	return pa, nil
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(2)
		}
	}()

	pa, err := parseArgs(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "myrac: %s\n", err)
		usage()
		os.Exit(2)
	}
	if pa.entry == "" {
		usage()
		os.Exit(2)
	}

	projectDir := filepath.Dir(pa.entry)
	if pa.projectPath == "" {
		pa.projectPath = filepath.Join(projectDir, "myra.yaml")
	}
	pf, err := config.LoadProjectFile(pa.projectPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "myrac: reading project file: %s\n", err)
		os.Exit(2)
	}
	cfg := config.NewBuildConfig(pf)

	searchPaths := append([]string{}, cfg.ModulePaths...)
	searchPaths = append(searchPaths, pa.searchPaths...)
	searchPaths = append(searchPaths, projectDir)

	diags := diagnostics.NewBag(os.Stderr)

	var cache *buildcache.Cache
	cachePath := filepath.Join(projectDir, ".myra-cache", "build.db")
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
		if c, err := buildcache.Open(cachePath); err == nil {
			cache = c
			defer cache.Close()
		}
	}

	d := driver.New(diags, cfg, searchPaths, pa.outDir, cache, pa.force)

	err = d.CompileEntry(pa.entry)

	diags.Print()

	if err != nil && err != driver.ErrBuildFailed {
		fmt.Fprintf(os.Stderr, "myrac: %s\n", err)
		os.Exit(1)
	}
	if diags.HasErrors() {
		fmt.Fprintln(os.Stderr, diags.Summary())
		os.Exit(1)
	}

	if bpPath := filepath.Join(pa.outDir, "breakpoints.json"); len(cfg.Breakpoints) > 0 {
		if err := d.WriteBreakpoints(bpPath); err != nil {
			fmt.Fprintf(os.Stderr, "myrac: writing breakpoints: %s\n", err)
		}
	}

	var totalBytes int
	for _, f := range d.EmittedFiles {
		totalBytes += f.HeaderBytes + f.SourceBytes
		fmt.Printf("  %-20s -> %s, %s\n", f.ModuleName,
			filepath.Base(f.HeaderPath), filepath.Base(f.SourcePath))
	}
	fmt.Printf("myrac: %d module(s), %s written to %s\n",
		len(d.EmittedFiles), humanize.Bytes(uint64(totalBytes)), pa.outDir)
}
