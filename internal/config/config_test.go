package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectFileMissingIsNotAnError(t *testing.T) {
	pf, err := LoadProjectFile(filepath.Join(t.TempDir(), "myra.yaml"))
	if err != nil {
		t.Fatalf("LoadProjectFile on a missing file: %v", err)
	}
	if pf.Optimization != "" || len(pf.ModulePaths) != 0 {
		t.Fatalf("missing file should decode as a zero ProjectFile, got %+v", pf)
	}
}

func TestLoadProjectFileDecodesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "myra.yaml")
	content := `optimization: releasesafe
target: x86_64-linux
apptype: console
abi: c
module_paths:
  - libs
  - vendor/myra
libraries:
  - m
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	pf, err := LoadProjectFile(path)
	if err != nil {
		t.Fatalf("LoadProjectFile: %v", err)
	}
	if pf.Optimization != "releasesafe" || pf.Target != "x86_64-linux" || pf.ABI != "c" {
		t.Fatalf("decoded %+v", pf)
	}
	if len(pf.ModulePaths) != 2 || pf.ModulePaths[0] != "libs" {
		t.Fatalf("ModulePaths = %v", pf.ModulePaths)
	}
	if len(pf.Libraries) != 1 || pf.Libraries[0] != "m" {
		t.Fatalf("Libraries = %v", pf.Libraries)
	}
}

func TestNewBuildConfigDefaults(t *testing.T) {
	bc := NewBuildConfig(nil)
	if bc.ABI != "cpp" {
		t.Fatalf("default ABI = %q, want cpp", bc.ABI)
	}
	if bc.EmitTarget != "source" {
		t.Fatalf("default EmitTarget = %q, want source", bc.EmitTarget)
	}
}

func TestNewBuildConfigSeedsFromProjectFile(t *testing.T) {
	bc := NewBuildConfig(&ProjectFile{
		Optimization: "debug",
		ABI:          "c",
		ModulePaths:  []string{"libs"},
	})
	if bc.Optimization != "debug" || bc.ABI != "c" {
		t.Fatalf("seeded config = %+v", bc)
	}
	if len(bc.ModulePaths) != 1 || bc.ModulePaths[0] != "libs" {
		t.Fatalf("ModulePaths = %v", bc.ModulePaths)
	}
}
