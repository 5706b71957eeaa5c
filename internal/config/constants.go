// Package config holds fixed, project-wide constants: the surface
// syntax's source file extension, built-in type names, and the set of
// directive names the parser interprets.
package config

// SourceFileExt is the canonical Myra source file extension.
const SourceFileExt = ".myra"

// Built-in type names, pre-populated into the root symbol table.
const (
	TypeBoolean   = "Boolean"
	TypeChar      = "Char"
	TypeUChar     = "UChar"
	TypeInteger   = "Integer"
	TypeUInteger  = "UInteger"
	TypeFloat     = "Float"
	TypeString    = "String"
	TypeSet       = "Set"
	TypePointer   = "Pointer"
)

// BuiltinTypeNames lists the nine pre-populated built-in types in a
// fixed order, used when seeding a fresh root symbol table.
var BuiltinTypeNames = []string{
	TypeBoolean, TypeChar, TypeUChar, TypeInteger, TypeUInteger,
	TypeFloat, TypeString, TypeSet, TypePointer,
}

// Module kinds.
const (
	ModuleExecutable   = "exe"
	ModuleLibrary      = "lib"
	ModuleSharedLibrary = "dll"
)

// Interpreted directive names (§4.3). Any other "#name" passes through.
const (
	DirectiveUnitTestMode  = "unittestmode"
	DirectiveABI           = "abi"
	DirectiveEmit          = "emit"
	DirectiveOptimization  = "optimization"
	DirectiveTarget        = "target"
	DirectiveAppType       = "apptype"
	DirectiveIncludeHeader = "include_header"
	DirectiveIncludePath   = "include_path"
	DirectiveLibraryPath   = "library_path"
	DirectiveModulePath    = "module_path"
	DirectiveLink          = "link"
	DirectiveBreakpoint    = "breakpoint"
)

// Foreign code block markers (§4.2).
const (
	ForeignBlockStart = "#startcpp"
	ForeignBlockEnd   = "#endcpp"
)

// ErrorCap is the hard cap on recorded errors before the pipeline aborts
// (mirrors diagnostics.MaxErrors — kept here too since config is the
// natural home for project-wide tunables read from myra.yaml).
const ErrorCap = 10

// Valid optimisation levels, target triples and application types —
// opaque to the front end, consumed by the downstream build driver.
var (
	OptimizationLevels = []string{"debug", "releasesafe", "releasefast", "releasesmall"}
	TargetTriples       = []string{"native", "x86_64-windows", "x86_64-linux", "aarch64-macos", "aarch64-linux", "wasm32-wasi"}
	AppTypes            = []string{"console", "gui"}
)

// ProjectFile is the optional myra.yaml sitting beside the entry module,
// decoded with gopkg.in/yaml.v3. Directive values encountered during
// parsing override these field-by-field.
type ProjectFile struct {
	Optimization string   `yaml:"optimization"`
	Target       string   `yaml:"target"`
	AppType      string   `yaml:"apptype"`
	ABI          string   `yaml:"abi"`
	IncludePaths []string `yaml:"include_paths"`
	LibraryPaths []string `yaml:"library_paths"`
	ModulePaths  []string `yaml:"module_paths"`
	Libraries    []string `yaml:"libraries"`
}
