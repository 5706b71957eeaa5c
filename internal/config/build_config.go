package config

// Breakpoint is one `#breakpoint` directive hint, persisted as JSON
// alongside the compiled artifact (§6).
type Breakpoint struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// BuildConfig accumulates driver-level configuration mutated by
// interpreted directives (§4.3) across the whole compilation, optionally
// seeded from a myra.yaml ProjectFile. It is opaque to the front end in
// the sense that the front end never acts on it beyond recording it —
// consumption is the downstream build driver's job.
type BuildConfig struct {
	Optimization string
	Target       string
	AppType      string
	ABI          string // "c" or "cpp"; current value at any declaration point
	UnitTestMode bool
	EmitTarget   string // "header" or "source"; current default for foreign blocks

	IncludeHeaders []string
	IncludePaths   []string
	LibraryPaths   []string
	ModulePaths    []string
	Libraries      []string

	Breakpoints []Breakpoint
}

// NewBuildConfig seeds a BuildConfig from an optional project file (nil
// is treated as an empty one).
func NewBuildConfig(pf *ProjectFile) *BuildConfig {
	bc := &BuildConfig{ABI: "cpp", EmitTarget: "source"}
	if pf == nil {
		return bc
	}
	bc.Optimization = pf.Optimization
	bc.Target = pf.Target
	bc.AppType = pf.AppType
	if pf.ABI != "" {
		bc.ABI = pf.ABI
	}
	bc.IncludePaths = append(bc.IncludePaths, pf.IncludePaths...)
	bc.LibraryPaths = append(bc.LibraryPaths, pf.LibraryPaths...)
	bc.ModulePaths = append(bc.ModulePaths, pf.ModulePaths...)
	bc.Libraries = append(bc.Libraries, pf.Libraries...)
	return bc
}
