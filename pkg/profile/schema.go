package profile

// Schema is the on-disk JSON shape of a tool profile (§6 "Tool profile
// JSON"), decoded via mapper.Loader + mapper.Mapper the same way the
// teacher's pkg/repos/meta decodes REPOS.yaml/project.yaml.
type Schema struct {
	Aliases    []string `json:"aliases"`
	CAliases   []string `json:"cAliases"`
	CxxAliases []string `json:"cxxAliases"`

	// DefaultCommandKind is one of compile/assemble/link/archive/ignore.
	DefaultCommandKind string `json:"defaultCommandKind"`
	OptionPrefix        string `json:"optionPrefix"`

	Options []OptionSchema `json:"options"`

	// SourceExtensions/TargetExtensions map a file extension (including the
	// leading dot) to a format name.
	SourceExtensions map[string]string `json:"sourceExtensions"`
	TargetExtensions map[string]string `json:"targetExtensions"`

	TextSubstitutions []SubstitutionSchema `json:"textSubstitutions"`

	CPrependPreprocessingOptions   []string `json:"cPrependPreprocessingOptions"`
	CxxPrependPreprocessingOptions []string `json:"cxxPrependPreprocessingOptions"`
	CAppendPreprocessingOptions    []string `json:"cAppendPreprocessingOptions"`
	CxxAppendPreprocessingOptions  []string `json:"cxxAppendPreprocessingOptions"`

	CPrependScanOptions   []string `json:"cPrependScanOptions"`
	CxxPrependScanOptions []string `json:"cxxPrependScanOptions"`

	CPreIncludes   []string `json:"cPreIncludes"`
	CxxPreIncludes []string `json:"cxxPreIncludes"`

	CSystemIncludePaths   []string `json:"cSystemIncludePaths"`
	CxxSystemIncludePaths []string `json:"cxxSystemIncludePaths"`

	// ProbeCMacros/ProbeCxxMacros: macro-name -> expected-value -> actions.
	ProbeCMacros   map[string]map[string][]ActionSchema `json:"probeCMacros"`
	ProbeCxxMacros map[string]map[string][]ActionSchema `json:"probeCxxMacros"`
}

// OptionSchema is one entry of Schema.Options.
type OptionSchema struct {
	Aliases []string `json:"aliases"`
	// Formats: subset of "attached", "space", "equal".
	Formats []string `json:"formats,omitempty"`
	// Kind: one of cmd, lang, respfile, delete, scan, preprocess, output,
	// preinclude, sysincpath, other.
	Kind string `json:"kind"`

	// CommandKind is set when Kind == "cmd": compile/assemble/link/archive/ignore.
	CommandKind string `json:"commandKind,omitempty"`
	// Languages is set when Kind == "lang": argument -> format name.
	Languages map[string]string `json:"languages,omitempty"`
	// ScanC/ScanCxx are set when Kind == "scan".
	ScanC   *ScanRewriteSchema `json:"scanC,omitempty"`
	ScanCxx *ScanRewriteSchema `json:"scanCxx,omitempty"`
}

// ScanRewriteSchema is the per-language scan rewrite table for a Scan option.
type ScanRewriteSchema struct {
	ByValue map[string][]string `json:"byValue,omitempty"`
	// Format: one of "attached", "space", "equal"; defaults to "attached".
	Format string `json:"format,omitempty"`
}

// SubstitutionSchema is one entry of Schema.TextSubstitutions, applied in
// declared order to the full preprocessed text.
type SubstitutionSchema struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	// Regex selects a full-text regex replace with back-references; when
	// false the pattern is replaced literally, all occurrences.
	Regex bool `json:"regex,omitempty"`
}

// ActionSchema is one macro-probe action: prepend Value onto the actionable
// list named by Config when the macro expands to the expected value.
type ActionSchema struct {
	Config string   `json:"config"`
	Action string   `json:"action"`
	Value  []string `json:"value"`
}

// ToolchainSchema is the on-disk JSON shape of a toolchain profile (§6
// "Toolchain profile JSON").
type ToolchainSchema struct {
	Tools []ToolEntrySchema `json:"tools"`
}

// ToolEntrySchema is one entry of ToolchainSchema.Tools.
type ToolEntrySchema struct {
	Profile string   `json:"profile"`
	Aliases []string `json:"aliases,omitempty"`
	Origin  []string `json:"origin,omitempty"`
}
