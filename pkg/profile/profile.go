// Package profile implements the tool profile (C2) and toolchain profile
// (C3) models: declarative per-tool specs loaded from JSON, a two-stage
// load so the prober can mutate the raw document between stages, and the
// command-line-to-Parsed-Work-Item classifier (§4.2/§4.4).
package profile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/easeway/langx.go/mapper"

	"xcalbuild/pkg/option"
)

// Actionable holds the materialized action-affected lists produced by
// load_actionable (§4.2 stage 2). Pre-include and system-include paths are
// completed relative to the profile directory.
type Actionable struct {
	CPrependPreprocessingOptions   []string
	CxxPrependPreprocessingOptions []string
	CAppendPreprocessingOptions    []string
	CxxAppendPreprocessingOptions  []string

	CPrependScanOptions   []string
	CxxPrependScanOptions []string

	CSystemIncludePaths   []string
	CxxSystemIncludePaths []string
	CPreIncludes          []string
	CxxPreIncludes        []string
}

// Profile is a loaded tool profile: the raw schema (kept around so the
// prober can mutate it between stages) plus, once LoadActionable has run,
// the materialized Actionable vectors.
type Profile struct {
	Path   string
	Dir    string
	Schema Schema

	Options []*option.Option

	// preprocessOption/outputOption/sysIncOption/preIncludeOption are the
	// first Option in Schema.Options of the matching Kind, used to render
	// sysinclude/preinclude paths and the preprocess/output flags when
	// emitting a preprocessing command line (§4.2 "Emit preprocessing options").
	preprocessOption *option.Option
	outputOption     *option.Option
	sysIncOption     *option.Option
	preIncludeOption *option.Option

	Actionable *Actionable
}

// PreprocessOption returns the tool's preprocess-only flag Option, or nil
// if the profile declares none (the prober skips such tools, §4.5 step 1).
func (p *Profile) PreprocessOption() *option.Option { return p.preprocessOption }

// OutputOption returns the tool's output-path Option, or nil.
func (p *Profile) OutputOption() *option.Option { return p.outputOption }

// Load parses and validates the tool profile JSON at path (§4.2 stage 1).
// A schema violation is fatal for this profile load (§7.i).
func Load(path string) (*Profile, error) {
	var ld mapper.Loader
	if err := ld.LoadFile(path); err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrIncorrectProfile, path, err)
	}
	var schema Schema
	m := mapper.Mapper{FieldTags: []string{"json", "map"}}
	if err := m.Map(&schema, ld.Map); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrIncorrectProfile, path, err)
	}

	p := &Profile{
		Path:   path,
		Dir:    filepath.Dir(path),
		Schema: schema,
	}
	if err := p.buildOptions(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIncorrectProfile, path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIncorrectProfile, path, err)
	}
	return p, nil
}

func (p *Profile) buildOptions() error {
	opts := make([]*option.Option, 0, len(p.Schema.Options))
	for _, os := range p.Schema.Options {
		opt, err := convertOption(os)
		if err != nil {
			return err
		}
		opts = append(opts, opt)
	}
	p.SetOptions(opts)
	return nil
}

// SetOptions installs p's resolved Option list, indexing the first
// Preprocess/Output/SysIncPath/PreInclude-kind option of each for use by
// EmitPreprocessingOptions. Exported so callers that build a Profile
// programmatically (tests, the prober's synthetic toolchains) don't need
// to go through profile JSON + Load to get a usable Profile.
func (p *Profile) SetOptions(opts []*option.Option) {
	p.Options = opts
	p.preprocessOption = nil
	p.outputOption = nil
	p.sysIncOption = nil
	p.preIncludeOption = nil
	for _, opt := range opts {
		switch opt.Kind {
		case option.Preprocess:
			if p.preprocessOption == nil {
				p.preprocessOption = opt
			}
		case option.Output:
			if p.outputOption == nil {
				p.outputOption = opt
			}
		case option.SysIncPath:
			if p.sysIncOption == nil {
				p.sysIncOption = opt
			}
		case option.PreInclude:
			if p.preIncludeOption == nil {
				p.preIncludeOption = opt
			}
		}
	}
}

// Validate checks the invariants from §3: non-empty alias list; arg-format
// set empty iff the option has no argument; every macro-probe action's
// config names a known actionable list.
func (p *Profile) Validate() error {
	for i, o := range p.Options {
		if len(o.Aliases) == 0 {
			return fmt.Errorf("option %d: empty alias list", i)
		}
	}
	for macro, table := range p.Schema.ProbeCMacros {
		for value, actions := range table {
			for _, a := range actions {
				if !isKnownActionableConfig(a.Config) {
					return fmt.Errorf("probeCMacros[%s][%s]: unknown config %q", macro, value, a.Config)
				}
			}
		}
	}
	for macro, table := range p.Schema.ProbeCxxMacros {
		for value, actions := range table {
			for _, a := range actions {
				if !isKnownActionableConfig(a.Config) {
					return fmt.Errorf("probeCxxMacros[%s][%s]: unknown config %q", macro, value, a.Config)
				}
			}
		}
	}
	return nil
}

func isKnownActionableConfig(name string) bool {
	switch name {
	case "cPrependPreprocessingOptions", "cxxPrependPreprocessingOptions",
		"cAppendPreprocessingOptions", "cxxAppendPreprocessingOptions",
		"cPrependScanOptions", "cxxPrependScanOptions",
		"cSystemIncludePaths", "cxxSystemIncludePaths",
		"cPreIncludes", "cxxPreIncludes":
		return true
	default:
		return false
	}
}

// LoadActionable materializes the action-affected lists (§4.2 stage 2).
// Must be called after the prober has applied any mutations to p.Schema.
func (p *Profile) LoadActionable() {
	a := &Actionable{
		CPrependPreprocessingOptions:   append([]string(nil), p.Schema.CPrependPreprocessingOptions...),
		CxxPrependPreprocessingOptions: append([]string(nil), p.Schema.CxxPrependPreprocessingOptions...),
		CAppendPreprocessingOptions:    append([]string(nil), p.Schema.CAppendPreprocessingOptions...),
		CxxAppendPreprocessingOptions:  append([]string(nil), p.Schema.CxxAppendPreprocessingOptions...),
		CPrependScanOptions:            append([]string(nil), p.Schema.CPrependScanOptions...),
		CxxPrependScanOptions:          append([]string(nil), p.Schema.CxxPrependScanOptions...),
	}
	a.CSystemIncludePaths = resolveAll(p.Dir, p.Schema.CSystemIncludePaths)
	a.CxxSystemIncludePaths = resolveAll(p.Dir, p.Schema.CxxSystemIncludePaths)
	a.CPreIncludes = resolveAll(p.Dir, p.Schema.CPreIncludes)
	a.CxxPreIncludes = resolveAll(p.Dir, p.Schema.CxxPreIncludes)
	p.Actionable = a
}

// PrependActionable appends value to the front of the named actionable list
// (used by the prober, §4.5 step 2, "prepended to the actionable list it
// names"). Must be called before LoadActionable, against the raw Schema.
func (p *Profile) PrependActionable(config string, value []string) error {
	switch config {
	case "cPrependPreprocessingOptions":
		p.Schema.CPrependPreprocessingOptions = append(append([]string(nil), value...), p.Schema.CPrependPreprocessingOptions...)
	case "cxxPrependPreprocessingOptions":
		p.Schema.CxxPrependPreprocessingOptions = append(append([]string(nil), value...), p.Schema.CxxPrependPreprocessingOptions...)
	case "cAppendPreprocessingOptions":
		p.Schema.CAppendPreprocessingOptions = append(append([]string(nil), value...), p.Schema.CAppendPreprocessingOptions...)
	case "cxxAppendPreprocessingOptions":
		p.Schema.CxxAppendPreprocessingOptions = append(append([]string(nil), value...), p.Schema.CxxAppendPreprocessingOptions...)
	case "cPrependScanOptions":
		p.Schema.CPrependScanOptions = append(append([]string(nil), value...), p.Schema.CPrependScanOptions...)
	case "cxxPrependScanOptions":
		p.Schema.CxxPrependScanOptions = append(append([]string(nil), value...), p.Schema.CxxPrependScanOptions...)
	case "cSystemIncludePaths":
		p.Schema.CSystemIncludePaths = append(append([]string(nil), value...), p.Schema.CSystemIncludePaths...)
	case "cxxSystemIncludePaths":
		p.Schema.CxxSystemIncludePaths = append(append([]string(nil), value...), p.Schema.CxxSystemIncludePaths...)
	case "cPreIncludes":
		p.Schema.CPreIncludes = append(append([]string(nil), value...), p.Schema.CPreIncludes...)
	case "cxxPreIncludes":
		p.Schema.CxxPreIncludes = append(append([]string(nil), value...), p.Schema.CxxPreIncludes...)
	default:
		return fmt.Errorf("unknown actionable config %q", config)
	}
	return nil
}

func resolveAll(dir string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = p
		} else {
			out[i] = filepath.Join(dir, p)
		}
	}
	return out
}

func convertOption(os OptionSchema) (*option.Option, error) {
	kind, err := parseKind(os.Kind)
	if err != nil {
		return nil, err
	}
	formats := map[option.ArgFormat]bool{}
	for _, f := range os.Formats {
		af, err := parseArgFormat(f)
		if err != nil {
			return nil, err
		}
		formats[af] = true
	}
	opt := &option.Option{
		Aliases: os.Aliases,
		Formats: formats,
		Kind:    kind,
	}
	if kind == option.Cmd {
		ck, err := parseCommandKind(os.CommandKind)
		if err != nil {
			return nil, err
		}
		opt.CommandKind = ck
	}
	if kind == option.Lang {
		langs := map[string]option.Format{}
		for k, v := range os.Languages {
			f, err := parseFormat(v)
			if err != nil {
				return nil, err
			}
			langs[k] = f
		}
		opt.Languages = langs
	}
	if kind == option.Scan {
		if os.ScanC != nil {
			rw, err := convertScanRewrite(*os.ScanC)
			if err != nil {
				return nil, err
			}
			opt.ScanC = rw
		}
		if os.ScanCxx != nil {
			rw, err := convertScanRewrite(*os.ScanCxx)
			if err != nil {
				return nil, err
			}
			opt.ScanCxx = rw
		}
	}
	return opt, nil
}

func convertScanRewrite(s ScanRewriteSchema) (option.ScanRewrite, error) {
	format := option.Attached
	if s.Format != "" {
		f, err := parseArgFormat(s.Format)
		if err != nil {
			return option.ScanRewrite{}, err
		}
		format = f
	}
	return option.ScanRewrite{ByValue: s.ByValue, Format: format}, nil
}

func parseKind(s string) (option.Kind, error) {
	switch strings.ToLower(s) {
	case "cmd":
		return option.Cmd, nil
	case "lang":
		return option.Lang, nil
	case "respfile":
		return option.RespFile, nil
	case "delete":
		return option.Delete, nil
	case "scan":
		return option.Scan, nil
	case "preprocess":
		return option.Preprocess, nil
	case "output":
		return option.Output, nil
	case "preinclude":
		return option.PreInclude, nil
	case "sysincpath":
		return option.SysIncPath, nil
	case "other", "":
		return option.Other, nil
	default:
		return 0, fmt.Errorf("unknown option kind %q", s)
	}
}

func parseArgFormat(s string) (option.ArgFormat, error) {
	switch strings.ToLower(s) {
	case "attached":
		return option.Attached, nil
	case "space":
		return option.Space, nil
	case "equal":
		return option.Equal, nil
	default:
		return 0, fmt.Errorf("unknown arg-format %q", s)
	}
}

func parseCommandKind(s string) (option.CommandKind, error) {
	switch strings.ToLower(s) {
	case "compile":
		return option.Compile, nil
	case "assemble":
		return option.Assemble, nil
	case "link":
		return option.Link, nil
	case "archive":
		return option.Archive, nil
	case "ignore":
		return option.Ignore, nil
	default:
		return 0, fmt.Errorf("unknown command kind %q", s)
	}
}

func parseFormat(s string) (option.Format, error) {
	switch strings.ToLower(s) {
	case "c":
		return option.FormatC, nil
	case "c++", "cxx", "cpp":
		return option.FormatCxx, nil
	case "preprocessed":
		return option.FormatPreprocessed, nil
	case "assembly":
		return option.FormatAssembly, nil
	case "object":
		return option.FormatObject, nil
	case "library":
		return option.FormatLibrary, nil
	case "executable":
		return option.FormatExecutable, nil
	case "by-extension", "":
		return option.FormatByExtension, nil
	default:
		return 0, fmt.Errorf("unknown format %q", s)
	}
}
