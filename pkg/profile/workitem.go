package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/option"
)

// SourceRef is one (path, format) pair of a Parsed Work Item's sources.
type SourceRef struct {
	Path   string
	Format option.Format
}

// WorkItem is the Parsed Work Item produced by classification (§3, §4.2,
// §4.4).
type WorkItem struct {
	Kind    option.CommandKind
	Binary  string
	Dir     string
	Sources []SourceRef
	Target  string
	Format  option.Format

	PPOptions      []string
	CScanOptions   []string
	CxxScanOptions []string
}

// Warnf is a minimal logging seam so ParseWorkItem can report non-fatal
// conditions (§7.iv "response-file missing", and the unknown-token
// pass-through warning in §4.2 step 4) without importing a concrete logger.
type Warnf func(format string, args ...interface{})

func noopWarnf(string, ...interface{}) {}

// ParseWorkItem turns one compile-database entry into a Parsed Work Item,
// using p as its tool profile (§4.2 "Parse a work item"). warn may be nil.
func ParseWorkItem(p *Profile, entry cdb.Entry, warn Warnf) (*WorkItem, error) {
	if warn == nil {
		warn = noopWarnf
	}
	if len(entry.Arguments) == 0 {
		return nil, fmt.Errorf("entry has no arguments")
	}

	args, err := unfoldRespFile(p, entry, warn)
	if err != nil {
		return nil, err
	}

	st := &option.ParserState{
		Dir: entry.Directory,
	}
	binary := args[0]
	st.Kind = p.defaultCommandKind()
	st.Format = classifyBinaryFormat(p, binary)

	if p.Actionable != nil {
		st.CScanOpts = append(st.CScanOpts, p.Actionable.CPrependScanOptions...)
		st.CxxScanOpts = append(st.CxxScanOpts, p.Actionable.CxxPrependScanOptions...)
	}

	item := &WorkItem{Binary: binary, Dir: entry.Directory}

	tokens := args[1:]
	for i := 0; i < len(tokens); {
		remaining := tokens[i:]
		matched := false
		for _, opt := range p.Options {
			consumed, _, arg := opt.Match(remaining, p.Schema.OptionPrefix)
			if consumed == 0 {
				continue
			}
			matched = true
			copy := opt.Process(arg, st)
			if copy {
				item.PPOptions = append(item.PPOptions, remaining[:consumed]...)
			}
			i += consumed
			if st.Kind == option.Ignore {
				item.Kind = option.Ignore
				item.Target = st.Target
				item.Format = st.Format
				item.CScanOptions = st.CScanOpts
				item.CxxScanOptions = st.CxxScanOpts
				return item, nil
			}
			break
		}
		if matched {
			continue
		}

		token := remaining[0]
		switch {
		case p.Schema.OptionPrefix != "" && strings.HasPrefix(token, p.Schema.OptionPrefix):
			item.PPOptions = append(item.PPOptions, token)
		case st.Target == "" && len(p.Schema.TargetExtensions) > 0 && hasExtIn(token, p.Schema.TargetExtensions):
			st.Target = joinDir(entry.Directory, token)
		case hasExtIn(token, p.Schema.SourceExtensions):
			format := st.Format
			if name, ok := p.Schema.SourceExtensions[ext(token)]; ok && st.Format == option.FormatByExtension {
				if f, ferr := parseFormat(name); ferr == nil {
					format = f
				}
			}
			item.Sources = append(item.Sources, SourceRef{Path: joinDir(entry.Directory, token), Format: format})
		case token != "":
			warn("unrecognized token %q passed through as preprocessing option", token)
			item.PPOptions = append(item.PPOptions, token)
		}
		i++
	}

	item.Kind = st.Kind
	item.Target = st.Target
	item.Format = st.Format
	item.CScanOptions = st.CScanOpts
	item.CxxScanOptions = st.CxxScanOpts
	return item, nil
}

func (p *Profile) defaultCommandKind() option.CommandKind {
	ck, err := parseCommandKind(p.Schema.DefaultCommandKind)
	if err != nil {
		return option.Compile
	}
	return ck
}

func classifyBinaryFormat(p *Profile, binary string) option.Format {
	stem := stemOf(binary)
	if matchesAny(stem, p.Schema.CAliases) {
		return option.FormatC
	}
	if matchesAny(stem, p.Schema.CxxAliases) {
		return option.FormatCxx
	}
	return option.FormatByExtension
}

func stemOf(binary string) string {
	base := filepath.Base(binary)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if runtime.GOOS == "windows" {
		base = strings.ToLower(base)
	}
	return base
}

func matchesAny(stem string, aliases []string) bool {
	for _, a := range aliases {
		candidate := a
		if runtime.GOOS == "windows" {
			candidate = strings.ToLower(candidate)
		}
		if candidate == stem {
			return true
		}
	}
	return false
}

func ext(path string) string {
	return filepath.Ext(path)
}

func hasExtIn(path string, table map[string]string) bool {
	_, ok := table[ext(path)]
	return ok
}

func joinDir(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// unfoldRespFile implements §4.2 step 1: find the first token matching a
// RespFile-kind option, resolve its body (captured, or read from disk
// relative to entry.Directory), split on whitespace, and splice the
// resulting tokens into argv in place of the matched argument. A missing
// response file is a warning (§7.iv); processing continues with the
// response-file argument simply dropped.
func unfoldRespFile(p *Profile, entry cdb.Entry, warn Warnf) ([]string, error) {
	args := entry.Arguments
	for i := 1; i < len(args); i++ {
		for _, opt := range p.Options {
			if opt.Kind != option.RespFile {
				continue
			}
			consumed, _, arg := opt.Match(args[i:], p.Schema.OptionPrefix)
			if consumed == 0 {
				continue
			}
			body := entry.RespFile
			if body == "" {
				fn := arg
				if !filepath.IsAbs(fn) {
					fn = filepath.Join(entry.Directory, fn)
				}
				data, err := os.ReadFile(fn)
				if err != nil {
					warn("response file %q missing: %v", fn, err)
					out := append([]string(nil), args[:i]...)
					out = append(out, args[i+consumed:]...)
					return out, nil
				}
				body = string(data)
			}
			tokens := cdb.SplitRespFileBody(body)
			out := append([]string(nil), args[:i]...)
			out = append(out, tokens...)
			out = append(out, args[i+consumed:]...)
			return out, nil
		}
	}
	return args, nil
}

// EmitPreprocessingOptions builds the full option list for preprocessing a
// single source (§4.2 "Emit preprocessing options"): language prepends,
// system includes, pre-includes, the collected pp-options, language
// appends, the preprocess flag, then the output flag pointing at tmpOutput.
func EmitPreprocessingOptions(p *Profile, item *WorkItem, src SourceRef, tmpOutput string) []string {
	isC := src.Format == option.FormatC || (src.Format == option.FormatByExtension && item.Format == option.FormatC)
	var opts []string
	a := p.Actionable
	if a != nil {
		if isC {
			opts = append(opts, a.CPrependPreprocessingOptions...)
		} else {
			opts = append(opts, a.CxxPrependPreprocessingOptions...)
		}
	}
	if a != nil {
		sysIncs := a.CxxSystemIncludePaths
		preIncs := a.CxxPreIncludes
		if isC {
			sysIncs = a.CSystemIncludePaths
			preIncs = a.CPreIncludes
		}
		for _, inc := range sysIncs {
			opts = append(opts, renderWith(p.sysIncOption, inc)...)
		}
		for _, inc := range preIncs {
			opts = append(opts, renderWith(p.preIncludeOption, inc)...)
		}
	}
	opts = append(opts, item.PPOptions...)
	if a != nil {
		if isC {
			opts = append(opts, a.CAppendPreprocessingOptions...)
		} else {
			opts = append(opts, a.CxxAppendPreprocessingOptions...)
		}
	}
	if p.preprocessOption != nil {
		opts = append(opts, p.preprocessOption.Render("")...)
	}
	if p.outputOption != nil {
		opts = append(opts, p.outputOption.Render(tmpOutput)...)
	}
	return opts
}

func renderWith(opt *option.Option, arg string) []string {
	if opt == nil {
		return []string{arg}
	}
	return opt.Render(arg)
}
