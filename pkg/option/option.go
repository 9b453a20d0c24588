// Package option implements the tagged-union option model used by tool
// profiles to describe and parse a single compiler/linker/assembler
// command-line flag.
package option

import "strings"

// Kind tags the type-specific behavior of an Option.
type Kind int

const (
	// Cmd sets the parser's work-item kind (compile/assemble/link/archive/ignore).
	Cmd Kind = iota
	// Lang maps an argument (e.g. a language name) to a Format via the
	// option's Languages table.
	Lang
	// RespFile marks the option that introduces a response file.
	RespFile
	// Delete marks an option to be dropped entirely (neither copied nor processed further).
	Delete
	// Scan marks an option that must be forwarded to the downstream scanner,
	// possibly rewritten per source language.
	Scan
	// Preprocess marks the tool's "preprocess only" flag.
	Preprocess
	// Output sets the parser's target path.
	Output
	// PreInclude marks a forced pre-include option; copied verbatim.
	PreInclude
	// SysIncPath marks a system-include-path option; copied verbatim.
	SysIncPath
	// Other is copied verbatim with no side effect beyond that.
	Other
)

// ArgFormat is one of the ways an option's argument can appear next to it.
type ArgFormat int

const (
	// Attached: -Ipath
	Attached ArgFormat = iota
	// Space: -I path
	Space
	// Equal: -I=path
	Equal
)

// Format is the default-format classification carried by a Parsed Work Item
// and by Lang options' extension tables.
type Format int

const (
	FormatUnknown Format = iota
	FormatC
	FormatCxx
	FormatPreprocessed
	FormatAssembly
	FormatObject
	FormatLibrary
	FormatExecutable
	FormatByExtension
)

// CommandKind is the work-item kind a Cmd option assigns.
type CommandKind int

const (
	Compile CommandKind = iota
	Assemble
	Link
	Archive
	Ignore
)

// String names the kind, used as a per-work-item logger prefix.
func (k CommandKind) String() string {
	switch k {
	case Compile:
		return "compile"
	case Assemble:
		return "assemble"
	case Link:
		return "link"
	case Archive:
		return "archive"
	case Ignore:
		return "ignore"
	default:
		return "unknown"
	}
}

// ScanRewrite is the per-language rewrite table entry for a Scan option: the
// argument value maps to a replacement token list to append to the relevant
// scan-options list. An empty map means "always re-emit the canonical alias".
type ScanRewrite struct {
	// ByValue maps an observed argument value to its replacement tokens.
	// A nil/missing entry means: re-emit the canonical alias for that value.
	ByValue map[string][]string
	// Format controls how the (possibly rewritten) scan option is rendered.
	Format ArgFormat
}

// Option is the tagged-union command-line option description (C1).
type Option struct {
	// Aliases lists the option's recognized spellings; the first is canonical.
	Aliases []string
	// Formats is the set of accepted arg-formats, evaluated in the order
	// No-argument, Space, Equal, Attached.
	Formats map[ArgFormat]bool

	Kind Kind

	// Cmd payload.
	CommandKind CommandKind
	// Lang payload: argument -> format.
	Languages map[string]Format
	// Scan payload.
	ScanC   ScanRewrite
	ScanCxx ScanRewrite
}

// HasArgument reports whether this option ever takes an argument.
func (o *Option) HasArgument() bool {
	return len(o.Formats) > 0
}

// ParserState is the mutable state Option.Process/Match act on. It mirrors
// the per-invocation accumulator threaded through tool-profile parsing.
type ParserState struct {
	Kind   CommandKind
	Format Format
	Dir    string
	Target string

	PPOptions   []string
	CScanOpts   []string
	CxxScanOpts []string
}

// Match attempts to recognize input[0] (and possibly input[1]) as this
// option. It returns the number of tokens consumed (0 if no match), the
// matched alias, and the extracted argument (empty if the option takes no
// argument or none was supplied).
//
// Evaluated in order: no-argument, Space, Equal, Attached — matching §4.1.
func (o *Option) Match(input []string, optionPrefix string) (consumed int, alias string, arg string) {
	if len(input) == 0 {
		return 0, "", ""
	}
	token := input[0]

	if !o.HasArgument() {
		if a, ok := matchAlias(o.Aliases, token); ok {
			return 1, a, ""
		}
		return 0, "", ""
	}

	if o.Formats[Space] {
		if a, ok := matchAlias(o.Aliases, token); ok {
			if len(input) > 1 && !strings.HasPrefix(input[1], optionPrefix) {
				return 2, a, input[1]
			}
			return 1, a, ""
		}
	}

	if o.Formats[Equal] {
		if idx := strings.IndexByte(token, '='); idx >= 0 {
			if a, ok := matchAlias(o.Aliases, token[:idx]); ok {
				return 1, a, token[idx+1:]
			}
		}
	}

	if o.Formats[Attached] {
		for _, a := range o.Aliases {
			if strings.HasPrefix(token, a) && len(token) > len(a) {
				return 1, a, token[len(a):]
			}
		}
	}

	return 0, "", ""
}

func matchAlias(aliases []string, token string) (string, bool) {
	for _, a := range aliases {
		if a == token {
			return a, true
		}
	}
	return "", false
}

// Process applies this option's type-specific effect to state and reports
// whether the option text should be copied into state.PPOptions.
func (o *Option) Process(arg string, state *ParserState) (copy bool) {
	switch o.Kind {
	case Cmd:
		state.Kind = o.CommandKind
		return true
	case Lang:
		if f, ok := o.Languages[arg]; ok {
			state.Format = f
		}
		return false
	case RespFile, Delete, Preprocess:
		return false
	case Scan:
		rewriteTo(&state.CScanOpts, o.ScanC, o.Aliases[0], arg)
		rewriteTo(&state.CxxScanOpts, o.ScanCxx, o.Aliases[0], arg)
		return true
	case Output:
		state.Target = joinPath(state.Dir, arg)
		return false
	case PreInclude, SysIncPath, Other:
		return true
	default:
		return true
	}
}

func rewriteTo(list *[]string, rw ScanRewrite, canonicalAlias, arg string) {
	if rw.ByValue != nil {
		if tokens, ok := rw.ByValue[arg]; ok {
			*list = append(*list, tokens...)
			return
		}
	}
	*list = append(*list, renderTokens(canonicalAlias, arg, rw.Format)...)
}

// Render produces the token sequence used when re-invoking the compiler, the
// inverse of Match: [alias], [alias, argument], [alias=argument], or
// [alias+argument] depending on format.
func (o *Option) Render(arg string) []string {
	canonical := ""
	if len(o.Aliases) > 0 {
		canonical = o.Aliases[0]
	}
	if !o.HasArgument() {
		return []string{canonical}
	}
	format := Attached
	for _, f := range []ArgFormat{Attached, Space, Equal} {
		if o.Formats[f] {
			format = f
			break
		}
	}
	return renderTokens(canonical, arg, format)
}

// renderTokens renders a single alias/argument pair per format: Space
// produces two tokens, Equal and Attached produce one joined token.
func renderTokens(alias, arg string, format ArgFormat) []string {
	switch format {
	case Space:
		return []string{alias, arg}
	case Equal:
		return []string{alias + "=" + arg}
	default: // Attached
		return []string{alias + arg}
	}
}

func joinPath(dir, p string) string {
	if p == "" || isAbs(p) {
		return p
	}
	if dir == "" {
		return p
	}
	sep := "/"
	if strings.HasSuffix(dir, sep) {
		return dir + p
	}
	return dir + sep + p
}

func isAbs(p string) bool {
	return strings.HasPrefix(p, "/") || (len(p) > 2 && p[1] == ':')
}
