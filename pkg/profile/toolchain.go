package profile

import (
	"fmt"
	"path/filepath"

	"github.com/easeway/langx.go/mapper"
)

// ToolEntry is one tool owned by a ToolchainProfile (§3 "Toolchain
// Profile"): the loaded profile plus any per-tool alias override and origin
// tags.
type ToolEntry struct {
	RelPath string
	Aliases []string
	Origin  []string
	Profile *Profile
}

// aliases returns the effective alias list for binary routing: the
// per-tool override when present, otherwise the profile's own generic
// aliases.
func (t *ToolEntry) aliases() []string {
	if len(t.Aliases) > 0 {
		return t.Aliases
	}
	return t.Profile.Schema.Aliases
}

// ToolchainProfile is an ordered set of tool profiles with binary-name
// routing (C3).
type ToolchainProfile struct {
	Path  string
	Tools []*ToolEntry

	byBinary map[string]*ToolEntry
}

// LoadToolchain parses the toolchain profile JSON at path and loads each
// referenced tool profile, relative to path's directory (§6 "Toolchain
// profile JSON").
func LoadToolchain(path string) (*ToolchainProfile, error) {
	var ld mapper.Loader
	if err := ld.LoadFile(path); err != nil {
		return nil, fmt.Errorf("%w: load %s: %v", ErrIncorrectProfile, path, err)
	}
	var schema ToolchainSchema
	m := mapper.Mapper{FieldTags: []string{"json", "map"}}
	if err := m.Map(&schema, ld.Map); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrIncorrectProfile, path, err)
	}

	dir := filepath.Dir(path)
	var entries []*ToolEntry
	for _, ts := range schema.Tools {
		profilePath := ts.Profile
		if !filepath.IsAbs(profilePath) {
			profilePath = filepath.Join(dir, profilePath)
		}
		prof, err := Load(profilePath)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &ToolEntry{RelPath: ts.Profile, Aliases: ts.Aliases, Origin: ts.Origin, Profile: prof})
	}
	tc, err := NewToolchain(entries)
	if err != nil {
		return nil, err
	}
	tc.Path = path
	return tc, nil
}

// NewToolchain builds a ToolchainProfile from already-loaded tool entries,
// indexing the binary-name routing table (§4.3). Used directly by callers
// that construct toolchains programmatically (e.g. tests) rather than from a
// toolchain profile JSON file.
func NewToolchain(entries []*ToolEntry) (*ToolchainProfile, error) {
	tc := &ToolchainProfile{byBinary: map[string]*ToolEntry{}}
	for _, entry := range entries {
		tc.Tools = append(tc.Tools, entry)
		for _, alias := range entry.aliases() {
			key := stemOf(alias)
			if existing, ok := tc.byBinary[key]; ok && existing != entry {
				return nil, fmt.Errorf("%w: %q", ErrAmbiguousBinary, key)
			}
			tc.byBinary[key] = entry
		}
	}
	return tc, nil
}

// LoadActionable runs Profile.LoadActionable on every owned tool profile.
func (tc *ToolchainProfile) LoadActionable() {
	for _, t := range tc.Tools {
		t.Profile.LoadActionable()
	}
}

// Lookup resolves a traced binary name to its tool profile (§4.3): the stem
// of argv[0] with any executable extension stripped, case-folded on
// Windows.
func (tc *ToolchainProfile) Lookup(binary string) (*ToolEntry, bool) {
	entry, ok := tc.byBinary[stemOf(binary)]
	return entry, ok
}

// Origins returns the origin-tag list declared for a tool entry, used by
// the build processor to vote on the best-matching toolchain (§4.3, §4.7).
func (t *ToolEntry) Origins() []string {
	return t.Origin
}

