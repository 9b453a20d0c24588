// Package prober implements the toolchain prober (C5): for each distinct
// tool referenced in a trace, it synthesizes a probe source, invokes the
// tool in preprocess-only mode, and feeds any matched macro-value rules
// back onto the tool profile before load_actionable runs (§4.5).
package prober

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/profile"
)

const sentinelPrefix = "__XCAL__"

// Probe runs the prober over every distinct tool profile referenced by
// entries, mutating each profile's raw Schema in place via
// profile.Profile.PrependActionable. Call this before ToolchainProfile's
// LoadActionable so the mutations flow into the materialized vectors
// (§4.5 "runs before load_actionable").
func Probe(tc *profile.ToolchainProfile, entries []cdb.Entry, outDir string, warn profile.Warnf) error {
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}
	observed := observedBinaries(tc, entries)
	for entry, binary := range observed {
		if err := probeTool(entry, binary, outDir, warn); err != nil {
			warn("probe of %s failed: %v", binary, err)
		}
	}
	return nil
}

// observedBinaries returns, for each distinct ToolEntry referenced by
// entries, the first binary path that referenced it in trace order.
func observedBinaries(tc *profile.ToolchainProfile, entries []cdb.Entry) map[*profile.ToolEntry]string {
	seen := map[*profile.ToolEntry]string{}
	for _, e := range entries {
		if len(e.Arguments) == 0 {
			continue
		}
		tool, ok := tc.Lookup(e.Arguments[0])
		if !ok {
			continue
		}
		if _, ok := seen[tool]; !ok {
			seen[tool] = e.Arguments[0]
		}
	}
	return seen
}

func probeTool(entry *profile.ToolEntry, observedBinary, outDir string, warn profile.Warnf) error {
	p := entry.Profile
	if p.PreprocessOption() == nil {
		return nil
	}
	if len(p.Schema.ProbeCMacros) > 0 {
		binary := resolveProbeBinary(observedBinary, p.Schema.CAliases)
		if err := probeLanguage(p, binary, outDir, p.Schema.ProbeCMacros, "c", warn); err != nil {
			warn("C probe of %s failed: %v", binary, err)
		}
	}
	if len(p.Schema.ProbeCxxMacros) > 0 {
		binary := resolveProbeBinary(observedBinary, p.Schema.CxxAliases)
		if err := probeLanguage(p, binary, outDir, p.Schema.ProbeCxxMacros, "cxx", warn); err != nil {
			warn("C++ probe of %s failed: %v", binary, err)
		}
	}
	return nil
}

// resolveProbeBinary implements §4.5 step 1's alias substitution: if the
// observed binary doesn't already have one of wantAliases as its stem, look
// for a same-directory executable matching one of wantAliases (preserving
// the observed binary's own extension, for Windows's .exe-style binaries).
func resolveProbeBinary(observed string, wantAliases []string) string {
	if len(wantAliases) == 0 {
		return observed
	}
	stem := strings.TrimSuffix(filepath.Base(observed), filepath.Ext(observed))
	for _, alias := range wantAliases {
		if alias == stem {
			return observed
		}
	}
	dir := filepath.Dir(observed)
	ext := filepath.Ext(observed)
	for _, alias := range wantAliases {
		candidate := filepath.Join(dir, alias+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return observed
}

func probeLanguage(p *profile.Profile, binary, outDir string, macros map[string]map[string][]profile.ActionSchema, langTag string, warn profile.Warnf) error {
	probeFile, err := writeProbeSource(outDir, langTag, macros)
	if err != nil {
		return err
	}
	defer os.Remove(probeFile)

	outFile := filepath.Join(outDir, fmt.Sprintf("probe-%s.out", langTag))
	defer os.Remove(outFile)

	args := []string{}
	args = append(args, p.PreprocessOption().Render("")...)
	if out := p.OutputOption(); out != nil {
		args = append(args, out.Render(outFile)...)
	}
	args = append(args, probeFile)

	cmd := exec.Command(binary, args...)
	cmd.Dir = outDir
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("invoking %s: %w", binary, err)
	}

	f, err := os.Open(outFile)
	if err != nil {
		return fmt.Errorf("reading probe output: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, sentinelPrefix) {
			continue
		}
		rest := strings.TrimPrefix(line, sentinelPrefix)
		fields := strings.SplitN(strings.TrimSpace(rest), " ", 2)
		if len(fields) != 2 {
			continue
		}
		macroName := strings.TrimSpace(fields[0])
		value := strings.TrimSpace(fields[1])
		table, ok := macros[macroName]
		if !ok {
			continue
		}
		actions, ok := table[value]
		if !ok {
			continue
		}
		for _, action := range actions {
			if err := p.PrependActionable(action.Config, action.Value); err != nil {
				warn("probe action for %s: %v", macroName, err)
			}
		}
	}
	return scanner.Err()
}

func writeProbeSource(outDir, langTag string, macros map[string]map[string][]profile.ActionSchema) (string, error) {
	f, err := os.CreateTemp(outDir, "xcalprobe-"+langTag+"-*.c")
	if err != nil {
		return "", err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for macro := range macros {
		fmt.Fprintf(w, "%s%s %s\n", sentinelPrefix, macro, macro)
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return f.Name(), nil
}
