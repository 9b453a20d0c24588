package prober

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/option"
	"xcalbuild/pkg/profile"
)

// fakeCompiler writes a shell script standing in for a real compiler: it
// copies the sentinel lines of its input file argument to the -o target,
// substituting each macro name for a fixed expansion, the way a real
// preprocessor would expand __XCAL__M's trailing "M" token.
func fakeCompiler(t *testing.T, dir, expansion string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler script requires a POSIX shell")
	}
	path := filepath.Join(dir, "fakecc")
	script := "#!/bin/sh\n" +
		"out=\"\"\n" +
		"in=\"\"\n" +
		"while [ $# -gt 0 ]; do\n" +
		"  case \"$1\" in\n" +
		"    -o) shift; out=\"$1\" ;;\n" +
		"    -E) ;;\n" +
		"    *) in=\"$1\" ;;\n" +
		"  esac\n" +
		"  shift\n" +
		"done\n" +
		"sed 's/\\(__XCAL__[A-Za-z_]*\\) .*/\\1 " + expansion + "/' \"$in\" > \"$out\"\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func probeProfile(binary string) *profile.Profile {
	p := &profile.Profile{
		Schema: profile.Schema{
			ProbeCMacros: map[string]map[string][]profile.ActionSchema{
				"__STDC_VERSION__": {
					"199901L": {{Config: "cPrependScanOptions", Action: "prepend", Value: []string{"-std=gnu99"}}},
				},
			},
		},
	}
	p.SetOptions([]*option.Option{
		{Aliases: []string{"-E"}, Kind: option.Preprocess},
		{Aliases: []string{"-o"}, Kind: option.Output, Formats: map[option.ArgFormat]bool{option.Space: true}},
	})
	if err := p.Validate(); err != nil {
		panic(err)
	}
	return p
}

func TestProbeAppliesMatchedMacroAction(t *testing.T) {
	dir := t.TempDir()
	bin := fakeCompiler(t, dir, "199901L")
	p := probeProfile(bin)
	entry := &profile.ToolEntry{Profile: p, Aliases: []string{filepath.Base(bin)}}
	tc, err := profile.NewToolchain([]*profile.ToolEntry{entry})
	if err != nil {
		t.Fatal(err)
	}
	entries := []cdb.Entry{{Directory: dir, Arguments: []string{bin, "-c", "a.c"}}}

	if err := Probe(tc, entries, dir, nil); err != nil {
		t.Fatal(err)
	}
	p.LoadActionable()
	if len(p.Actionable.CPrependScanOptions) == 0 || p.Actionable.CPrependScanOptions[0] != "-std=gnu99" {
		t.Fatalf("got %v", p.Actionable.CPrependScanOptions)
	}
}

func TestProbeSkippedWhenNoPreprocessOption(t *testing.T) {
	p := &profile.Profile{}
	entry := &profile.ToolEntry{Profile: p, Aliases: []string{"cc"}}
	tc, err := profile.NewToolchain([]*profile.ToolEntry{entry})
	if err != nil {
		t.Fatal(err)
	}
	entries := []cdb.Entry{{Directory: t.TempDir(), Arguments: []string{"cc", "-c", "a.c"}}}
	if err := Probe(tc, entries, t.TempDir(), nil); err != nil {
		t.Fatal(err)
	}
	if p.Actionable != nil {
		t.Fatal("expected no mutation")
	}
}
