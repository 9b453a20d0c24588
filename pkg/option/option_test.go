package option

import (
	"reflect"
	"testing"
)

func TestMatchSpaceFormat(t *testing.T) {
	o := &Option{
		Aliases: []string{"-I"},
		Formats: map[ArgFormat]bool{Space: true, Attached: true},
		Kind:    Other,
	}
	consumed, alias, arg := o.Match([]string{"-I", "/usr/include"}, "-")
	if consumed != 2 || alias != "-I" || arg != "/usr/include" {
		t.Fatalf("got (%d,%q,%q)", consumed, alias, arg)
	}
}

func TestMatchSpaceFormatNoArgWhenNextIsOption(t *testing.T) {
	o := &Option{
		Aliases: []string{"-I"},
		Formats: map[ArgFormat]bool{Space: true},
		Kind:    Other,
	}
	consumed, alias, arg := o.Match([]string{"-I", "-c"}, "-")
	if consumed != 1 || alias != "-I" || arg != "" {
		t.Fatalf("got (%d,%q,%q)", consumed, alias, arg)
	}
}

func TestMatchAttachedFormat(t *testing.T) {
	o := &Option{
		Aliases: []string{"-I"},
		Formats: map[ArgFormat]bool{Attached: true},
		Kind:    Other,
	}
	consumed, alias, arg := o.Match([]string{"-I/usr/include"}, "-")
	if consumed != 1 || alias != "-I" || arg != "/usr/include" {
		t.Fatalf("got (%d,%q,%q)", consumed, alias, arg)
	}
}

func TestMatchEqualFormat(t *testing.T) {
	o := &Option{
		Aliases: []string{"--std"},
		Formats: map[ArgFormat]bool{Equal: true},
		Kind:    Other,
	}
	consumed, alias, arg := o.Match([]string{"--std=gnu99"}, "-")
	if consumed != 1 || alias != "--std" || arg != "gnu99" {
		t.Fatalf("got (%d,%q,%q)", consumed, alias, arg)
	}
}

func TestMatchNoArgument(t *testing.T) {
	o := &Option{
		Aliases: []string{"-c"},
		Kind:    Cmd,
	}
	consumed, alias, _ := o.Match([]string{"-c", "foo.c"}, "-")
	if consumed != 1 || alias != "-c" {
		t.Fatalf("got (%d,%q)", consumed, alias)
	}
}

func TestRenderRoundTripSpace(t *testing.T) {
	o := &Option{
		Aliases: []string{"-I"},
		Formats: map[ArgFormat]bool{Space: true},
	}
	got := o.Render("/usr/include")
	want := []string{"-I", "/usr/include"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRenderRoundTripEqual(t *testing.T) {
	o := &Option{
		Aliases: []string{"--std"},
		Formats: map[ArgFormat]bool{Equal: true},
	}
	got := o.Render("gnu99")
	want := []string{"--std=gnu99"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestRenderRoundTripAttached(t *testing.T) {
	o := &Option{
		Aliases: []string{"-I"},
		Formats: map[ArgFormat]bool{Attached: true},
	}
	got := o.Render("/usr/include")
	want := []string{"-I/usr/include"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestProcessCmdSetsKindAndCopies(t *testing.T) {
	o := &Option{Kind: Cmd, CommandKind: Compile}
	st := &ParserState{}
	if copy := o.Process("", st); !copy {
		t.Fatal("expected copy=true")
	}
	if st.Kind != Compile {
		t.Fatalf("kind = %v", st.Kind)
	}
}

func TestProcessLangRefinesFormatWithoutCopy(t *testing.T) {
	o := &Option{Kind: Lang, Languages: map[string]Format{"c++": FormatCxx}}
	st := &ParserState{}
	if copy := o.Process("c++", st); copy {
		t.Fatal("expected copy=false")
	}
	if st.Format != FormatCxx {
		t.Fatalf("format = %v", st.Format)
	}
}

func TestProcessOutputSetsTarget(t *testing.T) {
	o := &Option{Kind: Output}
	st := &ParserState{Dir: "/work"}
	o.Process("out.o", st)
	if st.Target != "/work/out.o" {
		t.Fatalf("target = %q", st.Target)
	}
}

func TestProcessScanAppendsToBothLanguagesUsingCanonicalAliasByDefault(t *testing.T) {
	o := &Option{Kind: Scan, Aliases: []string{"-Wall"}}
	st := &ParserState{}
	o.Process("", st)
	if len(st.CScanOpts) != 1 || st.CScanOpts[0] != "-Wall" {
		t.Fatalf("CScanOpts = %v", st.CScanOpts)
	}
	if len(st.CxxScanOpts) != 1 || st.CxxScanOpts[0] != "-Wall" {
		t.Fatalf("CxxScanOpts = %v", st.CxxScanOpts)
	}
}

func TestProcessScanAppliesConfiguredRewrite(t *testing.T) {
	o := &Option{
		Kind:    Scan,
		Aliases: []string{"-std"},
		ScanC:   ScanRewrite{ByValue: map[string][]string{"c99": {"-std=gnu99"}}},
	}
	st := &ParserState{}
	o.Process("c99", st)
	if !reflect.DeepEqual(st.CScanOpts, []string{"-std=gnu99"}) {
		t.Fatalf("CScanOpts = %v", st.CScanOpts)
	}
}

func TestProcessDoesNotCopyForNonCopyKinds(t *testing.T) {
	for _, k := range []Kind{RespFile, Delete, Preprocess} {
		o := &Option{Kind: k}
		st := &ParserState{}
		if copy := o.Process("x", st); copy {
			t.Fatalf("kind %v: expected copy=false", k)
		}
	}
}
