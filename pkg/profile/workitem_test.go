package profile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"xcalbuild/pkg/cdb"
	"xcalbuild/pkg/option"
)

func gccProfile() *Profile {
	p := &Profile{
		Schema: Schema{
			Aliases:             []string{"gcc", "cc"},
			CAliases:            []string{"gcc", "cc"},
			CxxAliases:          []string{"g++", "c++"},
			DefaultCommandKind:  "compile",
			OptionPrefix:        "-",
			SourceExtensions:    map[string]string{".c": "c", ".cc": "c++"},
			TargetExtensions:    map[string]string{".o": "object"},
		},
	}
	p.Options = []*option.Option{
		{Aliases: []string{"-c"}, Kind: option.Cmd, CommandKind: option.Compile},
		{Aliases: []string{"-o"}, Kind: option.Output, Formats: map[option.ArgFormat]bool{option.Space: true}},
		{Aliases: []string{"-g"}, Kind: option.Other},
		{Aliases: []string{"-m"}, Kind: option.Other},
		{Aliases: []string{"@"}, Kind: option.RespFile, Formats: map[option.ArgFormat]bool{option.Attached: true}},
	}
	p.Actionable = &Actionable{}
	return p
}

func TestParseWorkItemBasicCompile(t *testing.T) {
	p := gccProfile()
	entry := cdb.Entry{Directory: "/src", Arguments: []string{"gcc", "-c", "a.c", "-o", "a.o"}}
	item, err := ParseWorkItem(p, entry, nil)
	if err != nil {
		t.Fatal(err)
	}
	if item.Kind != option.Compile {
		t.Fatalf("kind = %v", item.Kind)
	}
	if len(item.Sources) != 1 || item.Sources[0].Path != "/src/a.c" {
		t.Fatalf("sources = %v", item.Sources)
	}
	if item.Target != "/src/a.o" {
		t.Fatalf("target = %q", item.Target)
	}
}

func TestParseWorkItemIdempotent(t *testing.T) {
	p := gccProfile()
	entry := cdb.Entry{Directory: "/src", Arguments: []string{"gcc", "-c", "a.c", "-o", "a.o"}}
	item1, err := ParseWorkItem(p, entry, nil)
	if err != nil {
		t.Fatal(err)
	}
	item2, err := ParseWorkItem(p, entry, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(item1, item2) {
		t.Fatalf("not idempotent: %+v vs %+v", item1, item2)
	}
}

func TestParseWorkItemResponseFileFromDisk(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rsp"), []byte("-c -g\n -m"), 0644); err != nil {
		t.Fatal(err)
	}
	p := gccProfile()
	entry := cdb.Entry{Directory: dir, Arguments: []string{"gcc", "@rsp"}}
	item, err := ParseWorkItem(p, entry, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-c", "-g", "-m"}
	if !reflect.DeepEqual(item.PPOptions, want) {
		t.Fatalf("got %v want %v", item.PPOptions, want)
	}
}

func TestParseWorkItemResponseFileCaptured(t *testing.T) {
	p := gccProfile()
	entry := cdb.Entry{Directory: "/src", Arguments: []string{"gcc", "@rsp"}, RespFile: "-c -g\n -m"}
	item, err := ParseWorkItem(p, entry, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-c", "-g", "-m"}
	if !reflect.DeepEqual(item.PPOptions, want) {
		t.Fatalf("got %v want %v", item.PPOptions, want)
	}
}

func TestClassifyBinaryFormatCxx(t *testing.T) {
	p := gccProfile()
	entry := cdb.Entry{Directory: "/src", Arguments: []string{"g++", "-c", "a.cc"}}
	item, err := ParseWorkItem(p, entry, nil)
	if err != nil {
		t.Fatal(err)
	}
	if item.Format != option.FormatCxx {
		t.Fatalf("format = %v", item.Format)
	}
}
