package profile

import (
	"reflect"
	"testing"
)

func TestLoadActionableResolvesPathsRelativeToProfileDir(t *testing.T) {
	p := &Profile{
		Dir: "/profiles/gcc",
		Schema: Schema{
			CSystemIncludePaths: []string{"include", "/abs/include"},
		},
	}
	p.LoadActionable()
	want := []string{"/profiles/gcc/include", "/abs/include"}
	if !reflect.DeepEqual(p.Actionable.CSystemIncludePaths, want) {
		t.Fatalf("got %v want %v", p.Actionable.CSystemIncludePaths, want)
	}
}

func TestPrependActionableOntoUnknownConfigErrors(t *testing.T) {
	p := &Profile{}
	if err := p.PrependActionable("bogus", []string{"x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPrependActionableThenLoadActionable(t *testing.T) {
	p := &Profile{
		Schema: Schema{CPrependScanOptions: []string{"-existing"}},
	}
	if err := p.PrependActionable("cPrependScanOptions", []string{"-std=gnu99"}); err != nil {
		t.Fatal(err)
	}
	p.LoadActionable()
	want := []string{"-std=gnu99", "-existing"}
	if !reflect.DeepEqual(p.Actionable.CPrependScanOptions, want) {
		t.Fatalf("got %v want %v", p.Actionable.CPrependScanOptions, want)
	}
}

func TestValidateRejectsUnknownActionableConfig(t *testing.T) {
	p := &Profile{
		Schema: Schema{
			ProbeCMacros: map[string]map[string][]ActionSchema{
				"__STDC_VERSION__": {"199901L": {{Config: "bogus", Action: "prepend", Value: []string{"-std=gnu99"}}}},
			},
		},
	}
	if err := p.Validate(); err == nil {
		t.Fatal("expected error")
	}
}

func TestSubstituteLiteral(t *testing.T) {
	p := &Profile{Schema: Schema{TextSubstitutions: []SubstitutionSchema{
		{Pattern: "foo", Replacement: "bar"},
	}}}
	got, err := Substitute(p, "foo foo baz")
	if err != nil {
		t.Fatal(err)
	}
	if got != "bar bar baz" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteRegexBackreference(t *testing.T) {
	p := &Profile{Schema: Schema{TextSubstitutions: []SubstitutionSchema{
		{Pattern: `#(\d+)`, Replacement: "line-$1", Regex: true},
	}}}
	got, err := Substitute(p, "#12 foo")
	if err != nil {
		t.Fatal(err)
	}
	if got != "line-12 foo" {
		t.Fatalf("got %q", got)
	}
}
