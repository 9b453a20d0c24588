package assemble

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"xcalbuild/pkg/archive"
	"xcalbuild/pkg/process"
)

func TestBuildLDInfosAssignsDuplicateShortNameSuffixes(t *testing.T) {
	// Scenario 3: LDs /x/lib.a, /y/lib.a, /z/lib.a -> lib.a.dir/, lib.a.1.dir/, lib.a.2.dir/.
	ldResults := []process.LDResult{
		{Target: "/x/lib.a"},
		{Target: "/y/lib.a"},
		{Target: "/z/lib.a"},
	}
	infos, names := buildLDInfos(ldResults, map[string]string{})
	if len(infos) != 3 {
		t.Fatalf("got %d LDInfos", len(infos))
	}
	got := map[string]string{}
	for _, info := range infos {
		got[info.Target] = info.ShortName
	}
	want := map[string]string{
		"/x/lib.a": "lib.a",
		"/y/lib.a": "lib.a.1",
		"/z/lib.a": "lib.a.2",
	}
	for target, shortName := range want {
		if got[target] != shortName {
			t.Fatalf("target %q: got short name %q, want %q", target, got[target], shortName)
		}
		if names[target] != shortName {
			t.Fatalf("dependencyNames[%q] = %q, want %q", target, names[target], shortName)
		}
	}
}

func TestUniqueArchiveNameDisambiguatesDuplicateTUNames(t *testing.T) {
	// Scenario 4: three sources all preprocessed to src1.cc.ii under one
	// link target -> src1.cc.ii, src1.cc.1.ii, src1.cc.2.ii.
	info := &LDInfo{archiveStems: map[string]bool{}}
	got := []string{
		info.uniqueArchiveName("src1.cc.ii"),
		info.uniqueArchiveName("src1.cc.ii"),
		info.uniqueArchiveName("src1.cc.ii"),
	}
	want := []string{"src1.cc.ii", "src1.cc.1.ii", "src1.cc.2.ii"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestAssembleBridgeRoutesCompileThroughAssembler(t *testing.T) {
	// Scenario 2: AS {a.c.o, a.s}; CC {target=a.s, source=a.c, out=a.c.i};
	// LD {exe, [a.c.o]} -> archive contains exe.dir/preprocess/a.c.i.
	dir := t.TempDir()
	srcTemp := filepath.Join(dir, "a.c.i")
	if err := os.WriteFile(srcTemp, []byte("preprocessed"), 0644); err != nil {
		t.Fatal(err)
	}

	ldResults := []process.LDResult{{Target: "/out/exe", Inputs: []string{"/out/a.c.o"}}}
	asResults := []process.ASResult{{Target: "/out/a.c.o", Source: "/out/a.s"}}
	ccResults := []process.CCResult{{
		Path:       srcTemp,
		Digest:     "deadbeef",
		Target:     "/out/a.s",
		Source:     "/out/a.c",
		OutputName: "a.c.i",
	}}

	asTargetToSource := buildAsTargetToSource(asResults)
	ldInfos, dependencyNames := buildLDInfos(ldResults, asTargetToSource)
	linkTargets := buildLinkTargets(ldInfos)

	archivePath := filepath.Join(dir, "out.tar.gz")
	ar, err := archive.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	popResult, err := populate(ccResults, linkTargets, ar, populateOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for _, info := range ldInfos {
		if err := ar.AddFile(info.ShortName+".dir/xcalibyte.properties", renderProperties(info, dependencyNames)); err != nil {
			t.Fatal(err)
		}
	}
	if err := ar.Close(); err != nil {
		t.Fatal(err)
	}

	names := readTarNames(t, archivePath)
	if !contains(names, "exe.dir/preprocess/a.c.i") {
		t.Fatalf("archive missing exe.dir/preprocess/a.c.i, got %v", names)
	}
	foundChecksum := false
	for _, line := range popResult.ChecksumLines {
		if line == "deadbeef exe.dir/preprocess/a.c.i" {
			foundChecksum = true
		}
	}
	if !foundChecksum {
		t.Fatalf("checksum lines missing expected entry: %v", popResult.ChecksumLines)
	}

	if len(ldInfos) != 1 {
		t.Fatalf("got %d LDInfos", len(ldInfos))
	}
	if len(ldInfos[0].dependencies) != 0 {
		t.Fatalf("expected the consumed compile target to be removed from dependencies, got %v", ldInfos[0].dependencies)
	}

	if _, err := os.Stat(srcTemp); !os.IsNotExist(err) {
		t.Fatal("expected the CCResult temporary to be deleted after assembly")
	}
}

func TestPopulateLinkViaCompilerReroutesUnconsumedCompile(t *testing.T) {
	dir := t.TempDir()
	srcTemp := filepath.Join(dir, "orphan.c.i")
	if err := os.WriteFile(srcTemp, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	ccResults := []process.CCResult{{Path: srcTemp, Digest: "abc", Target: "/unknown/target", Source: "/src/orphan.c", OutputName: "orphan.c.i"}}

	archivePath := filepath.Join(dir, "out.tar.gz")
	ar, err := archive.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	popResult, err := populate(ccResults, map[string][]*LDInfo{}, ar, populateOptions{LinkViaCompiler: true})
	if err != nil {
		t.Fatal(err)
	}
	ar.Close()

	if popResult.TestLD == nil {
		t.Fatal("expected a synthetic test_ld LDInfo")
	}
	if popResult.TestLD.ShortName != pseudoLinkTargetName {
		t.Fatalf("got short name %q", popResult.TestLD.ShortName)
	}
}

func readTarNames(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, hdr.Name)
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
