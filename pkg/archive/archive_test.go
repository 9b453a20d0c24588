package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestTarGzArchiverRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.tar.gz")

	a, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.AddDir("exe.dir/"); err != nil {
		t.Fatal(err)
	}
	if err := a.AddFile("exe.dir/preprocess/a.c.i", []byte("int main(){}")); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

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
	var gotFileMode, gotDirMode int64
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, hdr.Name)
		if hdr.Typeflag == tar.TypeDir {
			gotDirMode = hdr.Mode
		}
		if hdr.Typeflag == tar.TypeReg {
			gotFileMode = hdr.Mode
			data, _ := io.ReadAll(tr)
			if string(data) != "int main(){}" {
				t.Fatalf("content = %q", data)
			}
		}
	}
	if len(names) != 2 || names[0] != "exe.dir/" || names[1] != "exe.dir/preprocess/a.c.i" {
		t.Fatalf("got %v", names)
	}
	if gotDirMode != dirMode {
		t.Fatalf("dir mode = %o", gotDirMode)
	}
	if gotFileMode != fileMode {
		t.Fatalf("file mode = %o", gotFileMode)
	}
}

func TestAddDirIdempotent(t *testing.T) {
	dir := t.TempDir()
	a, err := Create(filepath.Join(dir, "out.tar.gz"))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.AddDir("x.dir"); err != nil {
		t.Fatal(err)
	}
	if err := a.AddDir("x.dir"); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
}
