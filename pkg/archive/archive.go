// Package archive provides the Archiver interface the output assembler
// writes the final TAR.GZ through (§6), with a standard-library
// implementation underneath (see DESIGN.md for why no third-party tar/gzip
// library from the pack applies here).
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"os"
)

const (
	fileMode = 0644
	dirMode  = 0777
)

// Archiver builds a gzipped TAR archive. Directory entries must be added
// before the file entries under them (§6 "Directory entries precede file
// entries for their subtree").
type Archiver interface {
	AddDir(name string) error
	AddFile(name string, data []byte) error
	Close() error
}

// TarGzArchiver streams a gzip-compressed, PAX-restricted TAR to an
// underlying file.
type TarGzArchiver struct {
	f    *os.File
	gz   *gzip.Writer
	tw   *tar.Writer
	seen map[string]bool
}

// Create opens path for writing and returns a TarGzArchiver backed by it.
func Create(path string) (*TarGzArchiver, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive %s: %w", path, err)
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	return &TarGzArchiver{f: f, gz: gz, tw: tw, seen: map[string]bool{}}, nil
}

// AddDir writes a directory entry. Idempotent: repeated calls for the same
// name are no-ops, since the assembler may compute the same parent
// directory for several files.
func (a *TarGzArchiver) AddDir(name string) error {
	name = ensureTrailingSlash(name)
	if a.seen[name] {
		return nil
	}
	a.seen[name] = true
	hdr := &tar.Header{
		Name:     name,
		Typeflag: tar.TypeDir,
		Mode:     dirMode,
		Format:   tar.FormatPAX,
	}
	if err := a.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing dir entry %s: %w", name, err)
	}
	return nil
}

// AddFile writes a regular file entry with the given content.
func (a *TarGzArchiver) AddFile(name string, data []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Typeflag: tar.TypeReg,
		Mode:     fileMode,
		Size:     int64(len(data)),
		Format:   tar.FormatPAX,
	}
	if err := a.tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing file entry %s: %w", name, err)
	}
	if _, err := a.tw.Write(data); err != nil {
		return fmt.Errorf("writing file content %s: %w", name, err)
	}
	return nil
}

// Close flushes and closes the tar, gzip, and underlying file writers, in
// that order. A failure here is fatal for the run (§7.vii).
func (a *TarGzArchiver) Close() error {
	if err := a.tw.Close(); err != nil {
		return err
	}
	if err := a.gz.Close(); err != nil {
		return err
	}
	return a.f.Close()
}

func ensureTrailingSlash(name string) string {
	if len(name) == 0 || name[len(name)-1] == '/' {
		return name
	}
	return name + "/"
}
