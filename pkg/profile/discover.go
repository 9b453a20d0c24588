package profile

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
)

// Discover walks searchDir looking for "*.toolchain.json" files, returning
// their paths sorted for deterministic CLI listing. This is the domain
// supplement that lets a "<name>-auto" toolchain selection (§6 CLI surface)
// enumerate installed toolchain profiles without the caller having to name
// one explicitly, the same way the teacher's Repo.LoadProjects walks a tree
// with godirwalk to auto-discover project.yaml files.
func Discover(searchDir string) ([]string, error) {
	var found []string
	err := godirwalk.Walk(searchDir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			if strings.HasSuffix(path, ".toolchain.json") {
				found = append(found, path)
			}
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// DiscoverByName returns the toolchain profile path under searchDir whose
// base name (minus ".toolchain.json") equals name, or "" if none matches.
func DiscoverByName(searchDir, name string) (string, error) {
	paths, err := Discover(searchDir)
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		base := filepath.Base(p)
		base = strings.TrimSuffix(base, ".toolchain.json")
		if base == name {
			return p, nil
		}
	}
	return "", nil
}
