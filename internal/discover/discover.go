// Package discover finds a project's Wasp source files and concatenates
// them into one compilation unit, deterministically. It is grounded on
// original_source/src/main.rs's "build" subcommand: a recursive walk for
// `.w` files, a vendor-package ordering read from `project.wasp`, and a
// newline-joined concatenation — generalized here onto afero.Fs so it can
// be exercised against an in-memory filesystem in tests.
package discover

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/wasplang/waspc/internal/compileerr"
)

const sourceExt = ".w"
const projectFile = "project.wasp"
const vendorDir = "vendor"

// Package is one dependency line from project.wasp: its vendored name and
// the location (git URL or path) it was cloned from.
type Package struct {
	Name     string
	Location string
}

// ReadProjectFile parses project.wasp at root, if present. Each line is
// "name location"; blank lines are skipped. A missing file is not an
// error — it returns an empty package list, matching the original's
// "if project.wasp exists" guard.
func ReadProjectFile(fs afero.Fs, root string) ([]Package, error) {
	path := filepath.Join(root, projectFile)
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, compileerr.IOf(err, "checking for %s", path)
	}
	if !exists {
		return nil, nil
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, compileerr.IOf(err, "opening %s", path)
	}
	defer f.Close()

	var pkgs []Package
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) < 2 {
			continue
		}
		pkgs = append(pkgs, Package{Name: fields[0], Location: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, compileerr.IOf(err, "reading %s", path)
	}
	return pkgs, nil
}

// FindSources walks root for every file ending in ".w", returning paths
// relative to root (using "/" separators, matching the original's
// string-based path handling) in directory-walk order. SortSources
// imposes the project's actual build ordering afterward.
func FindSources(fs afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, sourceExt) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, compileerr.IOf(err, "walking %s for %s files", root, sourceExt)
	}
	return files, nil
}

// SortSources reorders files in place so that files under vendor/ sort by
// their package's position in packages (project.wasp's declared order),
// unknown vendor packages sorting after known ones; every vendor file
// sorts ahead of every non-vendor file, and non-vendor files keep their
// relative walk order (the sort is stable). This
// reproduces the original comparator's asymmetric shape exactly (a
// vendor/non-vendor pair compares differently depending on which side of
// the pair is inspected first) rather than smoothing it into a strict
// total order the original never had.
func SortSources(files []string, packages []Package) {
	packagePos := func(name string) int {
		for i, p := range packages {
			if p.Name == name {
				return i
			}
		}
		return len(packages) + 1<<30 // unknown vendor package sorts last
	}
	vendorPackage := func(path string) (string, bool) {
		rest := strings.TrimPrefix(path, vendorDir+"/")
		if rest == path {
			return "", false
		}
		parts := strings.SplitN(rest, "/", 2)
		return parts[0], true
	}
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if pa, ok := vendorPackage(a); ok {
			if pb, ok := vendorPackage(b); ok {
				return packagePos(pa) < packagePos(pb)
			}
			return true
		}
		return false
	})
}

// Concatenate reads every file in files (already ordered by SortSources)
// and joins them with a leading newline per file, matching the original's
// `contents = format!("{}\n{}", contents, c)` fold.
func Concatenate(fs afero.Fs, root string, files []string) (string, error) {
	var b strings.Builder
	for _, f := range files {
		path := filepath.Join(root, f)
		bytes, err := afero.ReadFile(fs, path)
		if err != nil {
			return "", compileerr.IOf(err, "reading %s", path)
		}
		b.WriteByte('\n')
		b.Write(bytes)
	}
	return b.String(), nil
}

// Discover runs FindSources, SortSources, and Concatenate in sequence,
// returning the final joined source and the file list in build order (for
// waspc build -v's per-file log lines).
func Discover(fs afero.Fs, root string) (string, []string, error) {
	files, err := FindSources(fs, root)
	if err != nil {
		return "", nil, err
	}
	packages, err := ReadProjectFile(fs, root)
	if err != nil {
		return "", nil, err
	}
	SortSources(files, packages)
	source, err := Concatenate(fs, root, files)
	if err != nil {
		return "", nil, err
	}
	return source, files, nil
}
