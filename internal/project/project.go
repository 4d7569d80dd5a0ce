// Package project implements the scaffolding subcommands (init, add,
// vendor) from original_source/src/main.rs. Unlike internal/discover,
// these operate on the real filesystem and shell out to the real git
// binary: cloning a repository and creating directories are not
// meaningfully abstractable behind afero, and the original itself only
// ever does real filesystem I/O for these operations.
package project

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/wasplang/waspc/internal/compileerr"
)

const projectFile = "project.wasp"
const vendorDir = "vendor"
const stdLocation = "git@github.com:wasplang/std.git"
const stdName = "std"

const mainTemplate = `(defn main [] 0)
`

const projectWaspTemplate = ""

// Init scaffolds a new project directory named dir: a starter main.w, an
// empty project.wasp, and (unless noStd) a clone of the standard library
// into vendor/std. It refuses to run if dir already exists, matching the
// original's own guard.
func Init(dir string, noStd bool) error {
	if _, err := os.Stat(dir); err == nil {
		return compileerr.Misusef("directory %q already exists", dir)
	} else if !os.IsNotExist(err) {
		return compileerr.IOf(err, "checking %s", dir)
	}

	if err := os.Mkdir(dir, 0o755); err != nil {
		return compileerr.IOf(err, "creating %s", dir)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.w"), []byte(mainTemplate), 0o644); err != nil {
		return compileerr.IOf(err, "writing main.w")
	}
	if err := os.WriteFile(filepath.Join(dir, projectFile), []byte(projectWaspTemplate), 0o644); err != nil {
		return compileerr.IOf(err, "writing %s", projectFile)
	}

	if !noStd {
		dest := filepath.Join(dir, vendorDir, stdName)
		if err := gitClone(stdLocation, dest); err != nil {
			return err
		}
	}
	return nil
}

// Add appends "name location" to project.wasp and clones location into
// vendor/name.
func Add(name, location string) error {
	f, err := os.OpenFile(projectFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return compileerr.IOf(err, "opening %s", projectFile)
	}
	defer f.Close()
	if _, err := f.WriteString(name + " " + location + "\n"); err != nil {
		return compileerr.IOf(err, "writing %s", projectFile)
	}
	return gitClone(location, filepath.Join(vendorDir, name))
}

// Vendor removes the vendor directory and re-clones every package listed
// in project.wasp, matching the original's "rm -rf vendor then re-fetch
// everything" behavior exactly (no incremental diffing).
func Vendor() error {
	if err := os.RemoveAll(vendorDir); err != nil {
		return compileerr.IOf(err, "removing %s", vendorDir)
	}
	data, err := os.ReadFile(projectFile)
	if err != nil {
		return compileerr.IOf(err, "reading %s", projectFile)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) < 2 {
			continue
		}
		if err := gitClone(fields[1], filepath.Join(vendorDir, fields[0])); err != nil {
			return err
		}
	}
	return nil
}

func gitClone(location, dest string) error {
	cmd := exec.Command("git", "clone", location, dest)
	if _, err := cmd.CombinedOutput(); err != nil {
		return compileerr.IOf(err, "cloning %s into %s", location, dest)
	}
	return nil
}
