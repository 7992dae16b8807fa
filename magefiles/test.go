//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, race).
type Test mg.Namespace

// persistentPkgs hold the on-disk backends, whose tests touch the
// filesystem.
var persistentPkgs = []string{"/internal/sqlite", "/internal/badger"}

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs tests outside the persistent backend packages.
func (Test) Unit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for _, pkg := range strings.Split(pkgs, "\n") {
		if pkg != "" && !isPersistent(pkg) {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test", "-v"}, unitPkgs...)
	return sh.RunV(binGo, args...)
}

// Race runs every test with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

func isPersistent(pkg string) bool {
	for _, suffix := range persistentPkgs {
		if strings.HasSuffix(pkg, suffix) {
			return true
		}
	}
	return false
}
