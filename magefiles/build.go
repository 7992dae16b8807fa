//go:build mage

// Package main provides build targets for kgraph using Mage.
//
// Usage:
//
//	mage build          Compile the kgraph binary to bin/
//	mage test:all       Run every test
//	mage test:unit      Run tests without the persistent backends
//	mage test:race      Run every test with the race detector
//	mage lint           Run golangci-lint
//	mage dot            Render the bootstrap graph to bin/kgraph.svg
//	mage clean          Remove build artifacts
//	mage install        Install kgraph to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binDot     = "dot"
	binaryName = "kgraph"
	binaryDir  = "bin"
	cmdDir     = "./cmd/kgraph"
)

// Build compiles the kgraph binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Dot renders the bootstrap graph with Graphviz.
func Dot() error {
	mg.Deps(Build)
	bin := filepath.Join(binaryDir, binaryName)
	dotFile := filepath.Join(binaryDir, binaryName+".dot")
	if err := sh.RunV(bin, "--backend", "memory", "dot", "-o", dotFile); err != nil {
		return err
	}
	return sh.RunV(binDot, "-Tsvg", "-o", filepath.Join(binaryDir, binaryName+".svg"), dotFile)
}
