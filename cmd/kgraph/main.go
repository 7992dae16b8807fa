// Package main provides the kgraph CLI.
package main

import "github.com/mesh-intelligence/kgraph/internal/cli"

func main() {
	cli.Execute()
}
