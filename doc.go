/*
Package arbor builds and renders small labeled trees.

Callers register branch nodes, each optionally attached to a parent branch,
and leaf nodes, each attached to a required parent branch. Parents are named
by the caller's own integer index, never by an internal handle. arbor keeps
the resulting directed graph and exports it as a DOT (or Mermaid) text
description for debugging.

# Concept

The tree is append-only. Every insertion commits its node before the parent
is looked up, so an insertion naming an unknown parent fails with a
*domain.ReferenceError ("Branch_<id> doesn't exist!") while the node stays
in the tree, unattached. Registering a branch index twice shadows the
earlier branch without removing it.

# Surfaces

  - Library: Create returns a *tree.Builder.
  - Plans: pkg/plan replays YAML/JSON build scripts, pkg/dsl writes them in Go.
  - HTTP: pkg/adapters/http exposes the same calls as a JSON API.
  - MCP: pkg/adapters/mcp exposes them as tools for AI agents.
  - CLI: cmd/arbor wraps all of the above.

# Usage

	package main

	import (
		"fmt"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/tree"
	)

	func main() {
		t := arbor.Create()
		_ = t.AddBranch(1, nil)
		_ = t.AddBranch(2, tree.Under(1))
		_ = t.AddLeaf(3, 2)
		if err := t.AddLeaf(4, 99); err != nil {
			fmt.Println(err) // Branch_99 doesn't exist!
		}
		fmt.Printf("%d nodes\n%s", t.NodeCount(), t)
	}
*/
package arbor
