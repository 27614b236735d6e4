/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically describing arbor tree builds.

It allows developers to write build plans with a fluent builder instead of YAML or
JSON files. This is particularly useful for tests and for generating trees from
other Go data.

Example usage:

	package main

	import (
		"context"
		"fmt"

		"github.com/aretw0/arbor/pkg/dsl"
		"github.com/aretw0/arbor/pkg/plan"
		"github.com/aretw0/arbor/pkg/tree"
	)

	func main() {
		b := dsl.New("my-tree")
		b.Branch(0)
		b.Branch(1).Under(0)
		b.Leaf(2).Under(1)

		p, err := b.Build()
		if err != nil {
			panic(err)
		}

		t := tree.New()
		if _, err := plan.Apply(context.Background(), t, p, plan.ContinueOnError); err != nil {
			fmt.Println(err)
		}
		fmt.Print(t.Render())
	}
*/
package dsl
