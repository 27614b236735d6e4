package graph

import "github.com/aretw0/arbor/pkg/domain"

// Link is an edge as seen by the generators: endpoints are positions in
// View.Nodes rather than node values, so duplicate indices stay distinct.
type Link struct {
	ID   int
	From int
	To   int
}

// View is a read-only snapshot of a tree handed to the generators.
// Nodes are in insertion order; Links are in insertion order.
type View struct {
	Nodes []domain.Node
	Links []Link
}
