/*
Package tree implements the arbor tree builder.

A Builder owns an append-only directed graph of Branch and Leaf nodes and a
lookup table (the branch index) mapping the caller's branch identifiers to
internal arena positions. Callers only ever see their own integer indices;
arena positions never cross the package boundary.

Insertion is deliberately non-atomic: the node is committed before its
parent is looked up, so a *domain.ReferenceError still leaves the new node in
the graph, unattached. Registering a branch index twice shadows the first
branch, which stays in the graph but can no longer be referenced.

	b := tree.New()
	_ = b.AddBranch(1, nil)
	_ = b.AddBranch(2, tree.Under(1))
	_ = b.AddLeaf(3, 2)
	if err := b.AddLeaf(4, 99); err != nil {
		fmt.Println(err) // Branch_99 doesn't exist!
	}
	fmt.Print(b.Render())

A Builder is not safe for concurrent use. Share one through
registry.Registry, which serializes access per tree.
*/
package tree
