/*
Package domain contains the core domain models of the arbor tree builder.

It defines the vertices and edges of the tree, the closed set of node kinds,
the errors surfaced when a caller references a parent that does not exist,
and the lifecycle events emitted while a tree is being built. This package is
kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Node: A vertex of the tree, either a Branch or a Leaf, carrying the caller's index.
  - Edge: A directed parent to child relationship, identified by its insertion ordinal.
  - ReferenceError: Raised when an insertion names a parent branch that is not registered.
  - LifecycleHooks: Callbacks fired synchronously after each mutation.
*/
package domain
