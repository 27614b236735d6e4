/*
Package ports defines the driven ports (interfaces) of arbor.

These interfaces decouple the tree builder and its surfaces from external
implementations, so lifecycle events can be streamed in-process or over a
broker without the core knowing which.

# Key Interfaces

  - EventPublisher: Delivers lifecycle events (node added, edge added, reference error).
  - EventStream: An EventPublisher that can also be subscribed to.
*/
package ports
