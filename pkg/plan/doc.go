/*
Package plan describes tree builds as data.

A Plan is an ordered list of insertion steps that can be written by hand in
YAML or JSON, produced with the dsl package, and replayed onto a
tree.Builder with Apply. Steps accept a short form and a long form:

	name: demo
	steps:
	  - branch: 0
	  - branch: 1
	    parent: 0
	  - op: leaf
	    index: 0
	    parent: 1
*/
package plan
