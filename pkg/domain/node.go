package domain

import (
	"encoding/json"
	"fmt"
)

// Kind is the closed set of node kinds a tree can hold.
type Kind uint8

const (
	// Branch is an internal node. Branches can parent other nodes.
	Branch Kind = iota
	// Leaf is a terminal node. Leaves never parent anything.
	Leaf
)

// String returns the label prefix used in renderings ("Branch" or "Leaf").
func (k Kind) String() string {
	switch k {
	case Branch:
		return "Branch"
	case Leaf:
		return "Leaf"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// MarshalText implements encoding.TextMarshaler so kinds travel as strings.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Branch, Leaf:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("invalid node kind %d", uint8(k))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Branch", "branch":
		*k = Branch
	case "Leaf", "leaf":
		*k = Leaf
	default:
		return fmt.Errorf("invalid node kind %q", text)
	}
	return nil
}

// Node is an immutable vertex of the tree.
// Index is the caller-supplied identifier; it is only unique within the
// branch namespace, and even there a later branch may shadow an earlier one.
type Node struct {
	Index int  `json:"index" yaml:"index"`
	Kind  Kind `json:"kind" yaml:"kind"`
}

// Label renders the node as "(Branch_<index>)" or "(Leaf_<index>)".
func (n Node) Label() string {
	return fmt.Sprintf("(%s_%d)", n.Kind, n.Index)
}

func (n Node) String() string {
	return n.Label()
}

// Edge is an immutable parent to child relationship.
// ID is the ordinal of the edge in insertion order, starting at 0.
type Edge struct {
	ID   int  `json:"id" yaml:"id"`
	From Node `json:"from" yaml:"from"`
	To   Node `json:"to" yaml:"to"`
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -[%d]-> %s", e.From, e.ID, e.To)
}

// MarshalJSON keeps the label next to the structured fields for debug consumers.
func (n Node) MarshalJSON() ([]byte, error) {
	type plain Node
	return json.Marshal(struct {
		plain
		Label string `json:"label"`
	}{plain(n), n.Label()})
}
