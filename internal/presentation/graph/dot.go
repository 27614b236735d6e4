package graph

import (
	"fmt"
	"strings"
)

const dotIndent = "    "

// GenerateDOT produces a Graphviz digraph from a view.
// Every node is emitted, orphans included, labeled "(Kind_index)"; every
// edge is labeled with its insertion ordinal:
//
//	digraph {
//	    0 [ label = "(Branch_1)" ]
//	    1 [ label = "(Leaf_2)" ]
//	    0 -> 1 [ label = "0" ]
//	}
func GenerateDOT(v View) string {
	var sb strings.Builder
	sb.WriteString("digraph {\n")

	for pos, node := range v.Nodes {
		fmt.Fprintf(&sb, "%s%d [ label = %s ]\n", dotIndent, pos, quoteDOT(node.Label()))
	}

	for _, l := range v.Links {
		fmt.Fprintf(&sb, "%s%d -> %d [ label = %s ]\n", dotIndent, l.From, l.To, quoteDOT(fmt.Sprint(l.ID)))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func quoteDOT(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
