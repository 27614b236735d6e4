package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart syntax string from a view.
// It applies semantic styling:
// - Branch: [Rectangle]
// - Leaf: ([Stadium])
// Edges carry their insertion ordinal as the link text.
func GenerateMermaid(v View) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for pos, node := range v.Nodes {
		opener, closer := "[", "]"
		if node.Kind == domain.Leaf {
			opener, closer = "([", "])"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", mermaidID(pos), opener, node.Label(), closer))
	}

	for _, l := range v.Links {
		sb.WriteString(fmt.Sprintf("    %s -- \"%d\" --> %s\n", mermaidID(l.From), l.ID, mermaidID(l.To)))
	}

	return sb.String()
}

// Positions make unique IDs; caller indices may repeat.
func mermaidID(pos int) string {
	return fmt.Sprintf("n%d", pos)
}
