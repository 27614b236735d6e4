package tree

import (
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
)

// nodeRef is an arena position. Assigned in creation order, never reused.
type nodeRef int

type link struct {
	from nodeRef
	to   nodeRef
}

// arena stores nodes and edges in insertion order.
// The edge ID is its position in links.
type arena struct {
	nodes []domain.Node
	links []link
}

func (a *arena) addNode(n domain.Node) nodeRef {
	a.nodes = append(a.nodes, n)
	return nodeRef(len(a.nodes) - 1)
}

func (a *arena) addEdge(from, to nodeRef) domain.Edge {
	a.links = append(a.links, link{from: from, to: to})
	return a.edge(len(a.links) - 1)
}

func (a *arena) edge(id int) domain.Edge {
	l := a.links[id]
	return domain.Edge{
		ID:   id,
		From: a.nodes[l.from],
		To:   a.nodes[l.to],
	}
}

func (a *arena) view() graph.View {
	v := graph.View{
		Nodes: make([]domain.Node, len(a.nodes)),
		Links: make([]graph.Link, len(a.links)),
	}
	copy(v.Nodes, a.nodes)
	for id, l := range a.links {
		v.Links[id] = graph.Link{ID: id, From: int(l.from), To: int(l.to)}
	}
	return v
}
