package tree

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
)

// Format selects the text grammar used by RenderAs.
type Format string

const (
	// FormatDOT is the Graphviz digraph grammar. It is what Render returns.
	FormatDOT Format = "dot"
	// FormatMermaid is the Mermaid flowchart grammar.
	FormatMermaid Format = "mermaid"
)

// ErrUnknownFormat is returned by RenderAs and ParseFormat for unsupported formats.
var ErrUnknownFormat = errors.New("unknown render format")

// ParseFormat maps a user supplied name to a Format. Empty means DOT.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatDOT:
		return FormatDOT, nil
	case FormatMermaid:
		return FormatMermaid, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Builder is the append-only tree builder.
type Builder struct {
	graph    arena
	branches map[int]nodeRef // branch index; leaves never enter it

	name   string
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Builder.
type Option func(*Builder)

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// WithName labels the tree in logs and events.
func WithName(name string) Option {
	return func(b *Builder) {
		b.name = name
	}
}

// New creates an empty Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		branches: make(map[int]nodeRef),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = logging.NewNop()
	}
	if b.name != "" {
		b.logger = b.logger.With("tree", b.name)
	}
	return b
}

// Under returns a pointer to parent, for the optional argument of AddBranch.
func Under(parent int) *int {
	return &parent
}

// Name returns the label given with WithName.
func (b *Builder) Name() string {
	return b.name
}

// AddBranch inserts a Branch node carrying index and registers it in the
// branch index, overwriting any earlier branch with the same index.
// A nil parent makes the branch a root. Otherwise the branch is attached
// under the branch currently registered as *parent; if there is none a
// *domain.ReferenceError is returned and the new branch stays in the tree,
// registered but unattached.
func (b *Builder) AddBranch(index int, parent *int) error {
	return b.AddBranchContext(context.Background(), index, parent)
}

// AddBranchContext is AddBranch with a context passed to lifecycle hooks.
func (b *Builder) AddBranchContext(ctx context.Context, index int, parent *int) error {
	ref := b.insert(ctx, domain.Node{Index: index, Kind: domain.Branch})
	b.branches[index] = ref

	if parent == nil {
		return nil
	}
	return b.attach(ctx, *parent, ref)
}

// AddLeaf inserts a Leaf node carrying index and attaches it under the
// branch currently registered as parent. Leaves are never registered, so
// they can never be used as a parent. If parent is not registered a
// *domain.ReferenceError is returned and the leaf stays in the tree,
// unattached.
func (b *Builder) AddLeaf(index int, parent int) error {
	return b.AddLeafContext(context.Background(), index, parent)
}

// AddLeafContext is AddLeaf with a context passed to lifecycle hooks.
func (b *Builder) AddLeafContext(ctx context.Context, index int, parent int) error {
	ref := b.insert(ctx, domain.Node{Index: index, Kind: domain.Leaf})
	return b.attach(ctx, parent, ref)
}

func (b *Builder) insert(ctx context.Context, node domain.Node) nodeRef {
	ref := b.graph.addNode(node)
	b.logger.Debug("node_added", "node", node.Label(), "nodes", len(b.graph.nodes))

	if b.hooks.OnNodeAdded != nil {
		b.hooks.OnNodeAdded(ctx, &domain.NodeEvent{
			EventBase: domain.NewEventBase(domain.EventNodeAdded, b.name),
			Node:      node,
			NodeCount: len(b.graph.nodes),
		})
	}
	return ref
}

func (b *Builder) attach(ctx context.Context, parent int, child nodeRef) error {
	from, ok := b.branches[parent]
	if !ok {
		node := b.graph.nodes[child]
		b.logger.Warn("parent_missing", "node", node.Label(), "parent", parent)
		if b.hooks.OnReferenceError != nil {
			b.hooks.OnReferenceError(ctx, &domain.ReferenceEvent{
				EventBase: domain.NewEventBase(domain.EventReferenceError, b.name),
				Node:      node,
				Parent:    parent,
			})
		}
		return &domain.ReferenceError{Parent: parent}
	}

	edge := b.graph.addEdge(from, child)
	b.logger.Debug("edge_added", "edge", edge.ID, "from", edge.From.Label(), "to", edge.To.Label())

	if b.hooks.OnEdgeAdded != nil {
		b.hooks.OnEdgeAdded(ctx, &domain.EdgeEvent{
			EventBase: domain.NewEventBase(domain.EventEdgeAdded, b.name),
			Edge:      edge,
		})
	}
	return nil
}

// NodeCount returns the number of nodes ever inserted, attached or not.
func (b *Builder) NodeCount() int {
	return len(b.graph.nodes)
}

// EdgeCount returns the number of successful parent attachments.
func (b *Builder) EdgeCount() int {
	return len(b.graph.links)
}

// Nodes returns a copy of all nodes in insertion order.
func (b *Builder) Nodes() []domain.Node {
	nodes := make([]domain.Node, len(b.graph.nodes))
	copy(nodes, b.graph.nodes)
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (b *Builder) Edges() []domain.Edge {
	edges := make([]domain.Edge, len(b.graph.links))
	for id := range b.graph.links {
		edges[id] = b.graph.edge(id)
	}
	return edges
}

// HasBranch reports whether index is currently registered as a parent.
func (b *Builder) HasBranch(index int) bool {
	_, ok := b.branches[index]
	return ok
}

// Render returns the DOT description of the current graph.
func (b *Builder) Render() string {
	return graph.GenerateDOT(b.graph.view())
}

// RenderAs renders the current graph in the requested format.
func (b *Builder) RenderAs(format Format) (string, error) {
	switch format {
	case FormatDOT:
		return b.Render(), nil
	case FormatMermaid:
		return graph.GenerateMermaid(b.graph.view()), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// String implements fmt.Stringer using Render.
func (b *Builder) String() string {
	return b.Render()
}
