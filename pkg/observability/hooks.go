package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// PublishingHooks forwards every lifecycle event to pub.
// Publish failures are logged and never reach the builder.
func PublishingHooks(pub ports.EventPublisher, logger *slog.Logger) domain.LifecycleHooks {
	publish := func(ctx context.Context, ev domain.Event) {
		if err := pub.Publish(ctx, ev); err != nil {
			logger.WarnContext(ctx, "event publish failed", "type", ev.Base().Type, "error", err)
		}
	}

	return domain.LifecycleHooks{
		OnNodeAdded:      func(ctx context.Context, e *domain.NodeEvent) { publish(ctx, e) },
		OnEdgeAdded:      func(ctx context.Context, e *domain.EdgeEvent) { publish(ctx, e) },
		OnReferenceError: func(ctx context.Context, e *domain.ReferenceEvent) { publish(ctx, e) },
	}
}

// LoggingHooks logs every lifecycle event at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeAdded: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_added", "tree", e.Tree, "node", e.Node.Label(), "nodes", e.NodeCount)
		},
		OnEdgeAdded: func(ctx context.Context, e *domain.EdgeEvent) {
			logger.DebugContext(ctx, "edge_added", "tree", e.Tree, "edge", e.Edge.ID, "from", e.Edge.From.Label(), "to", e.Edge.To.Label())
		},
		OnReferenceError: func(ctx context.Context, e *domain.ReferenceEvent) {
			logger.DebugContext(ctx, "reference_error", "tree", e.Tree, "node", e.Node.Label(), "parent", e.Parent)
		},
	}
}

// CombineHooks calls every non-nil hook in the given order.
func CombineHooks(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks

	var onNode []func(context.Context, *domain.NodeEvent)
	var onEdge []func(context.Context, *domain.EdgeEvent)
	var onRef []func(context.Context, *domain.ReferenceEvent)
	for _, h := range all {
		if h.OnNodeAdded != nil {
			onNode = append(onNode, h.OnNodeAdded)
		}
		if h.OnEdgeAdded != nil {
			onEdge = append(onEdge, h.OnEdgeAdded)
		}
		if h.OnReferenceError != nil {
			onRef = append(onRef, h.OnReferenceError)
		}
	}

	if len(onNode) > 0 {
		out.OnNodeAdded = func(ctx context.Context, e *domain.NodeEvent) {
			for _, fn := range onNode {
				fn(ctx, e)
			}
		}
	}
	if len(onEdge) > 0 {
		out.OnEdgeAdded = func(ctx context.Context, e *domain.EdgeEvent) {
			for _, fn := range onEdge {
				fn(ctx, e)
			}
		}
	}
	if len(onRef) > 0 {
		out.OnReferenceError = func(ctx context.Context, e *domain.ReferenceEvent) {
			for _, fn := range onRef {
				fn(ctx, e)
			}
		}
	}
	return out
}
