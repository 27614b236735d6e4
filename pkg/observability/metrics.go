package observability

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for tree construction.
type Metrics struct {
	NodesAdded      *prometheus.CounterVec
	EdgesAdded      prometheus.Counter
	ReferenceErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		NodesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_nodes_added_total",
				Help: "Total number of nodes inserted, attached or not",
			},
			[]string{"kind"},
		),
		EdgesAdded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "arbor_edges_added_total",
				Help: "Total number of parent to child edges inserted",
			},
		),
		ReferenceErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_reference_errors_total",
				Help: "Total number of insertions naming an unregistered parent branch",
			},
			[]string{"kind"},
		),
	}

	for _, c := range []prometheus.Collector{m.NodesAdded, m.EdgesAdded, m.ReferenceErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeAdded: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodesAdded.WithLabelValues(e.Node.Kind.String()).Inc()
		},
		OnEdgeAdded: func(ctx context.Context, e *domain.EdgeEvent) {
			m.EdgesAdded.Inc()
		},
		OnReferenceError: func(ctx context.Context, e *domain.ReferenceEvent) {
			m.ReferenceErrors.WithLabelValues(e.Node.Kind.String()).Inc()
		},
	}
}
