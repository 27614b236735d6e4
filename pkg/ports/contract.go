package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunEventStreamContract runs a suite of tests to verify that an EventStream
// implementation adheres to the defined interface contract.
func RunEventStreamContract(t *testing.T, stream EventStream) {
	t.Run("Publish Without Subscribers", func(t *testing.T) {
		ev := &domain.NodeEvent{
			EventBase: domain.NewEventBase(domain.EventNodeAdded, "contract"),
			Node:      domain.Node{Index: 1, Kind: domain.Branch},
			NodeCount: 1,
		}
		assert.NoError(t, stream.Publish(context.Background(), ev))
	})

	t.Run("Subscribe Receives In Order", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		events, err := stream.Subscribe(ctx)
		require.NoError(t, err, "Subscribe should not return error")

		branch := domain.Node{Index: 1, Kind: domain.Branch}
		leaf := domain.Node{Index: 2, Kind: domain.Leaf}
		sent := []domain.Event{
			&domain.NodeEvent{EventBase: domain.NewEventBase(domain.EventNodeAdded, "contract"), Node: leaf, NodeCount: 2},
			&domain.EdgeEvent{EventBase: domain.NewEventBase(domain.EventEdgeAdded, "contract"), Edge: domain.Edge{ID: 0, From: branch, To: leaf}},
			&domain.ReferenceEvent{EventBase: domain.NewEventBase(domain.EventReferenceError, "contract"), Node: leaf, Parent: 42},
		}
		for _, ev := range sent {
			require.NoError(t, stream.Publish(ctx, ev))
		}

		for i, want := range sent {
			select {
			case got, ok := <-events:
				require.True(t, ok, "channel closed early at event %d", i)
				assert.Equal(t, want.Base().Type, got.Base().Type)
				assert.Equal(t, "contract", got.Base().Tree)
			case <-ctx.Done():
				t.Fatalf("timed out waiting for event %d", i)
			}
		}
	})

	t.Run("Cancel Closes Channel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		events, err := stream.Subscribe(ctx)
		require.NoError(t, err)
		cancel()

		deadline := time.After(5 * time.Second)
		for {
			select {
			case _, ok := <-events:
				if !ok {
					return
				}
			case <-deadline:
				t.Fatal("channel not closed after cancel")
			}
		}
	})
}
