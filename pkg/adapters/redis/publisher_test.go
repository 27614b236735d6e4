package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPublisher(t *testing.T, opts ...redis.Option) (*redis.Publisher, *miniredis.Miniredis) {
	t.Helper()

	// Setup miniredis
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	// Initialize client
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	pub := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = pub.Close() })
	return pub, mr
}

func TestRedisPublisher_Contract(t *testing.T) {
	pub, _ := newPublisher(t)
	ports.RunEventStreamContract(t, pub)
}

func TestRedisPublisher_Channel(t *testing.T) {
	pub, mr := newPublisher(t, redis.WithChannel("trees:test"))
	assert.Equal(t, "trees:test", pub.Channel())
	require.NoError(t, pub.Ping(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, err := pub.Subscribe(ctx)
	require.NoError(t, err)

	// Garbage on the channel is skipped, not fatal.
	mr.Publish("trees:test", "not an event")

	ev := &domain.ReferenceEvent{
		EventBase: domain.NewEventBase(domain.EventReferenceError, "t"),
		Node:      domain.Node{Index: 1, Kind: domain.Leaf},
		Parent:    3,
	}
	require.NoError(t, pub.Publish(ctx, ev))

	select {
	case got := <-events:
		ref, ok := got.(*domain.ReferenceEvent)
		require.True(t, ok)
		assert.Equal(t, 3, ref.Parent)
		assert.Equal(t, domain.Node{Index: 1, Kind: domain.Leaf}, ref.Node)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}

	// Nothing is persisted.
	assert.Empty(t, mr.Keys())
}

func TestRedisPublisher_Unreachable(t *testing.T) {
	pub, mr := newPublisher(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev := &domain.NodeEvent{EventBase: domain.NewEventBase(domain.EventNodeAdded, "")}
	assert.Error(t, pub.Publish(ctx, ev))
}
