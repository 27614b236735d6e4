package memory

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
)

// Publisher implements ports.EventStream in memory.
// Safe for concurrent use.
type Publisher struct {
	mu      sync.RWMutex
	subs    map[int]chan domain.Event
	nextID  int
	buffer  int
	dropped atomic.Uint64
	logger  *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used to report dropped events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates an in-process publisher. Each subscriber gets a
// channel with the given buffer size. Publish never waits: an event for a
// subscriber whose buffer is full is dropped.
func NewPublisher(buffer int, opts ...Option) *Publisher {
	p := &Publisher{
		subs:   make(map[int]chan domain.Event),
		buffer: buffer,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish fans the event out to every subscriber without blocking.
func (p *Publisher) Publish(ctx context.Context, event domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	for id, ch := range p.subs {
		select {
		case ch <- event:
		default:
			p.dropped.Add(1)
			p.logger.WarnContext(ctx, "subscriber buffer full, dropping event",
				"subscriber", id, "type", event.Base().Type, "tree", event.Base().Tree)
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is canceled.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan domain.Event, error) {
	ch := make(chan domain.Event, p.buffer)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		// Sends happen under the read lock, so closing under the write
		// lock never races with a send.
		p.mu.Lock()
		delete(p.subs, id)
		close(ch)
		p.mu.Unlock()
	}()

	return ch, nil
}

// Subscribers returns the number of active subscriptions.
func (p *Publisher) Subscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (p *Publisher) Dropped() uint64 {
	return p.dropped.Load()
}
