package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/google/uuid"
)

// entry pairs a builder with the mutex that serializes access to it.
type entry struct {
	mu      sync.Mutex
	builder *tree.Builder
}

// Registry holds live trees by ID. A tree.Builder is not safe for
// concurrent use; the registry gives every tree its own exclusive lock.
type Registry struct {
	mu    sync.RWMutex
	trees map[string]*entry

	treeOpts []tree.Option
	logger   *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithTreeOptions sets options applied to every tree created by the registry.
func WithTreeOptions(opts ...tree.Option) Option {
	return func(r *Registry) {
		r.treeOpts = append(r.treeOpts, opts...)
	}
}

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		trees:  make(map[string]*entry),
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create registers a new empty tree and returns its ID.
func (r *Registry) Create(ctx context.Context) string {
	id := uuid.NewString()

	opts := append([]tree.Option{tree.WithName(id)}, r.treeOpts...)
	e := &entry{builder: tree.New(opts...)}

	r.mu.Lock()
	r.trees[id] = e
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "tree_created", "tree", id)
	return id
}

// With runs fn while holding the exclusive lock of tree id.
// Errors returned by fn are passed through unchanged.
func (r *Registry) With(ctx context.Context, id string, fn func(*tree.Builder) error) error {
	r.mu.RLock()
	e, ok := r.trees[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrTreeNotFound, id)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.builder)
}

// Delete discards a tree as a whole.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trees[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrTreeNotFound, id)
	}
	delete(r.trees, id)

	r.logger.InfoContext(ctx, "tree_deleted", "tree", id)
	return nil
}

// List returns the IDs of live trees, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.trees))
	for id := range r.trees {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
