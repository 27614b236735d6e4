package arbor

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/tree"
)

// Version is the release of the arbor module.
const Version = "0.1.0"

// Create returns an empty tree builder.
func Create(opts ...tree.Option) *tree.Builder {
	return tree.New(opts...)
}

// ErrorFunction always fails with domain.ErrAlwaysBreaks.
// Bindings use it to check that errors propagate to their callers.
func ErrorFunction() error {
	return domain.ErrAlwaysBreaks
}
