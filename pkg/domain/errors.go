package domain

import (
	"errors"
	"fmt"
)

// ErrReference matches every *ReferenceError via errors.Is.
var ErrReference = errors.New("parent branch not registered")

// ErrAlwaysBreaks is the fixed error of the diagnostic error function.
var ErrAlwaysBreaks = errors.New("This always breaks!")

// ErrTreeNotFound is returned when a tree ID cannot be found in a registry.
var ErrTreeNotFound = errors.New("tree not found")

// ReferenceError is returned when an insertion names a parent branch index
// that is not registered at the time of the call.
// The node being inserted is already part of the tree when this is returned.
type ReferenceError struct {
	Parent int // External index of the missing parent branch
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("Branch_%d doesn't exist!", e.Parent)
}

// Is reports whether target is ErrReference.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}

// MissingParent extracts the missing parent index if err wraps a ReferenceError.
func MissingParent(err error) (int, bool) {
	var refErr *ReferenceError
	if errors.As(err, &refErr) {
		return refErr.Parent, true
	}
	return 0, false
}
