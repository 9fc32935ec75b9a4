package chain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotFound indicates no layer holds the requested key, or a
	// delete targeted a key absent from the local layer.
	ErrKeyNotFound = errors.New("chain: key not found")
	// ErrInconsistentValue indicates a unique lookup found differing
	// values across layers.
	ErrInconsistentValue = errors.New("chain: inconsistent value")
	// ErrImmutableLayer indicates a write or delete targeted a local
	// layer that does not support mutation.
	ErrImmutableLayer = errors.New("chain: local layer is immutable")
	// ErrUnknownPolicy indicates construction received a policy outside
	// the closed set.
	ErrUnknownPolicy = errors.New("chain: unknown policy")
	// ErrAggregatePolicy indicates a scalar Get on a chain configured
	// with PolicyAll; those chains resolve through GetAll.
	ErrAggregatePolicy = errors.New("chain: policy all resolves through GetAll")
)

// ConflictError captures a unique-policy violation alongside the key and
// the per-layer values that disagreed, in layer order.
type ConflictError struct {
	Key    any
	Values []any
}

func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Values))
	for _, value := range e.Values {
		parts = append(parts, fmt.Sprintf("%v", value))
	}
	return fmt.Sprintf("chain: inconsistent value for key %v: [%s]", e.Key, strings.Join(parts, ", "))
}

// Unwrap lets errors.Is match ErrInconsistentValue.
func (e *ConflictError) Unwrap() error {
	return ErrInconsistentValue
}

func notFound(key any) error {
	return fmt.Errorf("%w: %v", ErrKeyNotFound, key)
}
