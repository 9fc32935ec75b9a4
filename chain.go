package chain

import (
	"fmt"
	"reflect"
	"time"
)

// Chain composes an ordered sequence of layers into one logical mapping.
// Layer order is fixed at construction: the earliest layer wins under
// PolicyFirst and orders aggregation under PolicyAll and PolicyUnique.
// Layer 0 is the only target for writes and deletes. Layers are held by
// reference and never copied, so external mutation of a layer object
// remains visible through the chain.
//
// A Chain performs no internal locking. Sharing one across goroutines
// while any of its layers is being mutated is undefined.
type Chain[K comparable, V any] struct {
	layers []Layer[K, V]
	cfg    chainConfig[V]
	err    error
}

type chainConfig[V any] struct {
	policy     Policy
	defaultVal V
	hasDefault bool
	logger     LookupLogger
	programs   ProgramCache
}

// New builds a chain over layers with the supplied resolution policy. The
// policy is fixed for the chain's lifetime. Zero layers is legal; every
// lookup then reports ErrKeyNotFound. PolicyFirstOrDefault needs a default
// value and therefore goes through NewWithDefault.
func New[K comparable, V any](policy Policy, layers ...Layer[K, V]) (*Chain[K, V], error) {
	if policy == PolicyFirstOrDefault {
		return nil, fmt.Errorf("%w: %s needs a default, use NewWithDefault", ErrUnknownPolicy, policy)
	}
	if !policy.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(policy))
	}
	return &Chain[K, V]{
		layers: copyLayers(layers),
		cfg:    chainConfig[V]{policy: policy},
	}, nil
}

// NewWithDefault builds a first-or-default chain: lookups behave like
// PolicyFirst, and a key absent from every layer resolves to def instead
// of failing.
func NewWithDefault[K comparable, V any](def V, layers ...Layer[K, V]) *Chain[K, V] {
	return &Chain[K, V]{
		layers: copyLayers(layers),
		cfg: chainConfig[V]{
			policy:     PolicyFirstOrDefault,
			defaultVal: def,
			hasDefault: true,
		},
	}
}

// Overlay builds a PolicyFirst chain over plain maps, first map strongest.
// The maps are shared, not copied; the first one becomes the writable
// local layer.
func Overlay[K comparable, V any](maps ...map[K]V) *Chain[K, V] {
	layers := make([]Layer[K, V], len(maps))
	for i, m := range maps {
		layers[i] = NewMapLayer(m)
	}
	return &Chain[K, V]{
		layers: layers,
		cfg:    chainConfig[V]{policy: PolicyFirst},
	}
}

func copyLayers[K comparable, V any](layers []Layer[K, V]) []Layer[K, V] {
	out := make([]Layer[K, V], len(layers))
	copy(out, layers)
	return out
}

// Policy returns the resolution policy fixed at construction.
func (c *Chain[K, V]) Policy() Policy { return c.cfg.policy }

// Default returns the configured default value and whether one exists.
func (c *Chain[K, V]) Default() (V, bool) {
	return c.cfg.defaultVal, c.cfg.hasDefault
}

// Len returns the number of layers.
func (c *Chain[K, V]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.layers)
}

// Layers returns a defensive copy of the layer sequence. The layers
// themselves stay shared.
func (c *Chain[K, V]) Layers() []Layer[K, V] {
	if c == nil || len(c.layers) == 0 {
		return nil
	}
	return copyLayers(c.layers)
}

// WithLogger returns a copy of the chain that reports lookups to logger.
// The layer sequence and resolution config carry over unchanged.
func (c *Chain[K, V]) WithLogger(logger LookupLogger) *Chain[K, V] {
	clone := *c
	if logger == nil {
		clone.cfg.logger = noopLookupLogger{}
	} else {
		clone.cfg.logger = logger
	}
	return &clone
}

// WithProgramCache returns a copy of the chain that caches compiled
// selection programs in cache.
func (c *Chain[K, V]) WithProgramCache(cache ProgramCache) *Chain[K, V] {
	clone := *c
	clone.cfg.programs = cache
	return &clone
}

// Get resolves key according to the configured policy.
//
//   - PolicyFirst: value from the earliest containing layer, else
//     ErrKeyNotFound.
//   - PolicyFirstOrDefault: as PolicyFirst, absent keys resolve to the
//     configured default.
//   - PolicyUnique: the single common value when every containing layer
//     agrees; ErrKeyNotFound when none does, ErrInconsistentValue (a
//     *ConflictError carrying the disagreeing values) otherwise.
//   - PolicyAll: scalar resolution does not apply; Get reports
//     ErrAggregatePolicy and callers use GetAll.
func (c *Chain[K, V]) Get(key K) (V, error) {
	start := time.Now()
	value, hit, err := c.resolve(key)
	c.logger().LogLookup(LookupEvent{
		Key:      key,
		Policy:   c.cfg.policy,
		LayerHit: hit,
		Duration: time.Since(start),
		Err:      err,
	})
	return value, err
}

func (c *Chain[K, V]) resolve(key K) (V, int, error) {
	var zero V
	switch c.cfg.policy {
	case PolicyFirst:
		if value, hit, ok := c.first(key); ok {
			return value, hit, nil
		}
		return zero, -1, notFound(key)
	case PolicyFirstOrDefault:
		if value, hit, ok := c.first(key); ok {
			return value, hit, nil
		}
		return c.cfg.defaultVal, -1, nil
	case PolicyUnique:
		return c.unique(key)
	case PolicyAll:
		return zero, -1, fmt.Errorf("%w: key %v", ErrAggregatePolicy, key)
	default:
		return zero, -1, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(c.cfg.policy))
	}
}

func (c *Chain[K, V]) first(key K) (V, int, bool) {
	for i, layer := range c.layers {
		if value, ok := layer.Get(key); ok {
			return value, i, true
		}
	}
	var zero V
	return zero, -1, false
}

func (c *Chain[K, V]) unique(key K) (V, int, error) {
	var zero V
	values, hit, err := c.collect(key)
	if err != nil {
		return zero, -1, err
	}
	for _, value := range values[1:] {
		if !reflect.DeepEqual(values[0], value) {
			conflict := make([]any, len(values))
			for i, v := range values {
				conflict[i] = v
			}
			return zero, -1, &ConflictError{Key: key, Values: conflict}
		}
	}
	return values[0], hit, nil
}

// GetAll returns one value per layer containing key, in layer order. A key
// absent from every layer reports ErrKeyNotFound; GetAll never pairs an
// empty slice with a nil error. This is the resolution operation for
// chains built with PolicyAll and an explicit aggregate query on any
// other chain.
func (c *Chain[K, V]) GetAll(key K) ([]V, error) {
	start := time.Now()
	values, hit, err := c.collect(key)
	c.logger().LogLookup(LookupEvent{
		Key:      key,
		Policy:   c.cfg.policy,
		LayerHit: hit,
		Duration: time.Since(start),
		Err:      err,
	})
	return values, err
}

func (c *Chain[K, V]) collect(key K) ([]V, int, error) {
	var values []V
	hit := -1
	for i, layer := range c.layers {
		if value, ok := layer.Get(key); ok {
			if hit == -1 {
				hit = i
			}
			values = append(values, value)
		}
	}
	if len(values) == 0 {
		return nil, -1, notFound(key)
	}
	return values, hit, nil
}

// Contains reports whether any layer holds key.
func (c *Chain[K, V]) Contains(key K) bool {
	for _, layer := range c.layers {
		if layer.Contains(key) {
			return true
		}
	}
	return false
}

// Keys returns every distinct key across all layers, earliest layer
// first. Within one layer the order follows the layer's own Keys result.
func (c *Chain[K, V]) Keys() []K {
	seen := make(map[K]struct{})
	var out []K
	for _, layer := range c.layers {
		for _, key := range layer.Keys() {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}

// Snapshot materialises the effective first-match view into a plain map.
// The result is detached: later mutation of the chain or its layers does
// not affect it. The configured default is not included; only keys some
// layer holds appear.
func (c *Chain[K, V]) Snapshot() map[K]V {
	out := make(map[K]V)
	for _, layer := range c.layers {
		for _, key := range layer.Keys() {
			if _, ok := out[key]; ok {
				continue
			}
			if value, ok := layer.Get(key); ok {
				out[key] = value
			}
		}
	}
	return out
}

// Set writes key into layer 0, the sole mutable layer; layers 1..n are
// never written. Fails with ErrImmutableLayer when layer 0 does not
// support mutation, including when the chain has no layers at all.
func (c *Chain[K, V]) Set(key K, value V) error {
	local, err := c.local()
	if err != nil {
		return err
	}
	local.Set(key, value)
	return nil
}

// Delete removes key from layer 0 only. A key absent from layer 0 reports
// ErrKeyNotFound even when deeper layers still hold it; after a
// successful delete those layers show through again on lookup
// (fallthrough).
func (c *Chain[K, V]) Delete(key K) error {
	local, err := c.local()
	if err != nil {
		return err
	}
	if !local.Delete(key) {
		return notFound(key)
	}
	return nil
}

func (c *Chain[K, V]) local() (MutableLayer[K, V], error) {
	if len(c.layers) == 0 {
		return nil, fmt.Errorf("%w: chain has no layers", ErrImmutableLayer)
	}
	local, ok := c.layers[0].(MutableLayer[K, V])
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrImmutableLayer, c.layers[0])
	}
	return local, nil
}

// Assign is the chaining form of Set: it applies the write and returns
// the chain so multiple mutations compose. The first failure is retained
// and reported by Err; once recorded, later Assign and Remove calls are
// no-ops until Err drains it.
func (c *Chain[K, V]) Assign(key K, value V) *Chain[K, V] {
	if c.err != nil {
		return c
	}
	c.err = c.Set(key, value)
	return c
}

// Remove is the chaining form of Delete.
func (c *Chain[K, V]) Remove(key K) *Chain[K, V] {
	if c.err != nil {
		return c
	}
	c.err = c.Delete(key)
	return c
}

// Err reports the first deferred error recorded by Assign or Remove and
// clears it.
func (c *Chain[K, V]) Err() error {
	err := c.err
	c.err = nil
	return err
}

func (c *Chain[K, V]) logger() LookupLogger {
	if c.cfg.logger != nil {
		return c.cfg.logger
	}
	return noopLookupLogger{}
}
