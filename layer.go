package chain

// Layer is one key-value source within a Chain. Implementations only need
// the read capability set; the chain treats every layer except layer 0 as
// read-only regardless of what the layer itself supports.
type Layer[K comparable, V any] interface {
	// Contains reports whether the layer holds key.
	Contains(key K) bool
	// Get returns the value stored for key and whether it was present.
	Get(key K) (V, bool)
	// Keys returns the layer's key set. Order is implementation-defined.
	Keys() []K
}

// MutableLayer extends Layer with the write capability required of layer 0
// when a chain is used for writes or deletes.
type MutableLayer[K comparable, V any] interface {
	Layer[K, V]
	Set(key K, value V)
	// Delete removes key and reports whether it was present.
	Delete(key K) bool
}

// MapLayer adapts an ordinary map. The map is held by reference: mutations
// through the layer and through the original map are both visible.
type MapLayer[K comparable, V any] struct {
	m map[K]V
}

// NewMapLayer wraps m without copying it. A nil map yields an empty view;
// the first write allocates.
func NewMapLayer[K comparable, V any](m map[K]V) *MapLayer[K, V] {
	return &MapLayer[K, V]{m: m}
}

func (l *MapLayer[K, V]) Contains(key K) bool {
	_, ok := l.m[key]
	return ok
}

func (l *MapLayer[K, V]) Get(key K) (V, bool) {
	value, ok := l.m[key]
	return value, ok
}

func (l *MapLayer[K, V]) Keys() []K {
	keys := make([]K, 0, len(l.m))
	for key := range l.m {
		keys = append(keys, key)
	}
	return keys
}

func (l *MapLayer[K, V]) Set(key K, value V) {
	if l.m == nil {
		l.m = make(map[K]V)
	}
	l.m[key] = value
}

func (l *MapLayer[K, V]) Delete(key K) bool {
	if _, ok := l.m[key]; !ok {
		return false
	}
	delete(l.m, key)
	return true
}

// Len returns the number of entries currently in the layer.
func (l *MapLayer[K, V]) Len() int { return len(l.m) }

// KeyedGetter describes arbitrary objects that expose an iterable key set
// plus a getter, the loosest shape a chain accepts as a layer.
type KeyedGetter[K comparable, V any] interface {
	Keys() []K
	Get(key K) (V, bool)
}

// FromGetter adapts a KeyedGetter into a read-only Layer, deriving
// Contains from the getter.
func FromGetter[K comparable, V any](g KeyedGetter[K, V]) Layer[K, V] {
	return getterLayer[K, V]{g: g}
}

type getterLayer[K comparable, V any] struct {
	g KeyedGetter[K, V]
}

func (l getterLayer[K, V]) Contains(key K) bool {
	_, ok := l.g.Get(key)
	return ok
}

func (l getterLayer[K, V]) Get(key K) (V, bool) { return l.g.Get(key) }

func (l getterLayer[K, V]) Keys() []K { return l.g.Keys() }
