package cache

// noopCache is a Cache implementation that stores nothing. It is used as a
// fallback when a real cache cannot be constructed, so callers never need a
// nil check on the hot path.
type noopCache[V any] struct {
	stats *Statistics
}

// NewNoop creates a cache that drops every write and misses every read.
func NewNoop[V any]() Cache[V] {
	return &noopCache[V]{stats: NewStatistics()}
}

func (n *noopCache[V]) Get(_ string) (V, bool) {
	var zero V
	n.stats.Miss()
	return zero, false
}

func (n *noopCache[V]) Set(key string, _ V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	n.stats.Set()
	return false, nil
}

func (n *noopCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	return false, nil
}

func (n *noopCache[V]) Clear() error { return nil }

func (n *noopCache[V]) Size() int { return 0 }

func (n *noopCache[V]) Keys() []string { return nil }

func (n *noopCache[V]) Stats() *Statistics { return n.stats }

func (n *noopCache[V]) Close() error { return nil }
