package cmap

// Range calls fn for every entry until fn returns false. fn must not
// write to the map.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		for k, v := range s.items {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Keys returns all keys.
func (m *Map[K, V]) Keys() []K {
	keys := make([]K, 0, m.Count())
	m.Range(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Values returns all values.
func (m *Map[K, V]) Values() []V {
	values := make([]V, 0, m.Count())
	m.Range(func(_ K, value V) bool {
		values = append(values, value)
		return true
	})
	return values
}

// Filter returns the values for which keep reports true.
func (m *Map[K, V]) Filter(keep func(key K, value V) bool) []V {
	var out []V
	m.Range(func(k K, v V) bool {
		if keep(k, v) {
			out = append(out, v)
		}
		return true
	})
	return out
}
