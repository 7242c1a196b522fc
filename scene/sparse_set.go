package scene

// SparseSet is a dense storage keyed by small positive integers.
type SparseSet[T any] struct {
	denseKeys   []int
	denseValues []T
	sparse      []int
}

// Has returns true if the key exists in the set.
func (s *SparseSet[T]) Has(key int) bool {
	if s == nil || key <= 0 || key-1 >= len(s.sparse) {
		return false
	}
	idx := s.sparse[key-1]
	return idx >= 0 && idx < len(s.denseKeys) && s.denseKeys[idx] == key
}

// Get returns the value for key.
func (s *SparseSet[T]) Get(key int) (T, bool) {
	var zero T
	if !s.Has(key) {
		return zero, false
	}
	return s.denseValues[s.sparse[key-1]], true
}

// Set inserts or updates the value for key.
func (s *SparseSet[T]) Set(key int, v T) {
	if s == nil || key <= 0 {
		return
	}
	for key-1 >= len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.Has(key) {
		s.denseValues[s.sparse[key-1]] = v
		return
	}
	s.denseKeys = append(s.denseKeys, key)
	s.denseValues = append(s.denseValues, v)
	s.sparse[key-1] = len(s.denseKeys) - 1
}

// Remove deletes the value for key if present.
func (s *SparseSet[T]) Remove(key int) {
	if s == nil || !s.Has(key) {
		return
	}
	idx := s.sparse[key-1]
	last := len(s.denseKeys) - 1
	lastKey := s.denseKeys[last]

	s.denseKeys[idx] = s.denseKeys[last]
	s.denseValues[idx] = s.denseValues[last]
	s.sparse[lastKey-1] = idx

	var zero T
	s.denseValues[last] = zero
	s.denseKeys = s.denseKeys[:last]
	s.denseValues = s.denseValues[:last]
	s.sparse[key-1] = -1
}

// Len returns the number of stored values.
func (s *SparseSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.denseKeys)
}

// Values returns the dense value list. Order changes on Remove.
func (s *SparseSet[T]) Values() []T {
	if s == nil {
		return nil
	}
	return s.denseValues
}
