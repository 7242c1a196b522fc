package scene

// nodeStore tracks node generations and free slots. Index 0 is never used so
// the zero NodeID stays invalid.
type nodeStore struct {
	gen  []generation
	free []nodeIndex
}

func (s *nodeStore) create() NodeID {
	var idx nodeIndex
	if len(s.free) > 0 {
		idx = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gen = append(s.gen, 0)
		idx = nodeIndex(len(s.gen))
	}
	return makeNodeID(idx, s.gen[idx-1])
}

func (s *nodeStore) destroy(id NodeID) bool {
	if !s.isAlive(id) {
		return false
	}
	idx := id.index()
	s.gen[idx-1]++
	s.free = append(s.free, idx)
	return true
}

func (s *nodeStore) isAlive(id NodeID) bool {
	idx := id.index()
	if idx == 0 || int(idx) > len(s.gen) {
		return false
	}
	return s.gen[idx-1] == id.generation()
}

func (s *nodeStore) count() int {
	return len(s.gen) - len(s.free)
}
