package prefabs

import "github.com/milk9111/collide/dynamics"

// IgnoreFilter vetoes collisions with nodes of the listed names.
type IgnoreFilter struct {
	names map[string]struct{}
}

var _ dynamics.CollisionPreFilter = (*IgnoreFilter)(nil)

func NewIgnoreFilter(names ...string) *IgnoreFilter {
	f := &IgnoreFilter{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		f.names[n] = struct{}{}
	}
	return f
}

func (f *IgnoreFilter) PreFilterCollision(self, other *dynamics.RigidBody) bool {
	if f == nil || other == nil || other.Part() == nil {
		return true
	}
	_, skip := f.names[other.Part().Node().Name()]
	return !skip
}
