package dynamics

import (
	"slices"

	"github.com/milk9111/collide/material"
)

type resetRequest struct {
	a, b PartKey
}

// CollisionRegistry owns every Collision, keyed by canonical part pair.
type CollisionRegistry struct {
	records  map[PairKey]*Collision
	lookup   func(PartKey) *Part
	fallback *material.Material
	events   eventQueue
	resets   []resetRequest
	locked   bool

	// onRemove runs for every record leaving the registry.
	onRemove func(*Collision)
}

// NewCollisionRegistry creates a registry resolving parts through lookup. A
// nil fallback resolves unmatched material lists to material.Default().
func NewCollisionRegistry(lookup func(PartKey) *Part, fallback *material.Material) *CollisionRegistry {
	return &CollisionRegistry{
		records:  map[PairKey]*Collision{},
		lookup:   lookup,
		fallback: fallback,
	}
}

// Len returns the number of live records.
func (r *CollisionRegistry) Len() int {
	return len(r.records)
}

// Lookup returns the record of a pair in either order, or nil.
func (r *CollisionRegistry) Lookup(a, b PartKey) *Collision {
	key, _ := Canonical(a, b)
	return r.records[key]
}

// AreColliding reports whether a live record with collision response exists.
// It never creates one.
func (r *CollisionRegistry) AreColliding(a, b PartKey) bool {
	col := r.Lookup(a, b)
	return col != nil && col.collide
}

// Collisions returns the live records in canonical order.
func (r *CollisionRegistry) Collisions() []*Collision {
	out := make([]*Collision, 0, len(r.records))
	for _, col := range r.records {
		out = append(out, col)
	}
	slices.SortFunc(out, func(x, y *Collision) int {
		switch {
		case x.key.Less(y.key):
			return -1
		case y.key.Less(x.key):
			return 1
		}
		return 0
	})
	return out
}

// GetOrCreate claims the record of a and b, creating it on first contact.
// The returned contexts are in argument order. Every call bumps the claim
// count, including the creating one.
func (r *CollisionRegistry) GetOrCreate(a, b *Part) (col *Collision, ctxA, ctxB *material.Context) {
	key, swapped := Canonical(a.Key(), b.Key())
	col = r.records[key]
	if col == nil {
		col = r.create(key, a, b, swapped)
	}
	col.claims++
	if swapped {
		return col, col.dst, col.src
	}
	return col, col.src, col.dst
}

func (r *CollisionRegistry) create(key PairKey, a, b *Part, swapped bool) *Collision {
	src, dst := a, b
	if swapped {
		src, dst = b, a
	}
	srcCtx := material.Resolve(src.materials, dst.materials, r.fallback)
	dstCtx := material.Resolve(dst.materials, src.materials, r.fallback)

	nodeDisabled := src.node.CollideDisabled || dst.node.CollideDisabled
	collide := srcCtx.Collide && dstCtx.Collide &&
		(!nodeDisabled || srcCtx.IgnoreNodeCollide || dstCtx.IgnoreNodeCollide)

	col := newCollision(key, srcCtx, dstCtx, collide)
	r.records[key] = col
	src.partners[key.Dst] = collide
	dst.partners[key.Src] = collide
	if collide {
		r.events.push(key.Src.Node, key.Dst.Node, srcCtx.OnConnect, col)
		r.events.push(key.Dst.Node, key.Src.Node, dstCtx.OnConnect, col)
	}
	return col
}

// touch claims an existing record without creating one.
func (r *CollisionRegistry) touch(a, b PartKey) {
	if col := r.Lookup(a, b); col != nil {
		col.claims++
	}
}

// ResetCollision queues removal of the record of a and b for the start of the
// next step. It panics while contacts are being swept.
func (r *CollisionRegistry) ResetCollision(a, b PartKey) {
	if r.locked {
		panic("dynamics: ResetCollision during collision sweep")
	}
	r.resets = append(r.resets, resetRequest{a: a, b: b})
}

// PendingResets returns the number of queued reset requests.
func (r *CollisionRegistry) PendingResets() int {
	return len(r.resets)
}

func (r *CollisionRegistry) consumeResets() {
	for _, req := range r.resets {
		key, _ := Canonical(req.a, req.b)
		if col := r.records[key]; col != nil {
			r.remove(col)
		}
	}
	clear(r.resets)
	r.resets = r.resets[:0]
}

func (r *CollisionRegistry) resetClaims() {
	for _, col := range r.records {
		col.claims = 0
	}
}

// collect removes every record nobody claimed this step. It returns the
// number removed.
func (r *CollisionRegistry) collect() int {
	var dead []PairKey
	for key, col := range r.records {
		if col.claims == 0 {
			dead = append(dead, key)
		}
	}
	slices.SortFunc(dead, func(x, y PairKey) int {
		if x.Less(y) {
			return -1
		}
		return 1
	})
	for _, key := range dead {
		r.remove(r.records[key])
	}
	return len(dead)
}

// remove drops a record. Disconnect actions are queued only for pairs that
// collided; membership is retracted from whichever parts are still alive.
func (r *CollisionRegistry) remove(col *Collision) {
	key := col.key
	delete(r.records, key)
	if col.collide {
		r.events.push(key.Src.Node, key.Dst.Node, col.src.OnDisconnect, col)
		r.events.push(key.Dst.Node, key.Src.Node, col.dst.OnDisconnect, col)
	}
	if p := r.lookup(key.Src); p != nil {
		delete(p.partners, key.Dst)
	}
	if p := r.lookup(key.Dst); p != nil {
		delete(p.partners, key.Src)
	}
	if r.onRemove != nil {
		r.onRemove(col)
	}
}
