package dynamics

import (
	"cmp"
	"slices"

	"github.com/jakecoffman/cp"
)

// CollisionCache indexes static trimesh triangles outside the space so large
// level geometry never enters the engine's own broad phase.
type CollisionCache struct {
	index  *cp.SpatialIndex
	meshes map[*RigidBody][]*cp.Shape
	nextID cp.HashValue
	dirty  bool
}

func NewCollisionCache() *CollisionCache {
	return &CollisionCache{
		index:  cp.NewBBTree(cp.ShapeGetBB, nil),
		meshes: map[*RigidBody][]*cp.Shape{},
	}
}

func (c *CollisionCache) tree() *cp.BBTree {
	return c.index.GetTree()
}

// AddTrimesh indexes every triangle of rb.
func (c *CollisionCache) AddTrimesh(rb *RigidBody) {
	if _, ok := c.meshes[rb]; ok {
		return
	}
	for _, g := range rb.geoms {
		g.CacheBB()
		c.nextID++
		g.SetHashId(c.nextID)
		c.tree().Insert(g, g.HashId())
	}
	c.meshes[rb] = rb.geoms
	c.dirty = true
}

// RemoveTrimesh drops rb from the index.
func (c *CollisionCache) RemoveTrimesh(rb *RigidBody) {
	geoms, ok := c.meshes[rb]
	if !ok {
		return
	}
	for _, g := range geoms {
		c.tree().Remove(g, g.HashId())
	}
	delete(c.meshes, rb)
}

// Precalc refreshes triangle bounds after meshes were added or moved.
func (c *CollisionCache) Precalc() {
	if !c.dirty {
		return
	}
	for _, geoms := range c.meshes {
		for _, g := range geoms {
			c.tree().Remove(g, g.HashId())
			g.CacheBB()
			c.tree().Insert(g, g.HashId())
		}
	}
	c.dirty = false
}

// Invalidate marks the index stale, e.g. after a mesh was moved.
func (c *CollisionCache) Invalidate() {
	c.dirty = true
}

// Len returns the number of indexed triangles.
func (c *CollisionCache) Len() int {
	return c.tree().Count()
}

// Query calls fn for every triangle whose bounds overlap bb.
func (c *CollisionCache) Query(bb cp.BB, fn func(tri *cp.Shape)) {
	c.tree().Query(nil, bb, func(_ interface{}, tri *cp.Shape, id uint32, _ interface{}) uint32 {
		if tri.BB().Intersects(bb) {
			fn(tri)
		}
		return id
	}, nil)
}

// CollideAgainstSpace offers every non-static geom of the space to fn paired
// with each triangle near it.
func (c *CollisionCache) CollideAgainstSpace(space *cp.Space, fn func(geom, tri *cp.Shape)) {
	if c.Len() == 0 {
		return
	}
	c.Precalc()
	var geoms []*cp.Shape
	space.EachShape(func(s *cp.Shape) {
		if s.Body().GetType() != cp.BODY_STATIC {
			geoms = append(geoms, s)
		}
	})
	slices.SortFunc(geoms, func(a, b *cp.Shape) int { return cmp.Compare(a.HashId(), b.HashId()) })
	for _, g := range geoms {
		g.CacheBB()
		c.Query(g.BB(), func(tri *cp.Shape) { fn(g, tri) })
	}
}
