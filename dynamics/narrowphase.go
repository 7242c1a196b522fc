package dynamics

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/collide/scene"
)

// CollisionPreFilter is implemented by node components that want a say in
// which pairs are tested. Returning false vetoes the pair for this step.
type CollisionPreFilter interface {
	PreFilterCollision(self, other *RigidBody) bool
}

type candidate struct {
	a, b *cp.Shape
}

// candidates gathers every pair of overlapping bounds in discovery order:
// space geoms against the space, then space geoms against the trimesh cache.
func (d *Dynamics) candidates() []candidate {
	type pairID [2]cp.HashValue
	seen := map[pairID]struct{}{}
	var out []candidate

	for _, rb := range d.bodies {
		if rb.typ == BodyStatic || rb.destroyed {
			continue
		}
		for _, g := range rb.geoms {
			g.CacheBB()
			d.space.BBQuery(g.BB(), cp.SHAPE_FILTER_ALL, func(other *cp.Shape, _ interface{}) {
				if other == g || other.Body() == g.Body() {
					return
				}
				id := pairID{g.HashId(), other.HashId()}
				if id[1] < id[0] {
					id[0], id[1] = id[1], id[0]
				}
				if _, dup := seen[id]; dup {
					return
				}
				seen[id] = struct{}{}
				out = append(out, candidate{a: g, b: other})
			}, nil)
		}
	}
	d.cache.CollideAgainstSpace(d.space, func(g, tri *cp.Shape) {
		out = append(out, candidate{a: g, b: tri})
	})
	return out
}

// collide is the narrow-phase callback for one candidate pair.
func (d *Dynamics) collide(g1, g2 *cp.Shape) {
	rb1, rb2 := bodyOf(g1), bodyOf(g2)
	if rb1 == nil || rb2 == nil || rb1.part == nil || rb2.part == nil {
		panic("dynamics: geometry without owning part")
	}
	if rb1.destroyed || rb2.destroyed || rb1.part == rb2.part {
		return
	}
	p1, p2 := rb1.part, rb2.part

	if (rb1.IsTrimesh() && rb2.sleeping()) || (rb2.IsTrimesh() && rb1.sleeping()) {
		d.registry.touch(p1.Key(), p2.Key())
		return
	}
	if !rb1.accepts(rb2) {
		return
	}
	if !preFilter(p1.node, rb1, rb2) || !preFilter(p2.node, rb2, rb1) {
		return
	}

	contacts := d.generateContacts(g1, g2)
	if len(contacts) == 0 {
		return
	}

	col, _, _ := d.registry.GetOrCreate(p1, p2)
	if col.key.Src != p1.Key() {
		rb1, rb2 = rb2, rb1
		for i := range contacts {
			contacts[i].Normal = contacts[i].Normal.Neg()
		}
	}
	if !col.collide {
		return
	}
	col.srcBody, col.dstBody = rb1.id, rb2.id

	first := col.rollover(d.stepCount)
	col.accumulate(contacts)

	if first && col.complexSound() {
		d.estimateAudio(col, rb1, rb2)
	}
	if first && col.prevContacts == 0 {
		d.playConnect(col)
	}

	if !col.src.Physical || !col.dst.Physical {
		return
	}
	d.respond(col, rb1, rb2, contacts)
}

// respond wakes the pair as needed and creates one contact joint per contact.
func (d *Dynamics) respond(col *Collision, rb1, rb2 *RigidBody, contacts []Contact) {
	surface := blendSurface(d.cfg, col.src, col.dst)

	if rb1.wakeOnCollide || rb2.wakeOnCollide {
		rb1.Wake()
		rb2.Wake()
	}
	if rb1.sleeping() && active(rb2, d.cfg.AutoDisable) {
		rb1.Wake()
	}
	if rb2.sleeping() && active(rb1, d.cfg.AutoDisable) {
		rb2.Wake()
	}
	if !movable(rb1) && !movable(rb2) {
		return
	}
	if rb1.typ == BodyDynamic && rb2.typ == BodyDynamic {
		d.touching[rb1] = append(d.touching[rb1], rb2)
		d.touching[rb2] = append(d.touching[rb2], rb1)
	}

	for i := range contacts {
		contacts[i].Surface = surface
		for _, fn := range rb1.callbacks {
			if !fn(&contacts[i], rb1, rb2) {
				return
			}
		}
		for _, fn := range rb2.callbacks {
			if !fn(&contacts[i], rb2, rb1) {
				return
			}
		}
	}

	for i := range contacts {
		var fb *JointFeedback
		if col.complexSound() {
			fb = col.newFeedback()
		}
		c := newContactJoint(rb1, rb2, &contacts[i], fb)
		d.space.AddConstraint(c)
		d.contacts = append(d.contacts, c)
	}
}

// generateContacts returns the penetrating contacts of two geoms with the
// normal pointing from g1 to g2.
// generateContacts caps each geom pair at MaxContacts. A record may sum
// more across the pairs of its parts.
func (d *Dynamics) generateContacts(g1, g2 *cp.Shape) []Contact {
	set := cp.ShapesCollide(g1, g2)
	var out []Contact
	for i := 0; i < set.Count && len(out) < d.cfg.MaxContacts; i++ {
		pt := set.Points[i]
		if pt.Distance > 0 {
			continue
		}
		out = append(out, Contact{
			Position: pt.PointA.Lerp(pt.PointB, 0.5),
			Normal:   set.Normal,
			Depth:    -pt.Distance,
		})
	}
	return out
}

// active reports whether rb wakes disabled bodies it touches.
func active(rb *RigidBody, cfg AutoDisableConfig) bool {
	switch rb.typ {
	case BodyDynamic:
		return rb.enabled && !rb.resting(cfg)
	case BodyKinematic:
		return rb.body.Velocity().LengthSq() > 0 || rb.body.AngularVelocity() != 0
	}
	return false
}

func movable(rb *RigidBody) bool {
	return rb.typ == BodyDynamic && rb.enabled
}

func preFilter(n *scene.Node, self, other *RigidBody) bool {
	for _, f := range scene.ComponentsOf[CollisionPreFilter](n) {
		if !f.PreFilterCollision(self, other) {
			return false
		}
	}
	return true
}
