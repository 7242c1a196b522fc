package dynamics

import (
	"slices"

	"github.com/milk9111/collide/material"
	"github.com/milk9111/collide/scene"
)

// Part is a named collision group of a node. It owns rigid bodies and the
// material list they collide with, and tracks the parts it currently touches.
type Part struct {
	dyn       *Dynamics
	id        PartID
	name      string
	node      *scene.Node
	materials []*material.Material
	bodies    []*RigidBody
	// partners maps every tracked partner to the collide flag of the pair.
	partners map[PartKey]bool
	// clocks outlive collision records so sound throttles hold across
	// reconnects.
	clocks    map[soundSlot]*soundClock
	destroyed bool
}

// NewPart creates a part on node and attaches it as a component.
func (d *Dynamics) NewPart(node *scene.Node, name string, mats ...*material.Material) *Part {
	if node == nil || !d.scene.Alive(node.ID()) {
		panic("dynamics: part on dead node")
	}
	d.nextPart++
	p := &Part{
		dyn:       d,
		id:        d.nextPart,
		name:      name,
		node:      node,
		materials: slices.Clone(mats),
		partners:  map[PartKey]bool{},
		clocks:    map[soundSlot]*soundClock{},
	}
	d.parts[p.Key()] = p
	node.AddComponent(p)
	return p
}

func (p *Part) ID() PartID        { return p.id }
func (p *Part) Name() string      { return p.name }
func (p *Part) Node() *scene.Node { return p.node }
func (p *Part) Destroyed() bool   { return p.destroyed }
func (p *Part) Bodies() []*RigidBody {
	return slices.Clone(p.bodies)
}

// Key is the part's identity in collision records.
func (p *Part) Key() PartKey {
	return PartKey{Node: p.node.ID(), Part: p.id}
}

func (p *Part) Materials() []*material.Material {
	return slices.Clone(p.materials)
}

// AddBody builds a rigid body from def and adds it to the world.
func (p *Part) AddBody(def BodyDef) (*RigidBody, error) {
	if p.destroyed {
		return nil, ErrInvalidBody
	}
	return p.dyn.addBody(p, def)
}

// IsCollidingWith reports whether the part touches node, or the given part of
// node, with collision response enabled.
func (p *Part) IsCollidingWith(node scene.NodeID, part ...PartID) bool {
	if len(part) > 0 {
		for _, id := range part {
			if p.partners[PartKey{Node: node, Part: id}] {
				return true
			}
		}
		return false
	}
	for key, collide := range p.partners {
		if collide && key.Node == node {
			return true
		}
	}
	return false
}

// Partners returns the tracked partners in canonical order.
func (p *Part) Partners() []PartKey {
	out := make([]PartKey, 0, len(p.partners))
	for key := range p.partners {
		out = append(out, key)
	}
	slices.SortFunc(out, comparePartKeys)
	return out
}

// SetMaterials replaces the material list. Every owned body is woken and every
// tracked partner reset so the new materials take effect through a fresh
// disconnect and connect on the next step.
func (p *Part) SetMaterials(mats ...*material.Material) {
	p.materials = slices.Clone(mats)
	for _, rb := range p.bodies {
		rb.Wake()
	}
	self := p.Key()
	for _, other := range p.Partners() {
		p.dyn.registry.ResetCollision(self, other)
	}
}

// Destroy removes the part and its bodies. Collisions involving it are
// collected on the next step.
func (p *Part) Destroy() {
	if p == nil || p.destroyed {
		return
	}
	p.dyn.destroyPart(p)
}

func comparePartKeys(a, b PartKey) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}
