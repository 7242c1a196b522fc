package dynamics

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/collide/audio"
	"github.com/milk9111/collide/common"
	"github.com/milk9111/collide/material"
	"github.com/milk9111/collide/scene"
)

// geomCollisionType tags every geom in the space. Its handler rejects all
// pairs so the engine never builds contacts of its own.
const geomCollisionType cp.CollisionType = 1

// Dynamics owns the physics space and the collision registry of a scene.
// Everything except the audio pool must be used from the stepping goroutine.
type Dynamics struct {
	cfg   Config
	log   common.Logger
	scene *scene.Scene
	space *cp.Space
	cache *CollisionCache
	pool  audio.Pool

	registry *CollisionRegistry
	parts    map[PartKey]*Part
	bodies   []*RigidBody
	joints   map[*Joint]struct{}
	contacts []*cp.Constraint
	touching map[*RigidBody][]*RigidBody

	nextPart PartID
	nextBody BodyID

	stepping atomic.Bool
	sweeping bool
	doomed   []*Part

	stepCount uint64
	now       time.Duration
}

type Option func(*Dynamics)

func WithConfig(cfg Config) Option {
	return func(d *Dynamics) { d.cfg = cfg }
}

func WithLogger(logger common.Logger) Option {
	return func(d *Dynamics) {
		if logger != nil {
			d.log = logger
		}
	}
}

// WithAudio routes collision sounds to pool.
func WithAudio(pool audio.Pool) Option {
	return func(d *Dynamics) {
		if pool != nil {
			d.pool = pool
		}
	}
}

// WithFallbackMaterial sets the material used when none of a part's list
// applies to its partner.
func WithFallbackMaterial(m *material.Material) Option {
	return func(d *Dynamics) { d.registry.fallback = m }
}

// New creates the dynamics of sc. Parts are torn down with their nodes.
func New(sc *scene.Scene, opts ...Option) (*Dynamics, error) {
	if sc == nil {
		return nil, fmt.Errorf("dynamics: nil scene: %w", ErrInternal)
	}
	d := &Dynamics{
		cfg:      DefaultConfig(),
		log:      common.NopLogger{},
		scene:    sc,
		cache:    NewCollisionCache(),
		pool:     audio.NewNullPool(),
		parts:    map[PartKey]*Part{},
		joints:   map[*Joint]struct{}{},
		touching: map[*RigidBody][]*RigidBody{},
	}
	d.registry = NewCollisionRegistry(d.part, nil)
	d.registry.onRemove = d.silence
	for _, opt := range opts {
		opt(d)
	}
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	d.space = cp.NewSpace()
	d.space.Iterations = uint(d.cfg.Iterations)
	d.space.SetGravity(cp.Vector{X: d.cfg.GravityX, Y: d.cfg.GravityY})
	handler := d.space.NewCollisionHandler(geomCollisionType, geomCollisionType)
	handler.BeginFunc = func(*cp.Arbiter, *cp.Space, interface{}) bool { return false }

	sc.OnDestroy(d.nodeDestroyed)
	return d, nil
}

func (d *Dynamics) Config() Config               { return d.cfg }
func (d *Dynamics) Scene() *scene.Scene          { return d.scene }
func (d *Dynamics) Space() *cp.Space             { return d.space }
func (d *Dynamics) Cache() *CollisionCache       { return d.cache }
func (d *Dynamics) Registry() *CollisionRegistry { return d.registry }
func (d *Dynamics) StepCount() uint64            { return d.stepCount }
func (d *Dynamics) Bodies() []*RigidBody         { return slices.Clone(d.bodies) }

// Now is the simulated time, advanced by one step size per Step.
func (d *Dynamics) Now() time.Duration { return d.now }

// Part returns a live part by key.
func (d *Dynamics) Part(key PartKey) *Part {
	return d.part(key)
}

func (d *Dynamics) part(key PartKey) *Part {
	return d.parts[key]
}

// Collisions returns the live collision records in canonical order.
func (d *Dynamics) Collisions() []*Collision {
	return d.registry.Collisions()
}

// AreColliding reports whether two parts currently collide.
func (d *Dynamics) AreColliding(n1 scene.NodeID, p1 PartID, n2 scene.NodeID, p2 PartID) bool {
	return d.registry.AreColliding(PartKey{Node: n1, Part: p1}, PartKey{Node: n2, Part: p2})
}

// ResetCollision forgets the collision of two parts at the start of the next
// step, firing its disconnect actions if it collided. It panics when called
// from inside the collision sweep.
func (d *Dynamics) ResetCollision(n1 scene.NodeID, p1 PartID, n2 scene.NodeID, p2 PartID) {
	d.registry.ResetCollision(PartKey{Node: n1, Part: p1}, PartKey{Node: n2, Part: p2})
}

// Step advances the world by one fixed step: collisions are processed, their
// scripted actions run, and then the space integrates.
func (d *Dynamics) Step() {
	if !d.stepping.CompareAndSwap(false, true) {
		panic("dynamics: Step re-entered or called concurrently")
	}
	defer d.stepping.Store(false)

	d.processCollisions()
	d.space.Step(d.cfg.StepSize)
	d.clearContacts()
	d.updateAutoDisable()

	d.stepCount++
	d.now += d.cfg.stepDuration()
}

func (d *Dynamics) processCollisions() {
	r := d.registry
	r.consumeResets()
	r.resetClaims()
	clear(d.touching)

	r.locked = true
	d.sweeping = true
	for _, c := range d.candidates() {
		d.collide(c.a, c.b)
	}
	removed := r.collect()
	d.sweeping = false
	r.locked = false

	for _, p := range d.doomed {
		d.destroyPart(p)
	}
	d.doomed = d.doomed[:0]

	ran := r.events.flush(d.scene, d.log)
	if d.log.DebugEnabled() && (removed > 0 || ran > 0) {
		d.log.Debugf("step %d: %d collisions, %d collected, %d actions", d.stepCount, r.Len(), removed, ran)
	}
}

func (d *Dynamics) clearContacts() {
	for _, c := range d.contacts {
		d.space.RemoveConstraint(c)
	}
	clear(d.contacts)
	d.contacts = d.contacts[:0]
}

func (d *Dynamics) addBody(p *Part, def BodyDef) (*RigidBody, error) {
	if err := validate(def); err != nil {
		return nil, err
	}
	var body *cp.Body
	var mass float64
	switch def.Type {
	case BodyStatic:
		body = cp.NewStaticBody()
	case BodyKinematic:
		body = cp.NewKinematicBody()
	case BodyDynamic:
		m, moment, err := massFor(def)
		if err != nil {
			return nil, err
		}
		mass = m
		body = cp.NewBody(m, moment)
	default:
		return nil, fmt.Errorf("body type %d: %w", def.Type, ErrInternal)
	}
	body.SetPosition(def.Position)
	body.SetAngle(def.Angle)

	geoms, err := buildGeoms(body, def)
	if err != nil {
		return nil, err
	}

	d.nextBody++
	rb := &RigidBody{
		id:            d.nextBody,
		part:          p,
		kind:          def.Kind,
		typ:           def.Type,
		body:          body,
		geoms:         geoms,
		mass:          mass,
		collideType:   def.CollideType,
		collideMask:   def.CollideMask,
		wakeOnCollide: def.WakeOnCollide,
		enabled:       true,
		joints:        map[*Joint]struct{}{},
	}
	if rb.collideType == 0 {
		rb.collideType = DefaultCollideType
	}
	if rb.collideMask == 0 {
		rb.collideMask = ^uint32(0)
	}
	body.UserData = rb
	for _, g := range geoms {
		g.UserData = rb
		g.SetCollisionType(geomCollisionType)
	}

	if def.Kind == ShapeTrimesh {
		for _, g := range geoms {
			g.CacheBB()
		}
		d.cache.AddTrimesh(rb)
	} else {
		d.space.AddBody(body)
		for _, g := range geoms {
			d.space.AddShape(g)
		}
	}
	if def.Type != BodyStatic && def.Velocity != (cp.Vector{}) {
		body.SetVelocityVector(def.Velocity)
	}

	p.bodies = append(p.bodies, rb)
	d.bodies = append(d.bodies, rb)
	return rb, nil
}

func (d *Dynamics) destroyBody(rb *RigidBody) {
	if rb.destroyed {
		return
	}
	for _, j := range rb.Joints() {
		j.Destroy()
	}
	rb.destroyed = true
	d.contacts = slices.DeleteFunc(d.contacts, func(c *cp.Constraint) bool {
		j, ok := c.Class.(*contactJoint)
		if !ok || (j.a != rb.body && j.b != rb.body) {
			return false
		}
		d.space.RemoveConstraint(c)
		return true
	})
	if rb.kind == ShapeTrimesh {
		d.cache.RemoveTrimesh(rb)
	} else {
		for _, g := range rb.geoms {
			d.space.RemoveShape(g)
		}
		d.space.RemoveBody(rb.body)
	}
	delete(d.touching, rb)
	d.bodies = slices.DeleteFunc(d.bodies, func(x *RigidBody) bool { return x == rb })
	if p := rb.part; p != nil {
		p.bodies = slices.DeleteFunc(p.bodies, func(x *RigidBody) bool { return x == rb })
	}
}

// destroyPart removes a part and its bodies. Inside the sweep the teardown is
// deferred until the sweep ends.
func (d *Dynamics) destroyPart(p *Part) {
	if p.destroyed {
		return
	}
	if d.sweeping {
		if !slices.Contains(d.doomed, p) {
			d.doomed = append(d.doomed, p)
		}
		return
	}
	for _, rb := range slices.Clone(p.bodies) {
		d.destroyBody(rb)
	}
	p.destroyed = true
	delete(d.parts, p.Key())
	p.node.RemoveComponent(p)
}

func (d *Dynamics) nodeDestroyed(n *scene.Node) {
	for _, p := range scene.ComponentsOf[*Part](n) {
		if p.dyn == d {
			d.destroyPart(p)
		}
	}
}
