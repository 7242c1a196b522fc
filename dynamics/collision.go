package dynamics

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/collide/material"
)

const noStep = math.MaxUint64

// Collision is the persistent record of a touching pair of parts. It refers
// to its parts by key only, so either side may die while it exists.
type Collision struct {
	key     PairKey
	src     *material.Context
	dst     *material.Context
	srcBody BodyID
	dstBody BodyID
	collide bool

	claims int
	// step is the last step whose contacts were folded into the record.
	step uint64

	contactCount int
	prevContacts int
	position     cp.Vector
	normal       cp.Vector
	depth        float64

	impact float64
	skid   float64
	roll   float64

	feedback     []*JointFeedback
	prevFeedback []*JointFeedback
}

func newCollision(key PairKey, src, dst *material.Context, collide bool) *Collision {
	return &Collision{key: key, src: src, dst: dst, collide: collide, step: noStep}
}

func (c *Collision) Key() PairKey        { return c.key }
func (c *Collision) Collide() bool       { return c.collide }
func (c *Collision) Claims() int         { return c.claims }
func (c *Collision) ContactCount() int   { return c.contactCount }
func (c *Collision) Position() cp.Vector { return c.position }
func (c *Collision) Depth() float64      { return c.depth }
func (c *Collision) Impact() float64     { return c.impact }
func (c *Collision) Skid() float64       { return c.skid }
func (c *Collision) Roll() float64       { return c.roll }

// Normal points from the src part to the dst part.
func (c *Collision) Normal() cp.Vector { return c.normal }

// Bodies returns the bodies of the most recent contact, src first.
func (c *Collision) Bodies() (src, dst BodyID) { return c.srcBody, c.dstBody }

// Contexts returns the resolved materials, src first.
func (c *Collision) Contexts() (src, dst *material.Context) { return c.src, c.dst }

// rollover starts the step's accumulation. It reports whether this was the
// first contact-bearing call of the step.
func (c *Collision) rollover(step uint64) bool {
	if c.step == step {
		return false
	}
	c.step = step
	c.prevContacts = c.contactCount
	c.contactCount = 0
	c.prevFeedback = c.feedback
	c.feedback = nil
	return true
}

// accumulate folds contacts into the running unweighted mean of the step.
func (c *Collision) accumulate(contacts []Contact) {
	if len(contacts) == 0 {
		return
	}
	n := float64(c.contactCount)
	pos := c.position.Mult(n)
	depth := c.depth * n
	for _, ct := range contacts {
		pos = pos.Add(ct.Position)
		depth += ct.Depth
	}
	total := n + float64(len(contacts))
	c.position = pos.Mult(1 / total)
	c.depth = depth / total
	c.normal = contacts[0].Normal
	c.contactCount += len(contacts)
}

// newFeedback reserves a slot filled by this step's solve and read by the next
// step's audio estimate.
func (c *Collision) newFeedback() *JointFeedback {
	fb := &JointFeedback{}
	c.feedback = append(c.feedback, fb)
	return fb
}

func (c *Collision) complexSound() bool {
	return c.src.ComplexSound || c.dst.ComplexSound
}
