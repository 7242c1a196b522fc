package dynamics

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// Joint welds two bodies together. It dies with either body.
type Joint struct {
	dyn         *Dynamics
	a, b        *RigidBody
	constraints []*cp.Constraint
	destroyed   bool
}

// AttachFixed welds a and b at their current relative pose.
func (d *Dynamics) AttachFixed(a, b *RigidBody) (*Joint, error) {
	switch {
	case a == nil || b == nil || a.destroyed || b.destroyed:
		return nil, fmt.Errorf("attach: dead body: %w", ErrInvalidBody)
	case a == b:
		return nil, fmt.Errorf("attach: body to itself: %w", ErrInvalidBody)
	case a.typ != BodyDynamic && b.typ != BodyDynamic:
		return nil, fmt.Errorf("attach: no dynamic body: %w", ErrInvalidBody)
	}
	ba, bb := a.body, b.body
	anchor := ba.Position().Lerp(bb.Position(), 0.5)
	j := &Joint{
		dyn: d,
		a:   a,
		b:   b,
		constraints: []*cp.Constraint{
			cp.NewPivotJoint(ba, bb, anchor),
			cp.NewGearJoint(ba, bb, bb.Angle()-ba.Angle(), 1),
		},
	}
	for _, c := range j.constraints {
		c.SetCollideBodies(false)
		d.space.AddConstraint(c)
	}
	a.joints[j] = struct{}{}
	b.joints[j] = struct{}{}
	a.Wake()
	b.Wake()
	d.joints[j] = struct{}{}
	return j, nil
}

// Bodies returns both endpoints.
func (j *Joint) Bodies() (*RigidBody, *RigidBody) {
	return j.a, j.b
}

func (j *Joint) Alive() bool {
	return j != nil && !j.destroyed
}

// Destroy removes the joint from the world.
func (j *Joint) Destroy() {
	if j == nil || j.destroyed {
		return
	}
	j.destroyed = true
	for _, c := range j.constraints {
		j.dyn.space.RemoveConstraint(c)
	}
	delete(j.a.joints, j)
	delete(j.b.joints, j)
	delete(j.dyn.joints, j)
	j.a.Wake()
	j.b.Wake()
}

func (j *Joint) other(rb *RigidBody) *RigidBody {
	if j.a == rb {
		return j.b
	}
	return j.a
}
