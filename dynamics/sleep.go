package dynamics

import (
	"math"

	"github.com/jakecoffman/cp"
)

func frozenVelocity(*cp.Body, cp.Vector, float64, float64) {}

func frozenPosition(*cp.Body, float64) {}

// Wake re-enables a disabled dynamic body and everything welded to it.
func (rb *RigidBody) Wake() {
	if rb == nil || rb.destroyed {
		return
	}
	if rb.typ != BodyDynamic || rb.enabled {
		return
	}
	rb.idle = 0
	rb.enabled = true
	rb.body.SetVelocityUpdateFunc(cp.BodyUpdateVelocity)
	rb.body.SetPositionUpdateFunc(cp.BodyUpdatePosition)
	for j := range rb.joints {
		j.other(rb).Wake()
	}
}

// Disable stops integrating a dynamic body until it is woken.
func (rb *RigidBody) Disable() {
	if rb == nil || rb.destroyed || rb.typ != BodyDynamic || !rb.enabled {
		return
	}
	rb.enabled = false
	rb.body.SetVelocityVector(cp.Vector{})
	rb.body.SetAngularVelocity(0)
	rb.body.SetVelocityUpdateFunc(frozenVelocity)
	rb.body.SetPositionUpdateFunc(frozenPosition)
}

func (rb *RigidBody) resting(cfg AutoDisableConfig) bool {
	return rb.body.Velocity().Length() < cfg.LinearThreshold &&
		math.Abs(rb.body.AngularVelocity()) < cfg.AngularThreshold
}

// updateAutoDisable advances idle timers and disables bodies that stayed at
// rest for the configured time together with their welded partners.
func (d *Dynamics) updateAutoDisable() {
	cfg := d.cfg.AutoDisable
	if !cfg.Enabled {
		return
	}
	for _, rb := range d.bodies {
		if rb.typ != BodyDynamic || !rb.enabled {
			continue
		}
		if rb.resting(cfg) {
			rb.idle += d.cfg.StepSize
		} else {
			rb.idle = 0
		}
	}
	var settled []*RigidBody
	for _, rb := range d.bodies {
		if rb.typ != BodyDynamic || !rb.enabled || rb.idle < cfg.IdleTime {
			continue
		}
		if d.partnersSettled(rb, cfg) {
			settled = append(settled, rb)
		}
	}
	for _, rb := range settled {
		rb.Disable()
	}
}

// partnersSettled reports whether every enabled dynamic body welded to or
// touching rb is ready to be disabled too.
func (d *Dynamics) partnersSettled(rb *RigidBody, cfg AutoDisableConfig) bool {
	ready := func(other *RigidBody) bool {
		return other.typ != BodyDynamic || !other.enabled || other.idle >= cfg.IdleTime
	}
	for j := range rb.joints {
		if !ready(j.other(rb)) {
			return false
		}
	}
	for _, other := range d.touching[rb] {
		if !ready(other) {
			return false
		}
	}
	return true
}
