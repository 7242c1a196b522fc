package dynamics

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/collide/common"
	"github.com/milk9111/collide/material"
)

// Surface holds the solver parameters of one contact.
type Surface struct {
	Friction float64
	Bounce   float64
	// BounceVelocity is the minimum approach speed that bounces.
	BounceVelocity float64
	ERP            float64
	CFM            float64
}

// blendSurface mixes two resolved material contexts, src first. Stiffness and
// damping turn into ERP/CFM for the fixed step so the contact behaves like a
// spring-damper.
func blendSurface(cfg Config, src, dst *material.Context) Surface {
	k := math.Max(cfg.StiffnessScale*common.GeoMean(src.Stiffness, dst.Stiffness), cfg.StiffnessFloor)
	d := cfg.DampingScale*src.Damping + dst.Damping
	hk := cfg.StepSize * k
	return Surface{
		Friction:       cfg.FrictionScale * common.GeoMean(src.Friction, dst.Friction),
		Bounce:         common.GeoMean(src.Bounce, dst.Bounce),
		BounceVelocity: cfg.BounceVelocity,
		ERP:            hk / (hk + d),
		CFM:            1 / (hk + d),
	}
}

// Contact is one contact point handed to collide callbacks. Callbacks may
// adjust Surface in place.
type Contact struct {
	Position cp.Vector
	// Normal points from the first body of the pair to the second.
	Normal  cp.Vector
	Depth   float64
	Surface Surface
}
