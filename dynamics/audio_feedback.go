package dynamics

import (
	"math"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/collide/common"
	"github.com/milk9111/collide/material"
)

// estimateAudio turns the previous step's contact forces into impact, skid
// and roll intensities and drives the sounds of both sides. src and dst are
// the bodies of the claiming call in canonical order.
func (d *Dynamics) estimateAudio(col *Collision, src, dst *RigidBody) {
	cfg := d.cfg.Audio
	n := col.normal
	p := col.position

	var force cp.Vector
	if k := len(col.prevFeedback); k > 0 {
		for _, fb := range col.prevFeedback {
			force = force.Add(fb.F1)
		}
		force = force.Mult(1 / (float64(k) * feedbackMass(src, dst)))
	}

	relVel := src.body.VelocityAtWorldPoint(p).Sub(dst.body.VelocityAtWorldPoint(p))
	comVel := src.body.Velocity().Sub(dst.body.Velocity())

	work := cp.Vector{X: force.X * relVel.X, Y: force.Y * relVel.Y}
	impact := math.Abs(n.Dot(work)) / cfg.ImpactDivisor
	skid := math.Sqrt(math.Max(0, work.LengthSq()-impact*impact)) / cfg.SkidDivisor
	tangential := comVel.Sub(n.Mult(comVel.Dot(n)))
	roll := math.Max(0, tangential.Length()-impact-math.Floor(skid))

	col.impact += cfg.ImpactWeight * (impact - col.impact)
	col.skid += cfg.SlideWeight * (skid - col.skid)
	col.roll += cfg.SlideWeight * (roll - col.roll)

	impacts := d.sideClocks(col, slotImpact)
	skids := d.sideClocks(col, slotSkid)
	rolls := d.sideClocks(col, slotRoll)
	for i, ctx := range [...]*material.Context{col.src, col.dst} {
		d.playImpact(impacts[i], ctx.ImpactSound, col.impact, p)
		d.playLoop(skids[i], ctx.SkidSound, col.skid, p)
		d.playLoop(rolls[i], ctx.RollSound, col.roll, p)
	}
}

// feedbackMass normalizes forces by the first dynamic mass of the pair.
func feedbackMass(src, dst *RigidBody) float64 {
	switch {
	case src.typ == BodyDynamic && src.mass > 0:
		return src.mass
	case dst.typ == BodyDynamic && dst.mass > 0:
		return dst.mass
	}
	return 1
}

func (d *Dynamics) threshold(s *material.Sound) float64 {
	return s.TargetImpulse * d.cfg.Audio.ClipFraction
}

// volumeFor maps value linearly from the threshold to the target impulse onto
// ClipFraction..1, capped at 1 and scaled by the sound's volume.
func (d *Dynamics) volumeFor(s *material.Sound, value float64) float64 {
	clip := d.cfg.Audio.ClipFraction
	thr := d.threshold(s)
	t := 1.0
	if span := s.TargetImpulse - thr; span > 0 {
		t = (value - thr) / span
	}
	v := math.Min(1, common.Lerp(clip, 1, t))
	if s.Volume > 0 {
		v *= s.Volume
	}
	return v
}

type soundSlot int

const (
	slotConnect soundSlot = iota
	slotImpact
	slotSkid
	slotRoll
)

// soundClock is one side's playback history for a sound slot.
type soundClock struct {
	started   bool
	lastStart time.Duration
	lastStop  time.Duration
}

func (p *Part) clock(slot soundSlot) *soundClock {
	c, ok := p.clocks[slot]
	if !ok {
		c = &soundClock{}
		p.clocks[slot] = c
	}
	return c
}

// sideClocks returns the clocks of slot for both sides of col. A side whose
// part is gone gets a detached clock.
func (d *Dynamics) sideClocks(col *Collision, slot soundSlot) [2]*soundClock {
	var out [2]*soundClock
	for i, key := range [...]PartKey{col.key.Src, col.key.Dst} {
		if p := d.part(key); p != nil {
			out[i] = p.clock(slot)
		} else {
			out[i] = &soundClock{}
		}
	}
	return out
}

func (d *Dynamics) playImpact(clk *soundClock, s *material.Sound, value float64, pos cp.Vector) {
	if s == nil || s.TargetImpulse <= 0 || value <= d.threshold(s) {
		return
	}
	if clk.started && d.now-clk.lastStart < d.cfg.Audio.ImpactGap {
		return
	}
	id, err := d.pool.PlayOnce(s.Clip, d.volumeFor(s, value), pos)
	if err != nil {
		d.log.Debugf("impact sound %q: %v", s.Clip, err)
		return
	}
	s.Voice = id
	clk.started = true
	clk.lastStart = d.now
}

// playLoop keeps a single looping voice per slot alive while value stays
// above the threshold and fades it once it drops below.
func (d *Dynamics) playLoop(clk *soundClock, s *material.Sound, value float64, pos cp.Vector) {
	if s == nil || s.TargetImpulse <= 0 {
		return
	}
	if value <= d.threshold(s) {
		d.stopLoop(clk, s, d.cfg.Audio.LoopFade)
		return
	}
	vol := d.volumeFor(s, value)
	if s.Playing {
		if d.pool.Update(s.Voice, vol, pos) {
			return
		}
		s.Playing = false
		clk.lastStop = d.now
	}
	if clk.started && d.now-clk.lastStop < d.cfg.Audio.LoopGap {
		return
	}
	id, err := d.pool.PlayLoop(s.Clip, vol, pos)
	if err != nil {
		d.log.Debugf("loop sound %q: %v", s.Clip, err)
		return
	}
	s.Voice = id
	s.Playing = true
	clk.started = true
	clk.lastStart = d.now
}

func (d *Dynamics) stopLoop(clk *soundClock, s *material.Sound, fade time.Duration) {
	if s == nil || !s.Playing {
		return
	}
	d.pool.FadeOut(s.Voice, fade)
	s.Playing = false
	clk.lastStop = d.now
}

// playConnect fires both sides' connect sounds for a pair that just touched.
func (d *Dynamics) playConnect(col *Collision) {
	clocks := d.sideClocks(col, slotConnect)
	for i, ctx := range [...]*material.Context{col.src, col.dst} {
		s := ctx.ConnectSound
		if s == nil {
			continue
		}
		vol := s.Volume
		if vol <= 0 {
			vol = 1
		}
		id, err := d.pool.PlayOnce(s.Clip, vol, col.position)
		if err != nil {
			d.log.Debugf("connect sound %q: %v", s.Clip, err)
			continue
		}
		s.Voice = id
		clocks[i].started = true
		clocks[i].lastStart = d.now
	}
}

// silence fades the loops of a record leaving the registry.
func (d *Dynamics) silence(col *Collision) {
	skid, roll := d.sideClocks(col, slotSkid), d.sideClocks(col, slotRoll)
	for i, ctx := range [...]*material.Context{col.src, col.dst} {
		d.stopLoop(skid[i], ctx.SkidSound, d.cfg.Audio.LoopFade)
		d.stopLoop(roll[i], ctx.RollSound, d.cfg.Audio.LoopFade)
	}
}
