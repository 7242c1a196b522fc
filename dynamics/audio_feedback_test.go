package dynamics

import (
	"math"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/collide/material"
)

func soundWorld(t *testing.T) (*Dynamics, *recordingPool) {
	t.Helper()
	var d *Dynamics
	pool := newRecordingPool(func() time.Duration { return d.Now() })
	_, d = newWorld(t, WithAudio(pool))
	return d, pool
}

func TestEstimateAudio(t *testing.T) {
	d, _ := soundWorld(t)
	src, err := d.NewPart(d.Scene().Create("crate"), "crate").AddBody(BodyDef{
		Kind: ShapeCircle, Type: BodyDynamic, Radius: 5, Mass: 2, Velocity: cp.Vector{X: 3, Y: -1},
	})
	require.NoError(t, err)
	dst, err := d.NewPart(d.Scene().Create("floor"), "floor").AddBody(BodyDef{
		Kind: ShapeBox, Type: BodyStatic, Width: 100, Height: 10, Position: cp.Vector{Y: 20},
	})
	require.NoError(t, err)

	col := newCollision(PairKey{}, &material.Context{ComplexSound: true}, &material.Context{}, true)
	col.normal = cp.Vector{Y: 1}
	col.prevFeedback = []*JointFeedback{{F1: cp.Vector{X: 4, Y: 6}}}

	d.estimateAudio(col, src, dst)
	// force (2,3) against relative velocity (3,-1): impact 1, skid sqrt(44)/2,
	// roll clamps to zero.
	assert.InDelta(t, 0.3, col.Impact(), 1e-9)
	assert.InDelta(t, 0.1*math.Sqrt(44)/2, col.Skid(), 1e-9)
	assert.Zero(t, col.Roll())

	col.prevFeedback = nil
	d.estimateAudio(col, src, dst)
	assert.InDelta(t, 0.21, col.Impact(), 1e-9, "channels decay toward zero")
}

func TestRollFromTangentialMotion(t *testing.T) {
	d, _ := soundWorld(t)
	wheel, err := d.NewPart(d.Scene().Create("wheel"), "wheel").AddBody(BodyDef{
		Kind: ShapeCylinder, Type: BodyDynamic, Radius: 10, Length: 4, Velocity: cp.Vector{X: 8},
	})
	require.NoError(t, err)
	road, err := d.NewPart(d.Scene().Create("road"), "road").AddBody(BodyDef{
		Kind: ShapeBox, Type: BodyStatic, Width: 100, Height: 10, Position: cp.Vector{Y: 15},
	})
	require.NoError(t, err)

	col := newCollision(PairKey{}, &material.Context{ComplexSound: true}, &material.Context{}, true)
	col.normal = cp.Vector{Y: 1}
	d.estimateAudio(col, wheel, road)
	assert.InDelta(t, 0.8, col.Roll(), 1e-9)
}

func TestImpactSoundThrottled(t *testing.T) {
	d, pool := soundWorld(t)
	s := &material.Sound{SoundSpec: material.SoundSpec{Clip: "thud", TargetImpulse: 10}}

	clk := &soundClock{}
	for i := 0; i < 120; i++ {
		d.playImpact(clk, s, 20, cp.Vector{})
		d.now += d.cfg.stepDuration()
	}
	starts := pool.starts("thud")
	require.GreaterOrEqual(t, len(starts), 3)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i]-starts[i-1], 500*time.Millisecond)
	}
}

func TestImpactBelowThresholdIsSilent(t *testing.T) {
	d, pool := soundWorld(t)
	s := &material.Sound{SoundSpec: material.SoundSpec{Clip: "thud", TargetImpulse: 10}}
	clk := &soundClock{}
	d.playImpact(clk, s, 1, cp.Vector{})
	d.playImpact(clk, s, 1.4, cp.Vector{})
	assert.Empty(t, pool.calls)
	d.playImpact(clk, s, 1.6, cp.Vector{})
	assert.Len(t, pool.calls, 1)
}

func TestLoopHysteresis(t *testing.T) {
	d, pool := soundWorld(t)
	s := &material.Sound{SoundSpec: material.SoundSpec{Clip: "scrape", TargetImpulse: 10}}

	clk := &soundClock{}
	for i := 0; i < 240; i++ {
		value := 1.0
		if i%2 == 0 {
			value = 2.0
		}
		d.playLoop(clk, s, value, cp.Vector{})
		d.now += d.cfg.stepDuration()
	}
	starts := pool.starts("scrape")
	require.GreaterOrEqual(t, len(starts), 2)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i]-starts[i-1], 250*time.Millisecond)
	}
	assert.Positive(t, pool.fades)
}

func TestLoopKeepsSingleVoice(t *testing.T) {
	d, pool := soundWorld(t)
	s := &material.Sound{SoundSpec: material.SoundSpec{Clip: "scrape", TargetImpulse: 10}}

	clk := &soundClock{}
	for i := 0; i < 30; i++ {
		d.playLoop(clk, s, 5, cp.Vector{})
		d.now += d.cfg.stepDuration()
	}
	assert.Len(t, pool.starts("scrape"), 1)
	assert.True(t, s.Playing)

	d.playLoop(clk, s, 0, cp.Vector{})
	assert.False(t, s.Playing)
	assert.Equal(t, 1, pool.fades)
	assert.Equal(t, d.Now(), clk.lastStop)
}

func TestVolumeMapping(t *testing.T) {
	d, _ := soundWorld(t)
	s := &material.Sound{SoundSpec: material.SoundSpec{Clip: "x", TargetImpulse: 10}}

	assert.InDelta(t, 0.15, d.volumeFor(s, 1.5), 1e-12)
	assert.InDelta(t, 1, d.volumeFor(s, 10), 1e-12)
	assert.InDelta(t, 1, d.volumeFor(s, 100), 1e-12, "clamped")
	assert.InDelta(t, 0.575, d.volumeFor(s, 5.75), 1e-12)

	s.Volume = 0.5
	assert.InDelta(t, 0.5, d.volumeFor(s, 100), 1e-12)
}

func TestRemovedCollisionFadesLoops(t *testing.T) {
	d, pool := soundWorld(t)
	col := newCollision(PairKey{}, &material.Context{}, &material.Context{}, true)
	col.src.SkidSound = &material.Sound{SoundSpec: material.SoundSpec{Clip: "scrape", TargetImpulse: 1}}
	d.playLoop(&soundClock{}, col.src.SkidSound, 5, cp.Vector{})
	require.True(t, col.src.SkidSound.Playing)

	d.silence(col)
	assert.False(t, col.src.SkidSound.Playing)
	assert.Equal(t, 1, pool.fades)
}

func TestImpactThrottleSurvivesReconnect(t *testing.T) {
	d, pool := soundWorld(t)
	loud := material.Default()
	loud.Name = "loud"
	loud.ComplexSound = true
	loud.ImpactSound = &material.SoundSpec{Clip: "thud", TargetImpulse: 1e-6}

	ball, rb := addBall(t, d, "ball", BodyDynamic, cp.Vector{Y: -14}, loud)
	floor, err := d.NewPart(d.Scene().Create("floor"), "floor").AddBody(BodyDef{
		Kind: ShapeBox, Type: BodyStatic, Width: 100, Height: 10,
	})
	require.NoError(t, err)

	touch := func(steps int) {
		for i := 0; i < steps; i++ {
			rb.SetPosition(cp.Vector{Y: -14})
			d.Step()
		}
	}

	touch(4)
	require.True(t, ball.IsCollidingWith(floor.Part().Node().ID()))
	require.Len(t, pool.starts("thud"), 1)

	rb.SetPosition(cp.Vector{Y: -200})
	d.Step()
	d.Step()
	require.Empty(t, d.Collisions(), "record collected while apart")

	touch(4)
	require.True(t, ball.IsCollidingWith(floor.Part().Node().ID()))
	assert.Less(t, d.Now(), 500*time.Millisecond)

	starts := pool.starts("thud")
	assert.Len(t, starts, 1, "reconnect within the gap must not refire")
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i]-starts[i-1], 500*time.Millisecond)
	}
}

func TestLoopGapSurvivesReconnect(t *testing.T) {
	d, pool := soundWorld(t)
	part, _ := addBall(t, d, "wheel", BodyDynamic, cp.Vector{})
	clk := part.clock(slotSkid)
	first := &material.Sound{SoundSpec: material.SoundSpec{Clip: "scrape", TargetImpulse: 1}}

	d.playLoop(clk, first, 5, cp.Vector{})
	d.now += d.cfg.stepDuration()
	d.stopLoop(clk, first, 0)
	d.now += d.cfg.stepDuration()

	// A fresh record resolves a fresh sound but shares the part's clock.
	second := &material.Sound{SoundSpec: material.SoundSpec{Clip: "scrape", TargetImpulse: 1}}
	require.Same(t, clk, part.clock(slotSkid))
	d.playLoop(clk, second, 5, cp.Vector{})
	assert.False(t, second.Playing)
	assert.Len(t, pool.starts("scrape"), 1)

	d.now += d.cfg.Audio.LoopGap
	d.playLoop(clk, second, 5, cp.Vector{})
	assert.True(t, second.Playing)
	assert.Len(t, pool.starts("scrape"), 2)
}
