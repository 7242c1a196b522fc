package dynamics

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJointDiesWithEitherBody(t *testing.T) {
	for _, killFirst := range []bool{true, false} {
		_, d := newWorld(t)
		_, a := addBall(t, d, "a", BodyDynamic, cp.Vector{})
		_, b := addBall(t, d, "b", BodyDynamic, cp.Vector{X: 30})

		j, err := d.AttachFixed(a, b)
		require.NoError(t, err)
		assert.True(t, j.Alive())
		assert.Equal(t, []*Joint{j}, a.Joints())
		assert.Equal(t, []*Joint{j}, b.Joints())

		if killFirst {
			a.Destroy()
		} else {
			b.Destroy()
		}
		assert.False(t, j.Alive())
		assert.Empty(t, a.Joints())
		assert.Empty(t, b.Joints())
		assert.Empty(t, d.joints)
	}
}

func TestAttachFixedRejects(t *testing.T) {
	_, d := newWorld(t)
	_, a := addBall(t, d, "a", BodyDynamic, cp.Vector{})
	_, s1 := addBall(t, d, "s1", BodyStatic, cp.Vector{X: 50})
	_, s2 := addBall(t, d, "s2", BodyStatic, cp.Vector{X: 100})

	_, err := d.AttachFixed(a, a)
	assert.ErrorIs(t, err, ErrInvalidBody)
	_, err = d.AttachFixed(s1, s2)
	assert.ErrorIs(t, err, ErrInvalidBody)
	_, err = d.AttachFixed(a, nil)
	assert.ErrorIs(t, err, ErrInvalidBody)
}

func TestWeldedBodiesWakeTogether(t *testing.T) {
	_, d := newWorld(t)
	_, a := addBall(t, d, "a", BodyDynamic, cp.Vector{})
	_, b := addBall(t, d, "b", BodyDynamic, cp.Vector{X: 30})
	_, err := d.AttachFixed(a, b)
	require.NoError(t, err)

	a.Disable()
	b.Disable()
	a.Wake()
	assert.True(t, b.Enabled())
}

func TestWeldHoldsRelativePose(t *testing.T) {
	cfg := quietConfig()
	cfg.GravityY = 900
	_, d := newWorld(t, WithConfig(cfg))
	_, anchor := addBall(t, d, "anchor", BodyKinematic, cp.Vector{})
	_, bob := addBall(t, d, "bob", BodyDynamic, cp.Vector{X: 30})
	_, err := d.AttachFixed(anchor, bob)
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		d.Step()
	}
	assert.InDelta(t, 30, bob.Position().Distance(anchor.Position()), 1)
}
