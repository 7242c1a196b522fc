package audio

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullPoolTracksLoops(t *testing.T) {
	p := NewNullPool()
	once, err := p.PlayOnce("thud", 1, cp.Vector{})
	require.NoError(t, err)
	assert.False(t, p.Playing(once))

	loop, err := p.PlayLoop("skid", 0.5, cp.Vector{})
	require.NoError(t, err)
	assert.True(t, p.Playing(loop))
	assert.True(t, p.Update(loop, 0.7, cp.Vector{X: 1}))

	p.FadeOut(loop, 200*time.Millisecond)
	assert.False(t, p.Playing(loop))
	assert.False(t, p.Update(loop, 0.7, cp.Vector{}))
}

func TestClipBankUnknownClip(t *testing.T) {
	b := NewClipBank(44100)
	_, err := b.PCM("missing")
	assert.ErrorIs(t, err, ErrUnknownClip)

	b.AddPCM("click", []byte{0, 0, 0, 0})
	assert.True(t, b.Has("click"))

	err = b.Decode("x", ".mp4", nil)
	assert.Error(t, err)
}

func TestSynthLengthAndRange(t *testing.T) {
	pcm := Noise(1000, 100*time.Millisecond, 30, 7)
	require.Len(t, pcm, 100*4)

	tone := Tone(1000, 50*time.Millisecond, 110, 0.3)
	require.Len(t, tone, 50*4)
	for i := 0; i < len(tone); i += 4 {
		l := int16(binary.LittleEndian.Uint16(tone[i:]))
		r := int16(binary.LittleEndian.Uint16(tone[i+2:]))
		assert.Equal(t, l, r, "stereo channels match")
	}
}

func TestOneShotNotReapedBeforeFirstTick(t *testing.T) {
	t0 := time.Unix(100, 0)
	v := &voice{started: t0}

	assert.False(t, v.done(t0, false), "just started")
	assert.False(t, v.done(t0.Add(fadeTick/2), false))
	assert.True(t, v.done(t0.Add(fadeTick), false))
	assert.False(t, v.done(t0.Add(time.Second), true), "still playing")

	loop := &voice{started: t0, loop: true}
	assert.False(t, loop.done(t0.Add(time.Second), false))
}
