package audio

import (
	"encoding/binary"
	"math"
	"math/rand"
	"time"
)

// Noise renders a decaying white-noise burst, the stock impact sound.
// A decay of 0 keeps full amplitude, which loops cleanly for skids.
func Noise(sampleRate int, d time.Duration, decay float64, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	return render(sampleRate, d, func(t float64) float64 {
		return (rng.Float64()*2 - 1) * math.Exp(-decay*t)
	})
}

// Tone renders a sine at freq Hz with an optional amplitude wobble, used for rolling hums.
func Tone(sampleRate int, d time.Duration, freq, wobble float64) []byte {
	return render(sampleRate, d, func(t float64) float64 {
		amp := 1 - wobble*0.5*(1+math.Sin(2*math.Pi*4*t))
		return amp * math.Sin(2*math.Pi*freq*t)
	})
}

func render(sampleRate int, d time.Duration, sample func(t float64) float64) []byte {
	n := int(d.Seconds() * float64(sampleRate))
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		v := sample(float64(i) / float64(sampleRate))
		s := int16(math.Max(-1, math.Min(1, v)) * 0.8 * math.MaxInt16)
		binary.LittleEndian.PutUint16(out[i*4:], uint16(s))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(s))
	}
	return out
}
