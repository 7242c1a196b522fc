package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
)

// ErrUnknownClip is returned when a clip name was never loaded.
var ErrUnknownClip = errors.New("audio: unknown clip")

// VoiceID names one playing source.
type VoiceID = uuid.UUID

// Pool is a thread-safe pooled sound source API. Positions are world
// coordinates; implementations may use them for attenuation.
type Pool interface {
	PlayOnce(clip string, volume float64, pos cp.Vector) (VoiceID, error)
	PlayLoop(clip string, volume float64, pos cp.Vector) (VoiceID, error)
	// Update adjusts a playing voice. It reports false if the voice is gone.
	Update(id VoiceID, volume float64, pos cp.Vector) bool
	FadeOut(id VoiceID, d time.Duration)
	Playing(id VoiceID) bool
	SetListener(pos cp.Vector)
}

// NullPool plays nothing but tracks loop voices so callers see consistent
// Playing results. One-shots are never reported as playing.
type NullPool struct {
	mu    sync.Mutex
	loops map[VoiceID]struct{}
}

func NewNullPool() *NullPool {
	return &NullPool{loops: map[VoiceID]struct{}{}}
}

func (p *NullPool) PlayOnce(clip string, volume float64, pos cp.Vector) (VoiceID, error) {
	return uuid.New(), nil
}

func (p *NullPool) PlayLoop(clip string, volume float64, pos cp.Vector) (VoiceID, error) {
	id := uuid.New()
	p.mu.Lock()
	p.loops[id] = struct{}{}
	p.mu.Unlock()
	return id, nil
}

func (p *NullPool) Update(id VoiceID, volume float64, pos cp.Vector) bool {
	return p.Playing(id)
}

func (p *NullPool) FadeOut(id VoiceID, d time.Duration) {
	p.mu.Lock()
	delete(p.loops, id)
	p.mu.Unlock()
}

func (p *NullPool) Playing(id VoiceID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.loops[id]
	return ok
}

func (p *NullPool) SetListener(pos cp.Vector) {}
