package dynamics

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/collide/audio"
	"github.com/milk9111/collide/material"
	"github.com/milk9111/collide/scene"
)

func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.GravityY = 0
	cfg.AutoDisable.Enabled = false
	return cfg
}

func newWorld(t *testing.T, opts ...Option) (*scene.Scene, *Dynamics) {
	t.Helper()
	sc := scene.New()
	d, err := New(sc, append([]Option{WithConfig(quietConfig())}, opts...)...)
	require.NoError(t, err)
	return sc, d
}

// addBall creates a node with one part holding a circle of radius 10.
func addBall(t *testing.T, d *Dynamics, name string, typ BodyType, pos cp.Vector, mats ...*material.Material) (*Part, *RigidBody) {
	t.Helper()
	node := d.Scene().Create(name)
	part := d.NewPart(node, name, mats...)
	rb, err := part.AddBody(BodyDef{Kind: ShapeCircle, Type: typ, Radius: 10, Position: pos})
	require.NoError(t, err)
	return part, rb
}

// eventLog records scripted actions as "<node>:<label>".
type eventLog struct {
	entries []string
	others  []*scene.Node
}

func (l *eventLog) action(label string) material.Action {
	return material.ActionFunc(func(self, other *scene.Node, sc *scene.Scene) error {
		l.entries = append(l.entries, self.Name()+":"+label)
		l.others = append(l.others, other)
		return nil
	})
}

func (l *eventLog) count(entry string) int {
	n := 0
	for _, e := range l.entries {
		if e == entry {
			n++
		}
	}
	return n
}

func loggedMaterial(log *eventLog, name string) *material.Material {
	m := material.Default()
	m.Name = name
	m.OnConnect = []material.Action{log.action(name + "-connect")}
	m.OnDisconnect = []material.Action{log.action(name + "-disconnect")}
	return m
}

type playCall struct {
	Clip   string
	Volume float64
	Loop   bool
	At     time.Duration
}

// recordingPool remembers every start and keeps loops alive until faded.
type recordingPool struct {
	mu    sync.Mutex
	clock func() time.Duration
	calls []playCall
	fades int
	loops map[audio.VoiceID]bool
}

func newRecordingPool(clock func() time.Duration) *recordingPool {
	return &recordingPool{clock: clock, loops: map[audio.VoiceID]bool{}}
}

func (p *recordingPool) record(clip string, volume float64, loop bool) audio.VoiceID {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, playCall{Clip: clip, Volume: volume, Loop: loop, At: p.clock()})
	id := uuid.New()
	if loop {
		p.loops[id] = true
	}
	return id
}

func (p *recordingPool) PlayOnce(clip string, volume float64, pos cp.Vector) (audio.VoiceID, error) {
	return p.record(clip, volume, false), nil
}

func (p *recordingPool) PlayLoop(clip string, volume float64, pos cp.Vector) (audio.VoiceID, error) {
	return p.record(clip, volume, true), nil
}

func (p *recordingPool) Update(id audio.VoiceID, volume float64, pos cp.Vector) bool {
	return p.Playing(id)
}

func (p *recordingPool) FadeOut(id audio.VoiceID, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loops[id] {
		p.fades++
	}
	delete(p.loops, id)
}

func (p *recordingPool) Playing(id audio.VoiceID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loops[id]
}

func (p *recordingPool) SetListener(pos cp.Vector) {}

func (p *recordingPool) starts(clip string) []time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []time.Duration
	for _, c := range p.calls {
		if c.Clip == clip {
			out = append(out, c.At)
		}
	}
	return out
}

// hookFilter adapts a function to CollisionPreFilter.
type hookFilter struct {
	fn func(self, other *RigidBody) bool
}

func (f *hookFilter) PreFilterCollision(self, other *RigidBody) bool {
	return f.fn(self, other)
}
