package audio

import (
	"bytes"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	eaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collide/common"
)

const fadeTick = 10 * time.Millisecond

type voice struct {
	player *eaudio.Player
	loop   bool
	volume float64
	pos    cp.Vector
	// started is when Play was called.
	started time.Time

	fading    bool
	fadeFrom  float64
	fadeStart time.Time
	fadeDur   time.Duration
}

// EbitenPool plays clips through ebiten's audio context. All methods are safe
// to call from any goroutine; a background ticker drives fades and reaps
// finished one-shots.
type EbitenPool struct {
	ctx   *eaudio.Context
	clips *ClipBank
	log   common.Logger

	// RefDistance is the distance at which attenuation halves the volume.
	RefDistance float64

	mu       sync.Mutex
	voices   map[VoiceID]*voice
	listener cp.Vector
	now      func() time.Time

	closeCh chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewEbitenPool uses the process audio context, creating it at the bank's sample rate if needed.
func NewEbitenPool(clips *ClipBank, logger common.Logger) *EbitenPool {
	ctx := eaudio.CurrentContext()
	if ctx == nil {
		ctx = eaudio.NewContext(clips.SampleRate())
	}
	if logger == nil {
		logger = common.NopLogger{}
	}
	p := &EbitenPool{
		ctx:         ctx,
		clips:       clips,
		log:         logger,
		RefDistance: 400,
		voices:      map[VoiceID]*voice{},
		now:         time.Now,
		closeCh:     make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

func (p *EbitenPool) PlayOnce(clip string, volume float64, pos cp.Vector) (VoiceID, error) {
	pcm, err := p.clips.PCM(clip)
	if err != nil {
		return uuid.Nil, err
	}
	player := p.ctx.NewPlayerFromBytes(pcm)
	return p.start(player, false, volume, pos), nil
}

func (p *EbitenPool) PlayLoop(clip string, volume float64, pos cp.Vector) (VoiceID, error) {
	pcm, err := p.clips.PCM(clip)
	if err != nil {
		return uuid.Nil, err
	}
	loop := eaudio.NewInfiniteLoop(bytes.NewReader(pcm), int64(len(pcm)))
	player, err := p.ctx.NewPlayer(loop)
	if err != nil {
		return uuid.Nil, err
	}
	return p.start(player, true, volume, pos), nil
}

func (p *EbitenPool) start(player *eaudio.Player, loop bool, volume float64, pos cp.Vector) VoiceID {
	id := uuid.New()
	v := &voice{player: player, loop: loop, volume: volume, pos: pos}

	p.mu.Lock()
	defer p.mu.Unlock()
	player.SetVolume(p.gain(v))
	player.Play()
	v.started = p.now()
	p.voices[id] = v
	return id
}

// done reports whether a one-shot can be reaped. A voice younger than one
// tick is kept even if its player does not report playing yet.
func (v *voice) done(now time.Time, playing bool) bool {
	return !v.loop && !playing && now.Sub(v.started) >= fadeTick
}

func (p *EbitenPool) Update(id VoiceID, volume float64, pos cp.Vector) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.voices[id]
	if !ok || v.fading {
		return false
	}
	v.volume = volume
	v.pos = pos
	v.player.SetVolume(p.gain(v))
	return true
}

func (p *EbitenPool) FadeOut(id VoiceID, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.voices[id]
	if !ok || v.fading {
		return
	}
	v.fading = true
	v.fadeFrom = p.gain(v)
	v.fadeStart = p.now()
	v.fadeDur = d
}

func (p *EbitenPool) Playing(id VoiceID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.voices[id]
	return ok && !v.fading && v.player.IsPlaying()
}

func (p *EbitenPool) SetListener(pos cp.Vector) {
	p.mu.Lock()
	p.listener = pos
	for _, v := range p.voices {
		if !v.fading {
			v.player.SetVolume(p.gain(v))
		}
	}
	p.mu.Unlock()
}

// Voices returns the number of live voices.
func (p *EbitenPool) Voices() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.voices)
}

// Close stops every voice and the ticker.
func (p *EbitenPool) Close() error {
	p.once.Do(func() {
		close(p.closeCh)
	})
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	for id, v := range p.voices {
		p.release(id, v)
	}
	return nil
}

func (p *EbitenPool) run() {
	defer p.wg.Done()
	ticker := time.NewTicker(fadeTick)
	defer ticker.Stop()
	for {
		select {
		case <-p.closeCh:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *EbitenPool) tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	for id, v := range p.voices {
		if v.fading {
			t := 1.0
			if v.fadeDur > 0 {
				t = float64(now.Sub(v.fadeStart)) / float64(v.fadeDur)
			}
			if t >= 1 {
				p.release(id, v)
				continue
			}
			v.player.SetVolume(common.Lerp(v.fadeFrom, 0, t))
			continue
		}
		if v.done(now, v.player.IsPlaying()) {
			p.release(id, v)
		}
	}
}

func (p *EbitenPool) release(id VoiceID, v *voice) {
	v.player.Pause()
	if err := v.player.Close(); err != nil {
		p.log.Warnf("audio: close voice %s: %v", id, err)
	}
	delete(p.voices, id)
}

// gain applies distance attenuation. Callers hold p.mu.
func (p *EbitenPool) gain(v *voice) float64 {
	g := v.volume
	if p.RefDistance > 0 {
		g /= 1 + v.pos.Distance(p.listener)/p.RefDistance
	}
	return math.Max(0, math.Min(1, g))
}
