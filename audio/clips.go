package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// ClipBank holds decoded 16-bit stereo PCM clips at one sample rate.
type ClipBank struct {
	sampleRate int

	mu    sync.RWMutex
	clips map[string][]byte
}

func NewClipBank(sampleRate int) *ClipBank {
	return &ClipBank{sampleRate: sampleRate, clips: map[string][]byte{}}
}

func (b *ClipBank) SampleRate() int {
	return b.sampleRate
}

// AddPCM registers already-decoded PCM.
func (b *ClipBank) AddPCM(name string, pcm []byte) {
	b.mu.Lock()
	b.clips[name] = pcm
	b.mu.Unlock()
}

// Decode registers an encoded clip. The format is taken from ext (".wav" or ".ogg").
func (b *ClipBank) Decode(name, ext string, data []byte) error {
	reader := bytes.NewReader(data)
	var stream io.Reader
	switch strings.ToLower(ext) {
	case ".wav":
		s, err := wav.DecodeWithSampleRate(b.sampleRate, reader)
		if err != nil {
			return fmt.Errorf("audio: decode wav %q: %w", name, err)
		}
		stream = s
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(b.sampleRate, reader)
		if err != nil {
			return fmt.Errorf("audio: decode ogg %q: %w", name, err)
		}
		stream = s
	default:
		return fmt.Errorf("audio: unsupported clip format %q for %q", ext, name)
	}
	pcm, err := io.ReadAll(stream)
	if err != nil {
		return fmt.Errorf("audio: read %q: %w", name, err)
	}
	b.AddPCM(name, pcm)
	return nil
}

// LoadFile decodes a clip from disk and registers it under its base name.
func (b *ClipBank) LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)
	return name, b.Decode(name, ext, data)
}

// PCM returns the clip data.
func (b *ClipBank) PCM(name string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pcm, ok := b.clips[name]
	if !ok {
		return nil, fmt.Errorf("clip %q: %w", name, ErrUnknownClip)
	}
	return pcm, nil
}

func (b *ClipBank) Has(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.clips[name]
	return ok
}
