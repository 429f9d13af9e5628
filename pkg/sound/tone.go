// Package sound synthesises the CHIP-8 beeper as a PCM stream.
package sound

import (
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
)

const (
	SampleRate       = 44100
	Channels         = 2
	BytesPerSample   = 2
	BytesPerFrame    = Channels * BytesPerSample
	DefaultFrequency = 1000.0
	DefaultVolume    = 0.4
)

// Tone is an endless 16-bit little-endian stereo stream at SampleRate: a sine
// wave while the beeper is on, silence otherwise. SetBeep may be called from
// the emulation goroutine while the audio player reads from another.
type Tone struct {
	frequency float64
	volume    float64

	on    atomic.Bool
	reset atomic.Bool

	mu    sync.Mutex
	phase float64 // radians
}

// NewTone returns a silent tone. Out-of-range arguments fall back to the
// defaults.
func NewTone(frequency, volume float64) *Tone {
	if frequency <= 0 {
		frequency = DefaultFrequency
	}
	if volume < 0 || volume > 1 {
		volume = DefaultVolume
	}
	return &Tone{frequency: frequency, volume: volume}
}

// SetBeep turns the tone on or off. Turning it on restarts the wave at phase
// zero.
func (t *Tone) SetBeep(on bool) {
	if was := t.on.Swap(on); on && !was {
		t.reset.Store(true)
	}
}

func (t *Tone) Beeping() bool {
	return t.on.Load()
}

// Read fills p with whole sample frames and never returns an error.
func (t *Tone) Read(p []byte) (int, error) {
	n := len(p) / BytesPerFrame * BytesPerFrame

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.reset.Swap(false) {
		t.phase = 0
	}

	if !t.on.Load() {
		clear(p[:n])
		return n, nil
	}

	step := 2 * math.Pi * t.frequency / SampleRate
	for i := 0; i < n; i += BytesPerFrame {
		v := int16(math.Sin(t.phase) * t.volume * math.MaxInt16)
		binary.LittleEndian.PutUint16(p[i:], uint16(v))
		binary.LittleEndian.PutUint16(p[i+BytesPerSample:], uint16(v))
		t.phase += step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
	}
	return n, nil
}
