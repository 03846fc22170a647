// Package audio renders trigger pulses as clicks on the sound card so the
// sequencer can be monitored without drum machines attached.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"

	"trigseq/sequencer"
)

const (
	SampleRate = 44100
	clickDecay = 0.012 // seconds to fall by 1/e
	clickLen   = SampleRate / 20
)

// LaneFreqs is the click pitch of each lane
var LaneFreqs = [sequencer.NumTracks]float64{110, 440, 1760, 3520}

// Voice generates mono float32 samples. SetTriggers arms lanes from the
// clock goroutine; Read runs on the audio goroutine and picks them up.
type Voice struct {
	armed atomic.Uint32
	gain  float32

	age   [sequencer.NumTracks]int // samples since trigger, -1 idle
	phase [sequencer.NumTracks]float64
}

// NewVoice returns an idle voice at volume 0-1
func NewVoice(volume float64) *Voice {
	v := &Voice{gain: float32(max(0, min(1, volume)))}
	for i := range v.age {
		v.age[i] = -1
	}
	return v
}

// SetTriggers arms a click on every set lane
func (v *Voice) SetTriggers(mask uint16) {
	v.armed.Or(uint32(mask) & (1<<sequencer.NumTracks - 1))
}

// ClearAllTriggers does nothing; clicks decay on their own
func (v *Voice) ClearAllTriggers() {}

// Read fills p with float32 little-endian samples. It never returns an error.
func (v *Voice) Read(p []byte) (int, error) {
	if armed := v.armed.Swap(0); armed != 0 {
		for lane := range v.age {
			if armed&(1<<lane) != 0 {
				v.age[lane] = 0
				v.phase[lane] = 0
			}
		}
	}

	n := len(p) / 4 * 4
	for i := 0; i < n; i += 4 {
		var s float64
		for lane, age := range v.age {
			if age < 0 {
				continue
			}
			env := math.Exp(-float64(age) / (clickDecay * SampleRate))
			s += env * math.Sin(v.phase[lane])
			v.phase[lane] += 2 * math.Pi * LaneFreqs[lane] / SampleRate
			if age++; age >= clickLen {
				age = -1
			}
			v.age[lane] = age
		}
		out := float32(s/sequencer.NumTracks) * v.gain
		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(out))
	}
	return n, nil
}

// Clicker plays a Voice on the default sound device
type Clicker struct {
	*Voice
	context *oto.Context
	player  *oto.Player
}

// NewClicker opens the sound device and starts playing silence
func NewClicker(volume float64) (*Clicker, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready

	voice := NewVoice(volume)
	player := context.NewPlayer(voice)
	player.Play()
	return &Clicker{Voice: voice, context: context, player: player}, nil
}

// Close stops playback and reports any error the player hit
func (c *Clicker) Close() error {
	c.player.Pause()
	if err := c.player.Err(); err != nil {
		return fmt.Errorf("oto player: %w", err)
	}
	return nil
}
