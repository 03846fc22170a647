package audio_test

import (
	"encoding/binary"
	"math"
	"testing"

	"trigseq/audio"
)

func samples(t *testing.T, v *audio.Voice, n int) []float32 {
	t.Helper()
	buf := make([]byte, n*4+3)
	got, err := v.Read(buf)
	if err != nil || got != n*4 {
		t.Fatalf("Read = %d, %v; want %d", got, err, n*4)
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

func peak(s []float32) float32 {
	var p float32
	for _, x := range s {
		if x < 0 {
			x = -x
		}
		p = max(p, x)
	}
	return p
}

func TestVoiceSilentUntilTriggered(t *testing.T) {
	v := audio.NewVoice(1)
	if p := peak(samples(t, v, 512)); p != 0 {
		t.Fatalf("idle voice peak = %v", p)
	}
	v.ClearAllTriggers()
	v.SetTriggers(0b0010)
	if p := peak(samples(t, v, 512)); p == 0 || p > 1 {
		t.Fatalf("click peak = %v", p)
	}
}

func TestVoiceClickDecays(t *testing.T) {
	v := audio.NewVoice(0.5)
	v.SetTriggers(0b1111)
	first := peak(samples(t, v, 256))
	if first > 0.5 {
		t.Fatalf("volume not applied: peak %v", first)
	}
	samples(t, v, audio.SampleRate/10)
	if p := peak(samples(t, v, 256)); p != 0 {
		t.Fatalf("click still sounding after 100ms: %v", p)
	}
}

func TestVoiceMuted(t *testing.T) {
	v := audio.NewVoice(0)
	v.SetTriggers(0b0001)
	if p := peak(samples(t, v, 256)); p != 0 {
		t.Fatalf("muted voice peak = %v", p)
	}
}
