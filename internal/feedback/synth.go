package feedback

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate of every rendered tone. Output is interleaved stereo s16le.
const SampleRate = beep.SampleRate(44100)

type wave int

const (
	waveSine wave = iota
	waveSquare
	waveSaw
)

// oscillator is a fixed-length periodic waveform.
type oscillator struct {
	freq     float64
	phase    float64
	position int
	length   int
	wave     wave
}

func newOscillator(freq float64, d time.Duration, w wave) beep.Streamer {
	return &oscillator{freq: freq, length: SampleRate.N(d), wave: w}
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if o.position >= o.length {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case waveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case waveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case waveSaw:
			v = 2 * (o.phase - 0.5)
		}
		samples[i][0], samples[i][1] = v, v

		o.phase += o.freq / float64(SampleRate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release to a stream.
type envelope struct {
	s        beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, total, attack, release time.Duration) beep.Streamer {
	return &envelope{
		s:       s,
		attack:  SampleRate.N(attack),
		release: SampleRate.N(release),
		total:   SampleRate.N(total),
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := range n {
		vol := 1.0
		if e.position < e.attack && e.attack > 0 {
			vol = float64(e.position) / float64(e.attack)
		}
		if start := e.total - e.release; e.position >= start && e.release > 0 {
			vol = math.Max(0, float64(e.total-e.position)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

type note struct {
	freq float64
	dur  time.Duration
	wave wave
}

func (n note) streamer() beep.Streamer {
	osc := newOscillator(n.freq, n.dur, n.wave)
	return newEnvelope(osc, n.dur, 5*time.Millisecond, n.dur/2)
}

// voices describes the tone played for each kind.
var voices = map[Kind][]note{
	Success: {
		{freq: 659.25, dur: 90 * time.Millisecond, wave: waveSine},
		{freq: 880.00, dur: 90 * time.Millisecond, wave: waveSine},
		{freq: 1318.5, dur: 160 * time.Millisecond, wave: waveSine},
	},
	Error: {
		{freq: 110, dur: 220 * time.Millisecond, wave: waveSaw},
	},
	Impact: {
		{freq: 420, dur: 35 * time.Millisecond, wave: waveSquare},
	},
	ImpactHeavy: {
		{freq: 160, dur: 70 * time.Millisecond, wave: waveSquare},
	},
}

// Streamer returns the synthesized tone for kind k.
func Streamer(k Kind, gain float64) beep.Streamer {
	ns := voices[k]
	parts := make([]beep.Streamer, 0, len(ns))
	for _, n := range ns {
		parts = append(parts, n.streamer())
	}
	return volume(beep.Seq(parts...), gain)
}

// Render drains s into interleaved stereo s16le PCM with soft clipping.
func Render(s beep.Streamer) []byte {
	var out []byte
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			var b [4]byte
			binary.LittleEndian.PutUint16(b[0:], uint16(toInt16(frame[0])))
			binary.LittleEndian.PutUint16(b[2:], uint16(toInt16(frame[1])))
			out = append(out, b[:]...)
		}
		if !ok || n == 0 {
			return out
		}
	}
}

func toInt16(v float64) int16 {
	v = math.Tanh(v)
	return int16(v * 32767)
}
