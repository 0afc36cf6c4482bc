package sensor

import (
	"math"

	"github.com/vovakirdan/pocket-arcade/internal/core"
)

// Detection thresholds shared by the games.
const (
	ShakeThreshold  = 2.5  // acceleration magnitude in g
	BreathThreshold = 0.02 // RMS level
	MouthThreshold  = 0.6  // jaw-open blend value
)

// Vec3 is a device-frame vector.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the Euclidean length.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Motion is one device-motion sample. Gravity and Acceleration are in g,
// Rotation in rad/s.
type Motion struct {
	Gravity      Vec3 `json:"gravity"`
	Rotation     Vec3 `json:"rotation"`
	Acceleration Vec3 `json:"acceleration"`
}

// Tilt returns the gravity direction projected on the screen plane,
// each axis in [-1, 1].
func (m Motion) Tilt() core.Vec2 {
	return core.Vec2{X: m.Gravity.X, Y: m.Gravity.Y}
}

// Intensity is the mean absolute rotation rate over the three axes.
func (m Motion) Intensity() float64 {
	r := m.Rotation
	return (math.Abs(r.X) + math.Abs(r.Y) + math.Abs(r.Z)) / 3
}

// Magnitude returns the norm of the acceleration.
func (m Motion) Magnitude() float64 {
	return m.Acceleration.Norm()
}

// Shaking reports whether the acceleration exceeds ShakeThreshold.
func (m Motion) Shaking() bool {
	return m.Magnitude() > ShakeThreshold
}

// Audio is one microphone level sample.
type Audio struct {
	RMS      float64 `json:"rms"` // root mean square of the last buffer, [0,1]
	Decibels float64 `json:"db"`  // average power, dBFS (≤ 0)
}

// Level is the normalized loudness in [0, 1] derived from the average power.
// The zero reading (no sample yet, or a stopped feed) is silence.
func (a Audio) Level() float64 {
	if a == (Audio{}) {
		return 0
	}
	return LoudnessFromDecibels(a.Decibels)
}

// Breathing reports whether the RMS level is above BreathThreshold.
func (a Audio) Breathing() bool {
	return a.RMS > BreathThreshold
}

// LoudnessFromDecibels maps -50..0 dBFS linearly onto 0..1.
func LoudnessFromDecibels(db float64) float64 {
	return core.ClampF((db+50)/50, 0, 1)
}

// LoudnessFromRMS returns the clamped RMS level of a PCM buffer.
func LoudnessFromRMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return core.ClampF(math.Sqrt(sum/float64(len(samples))), 0, 1)
}

// Face is one face-tracking sample.
type Face struct {
	JawOpen float64 `json:"jaw"`
}

// MouthOpen reports whether the jaw is open beyond threshold.
func (f Face) MouthOpen(threshold float64) bool {
	return f.JawOpen > threshold
}
