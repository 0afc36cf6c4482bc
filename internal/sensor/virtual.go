package sensor

import (
	"math"
	"time"

	"github.com/vovakirdan/pocket-arcade/internal/core"
)

// Keyboard tuning for the virtual device. Values are per key press; decay
// factors apply once per 20ms and are rescaled for other tick lengths.
const (
	tiltStep      = 0.25
	tiltDecay     = 0.97
	rotationJolt  = 0.3
	rotationDecay = 0.8
	shakeAccel    = 3.0
	shakeDecay    = 0.5
	blowStep      = 0.35
	blowDecay     = 0.92
	decayTick     = 20 * time.Millisecond
)

// Virtual is a keyboard-driven device. Arrow keys tilt it (which also
// rotates it), S shakes it, B blows into its microphone and M toggles
// the mouth. Readings decay back to rest every tick.
type Virtual struct {
	hub     *Hub
	detach  []func()
	gravity core.Vec2
	rot     Vec3
	accel   float64
	level   float64
	jaw     float64
}

// NewVirtual creates a virtual device publishing into hub.
func NewVirtual(hub *Hub) *Virtual {
	return &Virtual{hub: hub}
}

// Attach registers the device on every feed of the hub.
func (v *Virtual) Attach() {
	if len(v.detach) > 0 {
		return
	}
	v.detach = []func(){
		v.hub.Motion.Attach(),
		v.hub.Loudness.Attach(),
		v.hub.Face.Attach(),
	}
}

// Detach unregisters the device.
func (v *Virtual) Detach() {
	for _, d := range v.detach {
		d()
	}
	v.detach = nil
}

// Apply turns one frame of key actions into device changes.
func (v *Virtual) Apply(in core.InputFrame) {
	if in.Has(core.ActionLeft) {
		v.tilt(-tiltStep, 0)
	}
	if in.Has(core.ActionRight) {
		v.tilt(tiltStep, 0)
	}
	if in.Has(core.ActionUp) {
		v.tilt(0, tiltStep)
	}
	if in.Has(core.ActionDown) {
		v.tilt(0, -tiltStep)
	}
	if in.Has(core.ActionShake) {
		v.accel = shakeAccel
		v.rot.Z += rotationJolt * 2
	}
	if in.Has(core.ActionBlow) {
		v.level = math.Min(1, v.level+blowStep)
	}
	if in.Has(core.ActionMouth) {
		if v.jaw > MouthThreshold {
			v.jaw = 0
		} else {
			v.jaw = 1
		}
	}
}

func (v *Virtual) tilt(dx, dy float64) {
	v.gravity.X = core.ClampF(v.gravity.X+dx, -1, 1)
	v.gravity.Y = core.ClampF(v.gravity.Y+dy, -1, 1)
	// Turning the device shows up on the axis it rotates around.
	if dx != 0 {
		v.rot.Y += math.Copysign(rotationJolt, dx)
	}
	if dy != 0 {
		v.rot.X += math.Copysign(rotationJolt, dy)
	}
}

// Tick publishes the current reading and then decays it by dt.
func (v *Virtual) Tick(dt time.Duration) {
	v.hub.Motion.Publish(v.Motion())
	v.hub.Loudness.Publish(v.Audio())
	v.hub.Face.Publish(Face{JawOpen: v.jaw})

	k := float64(dt) / float64(decayTick)
	v.gravity = v.gravity.Scale(math.Pow(tiltDecay, k))
	v.rot.X *= math.Pow(rotationDecay, k)
	v.rot.Y *= math.Pow(rotationDecay, k)
	v.rot.Z *= math.Pow(rotationDecay, k)
	v.accel *= math.Pow(shakeDecay, k)
	v.level *= math.Pow(blowDecay, k)
}

// Motion returns the current motion reading.
func (v *Virtual) Motion() Motion {
	gz := -math.Sqrt(math.Max(0, 1-v.gravity.X*v.gravity.X-v.gravity.Y*v.gravity.Y))
	return Motion{
		Gravity:      Vec3{X: v.gravity.X, Y: v.gravity.Y, Z: gz},
		Rotation:     v.rot,
		Acceleration: Vec3{Z: v.accel},
	}
}

// Audio returns the current microphone reading.
func (v *Virtual) Audio() Audio {
	return Audio{
		RMS:      v.level * 0.1,
		Decibels: v.level*50 - 50,
	}
}
