// Package config provides YAML-based game configuration loading and
// difficulty management for the arcade.
package config

import (
	"time"

	"github.com/vovakirdan/pocket-arcade/internal/session"
)

// Seconds is a duration written as a plain number of seconds in YAML.
type Seconds float64

// Duration converts s to a time.Duration.
func (s Seconds) Duration() time.Duration {
	return time.Duration(float64(s) * float64(time.Second))
}

// RampConfig is a stepwise speed-up of a spawn interval.
type RampConfig struct {
	Initial Seconds `yaml:"initial"`
	Step    Seconds `yaml:"step"`
	Every   Seconds `yaml:"every"`
	Floor   Seconds `yaml:"floor"`
}

// Ramp converts the config to a session ramp.
func (r RampConfig) Ramp() session.Ramp {
	return session.Ramp{
		Initial: r.Initial.Duration(),
		Step:    r.Step.Duration(),
		Every:   r.Every.Duration(),
		Floor:   r.Floor.Duration(),
	}
}

// MarginConfig is the spawn-free border of a playfield, in cells.
type MarginConfig struct {
	Left   float64 `yaml:"left"`
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
}

// Margins converts the config to session margins.
func (m MarginConfig) Margins() session.Margins {
	return session.Margins{Left: m.Left, Top: m.Top, Right: m.Right, Bottom: m.Bottom}
}

// BalloonConfig contains all configuration for Balloon Pop.
type BalloonConfig struct {
	Round      Seconds          `yaml:"round"`
	Update     Seconds          `yaml:"update"`
	Spawn      RampConfig       `yaml:"spawn"`
	Balloon    BalloonShape     `yaml:"balloon"`
	Margins    MarginConfig     `yaml:"margins"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// BalloonShape defines the size and life of a balloon.
type BalloonShape struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Lifespan Seconds `yaml:"lifespan"`
	PopTime  Seconds `yaml:"pop_time"` // pop animation before removal
}

// RhythmConfig contains all configuration for Rhythm Tap.
type RhythmConfig struct {
	Round      Seconds          `yaml:"round"`
	Update     Seconds          `yaml:"update"`
	Spawn      Seconds          `yaml:"spawn"`
	Lanes      int              `yaml:"lanes"`
	Tiles      RhythmTiles      `yaml:"tiles"`
	StrictTaps bool             `yaml:"strict_taps"` // a tap with no tile in the window ends the round
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// RhythmTiles defines tile geometry and motion, in rows.
type RhythmTiles struct {
	Height    float64 `yaml:"height"`
	TapZone   float64 `yaml:"tap_zone"`   // rows above the bottom edge where taps land
	FallSpeed float64 `yaml:"fall_speed"` // rows per second
}

// MazeConfig contains all configuration for Maze Ball.
type MazeConfig struct {
	Update  Seconds     `yaml:"update"`
	Timer   Seconds     `yaml:"timer"`
	Physics MazePhysics `yaml:"physics"`
}

// MazePhysics defines ball physics, in cells per tick.
type MazePhysics struct {
	AccelX   float64 `yaml:"accel_x"`
	AccelY   float64 `yaml:"accel_y"`
	Friction float64 `yaml:"friction"` // velocity multiplier per tick
	Bounce   float64 `yaml:"bounce"`   // velocity multiplier on a wall hit, reversed
	SubStep  float64 `yaml:"sub_step"` // longest move tested against walls at once
}

// RocketConfig contains all configuration for Rocket Launch.
type RocketConfig struct {
	Update     Seconds          `yaml:"update"`
	Spawn      Seconds          `yaml:"spawn"`
	Rocket     RocketShip       `yaml:"rocket"`
	Obstacles  RocketObstacles  `yaml:"obstacles"`
	Explosion  Seconds          `yaml:"explosion"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// RocketShip defines the rocket and how loudness steers it.
type RocketShip struct {
	X         float64 `yaml:"x"`
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	Baseline  float64 `yaml:"baseline"` // loudness that holds altitude
	Climb     float64 `yaml:"climb"`    // rows per tick per unit of loudness above baseline
	Follow    float64 `yaml:"follow"`   // fraction of the distance to the target covered per tick
	Margin    float64 `yaml:"margin"`   // flying closer to an edge is a crash
	MeterSize int     `yaml:"meter_size"`
}

// RocketObstacles defines the walls the rocket flies through.
type RocketObstacles struct {
	Width     float64 `yaml:"width"`
	Gap       float64 `yaml:"gap"`
	MinGap    float64 `yaml:"min_gap"`
	Speed     float64 `yaml:"speed"` // columns per tick
	EdgeSpace float64 `yaml:"edge_space"`
}

// SnackConfig contains all configuration for Snack Catcher.
type SnackConfig struct {
	Round          Seconds          `yaml:"round"`
	Update         Seconds          `yaml:"update"`
	Spawn          Seconds          `yaml:"spawn"`
	MaxLive        int              `yaml:"max_live"`
	FallSpeed      float64          `yaml:"fall_speed"` // rows per update
	MouthThreshold float64          `yaml:"mouth_threshold"`
	Catch          SnackCatch       `yaml:"catch"`
	Margin         float64          `yaml:"margin"`
	Glyphs         []string         `yaml:"glyphs"`
	Difficulty     DifficultyConfig `yaml:"difficulty"`
}

// SnackCatch defines the mouth catch zone as fractions of the playfield.
type SnackCatch struct {
	Top       float64 `yaml:"top"`
	HalfWidth float64 `yaml:"half_width"`
}

// EggConfig contains all configuration for Egg Balance.
type EggConfig struct {
	Update      Seconds          `yaml:"update"`
	BreakAt     float64          `yaml:"break_at"`
	WarnAt      float64          `yaml:"warn_at"`
	Sensitivity Seconds          `yaml:"sensitivity"` // seconds for sensitivity to grow by one
	WobbleCap   float64          `yaml:"wobble_cap"`
	TiltGain    float64          `yaml:"tilt_gain"`
	Difficulty  DifficultyConfig `yaml:"difficulty"`
}

// EightBallConfig contains all configuration for Magic 8-Ball.
type EightBallConfig struct {
	ShakeThreshold float64  `yaml:"shake_threshold"`
	Shake          Seconds  `yaml:"shake"`
	Reveal         Seconds  `yaml:"reveal"`
	Hide           Seconds  `yaml:"hide"`
	Answers        []string `yaml:"answers"`
}

// MirrorConfig contains all configuration for Foggy Mirror.
type MirrorConfig struct {
	Update     Seconds   `yaml:"update"`
	Breath     float64   `yaml:"breath"` // RMS above which the player is breathing on the mirror
	Fog        MirrorFog `yaml:"fog"`
	WipeRadius int       `yaml:"wipe_radius"`
	Frames     []string  `yaml:"frames"`
}

// MirrorFog defines how fog builds and fades.
type MirrorFog struct {
	Step      float64 `yaml:"step"`
	Max       float64 `yaml:"max"`
	FadeDelay Seconds `yaml:"fade_delay"`
	FadeBy    float64 `yaml:"fade_by"`
	FadeOver  Seconds `yaml:"fade_over"`
	WipeAbove float64 `yaml:"wipe_above"` // fog must be thicker than this to draw in
}

// ZenConfig contains all configuration for Zen Garden.
type ZenConfig struct {
	Rake  ZenRake `yaml:"rake"`
	Rocks int     `yaml:"rocks"`
}

// ZenRake defines the rake.
type ZenRake struct {
	Size    int `yaml:"size"`
	MinSize int `yaml:"min_size"`
	MaxSize int `yaml:"max_size"`
	Tines   int `yaml:"tines"`
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases during a round.
type ProgressionConfig struct {
	Type  string  `yaml:"type"`   // "score", "time", or "none"
	MaxAt float64 `yaml:"max_at"` // score or seconds at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	SpeedMultiplier float64 `yaml:"speed_multiplier"` // added to the pace at max difficulty
	GapReduction    float64 `yaml:"gap_reduction"`    // gap size reduction at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
