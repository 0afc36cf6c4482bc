package session

import (
	"time"

	"github.com/vovakirdan/pocket-arcade/internal/core"
	"github.com/vovakirdan/pocket-arcade/internal/feedback"
)

// Session is the ready → playing → ended state machine of one game instance.
// It owns the game clock and the in-memory best score.
type Session struct {
	phase core.Phase
	score int
	clock *Clock
	best  *Best
	sink  feedback.Sink
}

// New creates a session in the Ready phase.
func New(order Order, sink feedback.Sink) *Session {
	return &Session{
		phase: core.PhaseReady,
		clock: NewClock(),
		best:  NewBest(order),
		sink:  feedback.OrNop(sink),
	}
}

// Phase returns the current phase.
func (s *Session) Phase() core.Phase {
	return s.phase
}

// Playing reports whether the session is in the Playing phase.
func (s *Session) Playing() bool {
	return s.phase == core.PhasePlaying
}

// Ended reports whether the session is in the Ended phase.
func (s *Session) Ended() bool {
	return s.phase == core.PhaseEnded
}

// Score returns the current score.
func (s *Session) Score() int {
	return s.score
}

// Best returns the best score holder.
func (s *Session) Best() *Best {
	return s.best
}

// Clock returns the session clock.
func (s *Session) Clock() *Clock {
	return s.clock
}

// Elapsed returns the playing time of the current or last session.
func (s *Session) Elapsed() time.Duration {
	return s.clock.Elapsed()
}

// Feedback returns the sink events are sent to.
func (s *Session) Feedback() feedback.Sink {
	return s.sink
}

// Start enters Playing from Ready or Ended. The score is cleared, the clock
// is rebuilt by setup and started. Starting while Playing is a no-op.
func (s *Session) Start(setup func(c *Clock)) {
	if s.phase == core.PhasePlaying {
		return
	}
	s.clock.Stop()
	s.score = 0
	s.phase = core.PhasePlaying
	if setup != nil {
		setup(s.clock)
	}
	s.clock.Start()
}

// End leaves Playing: the clock stops, the final score is folded into the
// best score and the terminal feedback fires. Ending a session that is not
// Playing does nothing.
func (s *Session) End(outcome feedback.Kind) {
	if s.phase != core.PhasePlaying {
		return
	}
	s.phase = core.PhaseEnded
	s.clock.Stop()
	s.best.Record(s.score)
	s.sink.Notify(outcome)
}

// Reset returns to Ready without recording a score; the best score is kept.
func (s *Session) Reset() {
	s.clock.Stop()
	s.score = 0
	s.phase = core.PhaseReady
}

// AddScore increases the score while Playing. Negative or late additions are
// ignored so the score never decreases and is frozen once Ended.
func (s *Session) AddScore(n int) {
	if s.phase != core.PhasePlaying || n <= 0 {
		return
	}
	s.score += n
}

// Advance moves the clock forward while Playing.
func (s *Session) Advance(dt time.Duration) {
	if s.phase != core.PhasePlaying {
		return
	}
	s.clock.Advance(dt)
}

// Close stops the clock unconditionally. Used on teardown.
func (s *Session) Close() {
	s.clock.Stop()
}

// State projects the session onto the platform state.
func (s *Session) State(paused bool) core.GameState {
	best, ok := s.best.Value()
	return core.GameState{
		Phase:    s.phase,
		Score:    s.score,
		Best:     best,
		HasBest:  ok,
		GameOver: s.phase == core.PhaseEnded,
		Paused:   paused,
	}
}
