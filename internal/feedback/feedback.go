// Package feedback delivers fire-and-forget player feedback (the terminal
// stand-in for haptics): short synthesized tones for success, error and
// impact events.
package feedback

import "sync"

// Kind is a feedback event.
type Kind int

const (
	Success Kind = iota
	Error
	Impact
	ImpactHeavy
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	case Impact:
		return "impact"
	case ImpactHeavy:
		return "impact-heavy"
	default:
		return "unknown"
	}
}

// Sink receives feedback events. Notify must never block the caller.
type Sink interface {
	Notify(k Kind)
}

// Nop discards every event.
type Nop struct{}

// Notify implements Sink.
func (Nop) Notify(Kind) {}

// Recorder keeps every event it receives. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	kinds []Kind
}

// Notify implements Sink.
func (r *Recorder) Notify(k Kind) {
	r.mu.Lock()
	r.kinds = append(r.kinds, k)
	r.mu.Unlock()
}

// Kinds returns a copy of the recorded events in arrival order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Kind(nil), r.kinds...)
}

// Count returns how many events of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, got := range r.kinds {
		if got == k {
			n++
		}
	}
	return n
}

// Last returns the most recent event.
func (r *Recorder) Last() (Kind, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.kinds) == 0 {
		return 0, false
	}
	return r.kinds[len(r.kinds)-1], true
}

// Reset forgets all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.kinds = nil
	r.mu.Unlock()
}

// OrNop returns s, or Nop when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}
