package session

// Order says which direction of a score is an improvement.
type Order int

const (
	HigherIsBetter Order = iota
	LowerIsBetter
	Unranked // toys without a score
)

// Best is the best final score of one game instance. It lives only in
// memory and survives any number of sessions.
type Best struct {
	order Order
	value int
	set   bool
}

// NewBest creates an empty best score with the given ordering.
func NewBest(order Order) *Best {
	return &Best{order: order}
}

// Order returns the score ordering.
func (b *Best) Order() Order {
	return b.order
}

// Value returns the best score and whether one was recorded.
func (b *Best) Value() (int, bool) {
	return b.value, b.set
}

// Beats reports whether v would become the new best.
func (b *Best) Beats(v int) bool {
	if b.order == Unranked {
		return false
	}
	if !b.set {
		return true
	}
	if b.order == LowerIsBetter {
		return v < b.value
	}
	return v > b.value
}

// Record folds a final score in and reports whether it improved the best.
func (b *Best) Record(v int) bool {
	if !b.Beats(v) {
		return false
	}
	b.value = v
	b.set = true
	return true
}
