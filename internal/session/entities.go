package session

// Entities is an insertion-ordered collection of live game objects.
// Index 0 is always the oldest.
type Entities[T any] struct {
	items []T
}

// Add appends a new entity.
func (e *Entities[T]) Add(v T) {
	e.items = append(e.items, v)
}

// Len returns the number of entities.
func (e *Entities[T]) Len() int {
	return len(e.items)
}

// At returns a pointer to the i-th oldest entity.
func (e *Entities[T]) At(i int) *T {
	return &e.items[i]
}

// Each calls fn with every entity, oldest first.
func (e *Entities[T]) Each(fn func(*T)) {
	for i := range e.items {
		fn(&e.items[i])
	}
}

// RemoveIf deletes every entity matching pred, keeping order, and returns
// how many were removed.
func (e *Entities[T]) RemoveIf(pred func(*T) bool) int {
	kept := e.items[:0]
	removed := 0
	for i := range e.items {
		if pred(&e.items[i]) {
			removed++
			continue
		}
		kept = append(kept, e.items[i])
	}
	var zero T
	for i := len(kept); i < len(e.items); i++ {
		e.items[i] = zero
	}
	e.items = kept
	return removed
}

// FirstMatch returns the oldest entity matching pred.
func (e *Entities[T]) FirstMatch(pred func(*T) bool) (*T, bool) {
	return FirstMatch(e.items, pred)
}

// Clear removes every entity.
func (e *Entities[T]) Clear() {
	clear(e.items)
	e.items = e.items[:0]
}

// Items exposes the underlying slice for read-only iteration.
func (e *Entities[T]) Items() []T {
	return e.items
}
