package session

import "github.com/vovakirdan/pocket-arcade/internal/core"

// FirstMatch scans items in order and returns the first element matching
// pred. At most one element is ever selected.
func FirstMatch[T any](items []T, pred func(*T) bool) (*T, bool) {
	for i := range items {
		if pred(&items[i]) {
			return &items[i], true
		}
	}
	return nil, false
}

// Overlapping returns the oldest entity whose box intersects target.
func Overlapping[T any](items []T, box func(*T) core.RectF, target core.RectF) (*T, bool) {
	return FirstMatch(items, func(v *T) bool {
		return box(v).Intersects(target)
	})
}
