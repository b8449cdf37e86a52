package infogen

import (
	"errors"
	"fmt"
	"iter"
)

var ErrLabelRange = errors.New("MC label outside scope")

// TruthRegistry records which truth tracks were matched by a reconstructed
// track during one event.
type TruthRegistry struct {
	matched []bool
}

func NewTruthRegistry(n int) *TruthRegistry {
	r := &TruthRegistry{}
	r.Reset(n)
	return r
}

// Reset resizes the registry to n truth tracks, all unmatched.
func (r *TruthRegistry) Reset(n int) {
	if n < 0 {
		n = 0
	}
	if cap(r.matched) < n {
		r.matched = make([]bool, n)
		return
	}
	r.matched = r.matched[:n]
	clear(r.matched)
}

func (r *TruthRegistry) Len() int { return len(r.matched) }

// Mark flags truth track i as matched. It fails, leaving the registry
// untouched, when i is outside the truth table.
func (r *TruthRegistry) Mark(i int) error {
	if i < 0 || i >= len(r.matched) {
		return fmt.Errorf("%w: label %d, %d MC tracks", ErrLabelRange, i, len(r.matched))
	}
	r.matched[i] = true
	return nil
}

func (r *TruthRegistry) Matched(i int) bool {
	return i >= 0 && i < len(r.matched) && r.matched[i]
}

// Unmatched yields the index of every truth track not marked, in order.
func (r *TruthRegistry) Unmatched() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, ok := range r.matched {
			if ok {
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}
