package index

import (
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/wordtree/pkg/errors"
)

// validator accumulates an in-order walk and records the first broken
// invariant.
type validator struct {
	prev    string
	visited int
	err     error
}

func (v *validator) visit(word string) {
	if v.err != nil {
		return
	}
	if v.visited > 0 {
		switch {
		case word == v.prev:
			v.failf("duplicate key %q", word)
			return
		case word < v.prev:
			v.failf("key %q follows %q in order", word, v.prev)
			return
		}
	}
	v.prev = word
	v.visited++
}

func (v *validator) failf(format string, args ...any) {
	if v.err == nil {
		v.err = fmt.Errorf("%w: %s", apperrors.ErrInvariantViolation, fmt.Sprintf(format, args...))
	}
}

func (v *validator) finish(count int) error {
	if v.err == nil && v.visited != count {
		v.failf("tree holds %d nodes, count is %d", v.visited, count)
	}
	return v.err
}
