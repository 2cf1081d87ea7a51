// Package random provides the shuffle and option-permutation primitives
// used by session selection.
package random

import (
	"math/rand/v2"
	"time"
)

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a source seeded from the clock.
func NewSource() Source {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

// NewSeeded returns a deterministic source, for tests and reproducible tooling.
func NewSeeded(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
}

// Shuffle returns a uniformly permuted copy of in (Fisher–Yates, last index
// down to 1). The input slice is not modified.
func Shuffle[T any](src Source, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Permutation maps a display position to an original option index:
// perm[display] == original.
type Permutation []int

// Identity returns the permutation that keeps the original order.
func Identity(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// NewPermutation returns a uniformly random permutation of [0, n).
func NewPermutation(src Source, n int) Permutation {
	return Shuffle(src, Identity(n))
}

// Original translates a display position to the original option index.
// It returns -1 when display is out of range.
func (p Permutation) Original(display int) int {
	if display < 0 || display >= len(p) {
		return -1
	}
	return p[display]
}

// Display translates an original option index to its display position.
// It returns -1 when original does not occur in p.
func (p Permutation) Display(original int) int {
	for d, o := range p {
		if o == original {
			return d
		}
	}
	return -1
}

// Inverse returns q such that q[p[i]] == i.
func (p Permutation) Inverse() Permutation {
	q := make(Permutation, len(p))
	for d, o := range p {
		q[o] = d
	}
	return q
}

// Valid reports whether p is a bijection over [0, n).
func (p Permutation) Valid(n int) bool {
	if len(p) != n {
		return false
	}
	seen := make([]bool, n)
	for _, o := range p {
		if o < 0 || o >= n || seen[o] {
			return false
		}
		seen[o] = true
	}
	return true
}
