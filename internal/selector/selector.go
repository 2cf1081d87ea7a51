// Package selector draws the ordered question set and option permutations
// for a new session.
package selector

import (
	"github.com/stemsi/exstem-prep/internal/allocation"
	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/random"
)

// AllocateFunc computes per-domain counts for a sample size.
type AllocateFunc func(domains []bank.DomainCount, size int) []model.DomainAllocation

// Selection is the fixed presentation order of one session.
type Selection struct {
	QuestionIDs  []int                      `json:"question_ids"`
	Permutations map[int]random.Permutation `json:"permutations"`
}

// Selector picks session questions from a bank.
type Selector struct {
	bank     *bank.Bank
	src      random.Source
	allocate AllocateFunc
}

// Option customizes a Selector.
type Option func(*Selector)

// WithAllocator replaces the proportional allocator used for practice sets.
func WithAllocator(fn AllocateFunc) Option {
	return func(s *Selector) { s.allocate = fn }
}

// New creates a Selector. A nil src uses a clock-seeded source.
func New(b *bank.Bank, src random.Source, opts ...Option) *Selector {
	if src == nil {
		src = random.NewSource()
	}
	s := &Selector{bank: b, src: src, allocate: allocation.Allocate}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bank returns the bank the selector draws from.
func (s *Selector) Bank() *bank.Bank { return s.bank }

// Allocation previews the per-domain counts of a practice set of size.
func (s *Selector) Allocation(size int) []model.DomainAllocation {
	return s.allocate(s.bank.Domains(), s.clamp(size))
}

// Exam draws a flat random sample of min(size, bank size) questions.
func (s *Selector) Exam(size int) Selection {
	size = s.clamp(size)
	ids := random.Shuffle(s.src, s.bank.IDs())[:size]
	return s.withPermutations(ids)
}

// Practice draws a domain-proportional sample of min(size, bank size)
// questions, backfilled from the unselected pool when the allocation falls
// short, and shuffled across domains.
func (s *Selector) Practice(size int) Selection {
	size = s.clamp(size)
	if size == 0 {
		return s.withPermutations(nil)
	}

	chosen := make(map[int]bool, size)
	ids := make([]int, 0, size)

	for _, a := range s.allocate(s.bank.Domains(), size) {
		pool := s.bank.ByDomain(a.Domain)
		n := min(a.Count, len(pool), size-len(ids))
		if n <= 0 {
			continue
		}
		for _, q := range random.Shuffle(s.src, pool)[:n] {
			chosen[q.ID] = true
			ids = append(ids, q.ID)
		}
	}

	if len(ids) < size {
		ids = s.backfill(ids, chosen, size)
	}

	return s.withPermutations(random.Shuffle(s.src, ids))
}

// backfill tops ids up to size from the shuffled unselected remainder.
func (s *Selector) backfill(ids []int, chosen map[int]bool, size int) []int {
	var rest []int
	for _, id := range s.bank.IDs() {
		if !chosen[id] {
			rest = append(rest, id)
		}
	}
	for _, id := range random.Shuffle(s.src, rest) {
		if len(ids) >= size {
			break
		}
		chosen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func (s *Selector) withPermutations(ids []int) Selection {
	perms := make(map[int]random.Permutation, len(ids))
	for _, id := range ids {
		q, _ := s.bank.ByID(id)
		perms[id] = random.NewPermutation(s.src, len(q.Options))
	}
	if ids == nil {
		ids = []int{}
	}
	return Selection{QuestionIDs: ids, Permutations: perms}
}

func (s *Selector) clamp(size int) int {
	if size < 0 {
		return 0
	}
	if size > s.bank.Len() {
		return s.bank.Len()
	}
	return size
}
