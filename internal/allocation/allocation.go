// Package allocation splits a requested sample size across domains in
// proportion to their size in the bank (largest-remainder method).
package allocation

import (
	"math"
	"sort"

	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/model"
)

type share struct {
	alloc     model.DomainAllocation
	remainder float64
	order     int
}

// Allocate returns per-domain counts summing to clamp(requested, 0, bankSize).
// Domains keep the order they are given in.
func Allocate(domains []bank.DomainCount, requested int) []model.DomainAllocation {
	size := 0
	for _, d := range domains {
		size += d.Count
	}
	if requested <= 0 || size == 0 {
		return nil
	}

	target := requested
	if target > size {
		target = size
	}

	shares := make([]*share, len(domains))
	sum := 0
	for i, d := range domains {
		raw := float64(d.Count) / float64(size) * float64(target)
		base := int(math.Floor(raw))
		if base > d.Count {
			base = d.Count
		}
		shares[i] = &share{
			alloc:     model.DomainAllocation{Domain: d.Domain, Total: d.Count, Count: base},
			remainder: raw - float64(base),
			order:     i,
		}
		sum += base
	}

	bound := 4 * len(domains)

	if sum < target {
		byRemainder := sortedShares(shares, true)
		for iter := 0; sum < target && iter < bound; iter++ {
			s := byRemainder[iter%len(byRemainder)]
			if s.alloc.Count >= s.alloc.Total {
				continue
			}
			s.alloc.Count++
			sum++
		}
	}

	if sum > target {
		byRemainder := sortedShares(shares, false)
		for iter := 0; sum > target && iter < bound; iter++ {
			s := byRemainder[iter%len(byRemainder)]
			if s.alloc.Count == 0 {
				continue
			}
			s.alloc.Count--
			sum--
		}
	}

	out := make([]model.DomainAllocation, len(shares))
	for i, s := range shares {
		out[i] = s.alloc
	}
	return out
}

// sortedShares orders shares by remainder; ties keep domain order.
func sortedShares(shares []*share, descending bool) []*share {
	out := make([]*share, len(shares))
	copy(out, shares)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].remainder > out[j].remainder
		}
		return out[i].remainder < out[j].remainder
	})
	return out
}

// Sum adds up the allocated counts.
func Sum(allocs []model.DomainAllocation) int {
	n := 0
	for _, a := range allocs {
		n += a.Count
	}
	return n
}
