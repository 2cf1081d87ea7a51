package allocation_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stemsi/exstem-prep/internal/allocation"
	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/random"
)

func domains(sizes ...int) []bank.DomainCount {
	out := make([]bank.DomainCount, len(sizes))
	for i, n := range sizes {
		out[i] = bank.DomainCount{Domain: fmt.Sprintf("D%d", i+1), Count: n}
	}
	return out
}

func TestAllocate_ThreeDomainScenario(t *testing.T) {
	ds := domains(23, 30, 28)

	allocs := allocation.Allocate(ds, 10)

	if got := allocation.Sum(allocs); got != 10 {
		t.Fatalf("expected sum 10, got %d", got)
	}

	want := []int{3, 4, 3}
	for i, a := range allocs {
		if a.Count != want[i] {
			t.Errorf("%s: expected %d, got %d", a.Domain, want[i], a.Count)
		}
		ideal := math.Round(10 * float64(ds[i].Count) / 81)
		if math.Abs(float64(a.Count)-ideal) > 1 {
			t.Errorf("%s: %d is more than 1 away from %v", a.Domain, a.Count, ideal)
		}
		if a.Total != ds[i].Count {
			t.Errorf("%s: expected total %d, got %d", a.Domain, ds[i].Count, a.Total)
		}
	}
}

func TestAllocate_EdgeCases(t *testing.T) {
	ds := domains(5, 3, 2)

	tests := []struct {
		name      string
		requested int
		wantSum   int
		wantNil   bool
	}{
		{"zero", 0, 0, true},
		{"negative", -4, 0, true},
		{"exact bank size", 10, 10, false},
		{"oversized", 500, 10, false},
		{"one", 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocs := allocation.Allocate(ds, tt.requested)
			if tt.wantNil && allocs != nil {
				t.Fatalf("expected empty allocation, got %+v", allocs)
			}
			if got := allocation.Sum(allocs); got != tt.wantSum {
				t.Errorf("expected sum %d, got %d", tt.wantSum, got)
			}
		})
	}
}

func TestAllocate_FullRequestSaturatesEveryDomain(t *testing.T) {
	ds := domains(7, 11, 13, 1)

	for _, a := range allocation.Allocate(ds, 32) {
		if a.Count != a.Total {
			t.Errorf("%s: expected full allocation %d, got %d", a.Domain, a.Total, a.Count)
		}
	}
}

func TestAllocate_ConservationAndFairness(t *testing.T) {
	src := random.NewSeeded(99)

	for trial := 0; trial < 200; trial++ {
		n := 1 + src.IntN(6)
		sizes := make([]int, n)
		total := 0
		for i := range sizes {
			sizes[i] = src.IntN(40)
			total += sizes[i]
		}
		ds := domains(sizes...)

		for req := 0; req <= total; req++ {
			allocs := allocation.Allocate(ds, req)

			if got := allocation.Sum(allocs); got != req {
				t.Fatalf("sizes=%v req=%d: expected sum %d, got %d", sizes, req, req, got)
			}
			for i, a := range allocs {
				if a.Count < 0 || a.Count > a.Total {
					t.Fatalf("sizes=%v req=%d: %s count %d outside [0,%d]", sizes, req, a.Domain, a.Count, a.Total)
				}
				ideal := float64(sizes[i]) / float64(total) * float64(req)
				if math.Abs(float64(a.Count)-ideal) >= 1 {
					t.Fatalf("sizes=%v req=%d: %s count %d too far from %v", sizes, req, a.Domain, a.Count, ideal)
				}
			}
		}
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	ds := domains(10, 10, 10)

	first := allocation.Allocate(ds, 4)
	for i := 0; i < 5; i++ {
		again := allocation.Allocate(ds, 4)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("expected deterministic allocation, got %+v then %+v", first, again)
			}
		}
	}

	// Equal remainders: earlier domains get the extra unit first.
	if first[0].Count != 2 || first[1].Count != 1 || first[2].Count != 1 {
		t.Errorf("expected [2 1 1], got [%d %d %d]", first[0].Count, first[1].Count, first[2].Count)
	}
}
