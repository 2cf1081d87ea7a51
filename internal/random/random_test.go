package random_test

import (
	"sort"
	"testing"

	"github.com/stemsi/exstem-prep/internal/random"
)

func TestShuffle_IsPermutationAndDoesNotMutate(t *testing.T) {
	src := random.NewSeeded(42)

	for n := 0; n < 30; n++ {
		in := make([]int, n)
		for i := range in {
			in[i] = i * 3 % 7 // repeated values on purpose
		}
		orig := append([]int(nil), in...)

		out := random.Shuffle(src, in)

		if len(out) != len(in) {
			t.Fatalf("n=%d: expected length %d, got %d", n, len(in), len(out))
		}
		for i := range in {
			if in[i] != orig[i] {
				t.Fatalf("n=%d: input mutated at %d", n, i)
			}
		}

		a := append([]int(nil), in...)
		b := append([]int(nil), out...)
		sort.Ints(a)
		sort.Ints(b)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("n=%d: multiset differs: %v vs %v", n, in, out)
			}
		}
	}
}

func TestShuffle_ProducesDifferentOrders(t *testing.T) {
	src := random.NewSeeded(7)
	in := make([]int, 20)
	for i := range in {
		in[i] = i
	}

	first := random.Shuffle(src, in)
	for i := 0; i < 10; i++ {
		next := random.Shuffle(src, in)
		for j := range next {
			if next[j] != first[j] {
				return
			}
		}
	}
	t.Error("expected shuffles to produce different orders")
}

func TestPermutation_RoundTrip(t *testing.T) {
	src := random.NewSeeded(1)

	for n := 1; n <= 8; n++ {
		for trial := 0; trial < 20; trial++ {
			p := random.NewPermutation(src, n)
			if !p.Valid(n) {
				t.Fatalf("expected valid permutation of %d, got %v", n, p)
			}

			inv := p.Inverse()
			for d := 0; d < n; d++ {
				o := p.Original(d)
				if got := p.Display(o); got != d {
					t.Errorf("display(original(%d)) = %d", d, got)
				}
				if got := inv[o]; got != d {
					t.Errorf("inverse[%d] = %d, expected %d", o, got, d)
				}
			}
		}
	}
}

func TestPermutation_OutOfRange(t *testing.T) {
	p := random.Identity(4)

	if got := p.Original(4); got != -1 {
		t.Errorf("expected -1 for out of range display, got %d", got)
	}
	if got := p.Original(-1); got != -1 {
		t.Errorf("expected -1 for negative display, got %d", got)
	}
	if got := p.Display(9); got != -1 {
		t.Errorf("expected -1 for unknown original, got %d", got)
	}
}

func TestPermutation_Valid(t *testing.T) {
	tests := []struct {
		name string
		p    random.Permutation
		n    int
		want bool
	}{
		{"identity", random.Permutation{0, 1, 2}, 3, true},
		{"reversed", random.Permutation{2, 1, 0}, 3, true},
		{"duplicate", random.Permutation{0, 0, 2}, 3, false},
		{"out of range", random.Permutation{0, 1, 3}, 3, false},
		{"wrong length", random.Permutation{0, 1}, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Valid(tt.n); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
