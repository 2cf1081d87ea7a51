// Package banktest builds synthetic question banks for tests.
package banktest

import (
	"fmt"
	"testing"

	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/model"
)

// Questions returns len(sizes) domains named "Domain 1", "Domain 2", ...
// with sizes[i] questions each. Ids start at 1 and run across domains.
// Every question has four options and Correct = id % 4.
func Questions(sizes ...int) []model.Question {
	var qs []model.Question
	id := 1
	for d, n := range sizes {
		domain := fmt.Sprintf("Domain %d", d+1)
		for i := 0; i < n; i++ {
			q := model.Question{
				ID:          id,
				Domain:      domain,
				Subdomain:   fmt.Sprintf("%s / Sub %d", domain, i%3),
				Question:    fmt.Sprintf("Question %d?", id),
				Options:     []string{"A", "B", "C", "D"},
				Correct:     id % 4,
				Explanation: fmt.Sprintf("Because %d", id),
			}
			q.WrongExplanations = map[int]string{(id + 1) % 4: "not this one"}
			qs = append(qs, q)
			id++
		}
	}
	return qs
}

// New builds a bank from Questions(sizes...) and fails the test on error.
func New(t testing.TB, sizes ...int) *bank.Bank {
	t.Helper()
	b, err := bank.New(Questions(sizes...))
	if err != nil {
		t.Fatalf("build bank: %v", err)
	}
	return b
}
