// Package bank holds the immutable question bank every session draws from.
package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/stemsi/exstem-prep/internal/model"
)

var (
	ErrEmptyBank   = errors.New("question bank is empty")
	ErrDuplicateID = errors.New("duplicate question id")
	ErrUnknownID   = errors.New("question id not in bank")
)

// DomainCount is the number of bank questions belonging to one domain.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// Bank is an ordered, read-only collection of questions.
type Bank struct {
	questions []model.Question
	byID      map[int]int // id -> position
	domains   []DomainCount
}

// New validates the questions and builds a bank keeping their order.
func New(questions []model.Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}

	b := &Bank{
		questions: make([]model.Question, len(questions)),
		byID:      make(map[int]int, len(questions)),
	}
	copy(b.questions, questions)

	domainPos := make(map[string]int)
	for i, q := range b.questions {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, q.ID)
		}
		b.byID[q.ID] = i

		pos, ok := domainPos[q.Domain]
		if !ok {
			pos = len(b.domains)
			domainPos[q.Domain] = pos
			b.domains = append(b.domains, DomainCount{Domain: q.Domain})
		}
		b.domains[pos].Count++
	}

	return b, nil
}

// LoadFile reads a JSON array of questions from path.
func LoadFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}

	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}

	return New(questions)
}

// Len returns the number of questions.
func (b *Bank) Len() int { return len(b.questions) }

// Questions returns a copy of all questions in bank order.
func (b *Bank) Questions() []model.Question {
	out := make([]model.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

// IDs returns every question id in bank order.
func (b *Bank) IDs() []int {
	ids := make([]int, len(b.questions))
	for i, q := range b.questions {
		ids[i] = q.ID
	}
	return ids
}

// ByID looks a question up by id.
func (b *Bank) ByID(id int) (model.Question, bool) {
	i, ok := b.byID[id]
	if !ok {
		return model.Question{}, false
	}
	return b.questions[i], true
}

// Lookup resolves ids to questions, keeping the given order.
func (b *Bank) Lookup(ids []int) ([]model.Question, error) {
	out := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := b.ByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownID, id)
		}
		out = append(out, q)
	}
	return out, nil
}

// Resolve is Lookup without failing: unknown ids are returned separately.
func (b *Bank) Resolve(ids []int) (found []model.Question, missing []int) {
	found = make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := b.ByID(id); ok {
			found = append(found, q)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// ByDomain returns the questions of one domain in bank order.
func (b *Bank) ByDomain(domain string) []model.Question {
	var out []model.Question
	for _, q := range b.questions {
		if q.Domain == domain {
			out = append(out, q)
		}
	}
	return out
}

// Domains returns the domains in order of first appearance with their sizes.
func (b *Bank) Domains() []DomainCount {
	out := make([]DomainCount, len(b.domains))
	copy(out, b.domains)
	return out
}

// Subdomains counts questions per subdomain.
func (b *Bank) Subdomains() map[string]int {
	out := make(map[string]int)
	for _, q := range b.questions {
		if q.Subdomain != "" {
			out[q.Subdomain]++
		}
	}
	return out
}
