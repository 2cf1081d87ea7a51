package model

import (
	"errors"
	"fmt"
)

// Question validation errors.
var (
	ErrTooFewOptions  = errors.New("question must have at least 2 options")
	ErrCorrectOutside = errors.New("correct index outside options")
)

// Question is a single multiple-choice item of the bank. Immutable once loaded.
type Question struct {
	ID                int            `json:"id"`
	Domain            string         `json:"domain"`
	Subdomain         string         `json:"subdomain"`
	Question          string         `json:"question"`
	Options           []string       `json:"options"`
	Correct           int            `json:"correct"`
	Explanation       string         `json:"explanation"`
	WrongExplanations map[int]string `json:"wrongExplanations,omitempty"`
}

// Validate checks the structural invariants of a question.
func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("question %d: %w", q.ID, ErrTooFewOptions)
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return fmt.Errorf("question %d: %w", q.ID, ErrCorrectOutside)
	}
	return nil
}

// QuestionForDisplay is a question rendered in its session display order.
type QuestionForDisplay struct {
	ID        int      `json:"id"`
	Domain    string   `json:"domain"`
	Subdomain string   `json:"subdomain"`
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	// Selected is the display position of the recorded answer.
	Selected *int `json:"selected,omitempty"`
	Flagged  bool `json:"flagged"`
	// CorrectDisplay and Explanation are set in review (Results) only.
	CorrectDisplay *int   `json:"correct_display,omitempty"`
	Explanation    string `json:"explanation,omitempty"`
}

// Feedback is returned for an answer recorded in practice mode.
type Feedback struct {
	QuestionID       int    `json:"question_id"`
	Selected         int    `json:"selected"`
	Correct          bool   `json:"correct"`
	CorrectIndex     int    `json:"correct_index"`
	CorrectDisplay   int    `json:"correct_display"`
	Explanation      string `json:"explanation"`
	WrongExplanation string `json:"wrong_explanation,omitempty"`
}
