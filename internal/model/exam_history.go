package model

import "time"

// ExamHistoryEntry is the frozen record of a finalized exam.
type ExamHistoryEntry struct {
	ID              string        `json:"id"`
	Date            time.Time     `json:"date"`
	Score           int           `json:"score"`
	Total           int           `json:"total"`
	Percentage      int           `json:"percentage"`
	TimeSpent       int           `json:"timeSpent"`
	QuestionIDs     []int         `json:"questionIds"`
	UserAnswers     map[int]int   `json:"userAnswers"`
	ShuffledOptions map[int][]int `json:"shuffledOptions"`
}

// Answered counts the questions of the entry that have a recorded answer.
func (e ExamHistoryEntry) Answered() int {
	n := 0
	for _, id := range e.QuestionIDs {
		if _, ok := e.UserAnswers[id]; ok {
			n++
		}
	}
	return n
}
