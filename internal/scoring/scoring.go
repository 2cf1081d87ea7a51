// Package scoring derives correctness, percentages and per-domain
// breakdowns from recorded answers.
package scoring

import (
	"math"

	"github.com/stemsi/exstem-prep/internal/model"
)

// PassThreshold is the percentage at or above which an attempt is labeled passed.
const PassThreshold = 70

// Score counts answers equal to the question's correct index.
// Unanswered questions are never correct.
func Score(questions []model.Question, answers map[int]int) model.Score {
	correct := 0
	for _, q := range questions {
		if sel, ok := answers[q.ID]; ok && sel == q.Correct {
			correct++
		}
	}
	return model.Score{
		Correct:    correct,
		Total:      len(questions),
		Percentage: Percentage(correct, len(questions)),
	}
}

// ScoreOutOf scores questions against a fixed total. Questions of the
// total that are not in questions count as incorrect.
func ScoreOutOf(questions []model.Question, answers map[int]int, total int) model.Score {
	s := Score(questions, answers)
	s.Total = max(total, s.Total)
	s.Percentage = Percentage(s.Correct, s.Total)
	return s
}

// Percentage returns round(correct / total * 100), or 0 for an empty set.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(float64(correct) / float64(total) * 100))
	return max(0, min(100, p))
}

// Passed reports whether a percentage meets the pass threshold.
func Passed(percentage int) bool {
	return percentage >= PassThreshold
}

// Breakdown groups the score by domain, tracking answered separately.
func Breakdown(questions []model.Question, answers map[int]int) map[string]model.DomainScore {
	out := make(map[string]model.DomainScore)
	for _, q := range questions {
		ds := out[q.Domain]
		ds.Total++
		if sel, ok := answers[q.ID]; ok {
			ds.Answered++
			if sel == q.Correct {
				ds.Correct++
			}
		}
		out[q.Domain] = ds
	}
	return out
}

// Summarize builds the practice summary for a finished practice set.
func Summarize(questions []model.Question, answers map[int]int, timeSpent int) model.PracticeSummary {
	breakdown := Breakdown(questions, answers)

	s := model.PracticeSummary{
		Total:     len(questions),
		TimeSpent: timeSpent,
		Breakdown: breakdown,
	}
	for _, ds := range breakdown {
		s.Correct += ds.Correct
		s.Answered += ds.Answered
	}
	return s
}
