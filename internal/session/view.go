package session

import (
	"time"

	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/scoring"
)

// View is an immutable snapshot of the session for rendering.
type View struct {
	Mode      Mode                      `json:"mode"`
	Cursor    int                       `json:"cursor"`
	Total     int                       `json:"total"`
	Question  *model.QuestionForDisplay `json:"question,omitempty"`
	Navigator []NavItem                 `json:"navigator,omitempty"`
	Remaining *int                      `json:"remaining_seconds,omitempty"`
	Counts    *model.SubmitCounts       `json:"counts,omitempty"`
	Feedback  *model.Feedback           `json:"feedback,omitempty"`
	Result    *ResultView               `json:"result,omitempty"`
	Summary   *model.PracticeSummary    `json:"summary,omitempty"`
	History   []HistoryItem             `json:"history,omitempty"`
}

// NavItem is one cell of the question navigator.
type NavItem struct {
	Index    int  `json:"index"`
	ID       int  `json:"id"`
	Answered bool `json:"answered"`
	Flagged  bool `json:"flagged"`
}

// ResultView summarizes a finalized exam.
type ResultView struct {
	EntryID     string                       `json:"entry_id"`
	Date        time.Time                    `json:"date"`
	Score       int                          `json:"score"`
	Total       int                          `json:"total"`
	Percentage  int                          `json:"percentage"`
	Passed      bool                         `json:"passed"`
	TimeSpent   int                          `json:"time_spent"`
	FromHistory bool                         `json:"from_history"`
	Breakdown   map[string]model.DomainScore `json:"breakdown"`
}

// HistoryItem is one row of the history list.
type HistoryItem struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
	Passed     bool      `json:"passed"`
	TimeSpent  int       `json:"time_spent"`
	Answered   int       `json:"answered"`
}

// View returns a snapshot of the current state.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{Mode: e.state.Mode()}

	switch st := e.state.(type) {
	case *Exam:
		e.fillSheet(&v, st.Sheet, false)
		remaining := st.Remaining
		v.Remaining = &remaining

	case *SubmitPending:
		e.fillSheet(&v, st.Exam.Sheet, false)
		remaining := st.Exam.Remaining
		v.Remaining = &remaining
		counts := st.Counts
		v.Counts = &counts

	case *Practice:
		e.fillSheet(&v, st.Sheet, false)
		if id, ok := st.Sheet.CurrentID(); ok {
			if fb, ok := st.Feedback[id]; ok {
				v.Feedback = &fb
			}
		}

	case *Results:
		e.fillSheet(&v, st.Sheet, true)
		v.Result = e.resultView(st)

	case *PracticeResults:
		e.fillSheet(&v, st.Sheet, true)
		summary := st.Summary
		v.Summary = &summary
		if id, ok := st.Sheet.CurrentID(); ok {
			if fb, ok := st.Feedback[id]; ok {
				v.Feedback = &fb
			}
		}

	case *History:
		v.History = HistoryItems(st.Entries)
	}

	return v
}

// HistoryItems converts stored entries to history rows, keeping their order.
func HistoryItems(entries []model.ExamHistoryEntry) []HistoryItem {
	items := make([]HistoryItem, 0, len(entries))
	for _, en := range entries {
		items = append(items, HistoryItem{
			ID:         en.ID,
			Date:       en.Date,
			Score:      en.Score,
			Total:      en.Total,
			Percentage: en.Percentage,
			Passed:     scoring.Passed(en.Percentage),
			TimeSpent:  en.TimeSpent,
			Answered:   en.Answered(),
		})
	}
	return items
}

func (e *Engine) fillSheet(v *View, sh *Sheet, reveal bool) {
	v.Cursor = sh.Cursor
	v.Total = sh.Len()

	v.Navigator = make([]NavItem, len(sh.QuestionIDs))
	for i, id := range sh.QuestionIDs {
		_, answered := sh.Answers[id]
		v.Navigator[i] = NavItem{Index: i, ID: id, Answered: answered, Flagged: sh.Flags[id]}
	}

	id, ok := sh.CurrentID()
	if !ok {
		return
	}
	q, ok := e.bank.ByID(id)
	if !ok {
		return
	}

	perm := sh.permutation(id, len(q.Options))
	d := &model.QuestionForDisplay{
		ID:        q.ID,
		Domain:    q.Domain,
		Subdomain: q.Subdomain,
		Question:  q.Question,
		Options:   make([]string, len(q.Options)),
		Flagged:   sh.Flags[id],
	}
	for pos := range d.Options {
		d.Options[pos] = q.Options[perm.Original(pos)]
	}
	if orig, ok := sh.Answers[id]; ok {
		if pos := perm.Display(orig); pos >= 0 {
			d.Selected = &pos
		}
	}
	if reveal {
		pos := perm.Display(q.Correct)
		d.CorrectDisplay = &pos
		d.Explanation = q.Explanation
	}
	v.Question = d
}

func (e *Engine) resultView(st *Results) *ResultView {
	// Unknown ids in an old entry are skipped from the breakdown only.
	questions := make([]model.Question, 0, len(st.Entry.QuestionIDs))
	for _, id := range st.Entry.QuestionIDs {
		if q, ok := e.bank.ByID(id); ok {
			questions = append(questions, q)
		}
	}

	return &ResultView{
		EntryID:     st.Entry.ID,
		Date:        st.Entry.Date,
		Score:       st.Entry.Score,
		Total:       st.Entry.Total,
		Percentage:  st.Entry.Percentage,
		Passed:      scoring.Passed(st.Entry.Percentage),
		TimeSpent:   st.Entry.TimeSpent,
		FromHistory: st.FromHistory,
		Breakdown:   scoring.Breakdown(questions, st.Entry.UserAnswers),
	}
}
