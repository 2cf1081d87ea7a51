package session

import (
	"time"

	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/random"
	"github.com/stemsi/exstem-prep/internal/selector"
)

// Mode names the active state.
type Mode string

const (
	ModeLanding         Mode = "landing"
	ModePracticeConfig  Mode = "practice_config"
	ModeExam            Mode = "exam"
	ModeSubmitPending   Mode = "submit_pending"
	ModePractice        Mode = "practice"
	ModeResults         Mode = "results"
	ModePracticeResults Mode = "practice_results"
	ModeHistory         Mode = "history"
)

// State is one variant of the session state machine. Each variant carries
// only the data that is meaningful in that mode.
type State interface {
	Mode() Mode
}

type Landing struct{}

type PracticeConfig struct{}

// Exam is a timed exam in progress.
type Exam struct {
	Sheet     *Sheet
	StartedAt time.Time
	// Remaining is the countdown in seconds.
	Remaining int
	Warned    bool
}

// SubmitPending holds an exam whose submission awaits flag confirmation.
// The exam clock keeps running.
type SubmitPending struct {
	Exam   *Exam
	Counts model.SubmitCounts
}

// Practice is an untimed practice set with immediate feedback.
type Practice struct {
	Sheet     *Sheet
	StartedAt time.Time
	Feedback  map[int]model.Feedback
}

// Results shows a finalized exam, either just submitted or from history.
// Scoring figures come from the entry verbatim.
type Results struct {
	Entry       model.ExamHistoryEntry
	Sheet       *Sheet
	FromHistory bool
}

// PracticeResults shows the summary of a finished practice set.
type PracticeResults struct {
	Summary  model.PracticeSummary
	Sheet    *Sheet
	Feedback map[int]model.Feedback
}

// History lists past exams, newest first.
type History struct {
	Entries []model.ExamHistoryEntry
}

func (*Landing) Mode() Mode         { return ModeLanding }
func (*PracticeConfig) Mode() Mode  { return ModePracticeConfig }
func (*Exam) Mode() Mode            { return ModeExam }
func (*SubmitPending) Mode() Mode   { return ModeSubmitPending }
func (*Practice) Mode() Mode        { return ModePractice }
func (*Results) Mode() Mode         { return ModeResults }
func (*PracticeResults) Mode() Mode { return ModePracticeResults }
func (*History) Mode() Mode         { return ModeHistory }

// Sheet is the ordered question set of a session with its answers, flags
// and cursor. Answers hold original option indices keyed by question id.
type Sheet struct {
	QuestionIDs  []int
	Permutations map[int]random.Permutation
	Answers      map[int]int
	Flags        map[int]bool
	Cursor       int
}

func newSheet(sel selector.Selection) *Sheet {
	return &Sheet{
		QuestionIDs:  sel.QuestionIDs,
		Permutations: sel.Permutations,
		Answers:      make(map[int]int),
		Flags:        make(map[int]bool),
	}
}

// Len returns the number of questions in the session.
func (s *Sheet) Len() int { return len(s.QuestionIDs) }

// CurrentID returns the question id under the cursor.
func (s *Sheet) CurrentID() (int, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.QuestionIDs) {
		return 0, false
	}
	return s.QuestionIDs[s.Cursor], true
}

// Move sets the cursor, clamped to the session range.
func (s *Sheet) Move(i int) {
	s.Cursor = max(0, min(i, len(s.QuestionIDs)-1))
}

// Counts tallies answered, unanswered and flagged questions.
func (s *Sheet) Counts() model.SubmitCounts {
	c := model.SubmitCounts{Total: len(s.QuestionIDs)}
	for _, id := range s.QuestionIDs {
		if _, ok := s.Answers[id]; ok {
			c.Answered++
		}
		if s.Flags[id] {
			c.Flagged++
		}
	}
	c.Unanswered = c.Total - c.Answered
	return c
}

// FirstFlagged returns the position of the first flagged question, or -1.
func (s *Sheet) FirstFlagged() int {
	for i, id := range s.QuestionIDs {
		if s.Flags[id] {
			return i
		}
	}
	return -1
}

// permutation returns the option order of id, falling back to identity
// when none was recorded.
func (s *Sheet) permutation(id, options int) random.Permutation {
	if p, ok := s.Permutations[id]; ok && p.Valid(options) {
		return p
	}
	return random.Identity(options)
}
