package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/bank/banktest"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/history"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/random"
	"github.com/stemsi/exstem-prep/internal/selector"
	"github.com/stemsi/exstem-prep/internal/session"
	"github.com/stemsi/exstem-prep/internal/storage"
)

var keys = config.NewStorageKeyStruct("test")

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recorder struct{ notices []session.Notice }

func (r *recorder) Notify(n session.Notice) { r.notices = append(r.notices, n) }

func (r *recorder) count(kind session.NoticeKind) int {
	n := 0
	for _, no := range r.notices {
		if no.Kind == kind {
			n++
		}
	}
	return n
}

type archiver struct{ entries []model.ExamHistoryEntry }

func (a *archiver) Archive(_ context.Context, e model.ExamHistoryEntry) error {
	a.entries = append(a.entries, e)
	return nil
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	bank    *bank.Bank
	store   *storage.MemoryStore
	history *history.Store
	sched   *session.ManualScheduler
	clock   *clock
	notes   *recorder
	archive *archiver
	eng     *session.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:       t,
		ctx:     context.Background(),
		bank:    banktest.New(t, 20, 20, 20),
		store:   storage.NewMemoryStore(),
		clock:   &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		notes:   &recorder{},
		archive: &archiver{},
	}
	f.history = history.NewStore(f.store, keys.HistoryKey(), 20, zerolog.Nop())
	f.eng = f.newEngine(1)
	return f
}

func (f *fixture) newEngine(seed uint64) *session.Engine {
	f.sched = session.NewManualScheduler()
	return session.New(session.Deps{
		Bank:      f.bank,
		Selector:  selector.New(f.bank, random.NewSeeded(seed)),
		Store:     f.store,
		History:   f.history,
		Scheduler: f.sched,
		Now:       f.clock.now,
		Log:       zerolog.Nop(),
		Notifier:  f.notes,
		Archiver:  f.archive,
	}, session.Config{
		ExamSize:     50,
		ExamDuration: 7200 * time.Second,
		WarningAt:    900 * time.Second,
		TickInterval: time.Second,
		Keys:         keys,
	})
}

func (f *fixture) must(err error) {
	f.t.Helper()
	if err != nil {
		f.t.Fatalf("unexpected error: %v", err)
	}
}

// display returns the display position of the correct option (or of the
// first wrong one) for the current question.
func (f *fixture) display(correct bool) int {
	f.t.Helper()
	v := f.eng.View()
	if v.Question == nil {
		f.t.Fatal("no current question")
	}
	q, _ := f.bank.ByID(v.Question.ID)
	for i, opt := range v.Question.Options {
		if (opt == q.Options[q.Correct]) == correct {
			return i
		}
	}
	f.t.Fatal("option not found")
	return -1
}

// answerFirst answers the first n questions, correctly when correct is set.
func (f *fixture) answerFirst(n int, correct bool) {
	f.t.Helper()
	for i := 0; i < n; i++ {
		f.must(f.eng.Navigate(i))
		_, err := f.eng.Answer(f.ctx, f.display(correct))
		f.must(err)
	}
}

func (f *fixture) flag(index int) {
	f.t.Helper()
	f.must(f.eng.Navigate(index))
	on, err := f.eng.ToggleFlag(f.ctx)
	f.must(err)
	if !on {
		f.t.Fatalf("expected question %d flagged", index)
	}
}

func (f *fixture) assertExamKeysCleared() {
	f.t.Helper()
	for _, k := range keys.ActiveExamKeys() {
		if _, ok, _ := f.store.Get(f.ctx, k); ok {
			f.t.Errorf("expected %s cleared", k)
		}
	}
}

func TestSubmit_FlaggedRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	f.must(f.eng.StartExam(f.ctx))

	f.answerFirst(48, true)
	f.flag(5)
	f.flag(30)
	f.must(f.eng.Navigate(7))

	f.must(f.eng.Submit(f.ctx, false))

	v := f.eng.View()
	if v.Mode != session.ModeSubmitPending {
		t.Fatalf("expected submit_pending, got %s", v.Mode)
	}
	want := model.SubmitCounts{Flagged: 2, Unanswered: 2, Answered: 48, Total: 50}
	if v.Counts == nil || *v.Counts != want {
		t.Fatalf("expected counts %+v, got %+v", want, v.Counts)
	}

	// Cancel leaves the exam untouched.
	f.must(f.eng.CancelSubmit())
	v = f.eng.View()
	if v.Mode != session.ModeExam || v.Cursor != 7 {
		t.Fatalf("expected exam at cursor 7, got %s at %d", v.Mode, v.Cursor)
	}

	f.must(f.eng.Submit(f.ctx, false))
	f.must(f.eng.JumpToFlagged())
	v = f.eng.View()
	if v.Mode != session.ModeExam || v.Cursor != 5 {
		t.Fatalf("expected exam at first flagged question 5, got %s at %d", v.Mode, v.Cursor)
	}

	f.must(f.eng.Submit(f.ctx, false))
	f.must(f.eng.ConfirmSubmit(f.ctx))

	v = f.eng.View()
	if v.Mode != session.ModeResults {
		t.Fatalf("expected results, got %s", v.Mode)
	}
	if v.Result.Score != 48 || v.Result.Total != 50 || v.Result.Percentage != 96 || !v.Result.Passed {
		t.Errorf("unexpected result %+v", v.Result)
	}

	entries, _ := f.history.Load(f.ctx)
	if len(entries) != 1 || entries[0].ID != v.Result.EntryID {
		t.Fatalf("expected one history entry, got %+v", entries)
	}
	if len(f.archive.entries) != 1 {
		t.Errorf("expected archived entry, got %d", len(f.archive.entries))
	}
	if f.sched.Active() != 0 {
		t.Errorf("expected timer cancelled, %d active", f.sched.Active())
	}
	f.assertExamKeysCleared()
}

func TestSubmit_BypassSkipsConfirmation(t *testing.T) {
	f := newFixture(t)
	f.must(f.eng.StartExam(f.ctx))

	f.answerFirst(3, false)
	f.flag(0)

	f.must(f.eng.Submit(f.ctx, true))
	if m := f.eng.Mode(); m != session.ModeResults {
		t.Fatalf("expected results, got %s", m)
	}
	if v := f.eng.View(); v.Result.Score != 0 || v.Result.Passed {
		t.Errorf("expected failing score 0, got %+v", v.Result)
	}
}

func TestSubmit_NoAnswersRejected(t *testing.T) {
	f := newFixture(t)
	f.must(f.eng.StartExam(f.ctx))
	f.flag(2)

	err := f.eng.Submit(f.ctx, true)
	if !errors.Is(err, session.ErrNoAnswers) {
		t.Fatalf("expected ErrNoAnswers, got %v", err)
	}
	if m := f.eng.Mode(); m != session.ModeExam {
		t.Errorf("expected to stay in exam, got %s", m)
	}
	entries, _ := f.history.Load(f.ctx)
	if len(entries) != 0 {
		t.Errorf("expected no history, got %d", len(entries))
	}
}

func TestTick_TimeoutAutoFinalizes(t *testing.T) {
	f := newFixture(t)
	f.must(f.eng.StartExam(f.ctx))

	f.answerFirst(40, true)
	f.flag(45)

	f.sched.Advance(7199)
	if m := f.eng.Mode(); m != session.ModeExam {
		t.Fatalf("expected exam before time is up, got %s", m)
	}
	if r := f.eng.View().Remaining; r == nil || *r != 1 {
		t.Fatalf("expected 1 second remaining, got %v", r)
	}

	f.sched.Fire()

	v := f.eng.View()
	if v.Mode != session.ModeResults {
		t.Fatalf("expected auto-submitted results, got %s", v.Mode)
	}
	if v.Result.Score != 40 || v.Result.Total != 50 || v.Result.Percentage != 80 {
		t.Errorf("unexpected result %+v", v.Result)
	}
	if v.Result.TimeSpent != 7200 {
		t.Errorf("expected time spent 7200, got %d", v.Result.TimeSpent)
	}

	if n := f.notes.count(session.NoticeWarning); n != 1 {
		t.Errorf("expected one warning, got %d", n)
	}
	for _, n := range f.notes.notices {
		if n.Kind == session.NoticeWarning && n.Remaining != 900 {
			t.Errorf("expected warning at 900 seconds, got %d", n.Remaining)
		}
	}
	if f.notes.count(session.NoticeTimeUp) != 1 || f.notes.count(session.NoticeFinalized) != 1 {
		t.Errorf("expected time_up and finalized notices, got %+v", f.notes.notices[len(f.notes.notices)-3:])
	}

	if f.sched.Active() != 0 {
		t.Errorf("expected timer cancelled, %d active", f.sched.Active())
	}
	f.eng.Tick(f.ctx)
	if m := f.eng.Mode(); m != session.ModeResults {
		t.Errorf("expected tick after finalize to be ignored, got %s", m)
	}
	f.assertExamKeysCleared()
}

func TestTick_ContinuesWhileSubmitPending(t *testing.T) {
	f := newFixture(t)
	f.must(f.eng.StartExam(f.ctx))
	f.answerFirst(1, true)
	f.flag(0)
	f.must(f.eng.Submit(f.ctx, false))

	f.sched.Advance(7200)

	if m := f.eng.Mode(); m != session.ModeResults {
		t.Fatalf("expected time out to finalize pending exam, got %s", m)
	}
}

func TestTick_IgnoredOutsideExam(t *testing.T) {
	f := newFixture(t)
	f.eng.Tick(f.ctx)
	if m := f.eng.Mode(); m != session.ModeLanding {
		t.Errorf("expected landing, got %s", m)
	}
	if len(f.notes.notices) != 0 {
		t.Errorf("expected no notices, got %d", len(f.notes.notices))
	}
}

func TestAnswer_MapsDisplayToOriginal(t *testing.T) {
	f := newFixture(t)
	f.must(f.eng.StartExam(f.ctx))

	v := f.eng.View()
	q, _ := f.bank.ByID(v.Question.ID)

	for display, text := range v.Question.Options {
		fb, err := f.eng.Answer(f.ctx, display)
		f.must(err)
		if fb != nil {
			t.Fatal("expected no feedback during an exam")
		}

		_, answers, _, err := f.eng.Export()
		f.must(err)
		if got := q.Options[answers[q.ID]]; got != text {
			t.Errorf("display %d: expected %q recorded, got %q", display, text, got)
		}
		if sel := f.eng.View().Question.Selected; sel == nil || *sel != display {
			t.Errorf("display %d: expected selection to round-trip, got %v", display, sel)
		}
	}

	if _, err := f.eng.Answer(f.ctx, len(q.Options)); !errors.Is(err, session.ErrInvalidOption) {
		t.Errorf("expected ErrInvalidOption, got %v", err)
	}

	var saved map[int]int
	if ok, _ := storage.GetJSON(f.ctx, f.store, keys.ExamAnswersKey(), &saved); !ok || len(saved) != 1 {
		t.Errorf("expected answers autosaved, got %v", saved)
	}
}

func TestNavigate_Clamps(t *testing.T) {
	f := newFixture(t)
	f.must(f.eng.StartExam(f.ctx))

	f.must(f.eng.Navigate(999))
	if c := f.eng.View().Cursor; c != 49 {
		t.Errorf("expected cursor 49, got %d", c)
	}
	f.must(f.eng.Next())
	if c := f.eng.View().Cursor; c != 49 {
		t.Errorf("expected cursor to stay at 49, got %d", c)
	}
	f.must(f.eng.Navigate(-5))
	f.must(f.eng.Prev())
	if c := f.eng.View().Cursor; c != 0 {
		t.Errorf("expected cursor 0, got %d", c)
	}
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"submit from landing", func() error { return f.eng.Submit(f.ctx, false) }},
		{"confirm from landing", func() error { return f.eng.ConfirmSubmit(f.ctx) }},
		{"start practice from landing", func() error { return f.eng.StartPractice(f.ctx, 5) }},
		{"navigate from landing", func() error { return f.eng.Navigate(1) }},
		{"review from landing", func() error { return f.eng.Review(f.ctx, "x") }},
		{"answer from landing", func() error { _, err := f.eng.Answer(f.ctx, 0); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, session.ErrInvalidTransition) {
				t.Errorf("expected ErrInvalidTransition, got %v", err)
			}
		})
	}

	f.must(f.eng.StartExam(f.ctx))
	if err := f.eng.StartExam(f.ctx); !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("expected starting a second exam to fail, got %v", err)
	}
	if err := f.eng.ConfigurePractice(); !errors.Is(err, session.ErrInvalidTransition) {
		t.Errorf("expected practice config during exam to fail, got %v", err)
	}
}

func TestHome_AbandonsExam(t *testing.T) {
	f := newFixture(t)
	f.must(f.eng.StartExam(f.ctx))
	f.answerFirst(2, true)

	f.eng.Home(f.ctx)

	if m := f.eng.Mode(); m != session.ModeLanding {
		t.Fatalf("expected landing, got %s", m)
	}
	if f.sched.Active() != 0 {
		t.Errorf("expected timer cancelled, %d active", f.sched.Active())
	}
	f.assertExamKeysCleared()

	entries, _ := f.history.Load(f.ctx)
	if len(entries) != 0 {
		t.Errorf("expected abandoned exam kept out of history, got %d", len(entries))
	}
}

func TestRestore(t *testing.T) {
	t.Run("resumes a running exam", func(t *testing.T) {
		f := newFixture(t)
		f.must(f.eng.StartExam(f.ctx))
		f.answerFirst(3, true)
		f.flag(10)
		ids, _, _, _ := f.eng.Export()
		f.eng.Close()

		f.clock.advance(30 * time.Minute)
		eng := f.newEngine(2)
		f.eng = eng

		ok, err := eng.Restore(f.ctx)
		f.must(err)
		if !ok {
			t.Fatal("expected exam restored")
		}

		v := eng.View()
		if v.Mode != session.ModeExam {
			t.Fatalf("expected exam, got %s", v.Mode)
		}
		if v.Remaining == nil || *v.Remaining != 5400 {
			t.Errorf("expected 5400 seconds remaining, got %v", v.Remaining)
		}

		gotIDs, answers, flags, _ := eng.Export()
		if len(gotIDs) != len(ids) {
			t.Fatalf("expected %d ids, got %d", len(ids), len(gotIDs))
		}
		for i := range ids {
			if gotIDs[i] != ids[i] {
				t.Fatalf("expected order preserved, differs at %d", i)
			}
		}
		if len(answers) != 3 || len(flags) != 1 || !flags[ids[10]] {
			t.Errorf("expected 3 answers and 1 flag, got %v %v", answers, flags)
		}
		if f.sched.Active() != 1 {
			t.Errorf("expected timer running, %d active", f.sched.Active())
		}
	})

	t.Run("keeps the time warning sent once", func(t *testing.T) {
		f := newFixture(t)
		f.must(f.eng.StartExam(f.ctx))
		f.sched.Advance(6301)
		if n := f.notes.count(session.NoticeWarning); n != 1 {
			t.Fatalf("expected warning before restore, got %d", n)
		}
		f.eng.Close()

		f.clock.advance(6301 * time.Second)
		f.eng = f.newEngine(2)
		ok, err := f.eng.Restore(f.ctx)
		f.must(err)
		if !ok {
			t.Fatal("expected exam restored")
		}

		f.sched.Advance(10)
		if n := f.notes.count(session.NoticeWarning); n != 1 {
			t.Errorf("expected no second warning after restore, got %d", n)
		}
	})

	t.Run("warns after restore when the warning was missed", func(t *testing.T) {
		f := newFixture(t)
		f.must(f.eng.StartExam(f.ctx))
		f.eng.Close()

		f.clock.advance(6400 * time.Second)
		f.eng = f.newEngine(2)
		ok, err := f.eng.Restore(f.ctx)
		f.must(err)
		if !ok {
			t.Fatal("expected exam restored")
		}

		f.sched.Fire()
		if n := f.notes.count(session.NoticeWarning); n != 1 {
			t.Errorf("expected one warning, got %d", n)
		}
	})

	t.Run("discards an expired exam", func(t *testing.T) {
		f := newFixture(t)
		f.must(f.eng.StartExam(f.ctx))
		f.eng.Close()

		f.clock.advance(2*time.Hour + time.Second)
		f.eng = f.newEngine(2)

		ok, err := f.eng.Restore(f.ctx)
		f.must(err)
		if ok {
			t.Fatal("expected expired exam discarded")
		}
		if m := f.eng.Mode(); m != session.ModeLanding {
			t.Errorf("expected landing, got %s", m)
		}
		f.assertExamKeysCleared()
	})

	t.Run("discards corrupt state", func(t *testing.T) {
		f := newFixture(t)
		f.must(f.eng.StartExam(f.ctx))
		f.eng.Close()
		_ = f.store.Set(f.ctx, keys.ExamShuffledOptionsKey(), `{"1":[0,0,1,2]}`)

		f.eng = f.newEngine(2)
		ok, err := f.eng.Restore(f.ctx)
		f.must(err)
		if ok {
			t.Fatal("expected corrupt exam discarded")
		}
		f.assertExamKeysCleared()
	})

	t.Run("nothing saved", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.eng.Restore(f.ctx)
		if err != nil || ok {
			t.Errorf("expected nothing restored, got ok=%v err=%v", ok, err)
		}
	})
}

func TestPractice_FeedbackAndFinish(t *testing.T) {
	f := newFixture(t)

	f.must(f.eng.ConfigurePractice())
	f.must(f.eng.StartPractice(f.ctx, 5))

	v := f.eng.View()
	if v.Mode != session.ModePractice || v.Total != 5 {
		t.Fatalf("expected practice of 5, got %s of %d", v.Mode, v.Total)
	}
	if v.Remaining != nil {
		t.Error("expected practice to be untimed")
	}
	if f.sched.Active() != 0 {
		t.Error("expected no timer in practice")
	}

	wrong := f.display(false)
	fb, err := f.eng.Answer(f.ctx, wrong)
	f.must(err)
	if fb == nil || fb.Correct {
		t.Fatalf("expected incorrect feedback, got %+v", fb)
	}
	q, _ := f.bank.ByID(fb.QuestionID)
	if fb.CorrectIndex != q.Correct || fb.Explanation != q.Explanation {
		t.Errorf("unexpected feedback %+v", fb)
	}

	right := f.display(true)
	fb, err = f.eng.Answer(f.ctx, right)
	f.must(err)
	if !fb.Correct || fb.CorrectDisplay != right || fb.WrongExplanation != "" {
		t.Errorf("expected correct feedback at display %d, got %+v", right, fb)
	}
	if v := f.eng.View(); v.Feedback == nil || !v.Feedback.Correct {
		t.Errorf("expected view to carry feedback, got %+v", v.Feedback)
	}

	f.clock.advance(90 * time.Second)

	_, err = f.eng.FinishPractice(f.ctx, false)
	var unanswered *session.UnansweredError
	if !errors.As(err, &unanswered) || !errors.Is(err, session.ErrUnansweredRemaining) {
		t.Fatalf("expected UnansweredError, got %v", err)
	}
	if unanswered.Counts.Unanswered != 4 || unanswered.Counts.Answered != 1 {
		t.Errorf("unexpected counts %+v", unanswered.Counts)
	}

	summary, err := f.eng.FinishPractice(f.ctx, true)
	f.must(err)
	if summary.Correct != 1 || summary.Answered != 1 || summary.Total != 5 || summary.TimeSpent != 90 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if m := f.eng.Mode(); m != session.ModePracticeResults {
		t.Errorf("expected practice_results, got %s", m)
	}

	entries, _ := f.history.Load(f.ctx)
	if len(entries) != 0 {
		t.Errorf("expected practice kept out of history, got %d", len(entries))
	}
}

func TestHistoryReview(t *testing.T) {
	f := newFixture(t)
	f.must(f.eng.StartExam(f.ctx))
	f.answerFirst(25, true)
	f.must(f.eng.Submit(f.ctx, false))

	finished := f.eng.View().Result

	f.eng.Home(f.ctx)
	entries, err := f.eng.ShowHistory(f.ctx)
	f.must(err)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if v := f.eng.View(); len(v.History) != 1 || v.History[0].Answered != 25 || v.History[0].Passed {
		t.Errorf("unexpected history view %+v", v.History)
	}

	if err := f.eng.Review(f.ctx, "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	f.must(f.eng.Review(f.ctx, entries[0].ID))
	v := f.eng.View()
	if v.Mode != session.ModeResults || !v.Result.FromHistory {
		t.Fatalf("expected results from history, got %s", v.Mode)
	}
	if v.Result.Score != finished.Score || v.Result.Percentage != 50 || v.Result.TimeSpent != finished.TimeSpent {
		t.Errorf("expected stored figures, got %+v", v.Result)
	}

	// Review reveals the correct answer in the stored option order.
	q, _ := f.bank.ByID(v.Question.ID)
	if v.Question.CorrectDisplay == nil || v.Question.Options[*v.Question.CorrectDisplay] != q.Options[q.Correct] {
		t.Errorf("expected correct option revealed, got %+v", v.Question)
	}
	if v.Question.Selected == nil || *v.Question.Selected != *v.Question.CorrectDisplay {
		t.Errorf("expected stored selection on the correct option, got %v", v.Question.Selected)
	}

	var total int
	for _, ds := range v.Result.Breakdown {
		total += ds.Total
	}
	if total != 50 {
		t.Errorf("expected breakdown over 50 questions, got %d", total)
	}
}
