// Package session implements the exam and practice state machine: question
// selection, answer recording, the exam countdown, submission gating,
// scoring and history.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/history"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/random"
	"github.com/stemsi/exstem-prep/internal/scoring"
	"github.com/stemsi/exstem-prep/internal/selector"
	"github.com/stemsi/exstem-prep/internal/storage"
)

// Sentinel errors returned by Engine operations.
var (
	ErrInvalidTransition   = errors.New("operation not allowed in current mode")
	ErrNoAnswers           = errors.New("answer at least one question before submitting")
	ErrUnansweredRemaining = errors.New("some questions are unanswered")
	ErrInvalidOption       = errors.New("option index out of range")
	ErrNoQuestion          = errors.New("session has no current question")
)

// UnansweredError carries the counts of a practice set finished early.
type UnansweredError struct {
	Counts model.SubmitCounts
}

func (e *UnansweredError) Error() string {
	return fmt.Sprintf("%d of %d questions are unanswered", e.Counts.Unanswered, e.Counts.Total)
}

func (e *UnansweredError) Unwrap() error { return ErrUnansweredRemaining }

// Config holds the engine's fixed parameters.
type Config struct {
	ExamSize     int
	ExamDuration time.Duration
	WarningAt    time.Duration
	TickInterval time.Duration
	Keys         *config.StorageKeyStruct
}

// DefaultConfig is a 50-question, two-hour exam with a 15-minute warning.
func DefaultConfig() Config {
	return Config{
		ExamSize:     50,
		ExamDuration: 7200 * time.Second,
		WarningAt:    900 * time.Second,
		TickInterval: time.Second,
		Keys:         config.StorageKey,
	}
}

// Deps are the collaborators of an Engine. Notifier and Archiver are optional.
type Deps struct {
	Bank      *bank.Bank
	Selector  *selector.Selector
	Store     storage.Store
	History   *history.Store
	Scheduler Scheduler
	Now       func() time.Time
	Log       zerolog.Logger
	Notifier  Notifier
	Archiver  Archiver
}

// Engine owns the single active session. All methods are safe for
// concurrent use; they serialize on one mutex.
type Engine struct {
	mu sync.Mutex

	bank     *bank.Bank
	selector *selector.Selector
	store    storage.Store
	history  *history.Store
	sched    Scheduler
	now      func() time.Time
	log      zerolog.Logger
	notifier Notifier
	archiver Archiver
	cfg      Config

	state      State
	cancelTick func()
	// tickGen invalidates callbacks of cancelled timers that already fired.
	tickGen uint64
}

// New creates an Engine in the Landing state.
func New(d Deps, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.ExamSize <= 0 {
		cfg.ExamSize = def.ExamSize
	}
	if cfg.ExamDuration <= 0 {
		cfg.ExamDuration = def.ExamDuration
	}
	if cfg.WarningAt <= 0 {
		cfg.WarningAt = def.WarningAt
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.Keys == nil {
		cfg.Keys = def.Keys
	}
	if d.Selector == nil {
		d.Selector = selector.New(d.Bank, nil)
	}
	if d.Scheduler == nil {
		d.Scheduler = TickerScheduler{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.History == nil {
		d.History = history.NewStore(d.Store, cfg.Keys.HistoryKey(), history.DefaultCapacity, d.Log)
	}

	return &Engine{
		bank:     d.Bank,
		selector: d.Selector,
		store:    d.Store,
		history:  d.History,
		sched:    d.Scheduler,
		now:      d.Now,
		log:      d.Log.With().Str("component", "session").Logger(),
		notifier: d.Notifier,
		archiver: d.Archiver,
		cfg:      cfg,
		state:    &Landing{},
	}
}

// Bank returns the question bank the engine draws from.
func (e *Engine) Bank() *bank.Bank { return e.bank }

// Mode returns the current mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Mode()
}

// Close stops the exam timer without changing state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimer()
}

// Restore resumes an exam saved in storage. An expired or unreadable saved
// exam is cleared and Restore reports false.
func (e *Engine) Restore(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.state.(*Landing); !ok {
		return false, e.invalid("restore")
	}

	keys := e.cfg.Keys

	var startMs int64
	ok, err := storage.GetJSON(ctx, e.store, keys.ExamSessionStartKey(), &startMs)
	if err != nil {
		return false, fmt.Errorf("restore exam: %w", err)
	}
	if !ok {
		e.clearExam(ctx)
		return false, nil
	}

	var ids []int
	var perms map[int]random.Permutation
	okIDs, errIDs := storage.GetJSON(ctx, e.store, keys.ExamQuestionIDsKey(), &ids)
	okPerms, errPerms := storage.GetJSON(ctx, e.store, keys.ExamShuffledOptionsKey(), &perms)
	if err := errors.Join(errIDs, errPerms); err != nil {
		return false, fmt.Errorf("restore exam: %w", err)
	}
	if !okIDs || !okPerms || !e.validSession(ids, perms) {
		e.log.Warn().Msg("Discarding unreadable saved exam")
		e.clearExam(ctx)
		return false, nil
	}

	started := time.UnixMilli(startMs)
	total := e.durationSeconds()
	remaining := min(total, int((e.cfg.ExamDuration-e.now().Sub(started))/time.Second))
	if remaining <= 0 {
		e.log.Info().Time("started_at", started).Msg("Saved exam expired, discarding")
		e.clearExam(ctx)
		return false, nil
	}

	sh := &Sheet{
		QuestionIDs:  ids,
		Permutations: perms,
		Answers:      make(map[int]int),
		Flags:        make(map[int]bool),
	}

	var answers map[int]int
	if ok, _ := storage.GetJSON(ctx, e.store, keys.ExamAnswersKey(), &answers); ok {
		for id, orig := range answers {
			q, found := e.bank.ByID(id)
			if found && sh.Permutations[id] != nil && orig >= 0 && orig < len(q.Options) {
				sh.Answers[id] = orig
			}
		}
	}
	var flags []int
	if ok, _ := storage.GetJSON(ctx, e.store, keys.ExamFlagsKey(), &flags); ok {
		for _, id := range flags {
			if sh.Permutations[id] != nil {
				sh.Flags[id] = true
			}
		}
	}

	var warned bool
	_, _ = storage.GetJSON(ctx, e.store, keys.ExamWarnedKey(), &warned)

	e.state = &Exam{Sheet: sh, StartedAt: started, Remaining: remaining, Warned: warned}
	e.startTimer()

	e.log.Info().
		Int("questions", len(ids)).
		Int("answered", len(sh.Answers)).
		Int("remaining_seconds", remaining).
		Msg("Exam restored")
	return true, nil
}

// StartExam draws a new exam and starts its countdown.
func (e *Engine) StartExam(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.(type) {
	case *Landing, *PracticeConfig, *Results, *PracticeResults, *History:
	default:
		return e.invalid("start exam")
	}

	sel := e.selector.Exam(e.cfg.ExamSize)
	now := e.now()
	ex := &Exam{
		Sheet:     newSheet(sel),
		StartedAt: now,
		Remaining: e.durationSeconds(),
	}

	keys := e.cfg.Keys
	e.warnOnErr(e.store.Remove(ctx, keys.ExamAnswersKey(), keys.ExamFlagsKey(), keys.ExamWarnedKey()), "clear previous exam answers")
	e.saveJSON(ctx, keys.ExamSessionStartKey(), now.UnixMilli())
	e.saveJSON(ctx, keys.ExamQuestionIDsKey(), sel.QuestionIDs)
	e.saveJSON(ctx, keys.ExamShuffledOptionsKey(), sel.Permutations)

	e.state = ex
	e.startTimer()

	e.log.Info().Int("questions", len(sel.QuestionIDs)).Msg("Exam started")
	return nil
}

// ConfigurePractice opens the practice size selection.
func (e *Engine) ConfigurePractice() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.(type) {
	case *Landing, *Results, *PracticeResults, *History:
	default:
		return e.invalid("configure practice")
	}
	e.state = &PracticeConfig{}
	return nil
}

// StartPractice draws a practice set. size is clamped to [1, bank size].
func (e *Engine) StartPractice(ctx context.Context, size int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.state.(*PracticeConfig); !ok {
		return e.invalid("start practice")
	}

	sel := e.selector.Practice(max(1, size))
	e.state = &Practice{
		Sheet:     newSheet(sel),
		StartedAt: e.now(),
		Feedback:  make(map[int]model.Feedback),
	}

	e.log.Info().Int("requested", size).Int("questions", len(sel.QuestionIDs)).Msg("Practice started")
	return nil
}

// Navigate moves the cursor to index, clamped to the session range.
func (e *Engine) Navigate(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sh := e.navigableSheet()
	if sh == nil {
		return e.invalid("navigate")
	}
	sh.Move(index)
	return nil
}

// Next moves the cursor forward by one.
func (e *Engine) Next() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sh := e.navigableSheet()
	if sh == nil {
		return e.invalid("next")
	}
	sh.Move(sh.Cursor + 1)
	return nil
}

// Prev moves the cursor back by one.
func (e *Engine) Prev() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sh := e.navigableSheet()
	if sh == nil {
		return e.invalid("prev")
	}
	sh.Move(sh.Cursor - 1)
	return nil
}

// Answer records the option at display position for the current question.
// In practice mode the returned feedback is non-nil.
func (e *Engine) Answer(ctx context.Context, display int) (*model.Feedback, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var sh *Sheet
	switch st := e.state.(type) {
	case *Exam:
		sh = st.Sheet
	case *Practice:
		sh = st.Sheet
	default:
		return nil, e.invalid("answer")
	}

	id, ok := sh.CurrentID()
	if !ok {
		return nil, ErrNoQuestion
	}
	q, _ := e.bank.ByID(id)
	perm := sh.permutation(id, len(q.Options))

	orig := perm.Original(display)
	if orig < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidOption, display)
	}
	sh.Answers[id] = orig

	switch st := e.state.(type) {
	case *Exam:
		e.saveJSON(ctx, e.cfg.Keys.ExamAnswersKey(), sh.Answers)
		return nil, nil
	case *Practice:
		fb := feedbackFor(q, orig, perm)
		st.Feedback[id] = fb
		return &fb, nil
	}
	return nil, nil
}

// ToggleFlag flips the flag of the current question and returns its new value.
func (e *Engine) ToggleFlag(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var sh *Sheet
	switch st := e.state.(type) {
	case *Exam:
		sh = st.Sheet
	case *Practice:
		sh = st.Sheet
	default:
		return false, e.invalid("flag")
	}

	id, ok := sh.CurrentID()
	if !ok {
		return false, ErrNoQuestion
	}
	if sh.Flags[id] {
		delete(sh.Flags, id)
	} else {
		sh.Flags[id] = true
	}

	if _, ok := e.state.(*Exam); ok {
		e.saveJSON(ctx, e.cfg.Keys.ExamFlagsKey(), flaggedIDs(sh))
	}
	return sh.Flags[id], nil
}

// Tick advances the exam clock by one interval. It is a no-op outside
// Exam and SubmitPending.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick(ctx)
}

// Submit submits the exam. Flagged questions move the exam to SubmitPending
// unless bypass is set.
func (e *Engine) Submit(ctx context.Context, bypass bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ex, ok := e.state.(*Exam)
	if !ok {
		return e.invalid("submit")
	}

	counts := ex.Sheet.Counts()
	if counts.Answered == 0 {
		return ErrNoAnswers
	}
	if counts.Flagged > 0 && !bypass {
		e.state = &SubmitPending{Exam: ex, Counts: counts}
		return nil
	}

	e.finalize(ctx, ex)
	return nil
}

// ConfirmSubmit finalizes an exam awaiting flag confirmation.
func (e *Engine) ConfirmSubmit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.state.(*SubmitPending)
	if !ok {
		return e.invalid("confirm submit")
	}
	e.finalize(ctx, p.Exam)
	return nil
}

// CancelSubmit returns to the exam with the cursor unchanged.
func (e *Engine) CancelSubmit() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.state.(*SubmitPending)
	if !ok {
		return e.invalid("cancel submit")
	}
	e.state = p.Exam
	return nil
}

// JumpToFlagged returns to the exam with the cursor on the first flagged question.
func (e *Engine) JumpToFlagged() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.state.(*SubmitPending)
	if !ok {
		return e.invalid("jump to flagged")
	}
	if i := p.Exam.Sheet.FirstFlagged(); i >= 0 {
		p.Exam.Sheet.Move(i)
	}
	e.state = p.Exam
	return nil
}

// FinishPractice summarizes the practice set. Unanswered questions require
// confirm; otherwise an *UnansweredError is returned.
func (e *Engine) FinishPractice(ctx context.Context, confirm bool) (model.PracticeSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pr, ok := e.state.(*Practice)
	if !ok {
		return model.PracticeSummary{}, e.invalid("finish practice")
	}

	counts := pr.Sheet.Counts()
	if counts.Unanswered > 0 && !confirm {
		return model.PracticeSummary{}, &UnansweredError{Counts: counts}
	}

	questions, err := e.bank.Lookup(pr.Sheet.QuestionIDs)
	if err != nil {
		return model.PracticeSummary{}, fmt.Errorf("finish practice: %w", err)
	}
	spent := int(e.now().Sub(pr.StartedAt) / time.Second)
	summary := scoring.Summarize(questions, pr.Sheet.Answers, max(0, spent))

	pr.Sheet.Cursor = 0
	e.state = &PracticeResults{Summary: summary, Sheet: pr.Sheet, Feedback: pr.Feedback}

	e.log.Info().
		Int("correct", summary.Correct).
		Int("answered", summary.Answered).
		Int("total", summary.Total).
		Msg("Practice finished")
	return summary, nil
}

// ShowHistory lists past exams.
func (e *Engine) ShowHistory(ctx context.Context) ([]model.ExamHistoryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.(type) {
	case *Landing, *Results, *PracticeResults, *History:
	default:
		return nil, e.invalid("show history")
	}

	entries, err := e.history.Load(ctx)
	if err != nil {
		return nil, err
	}
	e.state = &History{Entries: entries}
	return entries, nil
}

// HistoryEntries returns the stored history without changing the state.
func (e *Engine) HistoryEntries(ctx context.Context) ([]model.ExamHistoryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Load(ctx)
}

// Review opens a stored exam read-only.
func (e *Engine) Review(ctx context.Context, entryID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.state.(*History); !ok {
		return e.invalid("review")
	}

	entry, err := e.history.Find(ctx, entryID)
	if err != nil {
		return err
	}
	e.state = &Results{Entry: entry, Sheet: sheetFromEntry(entry), FromHistory: true}
	return nil
}

// Home returns to Landing. A live exam is abandoned and its saved state cleared.
func (e *Engine) Home(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state.(type) {
	case *Exam, *SubmitPending:
		e.clearExam(ctx)
		e.log.Info().Msg("Exam abandoned")
	}
	e.stopTimer()
	e.state = &Landing{}
}

// Export returns the active session's question ids, answers and flags.
func (e *Engine) Export() (ids []int, answers map[int]int, flags map[int]bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var sh *Sheet
	switch st := e.state.(type) {
	case *Exam:
		sh = st.Sheet
	case *SubmitPending:
		sh = st.Exam.Sheet
	case *Practice:
		sh = st.Sheet
	case *Results:
		sh = st.Sheet
	case *PracticeResults:
		sh = st.Sheet
	default:
		return nil, nil, nil, e.invalid("export")
	}

	answers = make(map[int]int, len(sh.Answers))
	for k, v := range sh.Answers {
		answers[k] = v
	}
	flags = make(map[int]bool, len(sh.Flags))
	for k, v := range sh.Flags {
		flags[k] = v
	}
	return append([]int(nil), sh.QuestionIDs...), answers, flags, nil
}

func (e *Engine) tick(ctx context.Context) {
	var ex *Exam
	switch st := e.state.(type) {
	case *Exam:
		ex = st
	case *SubmitPending:
		ex = st.Exam
	default:
		return
	}
	if ex.Remaining <= 0 {
		return
	}

	ex.Remaining--
	e.notify(Notice{Kind: NoticeTick, Remaining: ex.Remaining})

	if !ex.Warned && ex.Remaining > 0 && ex.Remaining <= int(e.cfg.WarningAt/time.Second) {
		ex.Warned = true
		e.saveJSON(ctx, e.cfg.Keys.ExamWarnedKey(), true)
		e.notify(Notice{
			Kind:      NoticeWarning,
			Remaining: ex.Remaining,
			Message:   fmt.Sprintf("%d minutes remaining", ex.Remaining/60),
		})
	}

	if ex.Remaining == 0 {
		e.notify(Notice{Kind: NoticeTimeUp, Message: "Time is up, the exam was submitted automatically"})
		e.log.Info().Msg("Exam time expired, auto-submitting")
		e.finalize(ctx, ex)
	}
}

// finalize scores ex, records it in history and moves to Results.
// Flags are ignored and unanswered questions count as incorrect.
func (e *Engine) finalize(ctx context.Context, ex *Exam) {
	sh := ex.Sheet
	questions, missing := e.bank.Resolve(sh.QuestionIDs)
	if len(missing) > 0 {
		// Ids come from the same bank, so this only fires on a bank swap.
		e.log.Error().Ints("missing", missing).Msg("Scoring exam with unknown questions")
	}
	score := scoring.ScoreOutOf(questions, sh.Answers, len(sh.QuestionIDs))

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	entry := model.ExamHistoryEntry{
		ID:              id.String(),
		Date:            e.now().UTC(),
		Score:           score.Correct,
		Total:           score.Total,
		Percentage:      score.Percentage,
		TimeSpent:       e.durationSeconds() - ex.Remaining,
		QuestionIDs:     append([]int(nil), sh.QuestionIDs...),
		UserAnswers:     make(map[int]int, len(sh.Answers)),
		ShuffledOptions: make(map[int][]int, len(sh.Permutations)),
	}
	for k, v := range sh.Answers {
		entry.UserAnswers[k] = v
	}
	for k, p := range sh.Permutations {
		entry.ShuffledOptions[k] = append([]int(nil), p...)
	}

	if _, err := e.history.Append(ctx, entry); err != nil {
		e.log.Warn().Err(err).Msg("Failed to save exam history")
	}
	e.clearExam(ctx)
	e.stopTimer()

	results := &Results{Entry: entry, Sheet: sheetFromEntry(entry)}
	for k, v := range sh.Flags {
		results.Sheet.Flags[k] = v
	}
	e.state = results

	e.log.Info().
		Str("entry_id", entry.ID).
		Int("score", entry.Score).
		Int("total", entry.Total).
		Int("percentage", entry.Percentage).
		Int("time_spent", entry.TimeSpent).
		Msg("Exam finalized")

	e.notify(Notice{Kind: NoticeFinalized, Entry: &entry})

	if e.archiver != nil {
		if err := e.archiver.Archive(ctx, entry); err != nil {
			e.log.Warn().Err(err).Str("entry_id", entry.ID).Msg("Failed to archive exam")
		}
	}
}

func (e *Engine) startTimer() {
	e.stopTimer()
	e.tickGen++
	gen := e.tickGen
	e.cancelTick = e.sched.Every(e.cfg.TickInterval, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.tickGen {
			return
		}
		e.tick(context.Background())
	})
}

func (e *Engine) stopTimer() {
	if e.cancelTick != nil {
		e.cancelTick()
		e.cancelTick = nil
	}
	e.tickGen++
}

func (e *Engine) navigableSheet() *Sheet {
	switch st := e.state.(type) {
	case *Exam:
		return st.Sheet
	case *Practice:
		return st.Sheet
	case *Results:
		return st.Sheet
	case *PracticeResults:
		return st.Sheet
	}
	return nil
}

func (e *Engine) validSession(ids []int, perms map[int]random.Permutation) bool {
	if len(ids) == 0 {
		return false
	}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		q, ok := e.bank.ByID(id)
		if !ok || seen[id] {
			return false
		}
		seen[id] = true
		if !perms[id].Valid(len(q.Options)) {
			return false
		}
	}
	return true
}

func (e *Engine) clearExam(ctx context.Context) {
	e.warnOnErr(e.store.Remove(ctx, e.cfg.Keys.ActiveExamKeys()...), "clear saved exam")
}

func (e *Engine) saveJSON(ctx context.Context, key string, v any) {
	e.warnOnErr(storage.SetJSON(ctx, e.store, key, v), "persist exam state")
}

func (e *Engine) warnOnErr(err error, msg string) {
	if err != nil {
		e.log.Warn().Err(err).Msg(msg)
	}
}

func (e *Engine) notify(n Notice) {
	if e.notifier != nil {
		e.notifier.Notify(n)
	}
}

func (e *Engine) invalid(op string) error {
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, op, e.state.Mode())
}

func (e *Engine) durationSeconds() int {
	return int(e.cfg.ExamDuration / time.Second)
}

func flaggedIDs(sh *Sheet) []int {
	ids := make([]int, 0, len(sh.Flags))
	for _, id := range sh.QuestionIDs {
		if sh.Flags[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func sheetFromEntry(entry model.ExamHistoryEntry) *Sheet {
	sh := &Sheet{
		QuestionIDs:  append([]int(nil), entry.QuestionIDs...),
		Permutations: make(map[int]random.Permutation, len(entry.ShuffledOptions)),
		Answers:      make(map[int]int, len(entry.UserAnswers)),
		Flags:        make(map[int]bool),
	}
	for k, p := range entry.ShuffledOptions {
		sh.Permutations[k] = append(random.Permutation(nil), p...)
	}
	for k, v := range entry.UserAnswers {
		sh.Answers[k] = v
	}
	return sh
}

func feedbackFor(q model.Question, selected int, perm random.Permutation) model.Feedback {
	fb := model.Feedback{
		QuestionID:     q.ID,
		Selected:       selected,
		Correct:        selected == q.Correct,
		CorrectIndex:   q.Correct,
		CorrectDisplay: perm.Display(q.Correct),
		Explanation:    q.Explanation,
	}
	if !fb.Correct {
		fb.WrongExplanation = q.WrongExplanations[selected]
	}
	return fb
}
