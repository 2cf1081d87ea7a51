package service

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/export"
	"github.com/stemsi/exstem-prep/internal/metrics"
	"github.com/stemsi/exstem-prep/internal/session"
)

// SessionService drives the single session engine and returns the view
// after every operation.
type SessionService struct {
	engine *session.Engine
	log    zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(engine *session.Engine, log zerolog.Logger) *SessionService {
	return &SessionService{
		engine: engine,
		log:    log.With().Str("component", "session_service").Logger(),
	}
}

// State returns the current view.
func (s *SessionService) State() session.View {
	return s.engine.View()
}

func (s *SessionService) StartExam(ctx context.Context) (session.View, error) {
	view, err := s.viewAfter(s.engine.StartExam(ctx))
	if err == nil {
		metrics.SessionsStarted.WithLabelValues(string(session.ModeExam)).Inc()
	}
	return view, err
}

func (s *SessionService) SubmitExam(ctx context.Context, bypass bool) (session.View, error) {
	return s.viewAfter(s.engine.Submit(ctx, bypass))
}

func (s *SessionService) ConfirmSubmit(ctx context.Context) (session.View, error) {
	return s.viewAfter(s.engine.ConfirmSubmit(ctx))
}

func (s *SessionService) CancelSubmit() (session.View, error) {
	return s.viewAfter(s.engine.CancelSubmit())
}

func (s *SessionService) JumpToFlagged() (session.View, error) {
	return s.viewAfter(s.engine.JumpToFlagged())
}

func (s *SessionService) ConfigurePractice() (session.View, error) {
	return s.viewAfter(s.engine.ConfigurePractice())
}

func (s *SessionService) StartPractice(ctx context.Context, size int) (session.View, error) {
	view, err := s.viewAfter(s.engine.StartPractice(ctx, size))
	if err == nil {
		metrics.SessionsStarted.WithLabelValues(string(session.ModePractice)).Inc()
	}
	return view, err
}

func (s *SessionService) FinishPractice(ctx context.Context, confirm bool) (session.View, error) {
	_, err := s.engine.FinishPractice(ctx, confirm)
	return s.viewAfter(err)
}

// Answer records the option at a display position on the current question.
func (s *SessionService) Answer(ctx context.Context, display int) (session.View, error) {
	_, err := s.engine.Answer(ctx, display)
	return s.viewAfter(err)
}

func (s *SessionService) ToggleFlag(ctx context.Context) (session.View, error) {
	_, err := s.engine.ToggleFlag(ctx)
	return s.viewAfter(err)
}

func (s *SessionService) Navigate(index int) (session.View, error) {
	return s.viewAfter(s.engine.Navigate(index))
}

func (s *SessionService) Next() (session.View, error) {
	return s.viewAfter(s.engine.Next())
}

func (s *SessionService) Prev() (session.View, error) {
	return s.viewAfter(s.engine.Prev())
}

// History opens the history list.
// OpenHistory moves the session to the history list.
func (s *SessionService) OpenHistory(ctx context.Context) (session.View, error) {
	_, err := s.engine.ShowHistory(ctx)
	return s.viewAfter(err)
}

// ListHistory returns the history rows, newest first. The session state
// is left untouched.
func (s *SessionService) ListHistory(ctx context.Context) ([]session.HistoryItem, error) {
	entries, err := s.engine.HistoryEntries(ctx)
	if err != nil {
		return nil, err
	}
	return session.HistoryItems(entries), nil
}

func (s *SessionService) Review(ctx context.Context, entryID string) (session.View, error) {
	return s.viewAfter(s.engine.Review(ctx, entryID))
}

func (s *SessionService) Home(ctx context.Context) session.View {
	s.engine.Home(ctx)
	return s.engine.View()
}

// ExportCSV writes the active session as CSV to w.
func (s *SessionService) ExportCSV(w io.Writer) error {
	ids, answers, flags, err := s.engine.Export()
	if err != nil {
		return err
	}
	return export.WriteCSV(w, s.engine.Bank(), ids, answers, flags)
}

func (s *SessionService) viewAfter(err error) (session.View, error) {
	if err != nil {
		return session.View{}, err
	}
	return s.engine.View(), nil
}
