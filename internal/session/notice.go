package session

import (
	"context"

	"github.com/stemsi/exstem-prep/internal/model"
)

// NoticeKind classifies an asynchronous engine event.
type NoticeKind string

const (
	NoticeTick      NoticeKind = "tick"
	NoticeWarning   NoticeKind = "warning"
	NoticeTimeUp    NoticeKind = "time_up"
	NoticeFinalized NoticeKind = "finalized"
)

// Notice is pushed to the Notifier on timer events and exam finalization.
type Notice struct {
	Kind      NoticeKind              `json:"kind"`
	Remaining int                     `json:"remaining_seconds"`
	Message   string                  `json:"message,omitempty"`
	Entry     *model.ExamHistoryEntry `json:"entry,omitempty"`
}

// Notifier receives notices while the engine lock is held. Implementations
// must not call back into the Engine.
type Notifier interface {
	Notify(n Notice)
}

// Archiver copies finalized exams to long-term storage. Failures are logged
// and never affect the session.
type Archiver interface {
	Archive(ctx context.Context, entry model.ExamHistoryEntry) error
}
