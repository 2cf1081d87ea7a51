package websocket

import (
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/session"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing  Action = "ping"
	ActionState Action = "state"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventPong      Event = "pong"
	EventState     Event = "state"
	EventTick      Event = "tick"
	EventWarning   Event = "warning"
	EventTimeUp    Event = "time_up"
	EventFinalized Event = "finalized"
)

// StateResponse carries a full session snapshot. It is sent on connect and
// on request.
type StateResponse struct {
	Event Event        `json:"event"`
	State session.View `json:"state"`
}

// TimerResponse reports the exam countdown.
type TimerResponse struct {
	Event     Event  `json:"event"`
	Remaining int    `json:"remaining_seconds"`
	Message   string `json:"message,omitempty"`
}

// FinalizedResponse reports a finalized exam.
type FinalizedResponse struct {
	Event Event                   `json:"event"`
	Entry *model.ExamHistoryEntry `json:"entry"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// FromNotice converts an engine notice into its wire event.
func FromNotice(n session.Notice) interface{} {
	switch n.Kind {
	case session.NoticeFinalized:
		return FinalizedResponse{Event: EventFinalized, Entry: n.Entry}
	case session.NoticeWarning:
		return TimerResponse{Event: EventWarning, Remaining: n.Remaining, Message: n.Message}
	case session.NoticeTimeUp:
		return TimerResponse{Event: EventTimeUp, Remaining: n.Remaining, Message: n.Message}
	default:
		return TimerResponse{Event: EventTick, Remaining: n.Remaining}
	}
}
