package service

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/metrics"
	"github.com/stemsi/exstem-prep/internal/session"
)

// StreamHub fans engine notices out to stream subscribers. Slow
// subscribers miss notices instead of blocking the engine.
type StreamHub struct {
	mu     sync.RWMutex
	subs   map[uint64]chan session.Notice
	nextID uint64
	buffer int
	log    zerolog.Logger
}

// NewStreamHub creates a hub whose subscriber channels hold buffer notices.
func NewStreamHub(buffer int, log zerolog.Logger) *StreamHub {
	if buffer <= 0 {
		buffer = 16
	}
	return &StreamHub{
		subs:   make(map[uint64]chan session.Notice),
		buffer: buffer,
		log:    log.With().Str("component", "stream_hub").Logger(),
	}
}

// Subscribe registers a subscriber. The returned func unsubscribes and
// closes the channel; it is safe to call more than once.
func (h *StreamHub) Subscribe() (<-chan session.Notice, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan session.Notice, h.buffer)
	h.subs[id] = ch
	metrics.StreamSubscribers.Set(float64(len(h.subs)))

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
			metrics.StreamSubscribers.Set(float64(len(h.subs)))
		})
	}
}

// Notify implements session.Notifier.
func (h *StreamHub) Notify(n session.Notice) {
	switch n.Kind {
	case session.NoticeFinalized:
		metrics.ExamsFinalized.Inc()
	case session.NoticeTimeUp:
		metrics.ExamTimeouts.Inc()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.log.Debug().Uint64("subscriber", id).Str("kind", string(n.Kind)).Msg("Subscriber full, dropping notice")
		}
	}
}

// Subscribers returns the number of active subscribers.
func (h *StreamHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
