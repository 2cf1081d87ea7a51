// Package history persists the capped, newest-first list of finalized exams.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/storage"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 20

// ErrNotFound is returned by Find for an unknown entry id.
var ErrNotFound = errors.New("history entry not found")

// Store keeps exam history entries under a single storage key.
type Store struct {
	store    storage.Store
	key      string
	capacity int
	log      zerolog.Logger
}

func NewStore(s storage.Store, key string, capacity int, log zerolog.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		store:    s,
		key:      key,
		capacity: capacity,
		log:      log.With().Str("component", "history").Logger(),
	}
}

// Load returns the stored entries, newest first. A missing or undecodable
// value reads as an empty history.
func (h *Store) Load(ctx context.Context) ([]model.ExamHistoryEntry, error) {
	raw, ok, err := h.store.Get(ctx, h.key)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok {
		return []model.ExamHistoryEntry{}, nil
	}

	var entries []model.ExamHistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		h.log.Warn().Err(err).Str("key", h.key).Msg("Discarding unreadable exam history")
		return []model.ExamHistoryEntry{}, nil
	}
	if entries == nil {
		entries = []model.ExamHistoryEntry{}
	}
	return entries, nil
}

// Append prepends entry and truncates the list to capacity.
func (h *Store) Append(ctx context.Context, entry model.ExamHistoryEntry) ([]model.ExamHistoryEntry, error) {
	entries, err := h.Load(ctx)
	if err != nil {
		return nil, err
	}

	entries = append([]model.ExamHistoryEntry{entry}, entries...)
	if len(entries) > h.capacity {
		entries = entries[:h.capacity]
	}

	if err := storage.SetJSON(ctx, h.store, h.key, entries); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}
	return entries, nil
}

// Find returns the entry with the given id.
func (h *Store) Find(ctx context.Context, id string) (model.ExamHistoryEntry, error) {
	entries, err := h.Load(ctx)
	if err != nil {
		return model.ExamHistoryEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return model.ExamHistoryEntry{}, ErrNotFound
}

// Clear removes all entries.
func (h *Store) Clear(ctx context.Context) error {
	return h.store.Remove(ctx, h.key)
}

// Capacity returns the maximum number of kept entries.
func (h *Store) Capacity() int { return h.capacity }
