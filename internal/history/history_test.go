package history_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/exstem-prep/internal/history"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/storage"
)

const key = "prep:exam:history"

func entry(i int) model.ExamHistoryEntry {
	return model.ExamHistoryEntry{
		ID:          fmt.Sprintf("entry-%d", i),
		Date:        time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC),
		Score:       i,
		Total:       50,
		QuestionIDs: []int{i},
		UserAnswers: map[int]int{i: 0},
	}
}

func TestAppend_NewestFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	h := history.NewStore(storage.NewMemoryStore(), key, 20, zerolog.Nop())

	for i := 1; i <= 25; i++ {
		if _, err := h.Append(ctx, entry(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := h.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(entries))
	}
	if entries[0].ID != "entry-25" {
		t.Errorf("expected newest first, got %s", entries[0].ID)
	}
	if entries[19].ID != "entry-6" {
		t.Errorf("expected oldest kept entry-6, got %s", entries[19].ID)
	}
}

func TestLoad_EmptyAndCorrupt(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()
	h := history.NewStore(s, key, 0, zerolog.Nop())

	entries, err := h.Load(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty history, got %v err=%v", entries, err)
	}

	_ = s.Set(ctx, key, "[{broken")
	entries, err = h.Load(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected corrupt history to read as empty, got %v err=%v", entries, err)
	}

	// Appending over corrupt data starts a fresh list.
	if _, err := h.Append(ctx, entry(1)); err != nil {
		t.Fatalf("append: %v", err)
	}
	entries, _ = h.Load(ctx)
	if len(entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(entries))
	}
}

func TestFindAndClear(t *testing.T) {
	ctx := context.Background()
	h := history.NewStore(storage.NewMemoryStore(), key, 20, zerolog.Nop())

	_, _ = h.Append(ctx, entry(1))
	_, _ = h.Append(ctx, entry(2))

	e, err := h.Find(ctx, "entry-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if e.Score != 1 || e.UserAnswers[1] != 0 || !e.Date.Equal(entry(1).Date) {
		t.Errorf("entry not stored verbatim: %+v", e)
	}

	if _, err := h.Find(ctx, "nope"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := h.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ := h.Load(ctx)
	if len(entries) != 0 {
		t.Errorf("expected empty history after clear, got %d", len(entries))
	}
}
