package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/model"
)

// ArchiveQueue hands finalized exams to the archive worker through Redis.
type ArchiveQueue struct {
	rdb *redis.Client
}

// NewArchiveQueue creates a new ArchiveQueue.
func NewArchiveQueue(rdb *redis.Client) *ArchiveQueue {
	return &ArchiveQueue{rdb: rdb}
}

// Archive implements session.Archiver.
func (q *ArchiveQueue) Archive(ctx context.Context, entry model.ExamHistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.ArchiveAttemptsQueue, data).Err()
}
