package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/metrics"
	"github.com/stemsi/exstem-prep/internal/model"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// AttemptWriter persists archived exam attempts.
type AttemptWriter interface {
	CopyBatch(ctx context.Context, entries []model.ExamHistoryEntry) error
	Insert(ctx context.Context, entry model.ExamHistoryEntry) error
}

// ArchiveWorker drains finalized exams from the Redis archive queue into
// PostgreSQL in batches.
type ArchiveWorker struct {
	repo AttemptWriter
	rdb  *redis.Client
	log  zerolog.Logger

	batchSize    int
	batchTimeout time.Duration
	retryDelay   time.Duration
}

func NewArchiveWorker(repo AttemptWriter, rdb *redis.Client, log zerolog.Logger) *ArchiveWorker {
	return &ArchiveWorker{
		repo:         repo,
		rdb:          rdb,
		log:          log.With().Str("component", "archive_worker").Logger(),
		batchSize:    BatchSize,
		batchTimeout: BatchTimeout,
		retryDelay:   2 * time.Second,
	}
}

func (w *ArchiveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ArchiveWorker started")

	buffer := make([]model.ExamHistoryEntry, 0, w.batchSize)
	lastFlushTime := time.Now()

	for {
		if len(buffer) > 0 {
			if len(buffer) >= w.batchSize || time.Since(lastFlushTime) >= w.batchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.ArchiveAttemptsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // queue empty, loop back to check the flush timer
			}
			if ctx.Err() != nil {
				w.shutdown(buffer)
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var entry model.ExamHistoryEntry
		if err := json.Unmarshal([]byte(result[1]), &entry); err != nil {
			// Malformed payloads can never succeed.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed archive payload")
			metrics.ArchivedAttempts.WithLabelValues(metrics.ArchiveDropped).Inc()
			continue
		}

		buffer = append(buffer, entry)
	}
}

// flushSafe attempts a bulk copy, then row inserts, then requeue.
func (w *ArchiveWorker) flushSafe(ctx context.Context, batch []model.ExamHistoryEntry) {
	if err := w.repo.CopyBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk copy failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
		return
	}
	metrics.ArchivedAttempts.WithLabelValues(metrics.ArchiveStored).Add(float64(len(batch)))
	w.log.Debug().Int("count", len(batch)).Msg("Archived exam attempts")
}

func (w *ArchiveWorker) fallbackInsert(ctx context.Context, batch []model.ExamHistoryEntry) {
	var requeueList []model.ExamHistoryEntry

	for _, e := range batch {
		if err := w.repo.Insert(ctx, e); err != nil {
			w.log.Error().Err(err).Str("entry_id", e.ID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, e)
			continue
		}
		metrics.ArchivedAttempts.WithLabelValues(metrics.ArchiveStored).Inc()
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *ArchiveWorker) requeue(ctx context.Context, items []model.ExamHistoryEntry) {
	pipe := w.rdb.Pipeline()
	for _, e := range items {
		data, _ := json.Marshal(e)
		pipe.RPush(ctx, config.WorkerKey.ArchiveAttemptsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue archive entries. Data loss occurred.")
		metrics.ArchivedAttempts.WithLabelValues(metrics.ArchiveDropped).Add(float64(len(items)))
		return
	}
	metrics.ArchivedAttempts.WithLabelValues(metrics.ArchiveRequeued).Add(float64(len(items)))

	w.log.Info().Int("count", len(items)).Msg("Requeued failed entries back to Redis")
	// Back off so a database outage does not spin the queue.
	time.Sleep(w.retryDelay)
}

func (w *ArchiveWorker) shutdown(buffer []model.ExamHistoryEntry) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
