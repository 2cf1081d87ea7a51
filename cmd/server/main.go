package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/database"
	"github.com/stemsi/exstem-prep/internal/handler"
	"github.com/stemsi/exstem-prep/internal/history"
	"github.com/stemsi/exstem-prep/internal/logger"
	"github.com/stemsi/exstem-prep/internal/random"
	"github.com/stemsi/exstem-prep/internal/repository"
	"github.com/stemsi/exstem-prep/internal/router"
	"github.com/stemsi/exstem-prep/internal/selector"
	"github.com/stemsi/exstem-prep/internal/service"
	"github.com/stemsi/exstem-prep/internal/session"
	"github.com/stemsi/exstem-prep/internal/validator"
	"github.com/stemsi/exstem-prep/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("bank_source", cfg.BankSource).
		Str("store", cfg.StoreDriver).
		Bool("archive", cfg.ArchiveEnabled).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("Starting ExStem Prep")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL (bank source / attempt archive) ─────────
	var pool *pgxpool.Pool
	if database.NeedsPostgres(cfg) {
		var err error
		pool, err = database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
	}

	// ─── Connect to Redis (session store / archive queue) ──────────────
	var rdb *redis.Client
	if database.NeedsRedis(cfg) {
		var err error
		rdb, err = database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
	}

	// ─── Load Question Bank ────────────────────────────────────────────
	var questions service.QuestionLister
	if pool != nil {
		questions = repository.NewQuestionRepository(pool)
	}
	qbank, err := service.LoadBank(ctx, cfg.BankSource, cfg.BankPath, questions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load question bank")
	}
	log.Info().Int("questions", qbank.Len()).Int("domains", len(qbank.Domains())).Msg("Question bank loaded")

	// ─── Open Session Storage ──────────────────────────────────────────
	store, closeStore, err := database.NewStore(cfg, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session storage")
	}
	defer closeStore()

	// ─── Initialize Session Engine ─────────────────────────────────────
	keys := config.NewStorageKeyStruct(cfg.StoragePrefix)
	sel := selector.New(qbank, random.NewSource())
	hub := service.NewStreamHub(64, log)

	var archiver session.Archiver
	if cfg.ArchiveEnabled {
		archiver = service.NewArchiveQueue(rdb)
	}

	engine := session.New(session.Deps{
		Bank:     qbank,
		Selector: sel,
		Store:    store,
		History:  history.NewStore(store, keys.HistoryKey(), cfg.HistoryCapacity, log),
		Log:      log,
		Notifier: hub,
		Archiver: archiver,
	}, session.Config{
		ExamSize:     cfg.ExamSize,
		ExamDuration: cfg.ExamDuration,
		WarningAt:    cfg.ExamWarning,
		Keys:         keys,
	})
	defer engine.Close()

	// Resume an exam interrupted by a restart before accepting traffic.
	if resumed, err := engine.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Exam restore failed")
	} else if resumed {
		log.Info().Msg("Resumed exam in progress")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	sessionService := service.NewSessionService(engine, log)
	bankService := service.NewBankService(sel, bank.DefaultTargets, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Session: handler.NewSessionHandler(sessionService, log),
		Bank:    handler.NewBankHandler(bankService),
		WS:      handler.NewWSHandler(hub, sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	if cfg.ArchiveEnabled {
		archiveWorker := worker.NewArchiveWorker(repository.NewAttemptRepository(pool), rdb, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			archiveWorker.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the exam timer. Saved exam state stays for the next start.
	engine.Close()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
