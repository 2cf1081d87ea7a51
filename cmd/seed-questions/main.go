package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/database"
	"github.com/stemsi/exstem-prep/internal/logger"
	"github.com/stemsi/exstem-prep/internal/random"
	"github.com/stemsi/exstem-prep/internal/repository"
)

func main() {
	var (
		file    string
		shuffle bool
		seed    uint64
		dryRun  bool
	)
	flag.StringVar(&file, "file", "./data/questions.json", "Question bank JSON file")
	flag.BoolVar(&shuffle, "shuffle", false, "Shuffle each question's options before seeding")
	flag.Uint64Var(&seed, "seed", 0, "Shuffle seed (0 picks a random one)")
	flag.BoolVar(&dryRun, "dry-run", false, "Validate and report without writing")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	b, err := bank.LoadFile(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to load question bank")
	}

	questions := b.Questions()
	if shuffle {
		src := random.NewSource()
		if seed != 0 {
			src = random.NewSeeded(seed)
		}
		for i, q := range questions {
			questions[i] = bank.ShuffleOptions(src, q)
		}
	}

	fmt.Printf("=== Seeding %d Questions ===\n", len(questions))
	for _, d := range b.Domains() {
		fmt.Printf("  %-55s %4d\n", d.Domain, d.Count)
	}

	if dryRun {
		fmt.Println("\nDry run, nothing written.")
		return
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	repo := repository.NewQuestionRepository(pool)
	if err := repo.ReplaceAll(ctx, questions); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed questions")
	}

	n, err := repo.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count questions")
	}
	fmt.Printf("\nSeed completed! %d questions in the bank.\n", n)
}

