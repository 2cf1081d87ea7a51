package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/logger"
	"github.com/stemsi/exstem-prep/internal/random"
)

func main() {
	var (
		in   string
		out  string
		seed uint64
	)
	flag.StringVar(&in, "in", "./data/questions.json", "Input question bank")
	flag.StringVar(&out, "out", "", "Output file (defaults to overwriting -in)")
	flag.Uint64Var(&seed, "seed", 0, "Shuffle seed (0 picks a random one)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if out == "" {
		out = in
	}

	b, err := bank.LoadFile(in)
	if err != nil {
		log.Fatal().Err(err).Str("file", in).Msg("Failed to load question bank")
	}

	src := random.NewSource()
	if seed != 0 {
		src = random.NewSeeded(seed)
	}

	questions := b.Questions()
	for i, q := range questions {
		questions[i] = bank.ShuffleOptions(src, q)
	}

	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode question bank")
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		log.Fatal().Err(err).Str("file", out).Msg("Failed to write question bank")
	}

	fmt.Printf("Shuffled options of %d questions into %s\n", len(questions), out)
}
