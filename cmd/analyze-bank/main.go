package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/database"
	"github.com/stemsi/exstem-prep/internal/logger"
	"github.com/stemsi/exstem-prep/internal/repository"
	"github.com/stemsi/exstem-prep/internal/service"
)

const rule = 100

func main() {
	cfg := config.Load()

	var (
		source string
		file   string
		top    int
		asJSON bool
	)
	flag.StringVar(&source, "source", cfg.BankSource, "Bank source: file or postgres")
	flag.StringVar(&file, "file", cfg.BankPath, "Question bank JSON file")
	flag.IntVar(&top, "top", 20, "Number of subdomains to list")
	flag.BoolVar(&asJSON, "json", false, "Print the report as JSON")
	flag.Parse()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var repo service.QuestionLister
	if source == config.BankSourcePostgres {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		repo = repository.NewQuestionRepository(pool)
	}

	b, err := service.LoadBank(ctx, source, file, repo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load question bank")
	}

	a := bank.Analyze(b, bank.DefaultTargets, top)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(a); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode report")
		}
		return
	}

	printReport(a, top)
}

func printReport(a bank.Analysis, top int) {
	target := a.Total + a.TotalGap

	banner("QUESTION BANK ANALYSIS")
	fmt.Printf("\nTotal Questions: %d\n", a.Total)
	fmt.Printf("Questions needed to reach %d: %d\n\n", target, a.TotalGap)

	banner("DOMAIN DISTRIBUTION")
	fmt.Printf("\n%-55s %7s %6s %8s %6s %6s\n", "Domain", "Current", "%", "Target", "%", "Gap")
	fmt.Println(strings.Repeat("-", rule))
	for _, d := range a.Domains {
		fmt.Printf("%-55s %7d %5.1f%% %8d %5.0f%% %6d\n",
			d.Domain, d.Current, d.CurrentPercent, d.TargetCount, d.TargetPercent, d.Gap)
	}

	fmt.Println()
	banner(fmt.Sprintf("TOP %d SUBDOMAINS BY COVERAGE", top))
	for _, s := range a.TopSubdomains {
		fmt.Printf("%-80s %4d\n", s.Subdomain, s.Count)
	}

	fmt.Println()
	banner("EXPANSION SUMMARY")
	fmt.Printf("\nCurrent: %d questions\n", a.Total)
	fmt.Printf("Target:  %d questions\n", target)
	fmt.Printf("Gap:     %d questions\n", a.TotalGap)
}

func banner(title string) {
	fmt.Println(strings.Repeat("=", rule))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", rule))
}
