package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/bank"
	"github.com/stemsi/exstem-prep/internal/config"
	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/selector"
)

// QuestionLister reads the whole question bank.
type QuestionLister interface {
	ListAll(ctx context.Context) ([]model.Question, error)
}

// LoadBank builds the bank from a JSON file or from PostgreSQL.
func LoadBank(ctx context.Context, source, path string, repo QuestionLister) (*bank.Bank, error) {
	switch source {
	case config.BankSourceFile:
		return bank.LoadFile(path)
	case config.BankSourcePostgres:
		if repo == nil {
			return nil, fmt.Errorf("bank source %q requires a database", source)
		}
		questions, err := repo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		return bank.New(questions)
	default:
		return nil, fmt.Errorf("unknown bank source %q", source)
	}
}

// BankSummary describes the loaded bank.
type BankSummary struct {
	Total      int                `json:"total"`
	Domains    []bank.DomainCount `json:"domains"`
	Subdomains map[string]int     `json:"subdomains"`
	Analysis   bank.Analysis      `json:"analysis"`
}

// BankService exposes read-only bank reports.
type BankService struct {
	selector *selector.Selector
	targets  []bank.DomainTarget
	log      zerolog.Logger
}

// NewBankService creates a new BankService reporting against targets.
func NewBankService(sel *selector.Selector, targets []bank.DomainTarget, log zerolog.Logger) *BankService {
	return &BankService{
		selector: sel,
		targets:  targets,
		log:      log.With().Str("component", "bank_service").Logger(),
	}
}

// Summary reports domain counts and coverage against the targets.
func (s *BankService) Summary() BankSummary {
	b := s.selector.Bank()
	return BankSummary{
		Total:      b.Len(),
		Domains:    b.Domains(),
		Subdomains: b.Subdomains(),
		Analysis:   bank.Analyze(b, s.targets, 10),
	}
}

// Allocation previews how a practice set of size is spread over domains.
func (s *BankService) Allocation(size int) []model.DomainAllocation {
	return s.selector.Allocation(size)
}
