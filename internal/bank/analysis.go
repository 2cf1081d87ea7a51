package bank

import (
	"math"
	"sort"

	"github.com/stemsi/exstem-prep/internal/model"
	"github.com/stemsi/exstem-prep/internal/random"
)

// DomainTarget is the intended weight of a domain in the bank.
type DomainTarget struct {
	Domain        string  `json:"domain"`
	TargetPercent float64 `json:"target_percent"`
	TargetCount   int     `json:"target_count"`
}

// DomainCoverage compares a domain's current size against its target.
type DomainCoverage struct {
	Domain         string  `json:"domain"`
	Current        int     `json:"current"`
	CurrentPercent float64 `json:"current_percent"`
	TargetPercent  float64 `json:"target_percent"`
	TargetCount    int     `json:"target_count"`
	Gap            int     `json:"gap"`
}

// SubdomainCount is one row of the subdomain coverage ranking.
type SubdomainCount struct {
	Subdomain string `json:"subdomain"`
	Count     int    `json:"count"`
}

// Analysis is the bank distribution report.
type Analysis struct {
	Total         int              `json:"total"`
	Domains       []DomainCoverage `json:"domains"`
	TopSubdomains []SubdomainCount `json:"top_subdomains"`
	TotalGap      int              `json:"total_gap"`
}

// DefaultTargets is the official exam-guide domain weighting for a 500 question bank.
var DefaultTargets = []DomainTarget{
	{Domain: "Setting up a cloud solution environment", TargetPercent: 23, TargetCount: 115},
	{Domain: "Planning and implementing a cloud solution", TargetPercent: 30, TargetCount: 150},
	{Domain: "Ensuring successful operation of a cloud solution", TargetPercent: 28, TargetCount: 140},
	{Domain: "Configuring access and security", TargetPercent: 19, TargetCount: 95},
}

// Analyze reports how the bank's domain distribution compares to targets.
// When targets is empty the bank's own domains are reported without targets.
func Analyze(b *Bank, targets []DomainTarget, topN int) Analysis {
	counts := make(map[string]int)
	for _, d := range b.Domains() {
		counts[d.Domain] = d.Count
	}

	a := Analysis{Total: b.Len()}

	if len(targets) == 0 {
		for _, d := range b.Domains() {
			targets = append(targets, DomainTarget{Domain: d.Domain})
		}
	}

	targetTotal := 0
	for _, t := range targets {
		current := counts[t.Domain]
		a.Domains = append(a.Domains, DomainCoverage{
			Domain:         t.Domain,
			Current:        current,
			CurrentPercent: percentOf(current, a.Total),
			TargetPercent:  t.TargetPercent,
			TargetCount:    t.TargetCount,
			Gap:            t.TargetCount - current,
		})
		targetTotal += t.TargetCount
	}
	a.TotalGap = targetTotal - a.Total

	for name, n := range b.Subdomains() {
		a.TopSubdomains = append(a.TopSubdomains, SubdomainCount{Subdomain: name, Count: n})
	}
	sort.Slice(a.TopSubdomains, func(i, j int) bool {
		if a.TopSubdomains[i].Count != a.TopSubdomains[j].Count {
			return a.TopSubdomains[i].Count > a.TopSubdomains[j].Count
		}
		return a.TopSubdomains[i].Subdomain < a.TopSubdomains[j].Subdomain
	})
	if topN > 0 && len(a.TopSubdomains) > topN {
		a.TopSubdomains = a.TopSubdomains[:topN]
	}

	return a
}

func percentOf(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}

// ShuffleOptions returns q with its options in a random order. The correct
// index and the keys of WrongExplanations follow their options.
func ShuffleOptions(src random.Source, q model.Question) model.Question {
	perm := random.NewPermutation(src, len(q.Options))

	out := q
	out.Options = make([]string, len(q.Options))
	for display, original := range perm {
		out.Options[display] = q.Options[original]
	}
	out.Correct = perm.Display(q.Correct)

	if q.WrongExplanations != nil {
		out.WrongExplanations = make(map[int]string, len(q.WrongExplanations))
		for original, text := range q.WrongExplanations {
			out.WrongExplanations[perm.Display(original)] = text
		}
	}

	return out
}
