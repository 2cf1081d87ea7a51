package model

// DomainAllocation is the number of questions drawn from one domain.
type DomainAllocation struct {
	Domain string `json:"domain"`
	Total  int    `json:"total"`
	Count  int    `json:"count"`
}

// Score is the overall result of a set of answers.
type Score struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// DomainScore is the per-domain part of a breakdown.
type DomainScore struct {
	Correct  int `json:"correct"`
	Total    int `json:"total"`
	Answered int `json:"answered"`
}

// PracticeSummary is derived when a practice session is finished.
// It is never written to history.
type PracticeSummary struct {
	Correct   int                    `json:"correct"`
	Total     int                    `json:"total"`
	Answered  int                    `json:"answered"`
	TimeSpent int                    `json:"timeSpent"`
	Breakdown map[string]DomainScore `json:"breakdown"`
}

// SubmitCounts is exposed while an exam submission awaits confirmation.
type SubmitCounts struct {
	Flagged    int `json:"flagged"`
	Unanswered int `json:"unanswered"`
	Answered   int `json:"answered"`
	Total      int `json:"total"`
}
