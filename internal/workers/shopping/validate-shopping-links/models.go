package validateshoppinglinks

import (
	"shoplink-workers/internal/common/logger"
	"shoplink-workers/internal/common/observability"
	"shoplink-workers/internal/linkcheck"
)

type Input struct {
	CandidateLinks map[string]map[string]string `json:"candidateLinks"`
}

type Output struct {
	ValidatedLinks map[string]map[string]string `json:"validatedLinks"`
	Summary        ValidationSummary            `json:"linkValidation"`
}

// ValidationSummary is the process-variable form of linkcheck.Summary.
type ValidationSummary struct {
	BatchID    string         `json:"batchId"`
	Total      int            `json:"total"`
	Surviving  int            `json:"surviving"`
	ByReason   map[string]int `json:"byReason"`
	DurationMs int64          `json:"durationMs"`
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Cache         linkcheck.VerdictCache
	Observability *observability.Observability
	// Prober replaces the HTTP prober built from config.
	Prober linkcheck.ProbeExecutor
}
