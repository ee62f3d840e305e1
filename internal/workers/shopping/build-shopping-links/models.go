package buildshoppinglinks

import (
	"shoplink-workers/internal/common/logger"
	"shoplink-workers/internal/models"
)

type Input struct {
	Suggestions []models.Suggestion `json:"suggestions"`
	Gender      string              `json:"gender,omitempty"`
}

// Output keys item indexes as decimal strings, the form process variables take.
type Output struct {
	CandidateLinks map[string]map[string]string `json:"candidateLinks"`
}

type ServiceDependencies struct {
	Logger logger.Logger
}
