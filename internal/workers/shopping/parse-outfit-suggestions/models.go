package parseoutfitsuggestions

import (
	"shoplink-workers/internal/common/logger"
	"shoplink-workers/internal/models"
)

type Input struct {
	ModelResponse string `json:"modelResponse"`
}

type Output struct {
	Analysis models.OutfitAnalysis `json:"analysis"`
}

type ServiceDependencies struct {
	Logger logger.Logger
}
