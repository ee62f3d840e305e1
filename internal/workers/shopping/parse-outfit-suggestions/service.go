package parseoutfitsuggestions

import (
	"context"
	"encoding/json"
	"strings"

	"shoplink-workers/internal/common/errors"
	"shoplink-workers/internal/common/logger"
	"shoplink-workers/internal/models"
)

const codeFence = "```"

type Service struct {
	config *Config
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	analysis, err := ParseAnalysis(input.ModelResponse)
	if err != nil {
		s.logger.Warn("Model response could not be parsed", map[string]interface{}{
			"responseLength": len(input.ModelResponse),
			"error":          err.Error(),
		})
		return nil, err
	}

	if s.config.MaxSuggestions > 0 && len(analysis.Suggestions) > s.config.MaxSuggestions {
		analysis.Suggestions = analysis.Suggestions[:s.config.MaxSuggestions]
	}

	s.logger.Info("Outfit suggestions parsed", map[string]interface{}{
		"style":       analysis.Style,
		"suggestions": len(analysis.Suggestions),
	})

	return &Output{Analysis: *analysis}, nil
}

// ParseAnalysis extracts the JSON object from a model answer. A surrounding
// markdown code fence and any prose outside the outermost braces are ignored.
func ParseAnalysis(raw string) (*models.OutfitAnalysis, error) {
	body := stripCodeFence(strings.TrimSpace(raw))

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return nil, errors.NewSuggestionsParseError("no JSON object found in model response")
	}

	var analysis models.OutfitAnalysis
	if err := json.Unmarshal([]byte(body[start:end+1]), &analysis); err != nil {
		return nil, errors.NewSuggestionsParseError(err.Error())
	}
	if analysis.Suggestions == nil {
		analysis.Suggestions = []models.Suggestion{}
	}
	return &analysis, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, codeFence) {
		return s
	}
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, codeFence)
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, codeFence) {
		s = s[:strings.LastIndex(s, codeFence)]
	}
	return s
}
