package validateshoppinglinks

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"

	"shoplink-workers/internal/common/errors"
	"shoplink-workers/internal/common/logger"
	"shoplink-workers/internal/common/observability"
	"shoplink-workers/internal/linkcheck"
)

type Service struct {
	config    *Config
	logger    logger.Logger
	obs       *observability.Observability
	validator *linkcheck.Validator
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	prober := deps.Prober
	if prober == nil {
		opts := linkcheck.ProberOptionsFromConfig(config.LinkValidation)
		opts.Cache = deps.Cache
		opts.Logger = deps.Logger
		opts.Tracer = deps.Observability.Tracer()
		prober = linkcheck.NewProber(opts)
	}

	return &Service{
		config: config,
		logger: deps.Logger,
		obs:    deps.Observability,
		validator: linkcheck.NewValidator(linkcheck.ValidatorOptions{
			Prober:         prober,
			MaxConcurrency: config.LinkValidation.MaxConcurrency,
			Logger:         deps.Logger,
			Tracer:         deps.Observability.Tracer(),
		}),
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	candidates, err := toCandidates(input.CandidateLinks)
	if err != nil {
		return nil, errors.NewValidationFailedError(err.Error())
	}

	report, err := s.validator.ValidateDetailed(ctx, candidates)
	if err != nil {
		if stderrors.Is(err, linkcheck.ErrInvalidCandidates) {
			return nil, errors.NewValidationFailedError(err.Error())
		}
		return nil, errors.NewLinkValidationError(err)
	}

	summary := report.Summary
	s.obs.RecordLinksValidated(ctx, summary.Surviving, summary.Total-summary.Surviving)

	return &Output{
		ValidatedLinks: fromLinkSet(report.Links),
		Summary:        toSummary(summary),
	}, nil
}

// toCandidates converts decimal-string item keys to indexes.
func toCandidates(in map[string]map[string]string) (linkcheck.Candidates, error) {
	out := make(linkcheck.Candidates, len(in))
	for key, links := range in {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || strconv.Itoa(idx) != key {
			return nil, fmt.Errorf("item key %q is not a canonical non-negative integer", key)
		}
		if links == nil {
			links = map[string]string{}
		}
		out[idx] = links
	}
	return out, nil
}

func fromLinkSet(set linkcheck.ValidatedLinkSet) map[string]map[string]string {
	out := make(map[string]map[string]string, len(set))
	for idx, links := range set {
		out[strconv.Itoa(idx)] = links
	}
	return out
}

func toSummary(s linkcheck.Summary) ValidationSummary {
	byReason := make(map[string]int, len(s.ByReason))
	for reason, n := range s.ByReason {
		byReason[string(reason)] = n
	}
	return ValidationSummary{
		BatchID:    s.BatchID,
		Total:      s.Total,
		Surviving:  s.Surviving,
		ByReason:   byReason,
		DurationMs: s.Duration.Milliseconds(),
	}
}
