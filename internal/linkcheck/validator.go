package linkcheck

import (
	"context"
	"fmt"
	"sort"
	"time"

	"shoplink-workers/internal/common/logger"
	"shoplink-workers/internal/common/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type ValidatorOptions struct {
	Prober ProbeExecutor
	// MaxConcurrency caps simultaneous probes. Zero runs every probe of a
	// batch at once.
	MaxConcurrency int
	Logger         logger.Logger
	Tracer         trace.Tracer
}

// Validator fans a batch of candidates out to one probe pool and regroups
// the surviving links per item.
type Validator struct {
	prober         ProbeExecutor
	maxConcurrency int
	logger         logger.Logger
	tracer         trace.Tracer
}

func NewValidator(opts ValidatorOptions) *Validator {
	if opts.Prober == nil {
		opts.Prober = NewProber(ProberOptions{Logger: opts.Logger, Tracer: opts.Tracer})
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("shoplink-workers/linkcheck")
	}
	return &Validator{
		prober:         opts.Prober,
		maxConcurrency: opts.MaxConcurrency,
		logger:         opts.Logger,
		tracer:         opts.Tracer,
	}
}

// Validate returns the surviving links for every item in candidates. The
// only error is ErrInvalidCandidates, returned before any probe starts.
func (v *Validator) Validate(ctx context.Context, candidates Candidates) (ValidatedLinkSet, error) {
	report, err := v.ValidateDetailed(ctx, candidates)
	if err != nil {
		return nil, err
	}
	return report.Links, nil
}

// ValidateDetailed is Validate plus the per-probe outcomes and a summary.
//
// Probes run on a context detached from ctx cancellation, so every probe
// reaches its own terminal state before the call returns.
func (v *Validator) ValidateDetailed(ctx context.Context, candidates Candidates) (*Report, error) {
	work, err := flatten(candidates)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	batchID := uuid.NewString()

	ctx, span := v.tracer.Start(ctx, "linkcheck.validate", trace.WithAttributes(
		attribute.String("batch_id", batchID),
		attribute.Int("items", len(candidates)),
		attribute.Int("candidates", len(work)),
	))
	defer span.End()

	outcomes := make([]ProbeOutcome, len(work))
	probeCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	if limit := v.poolSize(len(work)); limit > 0 {
		g.SetLimit(limit)
	}
	for i, c := range work {
		g.Go(func() error {
			outcomes[i] = v.prober.ProbeCandidate(probeCtx, c)
			return nil
		})
	}
	_ = g.Wait()

	links := make(ValidatedLinkSet, len(candidates))
	for idx := range candidates {
		links[idx] = map[string]string{}
	}
	summary := Summary{
		BatchID:  batchID,
		Total:    len(work),
		ByReason: make(map[Reason]int),
	}
	for i, o := range outcomes {
		summary.ByReason[o.Reason]++
		if !o.Surviving {
			continue
		}
		c := work[i]
		links[c.ItemIndex][c.RetailerKey] = c.URL
		summary.Surviving++
	}
	summary.Duration = time.Since(start)

	metrics.LinkValidationBatchSize.Observe(float64(len(work)))
	metrics.LinkValidationDuration.Observe(summary.Duration.Seconds())
	span.SetAttributes(attribute.Int("surviving", summary.Surviving))

	v.logger.Info("link validation completed", map[string]interface{}{
		"batchId":     batchID,
		"items":       len(candidates),
		"total":       summary.Total,
		"surviving":   summary.Surviving,
		"duration_ms": summary.Duration.Milliseconds(),
	})

	return &Report{Links: links, Outcomes: outcomes, Summary: summary}, nil
}

func (v *Validator) poolSize(total int) int {
	if v.maxConcurrency > 0 && v.maxConcurrency < total {
		return v.maxConcurrency
	}
	return total
}

// flatten orders the worklist by item index then retailer key so outcome
// slots are stable across runs.
func flatten(candidates Candidates) ([]LinkCandidate, error) {
	items := make([]int, 0, len(candidates))
	total := 0
	for idx, links := range candidates {
		if idx < 0 {
			return nil, fmt.Errorf("%w: negative item index %d", ErrInvalidCandidates, idx)
		}
		items = append(items, idx)
		total += len(links)
	}
	sort.Ints(items)

	work := make([]LinkCandidate, 0, total)
	for _, idx := range items {
		retailers := make([]string, 0, len(candidates[idx]))
		for key := range candidates[idx] {
			if key == "" {
				return nil, fmt.Errorf("%w: empty retailer key for item %d", ErrInvalidCandidates, idx)
			}
			retailers = append(retailers, key)
		}
		sort.Strings(retailers)
		for _, key := range retailers {
			work = append(work, LinkCandidate{ItemIndex: idx, RetailerKey: key, URL: candidates[idx][key]})
		}
	}
	return work, nil
}
