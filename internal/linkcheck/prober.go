package linkcheck

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"shoplink-workers/internal/common/config"
	httpclient "shoplink-workers/internal/common/http"
	"shoplink-workers/internal/common/logger"
	"shoplink-workers/internal/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultProbeTimeout = 4 * time.Second
	DefaultReadLimit    = 100000
	DefaultMaxRedirects = 10
)

// DefaultSkipRetailers block automated requests with bot challenges, so their
// links are kept without probing.
var DefaultSkipRetailers = []string{"nordstrom", "zara"}

type ProberOptions struct {
	// Client is used for every probe. When nil a client with Timeout and
	// MaxRedirects is built.
	Client         *http.Client
	Timeout        time.Duration
	MaxRedirects   int
	ReadLimit      int64
	UserAgent      string
	AcceptLanguage string
	// SkipRetailers nil means DefaultSkipRetailers; an empty slice probes everything.
	SkipRetailers []string
	Matcher       *Matcher
	Cache         VerdictCache
	Logger        logger.Logger
	Tracer        trace.Tracer
}

// Prober performs single bounded GETs against retailer search pages.
type Prober struct {
	client         *http.Client
	timeout        time.Duration
	readLimit      int64
	userAgent      string
	acceptLanguage string
	skip           map[string]struct{}
	matcher        *Matcher
	cache          VerdictCache
	logger         logger.Logger
	tracer         trace.Tracer
}

func NewProber(opts ProberOptions) *Prober {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProbeTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = DefaultReadLimit
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = "en-US,en;q=0.9"
	}
	if opts.SkipRetailers == nil {
		opts.SkipRetailers = DefaultSkipRetailers
	}
	if opts.Matcher == nil {
		opts.Matcher = NewMatcher(DefaultNoResultPhrases)
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("shoplink-workers/linkcheck")
	}
	if opts.Client == nil {
		opts.Client = httpclient.NewProbeClient(httpclient.ClientOptions{
			Timeout:      opts.Timeout,
			MaxRedirects: opts.MaxRedirects,
		}).HTTPClient()
	}

	skip := make(map[string]struct{}, len(opts.SkipRetailers))
	for _, r := range opts.SkipRetailers {
		skip[r] = struct{}{}
	}

	return &Prober{
		client:         opts.Client,
		timeout:        opts.Timeout,
		readLimit:      opts.ReadLimit,
		userAgent:      opts.UserAgent,
		acceptLanguage: opts.AcceptLanguage,
		skip:           skip,
		matcher:        opts.Matcher,
		cache:          opts.Cache,
		logger:         opts.Logger,
		tracer:         opts.Tracer,
	}
}

// ProberOptionsFromConfig maps the link_validation config section. An empty
// phrase list falls back to DefaultNoResultPhrases.
func ProberOptionsFromConfig(cfg config.LinkValidationConfig) ProberOptions {
	phrases := cfg.NoResultPhrases
	if len(phrases) == 0 {
		phrases = DefaultNoResultPhrases
	}
	return ProberOptions{
		Timeout:        config.GetDuration(cfg.ProbeTimeout),
		MaxRedirects:   cfg.MaxRedirects,
		ReadLimit:      cfg.ReadLimitBytes,
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: cfg.AcceptLanguage,
		SkipRetailers:  cfg.SkipRetailers,
		Matcher:        NewMatcher(phrases),
	}
}

// Probe reports whether the link at rawURL should be shown.
func (p *Prober) Probe(ctx context.Context, rawURL, retailerKey string) bool {
	return p.ProbeCandidate(ctx, LinkCandidate{RetailerKey: retailerKey, URL: rawURL}).Surviving
}

// ProbeCandidate probes c and reports the verdict with its reason. It never
// retries and never returns an error.
func (p *Prober) ProbeCandidate(ctx context.Context, c LinkCandidate) ProbeOutcome {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "linkcheck.probe", trace.WithAttributes(
		attribute.String("retailer", c.RetailerKey),
		attribute.Int("item_index", c.ItemIndex),
	))
	defer span.End()

	surviving, reason, status := p.verdict(ctx, c)

	out := ProbeOutcome{
		ItemIndex:   c.ItemIndex,
		RetailerKey: c.RetailerKey,
		URL:         c.URL,
		Surviving:   surviving,
		Reason:      reason,
		StatusCode:  status,
		Duration:    time.Since(start),
	}

	span.SetAttributes(
		attribute.String("reason", string(reason)),
		attribute.Bool("surviving", surviving),
		attribute.Int("http.status_code", status),
	)
	if !surviving {
		span.SetStatus(codes.Error, string(reason))
	}

	metrics.LinkProbesTotal.WithLabelValues(c.RetailerKey, string(reason)).Inc()
	metrics.LinkProbeDuration.WithLabelValues(c.RetailerKey).Observe(out.Duration.Seconds())

	p.logger.Debug("link probed", map[string]interface{}{
		"itemIndex":   c.ItemIndex,
		"retailer":    c.RetailerKey,
		"reason":      string(reason),
		"status":      status,
		"surviving":   surviving,
		"duration_ms": out.Duration.Milliseconds(),
	})
	return out
}

func (p *Prober) verdict(ctx context.Context, c LinkCandidate) (bool, Reason, int) {
	if _, ok := p.skip[c.RetailerKey]; ok {
		return true, ReasonSkipped, 0
	}

	if p.cache != nil {
		ok, found, err := p.cache.GetVerdict(ctx, c.URL)
		if err != nil {
			p.logger.Warn("verdict cache read failed", map[string]interface{}{
				"retailer": c.RetailerKey,
				"error":    err,
			})
		} else if found {
			return ok, ReasonCached, 0
		}
	}

	ok, reason, status := p.fetch(ctx, c.URL)

	if p.cache != nil && reason.cacheable() {
		if err := p.cache.SetVerdict(ctx, c.URL, ok); err != nil {
			p.logger.Warn("verdict cache write failed", map[string]interface{}{
				"retailer": c.RetailerKey,
				"error":    err,
			})
		}
	}
	return ok, reason, status
}

func (p *Prober) fetch(ctx context.Context, rawURL string) (bool, Reason, int) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false, ReasonInvalidURL, 0
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return false, ReasonInvalidURL, 0
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept-Language", p.acceptLanguage)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, failureReason(err), 0
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return false, ReasonHTTPError, resp.StatusCode
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.readLimit))
	if err != nil {
		return false, failureReason(err), resp.StatusCode
	}

	if p.matcher.NoResults(bytes.ToLower(body)) {
		return false, ReasonNoResults, resp.StatusCode
	}
	return true, ReasonOK, resp.StatusCode
}

func failureReason(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ReasonTimeout
	}
	return ReasonNetworkError
}
