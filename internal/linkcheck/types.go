// Package linkcheck validates retailer search links concurrently and keeps
// only the links whose result page appears to contain products.
package linkcheck

import (
	"context"
	"errors"
	"time"
)

// Candidates maps item index to retailer key to search URL.
type Candidates map[int]map[string]string

// ValidatedLinkSet has the shape of Candidates restricted to surviving links.
// Every input item index is present, possibly with an empty inner map.
type ValidatedLinkSet map[int]map[string]string

// ErrInvalidCandidates is returned for structurally malformed input.
var ErrInvalidCandidates = errors.New("invalid link candidates")

// LinkCandidate is one entry of the flattened worklist.
type LinkCandidate struct {
	ItemIndex   int    `json:"itemIndex"`
	RetailerKey string `json:"retailerKey"`
	URL         string `json:"url"`
}

// Reason explains a probe verdict. Only ReasonSkipped, ReasonOK and a
// cached positive verdict survive.
type Reason string

const (
	ReasonSkipped      Reason = "skipped"
	ReasonOK           Reason = "ok"
	ReasonHTTPError    Reason = "http_error"
	ReasonNoResults    Reason = "no_results"
	ReasonTimeout      Reason = "timeout"
	ReasonNetworkError Reason = "network_error"
	ReasonInvalidURL   Reason = "invalid_url"
	ReasonCached       Reason = "cached"
)

// cacheable reports whether a network verdict is stable enough to store.
func (r Reason) cacheable() bool {
	switch r {
	case ReasonOK, ReasonHTTPError, ReasonNoResults:
		return true
	default:
		return false
	}
}

// ProbeOutcome is the result of probing one candidate.
type ProbeOutcome struct {
	ItemIndex   int           `json:"itemIndex"`
	RetailerKey string        `json:"retailerKey"`
	URL         string        `json:"url"`
	Surviving   bool          `json:"surviving"`
	Reason      Reason        `json:"reason"`
	StatusCode  int           `json:"statusCode,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Summary aggregates one validation batch.
type Summary struct {
	BatchID   string         `json:"batchId"`
	Total     int            `json:"total"`
	Surviving int            `json:"surviving"`
	ByReason  map[Reason]int `json:"byReason"`
	Duration  time.Duration  `json:"duration"`
}

// Report is the detailed result of a validation batch.
type Report struct {
	Links    ValidatedLinkSet
	Outcomes []ProbeOutcome
	Summary  Summary
}

// VerdictCache stores probe verdicts by URL. Implementations must be safe
// for concurrent use.
type VerdictCache interface {
	GetVerdict(ctx context.Context, url string) (ok bool, found bool, err error)
	SetVerdict(ctx context.Context, url string, ok bool) error
}

// ProbeExecutor probes a single candidate. It never fails; every failure
// mode is folded into the outcome.
type ProbeExecutor interface {
	ProbeCandidate(ctx context.Context, c LinkCandidate) ProbeOutcome
}
