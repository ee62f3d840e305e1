package buildshoppinglinks

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"shoplink-workers/internal/common/config"
	"shoplink-workers/internal/common/errors"
	"shoplink-workers/internal/common/logger"
	"shoplink-workers/internal/models"
)

const queryPlaceholder = "{query}"

type Service struct {
	config  *Config
	logger  logger.Logger
	builder *LinkBuilder
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:  config,
		logger:  deps.Logger,
		builder: NewLinkBuilder(config.Retailers),
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	gender := normalizeGender(input.Gender)
	out := &Output{CandidateLinks: make(map[string]map[string]string, len(input.Suggestions))}

	total := 0
	for i, suggestion := range input.Suggestions {
		links, err := s.builder.Build(suggestion, gender)
		if err != nil {
			return nil, errors.NewLinkBuildError(fmt.Sprintf("suggestion %d: %v", i, err))
		}
		out.CandidateLinks[strconv.Itoa(i)] = links
		total += len(links)
	}

	s.logger.Info("Shopping links built", map[string]interface{}{
		"items":  len(input.Suggestions),
		"links":  total,
		"gender": gender,
	})
	return out, nil
}

// LinkBuilder fills retailer search templates for a suggestion.
type LinkBuilder struct {
	retailers map[string]config.RetailerConfig
	names     []string
}

func NewLinkBuilder(retailers map[string]config.RetailerConfig) *LinkBuilder {
	names := make([]string, 0, len(retailers))
	for name := range retailers {
		names = append(names, name)
	}
	sort.Strings(names)
	return &LinkBuilder{retailers: retailers, names: names}
}

// Build returns retailer key to search URL for one suggestion. Retailers
// restricted to categories are only included for matching items.
func (b *LinkBuilder) Build(s models.Suggestion, gender string) (map[string]string, error) {
	term := s.Term()
	if term == "" {
		return nil, fmt.Errorf("suggestion has neither search_term nor item")
	}
	category := s.NormalizedCategory()

	links := make(map[string]string, len(b.names))
	for _, name := range b.names {
		r := b.retailers[name]
		if len(r.Categories) > 0 && !containsFold(r.Categories, category) {
			continue
		}
		link := strings.ReplaceAll(r.SearchURL, queryPlaceholder, EncodeTerm(term, r.SpaceEncoding))
		if param := r.GenderParams[gender]; param != "" {
			link = appendQuery(link, param)
		}
		links[name] = link
	}
	return links, nil
}

// EncodeTerm query-escapes term. "plus" encodes spaces as '+', anything
// else as %20.
func EncodeTerm(term, spaceEncoding string) string {
	escaped := url.QueryEscape(term)
	if spaceEncoding == "plus" {
		return escaped
	}
	return strings.ReplaceAll(escaped, "+", "%20")
}

func appendQuery(link, param string) string {
	if strings.Contains(link, "?") {
		return link + "&" + param
	}
	return link + "?" + param
}

func normalizeGender(g string) string {
	switch g = strings.ToLower(strings.TrimSpace(g)); g {
	case models.GenderMale, models.GenderFemale:
		return g
	default:
		return models.GenderUnknown
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
