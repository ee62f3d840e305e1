package buildshoppinglinks

import (
	"context"
	"testing"
	"time"

	"shoplink-workers/internal/common/camunda/jobtest"
	"shoplink-workers/internal/common/config"
	"shoplink-workers/internal/common/errors"
	"shoplink-workers/internal/common/logger"
	"shoplink-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestHandler(t *testing.T, cfg *Config) *Handler {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
	}
	h, err := NewHandler(HandlerOptions{CustomConfig: cfg, Logger: logger.NewTestLogger(t)})
	require.NoError(t, err)
	return h
}

// ==========================
// Link Builder Tests
// ==========================

func TestLinkBuilder_DefaultRetailers(t *testing.T) {
	b := NewLinkBuilder(config.DefaultRetailers())

	links, err := b.Build(models.Suggestion{Item: "Chinos", SearchTerm: "slim fit chinos", Category: "bottoms"}, models.GenderUnknown)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"amazon":    "https://www.amazon.com/s?k=slim+fit+chinos",
		"asos":      "https://www.asos.com/search/?q=slim%20fit%20chinos",
		"nordstrom": "https://www.nordstrom.com/sr?origin=keywordsearch&keyword=slim+fit+chinos",
		"zara":      "https://www.zara.com/us/en/search?searchTerm=slim%20fit%20chinos",
	}, links)
}

func TestLinkBuilder_ShoesAddSneakerTracker(t *testing.T) {
	b := NewLinkBuilder(config.DefaultRetailers())

	links, err := b.Build(models.Suggestion{Item: "White leather sneakers", Category: "Shoes"}, models.GenderUnknown)
	require.NoError(t, err)

	assert.Equal(t, "https://www.soleretriever.com/search?q=White%20leather%20sneakers", links["soleretriever"])
	assert.Len(t, links, 5)
}

func TestLinkBuilder_GenderParams(t *testing.T) {
	b := NewLinkBuilder(config.DefaultRetailers())
	s := models.Suggestion{SearchTerm: "linen shirt", Category: "tops"}

	male, err := b.Build(s, models.GenderMale)
	require.NoError(t, err)
	assert.Equal(t, "https://www.amazon.com/s?k=linen+shirt&rh=n%3A7147441011", male["amazon"])
	assert.Equal(t, "https://www.zara.com/us/en/search?searchTerm=linen%20shirt&section=MAN", male["zara"])

	female, err := b.Build(s, models.GenderFemale)
	require.NoError(t, err)
	assert.Equal(t, "https://www.asos.com/search/?q=linen%20shirt&refine=floor:1000", female["asos"])
	assert.Equal(t, "https://www.nordstrom.com/sr?origin=keywordsearch&keyword=linen+shirt&filterByGender=Women", female["nordstrom"])
}

func TestLinkBuilder_EscapesReservedCharacters(t *testing.T) {
	b := NewLinkBuilder(map[string]config.RetailerConfig{
		"shop": {SearchURL: "https://shop.example/find/{query}", SpaceEncoding: "percent"},
	})

	links, err := b.Build(models.Suggestion{SearchTerm: "t-shirt & shorts+socks"}, models.GenderMale)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/find/t-shirt%20%26%20shorts%2Bsocks", links["shop"])
}

func TestLinkBuilder_MissingTerm(t *testing.T) {
	b := NewLinkBuilder(config.DefaultRetailers())

	_, err := b.Build(models.Suggestion{Category: "tops"}, models.GenderUnknown)
	assert.Error(t, err)
}

func TestEncodeTerm(t *testing.T) {
	assert.Equal(t, "chelsea+boots", EncodeTerm("chelsea boots", "plus"))
	assert.Equal(t, "chelsea%20boots", EncodeTerm("chelsea boots", "percent"))
	assert.Equal(t, "chelsea%20boots", EncodeTerm("chelsea boots", ""))
}

func TestNormalizeGender(t *testing.T) {
	assert.Equal(t, models.GenderMale, normalizeGender(" Male "))
	assert.Equal(t, models.GenderFemale, normalizeGender("female"))
	assert.Equal(t, models.GenderUnknown, normalizeGender(""))
	assert.Equal(t, models.GenderUnknown, normalizeGender("unknown"))
}

// ==========================
// Service / Handler Tests
// ==========================

func TestService_Execute(t *testing.T) {
	h := createTestHandler(t, nil)

	out, err := h.Execute(context.Background(), &Input{
		Suggestions: []models.Suggestion{
			{Item: "Chinos", Category: "bottoms"},
			{Item: "Sneakers", Category: "shoes"},
		},
	})
	require.NoError(t, err)

	require.Len(t, out.CandidateLinks, 2)
	assert.Len(t, out.CandidateLinks["0"], 4)
	assert.Len(t, out.CandidateLinks["1"], 5)
}

func TestService_Execute_MissingTerm(t *testing.T) {
	h := createTestHandler(t, nil)

	_, err := h.Execute(context.Background(), &Input{Suggestions: []models.Suggestion{{Item: "Hat"}, {}}})
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeLinkBuildFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "suggestion 1")
}

func TestHandler_Handle_Completes(t *testing.T) {
	h := createTestHandler(t, nil)
	client := jobtest.NewJobClient()

	h.Handle(client, jobtest.NewJob(1, TaskType, map[string]interface{}{
		"gender": "male",
		"suggestions": []interface{}{
			map[string]interface{}{"item": "Overshirt", "search_term": "olive overshirt", "category": "outerwear", "estimated_price_low": 40},
		},
	}))

	vars, ok := client.CompletedVariables()
	require.True(t, ok)

	candidates := vars["candidateLinks"].(map[string]interface{})
	item := candidates["0"].(map[string]interface{})
	assert.Equal(t, "https://www.amazon.com/s?k=olive+overshirt&rh=n%3A7147441011", item["amazon"])
	assert.NotContains(t, item, "soleretriever")
}

func TestHandler_Handle_InvalidGender(t *testing.T) {
	h := createTestHandler(t, nil)
	client := jobtest.NewJobClient()

	h.Handle(client, jobtest.NewJob(2, TaskType, map[string]interface{}{
		"gender":      "robot",
		"suggestions": []interface{}{},
	}))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "VALIDATION_FAILED", client.Thrown()[0].ErrorCode)
}

func TestHandler_Handle_EmptySuggestion(t *testing.T) {
	h := createTestHandler(t, nil)
	client := jobtest.NewJobClient()

	h.Handle(client, jobtest.NewJob(3, TaskType, map[string]interface{}{
		"suggestions": []interface{}{map[string]interface{}{"category": "bags"}},
	}))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "LINK_BUILD_FAILED", client.Thrown()[0].ErrorCode)
}

// ==========================
// Config Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Retailers = nil
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Retailers = map[string]config.RetailerConfig{"bad": {SearchURL: "https://bad.example/search"}}
	assert.Error(t, cfg.Validate())
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	retailers := map[string]config.RetailerConfig{
		"shop": {SearchURL: "https://shop.example/?q={query}"},
	}
	appCfg := &config.Config{
		Workers:   map[string]config.WorkerConfig{WorkerName: {Enabled: true, MaxJobsActive: 2, Timeout: 1000}},
		Retailers: retailers,
	}

	cfg := createConfigFromAppConfig(appCfg, nil)

	assert.Equal(t, 2, cfg.MaxJobsActive)
	assert.Equal(t, time.Second, cfg.Timeout)
	assert.Equal(t, retailers, cfg.Retailers)
}
