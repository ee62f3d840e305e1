// test/e2e/e2e_test.go
package e2e

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoplink-workers/internal/common/camunda/jobtest"
	"shoplink-workers/internal/common/config"
	"shoplink-workers/internal/common/logger"

	buildshoppinglinks "shoplink-workers/internal/workers/shopping/build-shopping-links"
	parseoutfitsuggestions "shoplink-workers/internal/workers/shopping/parse-outfit-suggestions"
	validateshoppinglinks "shoplink-workers/internal/workers/shopping/validate-shopping-links"
)

const modelResponse = "Here is my analysis:\n```json\n" + `{
  "outfit_description": "Navy blazer over a grey crew neck",
  "style": "smart casual",
  "color_palette": "Navy and grey",
  "suggestions": [
    {"item": "Stone chinos", "search_term": "stone chinos", "category": "bottoms"},
    {"item": "Suede loafers", "search_term": "suede loafers", "category": "shoes"},
    {"item": "Silk pocket square", "search_term": "silk pocket square", "category": "accessories"}
  ]
}` + "\n```"

// newStoreServer stocks chinos and loafers. Everything else is a "no results" page.
func newStoreServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		q := strings.ToLower(r.URL.Query().Get("q"))
		if strings.Contains(q, "chinos") || strings.Contains(q, "loafers") {
			w.Write([]byte("<html><ul class=\"grid\"><li>product</li></ul></html>"))
			return
		}
		w.Write([]byte("<html><p>We couldn't find anything for your search.</p></html>"))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func retailers(baseURL string) map[string]config.RetailerConfig {
	return map[string]config.RetailerConfig{
		"outlet": {
			SearchURL:     baseURL + "/outlet/search?q={query}",
			SpaceEncoding: "plus",
			GenderParams:  map[string]string{"male": "dept=men"},
		},
		"boutique": {
			SearchURL:     baseURL + "/boutique/search?q={query}",
			SpaceEncoding: "percent",
		},
		"shoebox": {
			SearchURL:     baseURL + "/shoebox/search?q={query}",
			SpaceEncoding: "percent",
			Categories:    []string{"shoes"},
		},
		// Skipped retailers are kept without a request.
		"zara": {
			SearchURL:     baseURL + "/zara/search?q={query}",
			SpaceEncoding: "percent",
		},
	}
}

func TestShoppingPipeline(t *testing.T) {
	server, hits := newStoreServer(t)
	log := logger.NewTestLogger(t)

	// Parse the model response.
	parser, err := parseoutfitsuggestions.NewHandler(parseoutfitsuggestions.HandlerOptions{
		CustomConfig: parseoutfitsuggestions.DefaultConfig(),
		Logger:       log,
	})
	require.NoError(t, err)

	parseClient := jobtest.NewJobClient()
	parser.Handle(parseClient, jobtest.NewJob(1, parseoutfitsuggestions.TaskType, map[string]interface{}{
		"modelResponse": modelResponse,
	}))
	parsed, ok := parseClient.CompletedVariables()
	require.True(t, ok, "parse job did not complete")
	analysis := parsed["analysis"].(map[string]interface{})

	// Build candidate links.
	buildCfg := buildshoppinglinks.DefaultConfig()
	buildCfg.Retailers = retailers(server.URL)
	builder, err := buildshoppinglinks.NewHandler(buildshoppinglinks.HandlerOptions{
		CustomConfig: buildCfg,
		Logger:       log,
	})
	require.NoError(t, err)

	buildClient := jobtest.NewJobClient()
	builder.Handle(buildClient, jobtest.NewJob(2, buildshoppinglinks.TaskType, map[string]interface{}{
		"suggestions": analysis["suggestions"],
		"gender":      "male",
	}))
	built, ok := buildClient.CompletedVariables()
	require.True(t, ok, "build job did not complete")

	candidates := built["candidateLinks"].(map[string]interface{})
	require.Len(t, candidates, 3)
	assert.Len(t, candidates["0"], 3)
	assert.Len(t, candidates["1"], 4)
	assert.Len(t, candidates["2"], 3)

	// Validate them.
	validateCfg := validateshoppinglinks.DefaultConfig()
	validateCfg.LinkValidation.ProbeTimeout = 1000
	validator, err := validateshoppinglinks.NewHandler(validateshoppinglinks.HandlerOptions{
		CustomConfig: validateCfg,
		Logger:       log,
	})
	require.NoError(t, err)

	validateClient := jobtest.NewJobClient()
	start := time.Now()
	validator.Handle(validateClient, jobtest.NewJob(3, validateshoppinglinks.TaskType, map[string]interface{}{
		"candidateLinks": candidates,
	}))
	elapsed := time.Since(start)

	validated, ok := validateClient.CompletedVariables()
	require.True(t, ok, "validate job did not complete")

	links := validated["validatedLinks"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{
		"outlet":   server.URL + "/outlet/search?q=stone+chinos&dept=men",
		"boutique": server.URL + "/boutique/search?q=stone%20chinos",
		"zara":     server.URL + "/zara/search?q=stone%20chinos",
	}, links["0"])
	assert.Len(t, links["1"], 4)
	assert.Equal(t, map[string]interface{}{
		"zara": server.URL + "/zara/search?q=silk%20pocket%20square",
	}, links["2"])

	summary := validated["linkValidation"].(map[string]interface{})
	assert.EqualValues(t, 10, summary["total"])
	assert.EqualValues(t, 8, summary["surviving"])

	// Three skipped links never reach the store.
	assert.Equal(t, int32(7), atomic.LoadInt32(hits))
	assert.Less(t, elapsed, 5*time.Second)
}
