// Package serp wraps the SerpApi search backend behind the Searcher
// contract. Search never fails from the caller's perspective: when the API
// key is missing or the request errors, a deterministic mock result set is
// returned and the failure is logged for operators only.
package serp

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	g "github.com/serpapi/google-search-results-golang"

	contractx "github.com/gharmitra/gharmitra/agent/contract"
	logx "github.com/gharmitra/gharmitra/pkg/logger"
	metricsx "github.com/gharmitra/gharmitra/pkg/metrics"
)

type Config struct {
	APIKey string `envconfig:"API_KEY" split_words:"true"`
	Engine string `envconfig:"ENGINE" split_words:"true" default:"google"`
	Num    int    `envconfig:"NUM" split_words:"true" default:"10"`
}

type Client struct {
	apiKey  string
	engine  string
	num     int
	metrics *metricsx.Metrics
	log     zerolog.Logger
}

func NewClient(cfg Config, m *metricsx.Metrics) *Client {
	if m == nil {
		m = metricsx.Nop()
	}
	engine := strings.TrimSpace(cfg.Engine)
	if engine == "" {
		engine = "google"
	}
	num := cfg.Num
	if num <= 0 {
		num = 10
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		engine:  engine,
		num:     num,
		metrics: m,
		log:     logx.Component("serp"),
	}
}

func (c *Client) Search(ctx context.Context, query string) []contractx.SearchResult {
	if c.apiKey == "" {
		return c.fallback(query, "serpapi key not configured")
	}
	if err := ctx.Err(); err != nil {
		return c.fallback(query, err.Error())
	}

	search := g.NewGoogleSearch(map[string]string{
		"engine": c.engine,
		"q":      query,
		"num":    fmt.Sprintf("%d", c.num),
	}, c.apiKey)

	data, err := search.GetJSON()
	if err != nil {
		return c.fallback(query, err.Error())
	}

	organic, ok := data["organic_results"].([]interface{})
	if !ok {
		// An empty result set is a valid answer, not a failure.
		return nil
	}

	results := make([]contractx.SearchResult, 0, len(organic))
	for _, item := range organic {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		results = append(results, contractx.SearchResult{
			Title:   stringField(entry, "title"),
			Link:    stringField(entry, "link"),
			Snippet: stringField(entry, "snippet"),
		})
	}
	return results
}

// fallback returns stable placeholder listings so the conversation can keep
// moving while the real backend is unavailable.
func (c *Client) fallback(query, reason string) []contractx.SearchResult {
	c.metrics.Fallbacks.WithLabelValues("search").Inc()
	c.log.Warn().Str("query", query).Str("reason", reason).Msg("search fell back to mock results")

	return []contractx.SearchResult{
		{
			Title:   "2BHK Apartment in a gated society",
			Link:    "https://housing.com/in/buy/mock/listing-1",
			Snippet: "Sample listing matching: " + query,
		},
		{
			Title:   "Spacious flat near IT park",
			Link:    "https://housing.com/in/buy/mock/listing-2",
			Snippet: "Sample listing matching: " + query,
		},
		{
			Title:   "Ready-to-move home with parking",
			Link:    "https://housing.com/in/buy/mock/listing-3",
			Snippet: "Sample listing matching: " + query,
		},
	}
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
