package search

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"ai-shopping-be/pkg/scraper"
)

// Scraper is the slice of the Firecrawl client the orchestrator needs.
type Scraper interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
	ScrapeHTML(ctx context.Context, pageURL string) (string, error)
}

// Search tiers, reported in result metadata.
const (
	MethodDirect    = "direct_scrape"
	MethodRelaxed   = "relaxed_parameters"
	MethodSite      = "site_search"
	MethodExpansion = "query_expansion"
	MethodNone      = "no_results"
)

// relaxableKeys are the narrowing parameters dropped by the second tier.
// Gender and price bounds express hard intent and are never relaxed.
var relaxableKeys = []string{"category", "color"}

const siteSearchLimit = 5

// Result carries candidate URLs plus metadata describing how they were
// found, which the final response surfaces to the user.
type Result struct {
	URLs     []string
	Metadata map[string]interface{}
}

// Orchestrator walks the search tiers in order until one yields URLs:
// direct catalog scrape, parameter relaxation, site-scoped web search,
// then synonym query expansion. Every tier failure degrades to the next
// tier rather than surfacing an error.
type Orchestrator struct {
	scraper    Scraper
	siteBase   string
	searchPath string
	domain     string
	logger     *log.Logger
}

func NewOrchestrator(s Scraper, siteBase, searchPath, domain string, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		scraper:    s,
		siteBase:   strings.TrimSuffix(siteBase, "/"),
		searchPath: searchPath,
		domain:     domain,
		logger:     logger,
	}
}

// Search runs the tiers and returns deduplicated URLs in discovery order.
func (o *Orchestrator) Search(ctx context.Context, query string, params map[string]interface{}) *Result {
	searchURL := o.buildSearchURL(query, params)
	result := &Result{
		Metadata: map[string]interface{}{
			"search_query":      query,
			"search_parameters": params,
			"search_url":        searchURL,
		},
	}

	urls := o.directScrape(ctx, searchURL)
	method := MethodDirect

	if len(urls) == 0 {
		if relaxed, changed := relaxParameters(params); changed {
			o.logger.Printf("[SEARCH] No results, retrying without %v", relaxableKeys)
			urls = o.directScrape(ctx, o.buildSearchURL(query, relaxed))
			method = MethodRelaxed
		}
	}

	if len(urls) == 0 {
		o.logger.Printf("[SEARCH] Falling back to site search")
		urls = o.siteSearch(ctx, query)
		method = MethodSite
	}

	if len(urls) == 0 {
		for _, expanded := range ExpandQuery(query) {
			o.logger.Printf("[SEARCH] Trying expanded query: %q", expanded)
			urls = o.directScrape(ctx, o.buildSearchURL(expanded, nil))
			if len(urls) > 0 {
				method = MethodExpansion
				result.Metadata["expanded_query"] = expanded
				break
			}
		}
	}

	if len(urls) == 0 {
		method = MethodNone
	}

	result.URLs = dedup(urls)
	result.Metadata["search_method"] = method
	result.Metadata["results_count"] = len(result.URLs)

	o.logger.Printf("[SEARCH] %d URLs via %s", len(result.URLs), method)
	return result
}

func (o *Orchestrator) directScrape(ctx context.Context, searchURL string) []string {
	html, err := o.scraper.ScrapeHTML(ctx, searchURL)
	if err != nil {
		o.logger.Printf("[SEARCH] Scrape failed for %s: %v", searchURL, err)
		return nil
	}
	return scraper.ExtractProductLinks(html, o.siteBase)
}

func (o *Orchestrator) siteSearch(ctx context.Context, query string) []string {
	siteQuery := fmt.Sprintf("site:%s %s", o.domain, query)
	urls, err := o.scraper.Search(ctx, siteQuery, siteSearchLimit)
	if err != nil {
		o.logger.Printf("[SEARCH] Site search failed: %v", err)
		return nil
	}
	return urls
}

// buildSearchURL composes the catalog search URL. Parameters are only
// appended when they narrow the search beyond their defaults.
func (o *Orchestrator) buildSearchURL(query string, params map[string]interface{}) string {
	values := url.Values{}
	values.Set("q", query)

	if gender := paramString(params, "gender"); gender != "" && gender != "A" {
		values.Set("gf", gender)
	}
	if minPrice := paramInt(params, "minPrice"); minPrice > 0 {
		values.Set("minPrice", strconv.Itoa(minPrice))
	}
	if maxPrice := paramInt(params, "maxPrice"); maxPrice > 0 && maxPrice < 999999 {
		values.Set("maxPrice", strconv.Itoa(maxPrice))
	}
	if color := paramString(params, "color"); color != "" {
		values.Set("color", color)
	}
	if category := paramString(params, "category"); category != "" {
		values.Set("category", category)
	}
	if shoeSize := paramInt(params, "shoeSize"); shoeSize > 0 {
		values.Set("shoeSize", strconv.Itoa(shoeSize))
	}

	return o.siteBase + o.searchPath + "?" + values.Encode()
}

// relaxParameters strips category-like keys; changed reports whether any
// were present, so the caller can skip a pointless identical retry.
func relaxParameters(params map[string]interface{}) (map[string]interface{}, bool) {
	changed := false
	relaxed := make(map[string]interface{}, len(params))
	for k, v := range params {
		relaxed[k] = v
	}
	for _, key := range relaxableKeys {
		if paramString(params, key) != "" {
			delete(relaxed, key)
			changed = true
		}
	}
	return relaxed, changed
}

func paramString(params map[string]interface{}, key string) string {
	if params == nil {
		return ""
	}
	if s, ok := params[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// paramInt tolerates both float64 (decoded JSON) and int values.
func paramInt(params map[string]interface{}, key string) int {
	if params == nil {
		return 0
	}
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func dedup(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var out []string
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
