package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"ai-shopping-be/pkg/store"

	gocache "github.com/patrickmn/go-cache"
)

// Client calls the Firecrawl content-extraction API. It is the single
// collaborator behind all three search/extraction capabilities:
// site search, search-page scraping and schema-guided product extraction.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client

	// Extraction results are cached per URL; product pages rarely change
	// within a session and extraction is the most expensive call we make.
	extractCache *gocache.Cache
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.firecrawl.dev"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		extractCache: gocache.New(1*time.Hour, 10*time.Minute),
	}
}

// --- Request/Response structs (Internal to this package) ---

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

type scrapeRequest struct {
	URL             string                 `json:"url"`
	Formats         []string               `json:"formats"`
	IncludeTags     []string               `json:"includeTags,omitempty"`
	ExcludeTags     []string               `json:"excludeTags,omitempty"`
	WaitFor         int                    `json:"waitFor,omitempty"`
	OnlyMainContent bool                   `json:"onlyMainContent,omitempty"`
	Extract         map[string]interface{} `json:"extract,omitempty"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		HTML    string          `json:"html"`
		Extract json.RawMessage `json:"extract"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("firecrawl request failed: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("firecrawl error: status %d, body: %s", resp.StatusCode, string(respBytes))
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Search runs the Firecrawl web search endpoint and returns result URLs
// in ranking order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]string, error) {
	var parsed searchResponse
	if err := c.post(ctx, "/v1/search", searchRequest{Query: query, Limit: limit}, &parsed); err != nil {
		return nil, err
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("firecrawl search: %s", parsed.Error)
	}

	urls := make([]string, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		if item.URL != "" {
			urls = append(urls, item.URL)
		}
	}
	return urls, nil
}

// ScrapeHTML fetches the anchor markup of a page. Only <a> tags are
// requested to keep the payload small; scripts and frames are stripped.
func (c *Client) ScrapeHTML(ctx context.Context, pageURL string) (string, error) {
	payload := scrapeRequest{
		URL:             pageURL,
		Formats:         []string{"html"},
		IncludeTags:     []string{"a"},
		ExcludeTags:     []string{"script", "style", "noscript", "iframe"},
		WaitFor:         1500,
		OnlyMainContent: true,
	}

	var parsed scrapeResponse
	if err := c.post(ctx, "/v1/scrape", payload, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("firecrawl scrape: %s", parsed.Error)
	}
	return parsed.Data.HTML, nil
}

// productSchema describes the JSON shape Firecrawl's extraction should
// return for a product page. "name" and "price" are the only required
// fields; everything else is best effort.
var productSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"name":           map[string]interface{}{"type": "string", "description": "Name or title of the product"},
		"price":          map[string]interface{}{"type": "number", "description": "Current selling price (numeric value only, without currency symbols)"},
		"original_price": map[string]interface{}{"type": "number", "description": "Original price before discount (if available)"},
		"discount_info":  map[string]interface{}{"type": "string", "description": "Discount percentage or amount"},
		"reward_points":  map[string]interface{}{"type": "number", "description": "Points earned when purchasing this product"},
		"shipping_info":  map[string]interface{}{"type": "string", "description": "Shipping information"},
		"size_info":      map[string]interface{}{"type": "string", "description": "Available sizes"},
		"stock_status":   map[string]interface{}{"type": "string", "description": "Stock availability status"},
		"images":         map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Product image URLs"},
		"rating":         map[string]interface{}{"type": "number", "description": "Product rating (1-5 scale)"},
		"colors":         map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Available color options"},
		"description":    map[string]interface{}{"type": "string", "description": "Product description"},
		"features":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Key product features"},
		"review_count":   map[string]interface{}{"type": "number", "description": "Number of reviews"},
	},
	"required": []string{"name", "price"},
}

// ExtractProduct runs schema-guided extraction against one product page.
// Results are cached per URL.
func (c *Client) ExtractProduct(ctx context.Context, productURL string) (*store.Product, error) {
	if cached, found := c.extractCache.Get(productURL); found {
		return cached.(*store.Product), nil
	}

	payload := scrapeRequest{
		URL:             productURL,
		Formats:         []string{"extract"},
		OnlyMainContent: true,
		WaitFor:         2000,
		Extract: map[string]interface{}{
			"prompt": "Extract key product information: name, price, original_price, discount_info, " +
				"shipping_info, size_info, stock_status. Return as JSON with only available fields.",
			"schema": productSchema,
		},
	}

	var parsed scrapeResponse
	if err := c.post(ctx, "/v1/scrape", payload, &parsed); err != nil {
		return nil, err
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("firecrawl extract: %s", parsed.Error)
	}
	if len(parsed.Data.Extract) == 0 {
		return nil, fmt.Errorf("no extraction data for %s", productURL)
	}

	var product store.Product
	if err := json.Unmarshal(parsed.Data.Extract, &product); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	product.ProductURL = productURL

	c.extractCache.Set(productURL, &product, gocache.DefaultExpiration)
	return &product, nil
}

// hrefPattern matches anchor targets that point at product listings
var hrefPattern = regexp.MustCompile(`(?i)href="([^"]*products[^"]*)"`)

// ExtractProductLinks pulls product URLs out of scraped HTML, converting
// relative paths to absolute against siteBase. Order follows document
// order; duplicates within one page are dropped.
func ExtractProductLinks(html, siteBase string) []string {
	if html == "" {
		return nil
	}

	siteBase = strings.TrimSuffix(siteBase, "/")

	var links []string
	seen := make(map[string]bool)
	for _, match := range hrefPattern.FindAllStringSubmatch(html, -1) {
		href := match[1]

		var fullURL string
		switch {
		case strings.HasPrefix(href, "/"):
			fullURL = siteBase + href
		case strings.HasPrefix(href, siteBase):
			fullURL = href
		default:
			continue
		}

		if !seen[fullURL] {
			seen[fullURL] = true
			links = append(links, fullURL)
		}
	}
	return links
}
