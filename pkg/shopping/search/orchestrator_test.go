package search

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScraper scripts HTML per scraped URL and a fixed site search result.
type fakeScraper struct {
	htmlByQuery map[string]string // substring of the scraped URL -> HTML
	scrapeErr   error

	searchURLs []string
	searchErr  error

	scrapedURLs []string
	searched    []string
}

func (f *fakeScraper) ScrapeHTML(_ context.Context, pageURL string) (string, error) {
	f.scrapedURLs = append(f.scrapedURLs, pageURL)
	if f.scrapeErr != nil {
		return "", f.scrapeErr
	}
	for needle, html := range f.htmlByQuery {
		if strings.Contains(pageURL, needle) {
			return html, nil
		}
	}
	return "", nil
}

func (f *fakeScraper) Search(_ context.Context, query string, _ int) ([]string, error) {
	f.searched = append(f.searched, query)
	return f.searchURLs, f.searchErr
}

func newTestOrchestrator(s Scraper) *Orchestrator {
	return NewOrchestrator(s, "https://www.musinsa.com", "/search/musinsa/goods", "musinsa.com",
		log.New(io.Discard, "", 0))
}

const productAnchor = `<a href="/products/111">coat</a><a href="/products/111">dup</a><a href="/products/222">other</a>`

func TestSearchDirectTier(t *testing.T) {
	fs := &fakeScraper{htmlByQuery: map[string]string{"q=coat": productAnchor}}
	o := newTestOrchestrator(fs)

	res := o.Search(context.Background(), "coat", map[string]interface{}{"color": "BLACK"})

	require.Len(t, res.URLs, 2, "per-page duplicates dropped")
	assert.Equal(t, "https://www.musinsa.com/products/111", res.URLs[0])
	assert.Equal(t, MethodDirect, res.Metadata["search_method"])
	assert.Equal(t, 2, res.Metadata["results_count"])
	assert.Contains(t, res.Metadata["search_url"], "color=BLACK")
}

func TestSearchRelaxesParameters(t *testing.T) {
	// The narrowed URL carries category/color parameters before q, so only
	// the relaxed retry matches the bare "goods?q=coat" key.
	fs := &fakeScraper{htmlByQuery: map[string]string{"goods?q=coat": productAnchor}}
	o := newTestOrchestrator(fs)

	params := map[string]interface{}{"category": "coat", "color": "BLACK"}
	res := o.Search(context.Background(), "coat", params)

	require.NotEmpty(t, res.URLs)
	assert.Equal(t, MethodRelaxed, res.Metadata["search_method"])
	require.Len(t, fs.scrapedURLs, 2)
	assert.Contains(t, fs.scrapedURLs[0], "color=BLACK")
	assert.NotContains(t, fs.scrapedURLs[1], "color=BLACK")
	assert.NotContains(t, fs.scrapedURLs[1], "category=")
}

func TestSearchSiteSearchTier(t *testing.T) {
	fs := &fakeScraper{
		scrapeErr:  errors.New("blocked"),
		searchURLs: []string{"https://www.musinsa.com/products/333"},
	}
	o := newTestOrchestrator(fs)

	res := o.Search(context.Background(), "coat", nil)

	assert.Equal(t, MethodSite, res.Metadata["search_method"])
	assert.Equal(t, []string{"https://www.musinsa.com/products/333"}, res.URLs)
	require.Len(t, fs.searched, 1)
	assert.Equal(t, "site:musinsa.com coat", fs.searched[0])
}

func TestSearchExpansionTier(t *testing.T) {
	fs := &fakeScraper{htmlByQuery: map[string]string{}}
	o := newTestOrchestrator(fs)

	// Direct and site search find nothing; the first synonym expansion of
	// 코트 is 아우터, whose scrape hits.
	fs.htmlByQuery["%EC%95%84%EC%9A%B0%ED%84%B0"] = productAnchor

	res := o.Search(context.Background(), "겨울 코트", nil)

	assert.Equal(t, MethodExpansion, res.Metadata["search_method"])
	assert.Equal(t, "겨울 아우터", res.Metadata["expanded_query"])
	assert.NotEmpty(t, res.URLs)
}

func TestSearchAllTiersEmpty(t *testing.T) {
	fs := &fakeScraper{htmlByQuery: map[string]string{}}
	o := newTestOrchestrator(fs)

	res := o.Search(context.Background(), "coat", nil)

	assert.Empty(t, res.URLs)
	assert.Equal(t, MethodNone, res.Metadata["search_method"])
	assert.Equal(t, 0, res.Metadata["results_count"])
}

func TestExpandQuery(t *testing.T) {
	t.Run("synonym substitution", func(t *testing.T) {
		got := ExpandQuery("겨울 코트")
		assert.Equal(t, []string{"겨울 아우터", "겨울 자켓"}, got)
	})

	t.Run("capped at three", func(t *testing.T) {
		got := ExpandQuery("코트 자켓")
		assert.Len(t, got, 3)
	})

	t.Run("gender prefixes when no synonym matches", func(t *testing.T) {
		got := ExpandQuery("nike hoodie")
		assert.Equal(t, []string{"남성 nike hoodie", "여성 nike hoodie"}, got)
	})

	t.Run("original query never included", func(t *testing.T) {
		for _, q := range ExpandQuery("코트") {
			assert.NotEqual(t, "코트", q)
		}
	})
}
