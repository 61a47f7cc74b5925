package search

import (
	"net/url"
	"regexp"
	"strings"
)

// productPatterns mark a path as a product page
var productPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/product/`),
	regexp.MustCompile(`/products/`),
	regexp.MustCompile(`/goods/`),
	regexp.MustCompile(`/item/`),
}

// excludePatterns mark a path as a listing/campaign page even when a
// product pattern also matches
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/event/`),
	regexp.MustCompile(`/campaign/`),
	regexp.MustCompile(`/category/`),
	regexp.MustCompile(`/search/`),
	regexp.MustCompile(`/sale/`),
	regexp.MustCompile(`/ranking/`),
}

// Brand pages are excluded unless the path goes through a brand page to
// a concrete product (RE2 has no lookahead, so this is split in two).
var (
	brandPattern        = regexp.MustCompile(`/brand`)
	brandProductPattern = regexp.MustCompile(`/brand/.*/product`)
)

// LinkFilter accepts candidate URLs that look like retailer product
// pages and caps the accepted set to bound extraction cost.
type LinkFilter struct {
	domain string
	limit  int
}

func NewLinkFilter(domain string, limit int) *LinkFilter {
	return &LinkFilter{
		domain: domain,
		limit:  limit,
	}
}

// Accept reports whether the URL is a product page on the configured
// domain. Malformed URLs fail closed.
func (f *LinkFilter) Accept(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.Contains(parsed.Host, f.domain) {
		return false
	}

	path := strings.ToLower(parsed.Path)

	hasProductPattern := false
	for _, p := range productPatterns {
		if p.MatchString(path) {
			hasProductPattern = true
			break
		}
	}
	if !hasProductPattern {
		return false
	}

	for _, p := range excludePatterns {
		if p.MatchString(path) {
			return false
		}
	}
	if brandPattern.MatchString(path) && !brandProductPattern.MatchString(path) {
		return false
	}

	return true
}

// Filter returns the accepted URLs in input order, capped at the limit.
func (f *LinkFilter) Filter(urls []string) []string {
	var accepted []string
	for _, u := range urls {
		if f.Accept(u) {
			accepted = append(accepted, u)
			if len(accepted) >= f.limit {
				break
			}
		}
	}
	return accepted
}
