package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkFilterAccept(t *testing.T) {
	f := NewLinkFilter("musinsa.com", 5)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"product path", "https://www.musinsa.com/products/1234567", true},
		{"goods path", "https://www.musinsa.com/goods/123", true},
		{"item path", "https://store.musinsa.com/item/9", true},
		{"wrong domain", "https://www.coupang.com/products/1234", false},
		{"event page", "https://www.musinsa.com/event/products/sale", false},
		{"campaign page", "https://www.musinsa.com/campaign/products/x", false},
		{"category listing", "https://www.musinsa.com/category/products", false},
		{"search results", "https://www.musinsa.com/search/goods?q=coat", false},
		{"sale listing", "https://www.musinsa.com/sale/products/1", false},
		{"ranking page", "https://www.musinsa.com/ranking/goods", false},
		{"brand listing", "https://www.musinsa.com/brand/nike/goods", false},
		{"brand product detail", "https://www.musinsa.com/brand/nike/products/123", true},
		{"no product pattern", "https://www.musinsa.com/about", false},
		{"uppercase path", "https://www.musinsa.com/PRODUCTS/123", true},
		{"malformed url", "http://%zz invalid", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Accept(tt.url))
		})
	}
}

func TestLinkFilterCap(t *testing.T) {
	f := NewLinkFilter("musinsa.com", 5)

	var urls []string
	for i := 0; i < 10; i++ {
		urls = append(urls, fmt.Sprintf("https://www.musinsa.com/products/%d", i))
	}
	urls = append([]string{"https://www.musinsa.com/event/products/skip"}, urls...)

	filtered := f.Filter(urls)
	assert.Len(t, filtered, 5)
	assert.Equal(t, "https://www.musinsa.com/products/0", filtered[0], "input order preserved")
}

func TestLinkFilterEmpty(t *testing.T) {
	f := NewLinkFilter("musinsa.com", 5)
	assert.Empty(t, f.Filter(nil))
	assert.Empty(t, f.Filter([]string{"https://other.com/products/1"}))
}
