package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"ai-shopping-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor scripts outcomes per URL substring.
type fakeExtractor struct {
	mu    sync.Mutex
	calls int

	failFor    string
	invalidFor string
	panicFor   string
}

func (f *fakeExtractor) ExtractProduct(_ context.Context, productURL string) (*store.Product, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	switch {
	case f.failFor != "" && strings.Contains(productURL, f.failFor):
		return nil, errors.New("extraction failed")
	case f.panicFor != "" && strings.Contains(productURL, f.panicFor):
		panic("extractor exploded")
	case f.invalidFor != "" && strings.Contains(productURL, f.invalidFor):
		return &store.Product{Name: "", Price: 0, ProductURL: productURL}, nil
	}
	return &store.Product{Name: "Product " + productURL, Price: 10000, ProductURL: productURL}, nil
}

func newTestEngine(e Extractor) *Engine {
	return NewEngine(e, 5, log.New(io.Discard, "", 0))
}

func TestExtractAllPreservesOrder(t *testing.T) {
	fe := &fakeExtractor{}
	engine := newTestEngine(fe)

	var urls []string
	for i := 0; i < 8; i++ {
		urls = append(urls, fmt.Sprintf("https://shop.test/products/%d", i))
	}

	products := engine.ExtractAll(context.Background(), urls)

	require.Len(t, products, 8)
	for i, p := range products {
		assert.Equal(t, urls[i], p.ProductURL, "results follow submission order")
	}
	assert.Equal(t, 8, fe.calls)
}

func TestExtractAllDropsFailures(t *testing.T) {
	fe := &fakeExtractor{failFor: "/products/1"}
	engine := newTestEngine(fe)

	products := engine.ExtractAll(context.Background(), []string{
		"https://shop.test/products/0",
		"https://shop.test/products/1",
		"https://shop.test/products/2",
	})

	require.Len(t, products, 2)
	assert.Equal(t, "https://shop.test/products/0", products[0].ProductURL)
	assert.Equal(t, "https://shop.test/products/2", products[1].ProductURL)
}

func TestExtractAllDropsInvalidProducts(t *testing.T) {
	fe := &fakeExtractor{invalidFor: "/products/0"}
	engine := newTestEngine(fe)

	products := engine.ExtractAll(context.Background(), []string{
		"https://shop.test/products/0",
		"https://shop.test/products/1",
	})

	require.Len(t, products, 1)
	assert.Equal(t, "https://shop.test/products/1", products[0].ProductURL)
}

func TestExtractAllIsolatesPanics(t *testing.T) {
	fe := &fakeExtractor{panicFor: "/products/1"}
	engine := newTestEngine(fe)

	var products []store.Product
	assert.NotPanics(t, func() {
		products = engine.ExtractAll(context.Background(), []string{
			"https://shop.test/products/0",
			"https://shop.test/products/1",
			"https://shop.test/products/2",
		})
	})
	assert.Len(t, products, 2, "panicking task only costs its own slot")
}

func TestExtractAllEmptyInput(t *testing.T) {
	engine := newTestEngine(&fakeExtractor{})
	assert.Nil(t, engine.ExtractAll(context.Background(), nil))
}
