package extract

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"ai-shopping-be/pkg/store"
)

// Extractor is the slice of the Firecrawl client the engine needs.
type Extractor interface {
	ExtractProduct(ctx context.Context, productURL string) (*store.Product, error)
}

const defaultConcurrency = 5

// Engine extracts product data from a batch of URLs with bounded
// concurrency. One executor serves every batch size; results come back
// in submission order and a failed or panicking extraction only costs
// its own slot.
type Engine struct {
	extractor   Extractor
	concurrency int
	logger      *log.Logger
}

func NewEngine(extractor Extractor, concurrency int, logger *log.Logger) *Engine {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Engine{
		extractor:   extractor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// ExtractAll returns the valid products extracted from the URLs, in the
// order the URLs were given. Invalid and failed extractions are dropped.
func (e *Engine) ExtractAll(ctx context.Context, urls []string) []store.Product {
	if len(urls) == 0 {
		return nil
	}

	start := time.Now()
	slots := make([]*store.Product, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Printf("[EXTRACT] Panic extracting %s: %v", u, r)
				}
			}()

			product, err := e.extractor.ExtractProduct(gctx, u)
			if err != nil {
				e.logger.Printf("[EXTRACT] Failed for %s: %v", u, err)
				return nil
			}
			if !product.Valid() {
				e.logger.Printf("[EXTRACT] Dropping incomplete product from %s", u)
				return nil
			}
			slots[i] = product
			return nil
		})
	}
	// Workers never return errors; Wait is only a completion barrier.
	_ = g.Wait()

	var products []store.Product
	for _, p := range slots {
		if p != nil {
			products = append(products, *p)
		}
	}

	e.logger.Printf("[EXTRACT] %d/%d products in %s", len(products), len(urls), time.Since(start))
	return products
}
