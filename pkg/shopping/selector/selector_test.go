package selector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"

	"ai-shopping-be/pkg/llm"
	"ai-shopping-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	f.calls++
	return f.response, f.err
}

func testProducts(n int) []store.Product {
	products := make([]store.Product, n)
	for i := range products {
		products[i] = store.Product{Name: fmt.Sprintf("Product %d", i), Price: float64(10000 * (i + 1))}
	}
	return products
}

func newTestSelector(l llm.LLMProvider) *Selector {
	return NewSelector(l, log.New(io.Discard, "", 0))
}

func TestSelectRanking(t *testing.T) {
	s := newTestSelector(&fakeLLM{response: `{"selected_indices": [3, 0, 2]}`})

	selected := s.Select(context.Background(), "coat", testProducts(5))

	require.Len(t, selected, 3)
	assert.Equal(t, "Product 3", selected[0].Name, "best match first")
	assert.Equal(t, "Product 0", selected[1].Name)
	assert.Equal(t, "Product 2", selected[2].Name)
}

func TestSelectRanksSmallSets(t *testing.T) {
	t.Run("irrelevant candidate dropped", func(t *testing.T) {
		fl := &fakeLLM{response: `{"selected_indices": [1]}`}
		s := newTestSelector(fl)

		selected := s.Select(context.Background(), "coat", testProducts(2))

		assert.Equal(t, 1, fl.calls, "small sets are still ranked")
		require.Len(t, selected, 1)
		assert.Equal(t, "Product 1", selected[0].Name)
	})

	t.Run("failure keeps the whole small set", func(t *testing.T) {
		s := newTestSelector(&fakeLLM{err: errors.New("model offline")})

		products := testProducts(2)
		selected := s.Select(context.Background(), "coat", products)

		assert.Equal(t, products, selected)
	})
}

func TestSelectEmptyInput(t *testing.T) {
	fl := &fakeLLM{response: `{"selected_indices": [0]}`}
	s := newTestSelector(fl)

	assert.Empty(t, s.Select(context.Background(), "coat", nil))
	assert.Zero(t, fl.calls, "no ranking call without candidates")
}

func TestSelectFallbacks(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"llm error", &fakeLLM{err: errors.New("model offline")}},
		{"no json", &fakeLLM{response: "I like product three best"}},
		{"empty indices", &fakeLLM{response: `{"selected_indices": []}`}},
		{"all out of range", &fakeLLM{response: `{"selected_indices": [9, 12]}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSelector(tt.llm)
			selected := s.Select(context.Background(), "coat", testProducts(5))

			require.Len(t, selected, 3)
			assert.Equal(t, "Product 0", selected[0].Name, "fallback keeps extraction order")
		})
	}
}

func TestSelectSanitizesIndices(t *testing.T) {
	// Duplicates and out-of-range entries dropped, result capped at three.
	s := newTestSelector(&fakeLLM{response: `{"selected_indices": [1, 1, 7, -1, 4, 0, 2]}`})

	selected := s.Select(context.Background(), "coat", testProducts(5))

	require.Len(t, selected, 3)
	assert.Equal(t, "Product 1", selected[0].Name)
	assert.Equal(t, "Product 4", selected[1].Name)
	assert.Equal(t, "Product 0", selected[2].Name)
}
