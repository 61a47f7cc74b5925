package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimize(t *testing.T) {
	t.Run("structured output", func(t *testing.T) {
		o := NewOptimizer(&fakeLLM{response: `{
			"search_query": "겨울 코트",
			"search_parameters": {"gender": "M", "maxPrice": 150000, "color": "BLACK", "category": "coat"}
		}`}, discardLogger())

		got := o.Optimize(context.Background(), "남자 15만원 이하 검정 겨울 코트 찾아줘")

		assert.Equal(t, "겨울 코트", got.SearchQuery)
		assert.Equal(t, "M", got.SearchParameters["gender"])
		assert.Equal(t, float64(150000), got.SearchParameters["maxPrice"])
	})

	t.Run("llm error falls back to raw text", func(t *testing.T) {
		o := NewOptimizer(&fakeLLM{err: errors.New("model offline")}, discardLogger())

		got := o.Optimize(context.Background(), "겨울 코트")

		require.NotNil(t, got)
		assert.Equal(t, "겨울 코트", got.SearchQuery)
		assert.Empty(t, got.SearchParameters)
	})

	t.Run("unparseable output falls back", func(t *testing.T) {
		o := NewOptimizer(&fakeLLM{response: "no json here"}, discardLogger())

		got := o.Optimize(context.Background(), "겨울 코트")
		assert.Equal(t, "겨울 코트", got.SearchQuery)
	})

	t.Run("blank search query replaced with raw text", func(t *testing.T) {
		o := NewOptimizer(&fakeLLM{response: `{"search_query": "  ", "search_parameters": {}}`}, discardLogger())

		got := o.Optimize(context.Background(), "겨울 코트")
		assert.Equal(t, "겨울 코트", got.SearchQuery)
	})

	t.Run("missing parameters map defaults empty", func(t *testing.T) {
		o := NewOptimizer(&fakeLLM{response: `{"search_query": "코트"}`}, discardLogger())

		got := o.Optimize(context.Background(), "코트 찾아줘")
		assert.NotNil(t, got.SearchParameters)
	})
}
