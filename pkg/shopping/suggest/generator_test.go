package suggest

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"ai-shopping-be/pkg/llm"
	"ai-shopping-be/pkg/store"

	"github.com/stretchr/testify/assert"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return f.response, f.err
}

func newTestGenerator(l llm.LLMProvider) *Generator {
	return NewGenerator(l, log.New(io.Discard, "", 0))
}

func TestGenerateParsesModelOutput(t *testing.T) {
	g := newTestGenerator(&fakeLLM{response: `["다른 색상도 있나요?", "배송은 얼마나 걸리나요?"]`})

	got := g.Generate(context.Background(), store.NewTurnState("s1"))
	assert.Equal(t, []string{"다른 색상도 있나요?", "배송은 얼마나 걸리나요?"}, got)
}

func TestGenerateFallbacks(t *testing.T) {
	t.Run("llm error with products", func(t *testing.T) {
		g := newTestGenerator(&fakeLLM{err: errors.New("model offline")})
		state := store.NewTurnState("s1")
		state.Products = []store.Product{{Name: "Coat", Price: 89000}}

		got := g.Generate(context.Background(), state)
		assert.Equal(t, productFallbackQuestions, got)
	})

	t.Run("llm error without products", func(t *testing.T) {
		g := newTestGenerator(&fakeLLM{err: errors.New("model offline")})

		got := g.Generate(context.Background(), store.NewTurnState("s1"))
		assert.Equal(t, generalFallbackQuestions, got)
	})

	t.Run("unparseable output", func(t *testing.T) {
		g := newTestGenerator(&fakeLLM{response: "네"})

		got := g.Generate(context.Background(), store.NewTurnState("s1"))
		assert.Equal(t, generalFallbackQuestions, got)
	})

	t.Run("single question not enough", func(t *testing.T) {
		g := newTestGenerator(&fakeLLM{response: `["다른 색상도 있나요?"]`})
		state := store.NewTurnState("s1")
		state.Products = []store.Product{{Name: "Coat", Price: 89000}}

		got := g.Generate(context.Background(), state)
		assert.Equal(t, productFallbackQuestions, got)
	})
}
