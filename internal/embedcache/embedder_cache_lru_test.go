package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	vec   []float32
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.calls++
	return c.vec, nil
}

func (c *countingEmbedder) ModelName() string { return "counting-model" }

func (c *countingEmbedder) Dimension() int { return len(c.vec) }

func TestLruEmbedderCachesByTextAndTask(t *testing.T) {
	next := &countingEmbedder{vec: []float32{1, 2, 3}}
	e := WrapLruCacheToEmbedder(next, 16, time.Minute)

	ctx := context.Background()
	first, err := e.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, first)
	require.Equal(t, 1, next.calls)

	second, err := e.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, next.calls)

	// A different task type is a different cache entry.
	_, err = e.Embed(ctx, "hello", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, 2, next.calls)

	_, err = e.Embed(ctx, "other text", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, 3, next.calls)
}

func TestLruEmbedderReturnsCopies(t *testing.T) {
	next := &countingEmbedder{vec: []float32{1, 2, 3}}
	e := WrapLruCacheToEmbedder(next, 16, time.Minute)

	ctx := context.Background()
	first, err := e.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	first[0] = 99

	second, err := e.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, float32(1), second[0])
}

func TestWrapLruCacheDisabled(t *testing.T) {
	next := &countingEmbedder{vec: []float32{1}}
	require.Equal(t, next, WrapLruCacheToEmbedder(next, 0, time.Minute))
	require.Equal(t, next, WrapLruCacheToEmbedder(next, 16, 0))
}

func TestBuildCacheKeyStable(t *testing.T) {
	key1, hash1, model1 := buildCacheKey("m", "RETRIEVAL_QUERY", "text")
	key2, hash2, model2 := buildCacheKey("m", "RETRIEVAL_QUERY", "text")
	require.Equal(t, key1, key2)
	require.Equal(t, hash1, hash2)
	require.Equal(t, "m", model1)
	require.Equal(t, model2, model1)

	key3, _, _ := buildCacheKey("m", "RETRIEVAL_DOCUMENT", "text")
	require.NotEqual(t, key1, key3)

	_, _, model := buildCacheKey("  ", "RETRIEVAL_QUERY", "text")
	require.Equal(t, "unknown", model)
}
