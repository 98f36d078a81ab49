package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinayk94/iso-assist/internal/model"
	appErr "github.com/vinayk94/iso-assist/internal/pkg/errors"
	"github.com/vinayk94/iso-assist/internal/repo"
)

type fakeChunkIndex struct {
	matches  []model.VectorMatch
	hydrated map[int64]repo.HydratedChunk
}

func (f *fakeChunkIndex) Search(ctx context.Context, vec []float32, k int) ([]model.VectorMatch, error) {
	return f.matches, nil
}

func (f *fakeChunkIndex) HydrateChunks(ctx context.Context, ids []int64) (map[int64]repo.HydratedChunk, error) {
	return f.hydrated, nil
}

type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return f.vec, nil
}

func (f *fixedEmbedder) ModelName() string { return "fixed" }

func (f *fixedEmbedder) Dimension() int { return len(f.vec) }

// hangingEmbedder models a backend that never answers: it only returns once
// the call context is cancelled.
type hangingEmbedder struct{}

func (hangingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (hangingEmbedder) ModelName() string { return "hanging" }

func (hangingEmbedder) Dimension() int { return 4 }

func hydratedChunk(chunkID, docID int64, title string) repo.HydratedChunk {
	return repo.HydratedChunk{
		ChunkID:     chunkID,
		DocumentID:  docID,
		Content:     "content",
		Title:       title,
		URL:         "https://example.com",
		ContentType: "web",
	}
}

func TestRetrieveDropsUnresolvableCandidates(t *testing.T) {
	index := &fakeChunkIndex{
		matches: []model.VectorMatch{
			{ChunkID: 1, Distance: 0.1},
			{ChunkID: 2, Distance: 0.2},
			{ChunkID: 3, Distance: 0.3},
		},
		// Chunk 2 is known to the index but gone from the store.
		hydrated: map[int64]repo.HydratedChunk{
			1: hydratedChunk(1, 10, "Guide A"),
			3: hydratedChunk(3, 30, "Guide C"),
		},
	}
	r := NewRetriever(&fixedEmbedder{vec: []float32{1, 0}}, index, testExecutor(), time.Second)

	candidates, err := r.Retrieve(context.Background(), "question", 5)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, int64(1), candidates[0].ChunkID)
	require.Equal(t, int64(3), candidates[1].ChunkID)
}

func TestRetrieveEqualDistanceOrdersByChunkID(t *testing.T) {
	index := &fakeChunkIndex{
		matches: []model.VectorMatch{
			{ChunkID: 3, Distance: 0.25},
			{ChunkID: 1, Distance: 0.25},
			{ChunkID: 2, Distance: 0.25},
		},
		hydrated: map[int64]repo.HydratedChunk{
			1: hydratedChunk(1, 10, "A"),
			2: hydratedChunk(2, 20, "B"),
			3: hydratedChunk(3, 30, "C"),
		},
	}
	r := NewRetriever(&fixedEmbedder{vec: []float32{1, 0}}, index, testExecutor(), time.Second)

	candidates, err := r.Retrieve(context.Background(), "question", 5)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	for i, want := range []int64{1, 2, 3} {
		require.Equal(t, want, candidates[i].ChunkID)
		require.InDelta(t, 0.75, candidates[i].Relevance, 1e-9)
	}
}

func TestRetrieveEmbedTimeoutSurfacesAsEmbeddingError(t *testing.T) {
	index := &fakeChunkIndex{}
	r := NewRetriever(hangingEmbedder{}, index, testExecutor(), 20*time.Millisecond)

	start := time.Now()
	_, err := r.Retrieve(context.Background(), "question", 5)
	require.ErrorIs(t, err, appErr.ErrEmbedding)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestRetrieveRejectsNonPositiveK(t *testing.T) {
	r := NewRetriever(&fixedEmbedder{vec: []float32{1}}, &fakeChunkIndex{}, testExecutor(), time.Second)
	_, err := r.Retrieve(context.Background(), "question", 0)
	require.ErrorIs(t, err, appErr.ErrInvalidQuery)
}
