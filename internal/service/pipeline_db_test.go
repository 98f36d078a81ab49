package service_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/require"

	appErr "github.com/vinayk94/iso-assist/internal/pkg/errors"
	"github.com/vinayk94/iso-assist/internal/pkg/resilience"
	"github.com/vinayk94/iso-assist/internal/repo"
	"github.com/vinayk94/iso-assist/internal/service"
	"github.com/vinayk94/iso-assist/internal/testutil"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return s.vec, s.err
}

func (s *stubEmbedder) ModelName() string { return "stub-model" }

func (s *stubEmbedder) Dimension() int { return len(s.vec) }

type stubGenerator struct {
	answer string
	prompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.answer, nil
}

func axisVector(axis int) []float32 {
	v := make([]float32, 1024)
	v[axis] = 1
	return v
}

func seedDocument(t *testing.T, conn *sql.DB, title, url, content string, axis int) {
	t.Helper()
	var docID int64
	err := conn.QueryRow(
		`INSERT INTO documents (title, url, content_type) VALUES ($1, $2, 'web') RETURNING id`,
		title, url,
	).Scan(&docID)
	require.NoError(t, err)
	var chunkID int64
	err = conn.QueryRow(
		`INSERT INTO chunks (document_id, content, position) VALUES ($1, $2, 0) RETURNING id`,
		docID, content,
	).Scan(&chunkID)
	require.NoError(t, err)
	_, err = conn.Exec(
		`INSERT INTO embeddings (chunk_id, embedding, model_name) VALUES ($1, $2, 'stub-model')`,
		chunkID, pgvector.NewVector(axisVector(axis)),
	)
	require.NoError(t, err)
}

func buildPipeline(gen *stubGenerator, emb *stubEmbedder, chunks *repo.ChunkRepo) *service.QueryPipeline {
	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    2,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
	})
	return service.NewQueryPipeline(
		service.NewRetriever(emb, chunks, exec, time.Second),
		service.NewSourceAggregator(3),
		service.NewAnswerGenerator(gen, exec, time.Second),
		service.NewCitationExtractor(),
		5,
		5,
	)
}

func TestPipelineEndToEnd(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	seedDocument(t, conn, "Resource Handbook", "https://example.com/handbook", "Registration details here.", 0)
	seedDocument(t, conn, "Market Guide", "https://example.com/guide", "Market operations overview.", 1)

	gen := &stubGenerator{answer: "Registration takes 10-15 days [Resource Handbook]."}
	pipeline := buildPipeline(gen, &stubEmbedder{vec: axisVector(0)}, repo.NewChunkRepo(conn))

	resp, err := pipeline.Handle(context.Background(), "How long does registration take?")
	require.NoError(t, err)

	require.Equal(t, "Registration takes 10-15 days Resource Handbook.", resp.Answer)
	require.Len(t, resp.Citations, 1)
	require.Equal(t, "Resource Handbook", resp.Citations[0].Title)
	require.Equal(t,
		resp.Citations[0].Title,
		resp.Answer[resp.Citations[0].StartIdx:resp.Citations[0].EndIdx],
	)

	require.Len(t, resp.Sources, 2)
	// Nearest document first.
	require.Equal(t, "Resource Handbook", resp.Sources[0].Title)
	require.Equal(t, []string{"Registration details here."}, resp.Sources[0].Highlights)
	require.Greater(t, resp.Sources[0].Relevance, resp.Sources[1].Relevance)

	require.Equal(t, 2, resp.Metadata.TotalChunks)
	require.Equal(t, 2, resp.Metadata.UniqueSources)
	require.GreaterOrEqual(t, resp.Metadata.ProcessingTime, 0.0)

	require.Contains(t, gen.prompt, "[Resource Handbook]:\nRegistration details here.")
	require.Contains(t, gen.prompt, "ONLY the provided sources")
}

func TestPipelineDegradesOnEmptyCorpus(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	gen := &stubGenerator{answer: "General answer, not grounded in ERCOT documentation."}
	pipeline := buildPipeline(gen, &stubEmbedder{vec: axisVector(0)}, repo.NewChunkRepo(conn))

	resp, err := pipeline.Handle(context.Background(), "What is ERCOT?")
	require.NoError(t, err)
	require.Equal(t, gen.answer, resp.Answer)
	require.Empty(t, resp.Citations)
	require.Empty(t, resp.Sources)
	require.Equal(t, 0, resp.Metadata.TotalChunks)
	require.Contains(t, gen.prompt, "general knowledge")
}

func TestPipelineRejectsEmptyQuery(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	gen := &stubGenerator{answer: "unused"}
	pipeline := buildPipeline(gen, &stubEmbedder{vec: axisVector(0)}, repo.NewChunkRepo(conn))

	_, err := pipeline.Handle(context.Background(), "   ")
	require.ErrorIs(t, err, appErr.ErrInvalidQuery)
}

func TestPipelineSourceLimitAppliesBeforeGeneration(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	seedDocument(t, conn, "Doc A", "https://example.com/a", "content a", 0)
	seedDocument(t, conn, "Doc B", "https://example.com/b", "content b", 1)

	// The generator cites the pruned document; the marker must stay inert.
	gen := &stubGenerator{answer: "Fact [Doc A]. Other fact [Doc B]."}
	pipeline := buildPipeline(gen, &stubEmbedder{vec: axisVector(0)}, repo.NewChunkRepo(conn))

	resp, err := pipeline.HandleWithLimit(context.Background(), "question", 1)
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	require.Equal(t, "Doc A", resp.Sources[0].Title)
	require.False(t, strings.Contains(gen.prompt, "Doc B"))
	require.Equal(t, "Fact Doc A. Other fact [Doc B].", resp.Answer)
	require.Len(t, resp.Citations, 1)
	require.Equal(t, "Doc A", resp.Citations[0].Title)
}

func TestPipelineEmbeddingFailure(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	gen := &stubGenerator{answer: "unused"}
	pipeline := buildPipeline(gen, &stubEmbedder{err: context.DeadlineExceeded}, repo.NewChunkRepo(conn))

	_, err := pipeline.Handle(context.Background(), "question")
	require.ErrorIs(t, err, appErr.ErrEmbedding)
}
