package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/vinayk94/iso-assist/internal/ai"
	"github.com/vinayk94/iso-assist/internal/model"
	appErr "github.com/vinayk94/iso-assist/internal/pkg/errors"
	"github.com/vinayk94/iso-assist/internal/pkg/resilience"
	"github.com/vinayk94/iso-assist/internal/repo"
)

const taskRetrievalQuery = "RETRIEVAL_QUERY"

// ChunkIndex is the retrieval-side view of chunk storage: nearest neighbors
// by vector, hydration by id set. *repo.ChunkRepo implements it.
type ChunkIndex interface {
	Search(ctx context.Context, vec []float32, k int) ([]model.VectorMatch, error)
	HydrateChunks(ctx context.Context, ids []int64) (map[int64]repo.HydratedChunk, error)
}

// Retriever turns a query into a ranked candidate list: embed the query,
// search the vector index, hydrate the matches with chunk content and
// document metadata. Read-only; it never touches store state. Every external
// call runs under a bounded per-call timeout so a hung backend surfaces as a
// typed failure instead of a stalled query.
type Retriever struct {
	embedder ai.IEmbedder
	chunks   ChunkIndex
	exec     *resilience.Executor
	timeout  time.Duration
}

func NewRetriever(embedder ai.IEmbedder, chunks ChunkIndex, exec *resilience.Executor, timeout time.Duration) *Retriever {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Retriever{embedder: embedder, chunks: chunks, exec: exec, timeout: timeout}
}

func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]model.RetrievedCandidate, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive", appErr.ErrInvalidQuery)
	}
	logger := logutil.GetLogger(ctx).With(zap.Int("top_k", k))

	var vec []float32
	err := r.exec.Execute(ctx, "embed_query", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		var err error
		vec, err = r.embedder.Embed(callCtx, query, taskRetrievalQuery)
		return err
	}, transientClassifier)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return nil, fmt.Errorf("%w: %s", appErr.ErrEmbedding, err)
	}

	searchCtx, cancelSearch := context.WithTimeout(ctx, r.timeout)
	defer cancelSearch()
	matches, err := r.chunks.Search(searchCtx, vec, k)
	if err != nil {
		logger.Error("vector search failed", zap.Error(err))
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ChunkID)
	}
	hydrateCtx, cancelHydrate := context.WithTimeout(ctx, r.timeout)
	defer cancelHydrate()
	hydrated, err := r.chunks.HydrateChunks(hydrateCtx, ids)
	if err != nil {
		logger.Error("chunk hydration failed", zap.Error(err))
		return nil, fmt.Errorf("hydrate chunks: %w", err)
	}

	candidates := make([]model.RetrievedCandidate, 0, len(matches))
	for _, m := range matches {
		h, ok := hydrated[m.ChunkID]
		if !ok {
			// Index/store drift: the index knows a chunk the store no
			// longer has. Drop the candidate, keep the query alive.
			logger.Warn("dropping unresolvable candidate",
				zap.Int64("chunk_id", m.ChunkID),
				zap.Error(appErr.ErrHydration),
			)
			continue
		}
		candidates = append(candidates, model.RetrievedCandidate{
			ChunkID:     h.ChunkID,
			DocumentID:  h.DocumentID,
			Content:     h.Content,
			Title:       h.Title,
			URL:         h.URL,
			ContentType: h.ContentType,
			FileName:    h.FileName,
			Distance:    m.Distance,
			Relevance:   clampRelevance(1 - m.Distance),
		})
	}

	// The search already orders by distance, but re-sort after hydration so
	// the contract doesn't depend on how the rows came back.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Distance != candidates[j].Distance {
			return candidates[i].Distance < candidates[j].Distance
		}
		return candidates[i].ChunkID < candidates[j].ChunkID
	})

	logger.Debug("retrieval completed",
		zap.Int("matches", len(matches)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

func clampRelevance(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
