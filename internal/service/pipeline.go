package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/vinayk94/iso-assist/internal/model"
	appErr "github.com/vinayk94/iso-assist/internal/pkg/errors"
)

// QueryPipeline runs one query end to end: retrieve, aggregate, generate,
// extract citations, assemble the response. One attempt per call; any
// retrying happens inside the individual backend calls. The pipeline is
// constructed once with its collaborators and is safe for concurrent use:
// all per-query state is local.
type QueryPipeline struct {
	retriever  *Retriever
	aggregator *SourceAggregator
	generator  *AnswerGenerator
	extractor  *CitationExtractor
	topK       int
	maxSources int
}

func NewQueryPipeline(
	retriever *Retriever,
	aggregator *SourceAggregator,
	generator *AnswerGenerator,
	extractor *CitationExtractor,
	topK int,
	maxSources int,
) *QueryPipeline {
	if topK <= 0 {
		topK = 5
	}
	if maxSources <= 0 {
		maxSources = 5
	}
	return &QueryPipeline{
		retriever:  retriever,
		aggregator: aggregator,
		generator:  generator,
		extractor:  extractor,
		topK:       topK,
		maxSources: maxSources,
	}
}

func (p *QueryPipeline) Handle(ctx context.Context, query string) (*model.QueryResponse, error) {
	return p.HandleWithLimit(ctx, query, 0)
}

// HandleWithLimit caps the source list before the answer is generated, so a
// marker citing a pruned source simply fails to resolve instead of leaving a
// citation that points at a source the response no longer carries.
func (p *QueryPipeline) HandleWithLimit(ctx context.Context, query string, maxSources int) (*model.QueryResponse, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, appErr.ErrInvalidQuery
	}
	logger := logutil.GetLogger(ctx).With(zap.String("query", query))

	candidates, err := p.retriever.Retrieve(ctx, query, p.topK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		// Nothing retrievable (empty corpus or every candidate dropped on
		// hydration): degrade to an ungrounded answer instead of failing.
		logger.Warn("no candidates retrieved, degrading to general knowledge")
	}

	sources := p.aggregator.Aggregate(candidates)
	limit := p.maxSources
	if maxSources > 0 && maxSources < limit {
		limit = maxSources
	}
	if len(sources) > limit {
		sources = sources[:limit]
	}

	rawAnswer, err := p.generator.Generate(ctx, query, sources)
	if err != nil {
		return nil, err
	}

	answer, citations, err := p.extractor.Extract(rawAnswer, sources)
	if err != nil {
		if !errors.Is(err, appErr.ErrFormatting) {
			return nil, err
		}
		// Extraction is atomic: rather than returning dangling offsets,
		// fall back to the raw answer with no citations at all.
		logger.Warn("citation extraction failed, returning uncaptioned answer", zap.Error(err))
		answer = rawAnswer
		citations = []model.Citation{}
	}

	logger.Info("query processed",
		zap.Int("candidates", len(candidates)),
		zap.Int("sources", len(sources)),
		zap.Int("citations", len(citations)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &model.QueryResponse{
		Answer:    answer,
		Citations: citations,
		Sources:   sources,
		Metadata: model.QueryMetadata{
			ProcessingTime: time.Since(start).Seconds(),
			TotalChunks:    len(candidates),
			UniqueSources:  len(sources),
		},
	}, nil
}
