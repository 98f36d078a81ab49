package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/vinayk94/iso-assist/internal/ai"
	"github.com/vinayk94/iso-assist/internal/model"
	appErr "github.com/vinayk94/iso-assist/internal/pkg/errors"
	"github.com/vinayk94/iso-assist/internal/pkg/resilience"
)

// AnswerGenerator assembles the grounded prompt and calls the generation
// backend. It never invents an answer: backend failure surfaces as
// ErrGeneration after the retry budget is spent.
type AnswerGenerator struct {
	gen     ai.IGenerator
	exec    *resilience.Executor
	timeout time.Duration
}

func NewAnswerGenerator(gen ai.IGenerator, exec *resilience.Executor, timeout time.Duration) *AnswerGenerator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AnswerGenerator{gen: gen, exec: exec, timeout: timeout}
}

func (g *AnswerGenerator) Generate(ctx context.Context, query string, sources []model.Source) (string, error) {
	prompt := buildPrompt(query, sources)

	var answer string
	err := g.exec.Execute(ctx, "generate_answer", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()
		var err error
		answer, err = g.gen.Generate(callCtx, prompt)
		return err
	}, transientClassifier)
	if err != nil {
		logutil.GetLogger(ctx).Error("generation backend failed", zap.Error(err))
		return "", fmt.Errorf("%w: %s", appErr.ErrGeneration, err)
	}
	// An empty completion is a valid, if unhelpful, answer.
	return answer, nil
}

func buildPrompt(query string, sources []model.Source) string {
	if len(sources) == 0 {
		return fmt.Sprintf(`You are an expert assistant for ERCOT registration and qualification processes.
No documentation sources are available for this question, so answer from general knowledge.

Question: %s

Guidelines:
1. Start with a direct, clear answer
2. State explicitly that the answer is not grounded in ERCOT documentation
3. Be concise

Answer:`, query)
	}

	blocks := make([]string, 0, len(sources))
	for _, src := range sources {
		blocks = append(blocks, fmt.Sprintf("[%s]:\n%s", src.Title, strings.Join(src.Highlights, "\n")))
	}

	return fmt.Sprintf(`You are an expert assistant for ERCOT registration and qualification processes.
Answer the following question using ONLY the provided sources.

Question: %s

Guidelines:
1. Start with a direct, clear answer
2. Use numbered lists for steps or processes
3. Always cite sources using [Document Title] format - cite every factual claim
4. Organize information logically
5. If sources lack information, be explicit about it
6. Be concise but comprehensive

Sources:
%s

Answer the question step by step, with frequent citations:`, query, strings.Join(blocks, "\n\n"))
}

// transientClassifier marks backend errors retryable unless the provider is
// unconfigured or the caller is already gone.
func transientClassifier(err error) resilience.ErrorClassification {
	switch {
	case errors.Is(err, ai.ErrUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	default:
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
}
