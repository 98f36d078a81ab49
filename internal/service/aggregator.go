package service

import (
	"sort"
	"strings"

	"github.com/vinayk94/iso-assist/internal/model"
)

// SourceAggregator folds retrieved chunk candidates into one entry per
// document. Identity is the document id, never the title: distinct documents
// can carry the same title and must stay separate sources.
type SourceAggregator struct {
	maxHighlights int
}

func NewSourceAggregator(maxHighlights int) *SourceAggregator {
	if maxHighlights <= 0 {
		maxHighlights = 3
	}
	return &SourceAggregator{maxHighlights: maxHighlights}
}

func (a *SourceAggregator) Aggregate(candidates []model.RetrievedCandidate) []model.Source {
	type group struct {
		source     model.Source
		candidates []model.RetrievedCandidate
		order      int
	}
	groups := make(map[int64]*group)
	var ordered []*group

	for _, cand := range candidates {
		g, ok := groups[cand.DocumentID]
		if !ok {
			g = &group{
				source: model.Source{
					DocumentID:  cand.DocumentID,
					Title:       cand.Title,
					URL:         cand.URL,
					ContentType: cand.ContentType,
				},
				order: len(ordered),
			}
			groups[cand.DocumentID] = g
			ordered = append(ordered, g)
		}
		if cand.Relevance > g.source.Relevance {
			g.source.Relevance = cand.Relevance
		}
		g.candidates = append(g.candidates, cand)
	}

	sources := make([]model.Source, 0, len(ordered))
	for _, g := range ordered {
		g.source.Highlights = a.buildHighlights(g.candidates)
		sources = append(sources, g.source)
	}

	// Best evidence first; document id breaks ties so equal-relevance
	// sources always come out in the same order.
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].Relevance != sources[j].Relevance {
			return sources[i].Relevance > sources[j].Relevance
		}
		return sources[i].DocumentID < sources[j].DocumentID
	})
	return sources
}

// buildHighlights turns a group's chunk texts into at most maxHighlights
// cleaned, deduplicated excerpts, best-scoring chunks first.
func (a *SourceAggregator) buildHighlights(candidates []model.RetrievedCandidate) []string {
	byRelevance := make([]model.RetrievedCandidate, len(candidates))
	copy(byRelevance, candidates)
	sort.SliceStable(byRelevance, func(i, j int) bool {
		return byRelevance[i].Relevance > byRelevance[j].Relevance
	})

	highlights := make([]string, 0, a.maxHighlights)
	seen := make(map[string]struct{})
	for _, cand := range byRelevance {
		excerpt := cleanExcerpt(cand.Content)
		if excerpt == "" {
			continue
		}
		key := normalizeExcerptKey(excerpt)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		highlights = append(highlights, excerpt)
		if len(highlights) >= a.maxHighlights {
			break
		}
	}
	return highlights
}

func normalizeExcerptKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
