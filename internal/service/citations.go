package service

import (
	"regexp"
	"strings"

	"github.com/vinayk94/iso-assist/internal/model"
	appErr "github.com/vinayk94/iso-assist/internal/pkg/errors"
)

// markerPattern matches an inline citation marker: a bracketed source title
// emitted by the generation backend, e.g. "[Resource Handbook]".
var markerPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// CitationExtractor resolves citation markers in generated text against the
// aggregated source list. Markers that resolve are replaced with the bare
// source title and recorded as citations; markers that don't resolve pass
// through untouched as literal text.
type CitationExtractor struct{}

func NewCitationExtractor() *CitationExtractor {
	return &CitationExtractor{}
}

// Extract walks the raw text left to right exactly once. Text between
// markers is cleaned and appended segment by segment, so every recorded
// offset points into the final output; nothing changes the buffer length
// after a citation position is captured.
func (e *CitationExtractor) Extract(raw string, sources []model.Source) (string, []model.Citation, error) {
	titles := make(map[string]struct{}, len(sources))
	for _, src := range sources {
		titles[src.Title] = struct{}{}
	}

	var out strings.Builder
	out.Grow(len(raw))
	var citations []model.Citation

	last := 0
	for _, loc := range markerPattern.FindAllStringSubmatchIndex(raw, -1) {
		start, end := loc[0], loc[1]
		title := raw[loc[2]:loc[3]]

		if _, ok := titles[title]; !ok {
			// Hallucinated or pruned source: the marker stays inert text.
			continue
		}

		out.WriteString(cleanSegment(raw[last:start]))
		startIdx := out.Len()
		out.WriteString(title)
		citations = append(citations, model.Citation{
			Title:    title,
			StartIdx: startIdx,
			EndIdx:   out.Len(),
		})
		last = end
	}
	out.WriteString(cleanSegment(raw[last:]))

	clean := out.String()
	if err := validateCitations(clean, citations); err != nil {
		return "", nil, err
	}
	if citations == nil {
		citations = []model.Citation{}
	}
	return clean, citations, nil
}

// validateCitations enforces extraction atomicity: either every span indexes
// the final text correctly, or the whole result is rejected.
func validateCitations(clean string, citations []model.Citation) error {
	prevEnd := 0
	for _, c := range citations {
		if c.StartIdx < prevEnd || c.StartIdx >= c.EndIdx || c.EndIdx > len(clean) {
			return appErr.ErrFormatting
		}
		if clean[c.StartIdx:c.EndIdx] != c.Title {
			return appErr.ErrFormatting
		}
		prevEnd = c.EndIdx
	}
	return nil
}
