package service

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// A textPass is a pure string transform. Cleanup is an ordered list of
// passes rather than ad-hoc replace chains, so the ordering constraint
// around citation offset capture stays explicit: every pass that can change
// string length runs before offsets are recorded, never after.
type textPass func(string) string

var (
	spaceRunPattern   = regexp.MustCompile(`[ \t]+`)
	newlineRunPattern = regexp.MustCompile(`\n{3,}`)
	wordPattern       = regexp.MustCompile(`\S+`)
)

// segmentPasses clean the plain-text segments of a generated answer between
// citation markers. They must be safe under concatenation: no trimming at
// segment edges, only collapsing inside the segment.
var segmentPasses = []textPass{
	collapseSpaceRuns,
	collapseNewlineRuns,
	collapseRepeatedWords,
}

// excerptPasses clean candidate chunk text into a displayable highlight.
var excerptPasses = []textPass{
	markdownToPlain,
	collapseSpaceRuns,
	collapseRepeatedWords,
	strings.TrimSpace,
}

func applyPasses(s string, passes []textPass) string {
	for _, pass := range passes {
		s = pass(s)
	}
	return s
}

func cleanSegment(s string) string {
	return applyPasses(s, segmentPasses)
}

func cleanExcerpt(s string) string {
	return applyPasses(s, excerptPasses)
}

func collapseSpaceRuns(s string) string {
	return spaceRunPattern.ReplaceAllString(s, " ")
}

func collapseNewlineRuns(s string) string {
	return newlineRunPattern.ReplaceAllString(s, "\n\n")
}

// collapseRepeatedWords folds runs of the same adjacent word ("the the" ->
// "the"). Idempotent: a second application is a no-op.
func collapseRepeatedWords(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	prevWord := ""
	for _, loc := range wordPattern.FindAllStringIndex(s, -1) {
		word := s[loc[0]:loc[1]]
		if word == prevWord {
			// Drop the word and the separator that preceded it.
			last = loc[1]
			continue
		}
		b.WriteString(s[last:loc[1]])
		last = loc[1]
		prevWord = word
	}
	b.WriteString(s[last:])
	return b.String()
}

// markdownToPlain flattens markdown structure to the raw text content.
func markdownToPlain(s string) string {
	md := goldmark.New()
	source := []byte(s)
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	var b strings.Builder
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	out := b.String()
	if strings.TrimSpace(out) == "" {
		return s
	}
	return out
}
