package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollapseRepeatedWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no repeats", in: "the quick brown fox", want: "the quick brown fox"},
		{name: "single repeat", in: "the the quick fox", want: "the quick fox"},
		{name: "triple repeat", in: "go go go team", want: "go team"},
		{name: "case sensitive", in: "The the answer", want: "The the answer"},
		{name: "repeat at end", in: "ready set set", want: "ready set"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collapseRepeatedWords(tt.in)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, collapseRepeatedWords(got), "must be idempotent")
		})
	}
}

func TestCleanSegmentKeepsEdges(t *testing.T) {
	// Segments are concatenated around citation titles, so cleanup must not
	// trim the edges away.
	require.Equal(t, " hi ", cleanSegment("   hi   "))
	require.Equal(t, "a b", cleanSegment("a \t b"))
	require.Equal(t, "a\n\nb", cleanSegment("a\n\n\n\n\nb"))
}

func TestCleanExcerpt(t *testing.T) {
	require.Equal(t, "Heading body text", cleanExcerpt("# Heading\n\nbody text"))
	require.Equal(t, "one two", cleanExcerpt("  one    two  "))
	require.Equal(t, "", cleanExcerpt("   "))
	require.Equal(t, "item a item b", cleanExcerpt("- item a\n- item b"))
}
