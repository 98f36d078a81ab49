package model

// RetrievedCandidate is one chunk returned by similarity search, hydrated
// with its parent document metadata. It only lives for one query.
type RetrievedCandidate struct {
	ChunkID     int64
	DocumentID  int64
	Content     string
	Title       string
	URL         string
	ContentType string
	FileName    string
	Distance    float64
	Relevance   float64
}

// Citation ties a span of the final answer text to a source title. Offsets
// are byte indexes into the answer, so answer[StartIdx:EndIdx] is exactly the
// rendered title.
type Citation struct {
	Title    string `json:"title"`
	StartIdx int    `json:"start_idx"`
	EndIdx   int    `json:"end_idx"`
}

// Source is one document-level, deduplicated entry in the response.
type Source struct {
	DocumentID  int64    `json:"document_id"`
	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	ContentType string   `json:"type"`
	Relevance   float64  `json:"relevance"`
	Highlights  []string `json:"highlights"`
}

type QueryMetadata struct {
	ProcessingTime float64 `json:"processing_time"`
	TotalChunks    int     `json:"total_chunks"`
	UniqueSources  int     `json:"unique_sources"`
}

type QueryResponse struct {
	Answer    string        `json:"answer"`
	Citations []Citation    `json:"citations"`
	Sources   []Source      `json:"sources"`
	Metadata  QueryMetadata `json:"metadata"`
	Error     string        `json:"error,omitempty"`
}
