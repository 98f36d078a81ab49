package model

type ChunkEmbedding struct {
	ChunkID    int64     `json:"chunk_id"`
	Embedding  []float32 `json:"embedding"`
	ModelName  string    `json:"model_name"`
	TokenCount int       `json:"token_count"`
}

// VectorMatch is one row of a nearest-neighbor search: a chunk and its cosine
// distance to the query vector. Lower distance means more similar.
type VectorMatch struct {
	ChunkID  int64
	Distance float64
}
