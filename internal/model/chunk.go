package model

type Chunk struct {
	ID         int64  `json:"id"`
	DocumentID int64  `json:"document_id"`
	Content    string `json:"content"`
	Position   int    `json:"position"`
}
