package model

const (
	ContentTypeWeb      = "web"
	ContentTypeDocument = "document"
)

type Document struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
	Ctime       int64  `json:"ctime"`
}
