package retrieval

import "context"

// Document is a scored candidate passage in the index's ranking order.
type Document struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Summary string  `json:"summary"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Index is the external search index. Implementations combine lexical
// matching and vector similarity; results come back in the index's own
// ranking order and are not re-sorted locally.
type Index interface {
	Search(ctx context.Context, queryText string, queryVector []float32, topK int) ([]Document, error)
}
