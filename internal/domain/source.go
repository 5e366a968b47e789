package domain

// Source is a reference to a retrieved passage surfaced with an answer.
// Sources are computed per request and never persisted.
type Source struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content,omitempty"`
	Score   float64 `json:"score,omitempty"`
}
