package api

// SearchResult is one ranked match. Metadata fields stored as the "unknown"
// sentinel are omitted from responses; the similarity score is always
// present, rounded to two decimal places.
type SearchResult struct {
	Title           string  `json:"Title,omitempty"`
	Filename        string  `json:"Filename,omitempty"`
	URL             string  `json:"URL,omitempty"`
	PublicationDate string  `json:"PublicationDate,omitempty"`
	Tags            string  `json:"Tags,omitempty"`
	Author          string  `json:"Author,omitempty"`
	EmbeddingText   string  `json:"embedding_text,omitempty"`
	SimilarityScore float64 `json:"similarity_score"`
}

// SearchResponse wraps the ranked results with the query latency in seconds.
type SearchResponse struct {
	TimeElapsed float64        `json:"time_elapsed"`
	Results     []SearchResult `json:"results"`
}

// ErrorResponse is the structured error body returned when a search fails.
type ErrorResponse struct {
	Error string `json:"error"`
}
