package api

// SearchRequest is the body of POST /search. GET /search accepts the same
// fields as query parameters.
type SearchRequest struct {
	Query           string `json:"query"`
	ResultsToReturn int    `json:"results_to_return,omitempty"`
	UserTable       bool   `json:"user_table,omitempty"`
}
