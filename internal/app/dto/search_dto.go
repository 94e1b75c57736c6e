package dto

// RecordSearchRequest represents the request to remember a search query
type RecordSearchRequest struct {
	Query string `json:"query"`
}

// RecentSearchesResponse lists recent queries, newest first
type RecentSearchesResponse struct {
	Searches []string `json:"searches"`
}
