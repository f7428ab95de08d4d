package db

// VectorQuery is the input for a $vectorSearch aggregation.
type VectorQuery struct {
	Collection    string
	IndexName     string
	Path          string
	Vector        []float32
	NumCandidates int
	Limit         int
	ReturnFields  []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit. Fields holds the projected return
// fields rendered as strings (ObjectIDs as hex).
type SearchEntry struct {
	Score  float64
	Fields map[string]string
}
