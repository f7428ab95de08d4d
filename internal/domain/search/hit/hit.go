package hit

// Hit is a single vector search match, as returned by the index.
type Hit struct {
	documentID string
	name       string
	score      float64
}

// New creates a search hit.
func New(documentID, name string, score float64) Hit {
	return Hit{documentID: documentID, name: name, score: score}
}

// DocumentID returns the id of the joined record this hit refers to.
func (h *Hit) DocumentID() string { return h.documentID }

// Name returns the display name (company name).
func (h *Hit) Name() string { return h.name }

// Score returns the similarity score reported by the index.
func (h *Hit) Score() float64 { return h.score }
