package db

// Supported vector similarity functions.
const (
	SimilarityCosine     = "cosine"
	SimilarityEuclidean  = "euclidean"
	SimilarityDotProduct = "dotProduct"
)

// VectorIndexDefinition describes a vector search index over one embedding field.
type VectorIndexDefinition struct {
	Collection string
	Name       string
	Path       string
	Dimensions int
	Similarity string
}

// ValidSimilarity reports whether s is a similarity function the index accepts.
func ValidSimilarity(s string) bool {
	switch s {
	case SimilarityCosine, SimilarityEuclidean, SimilarityDotProduct:
		return true
	default:
		return false
	}
}
