package domain

// VectorConfig describes how company descriptions were vectorized when the
// embeddings collection was built. Queries must be embedded the same way.
type VectorConfig struct {
	Model            string
	Dimensions       int
	Similarity       string
	QueryInstruction string
}

// DefaultVectorConfig returns settings matching nomic-embed-text v1.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:            "nomic-embed-text",
		Dimensions:       768,
		Similarity:       "cosine",
		QueryInstruction: "",
	}
}
