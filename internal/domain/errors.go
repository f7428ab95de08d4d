package domain

import "errors"

var (
	// ErrInvalidQuery signals a rejected search prompt.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrRecordNotFound signals a search hit whose joined record is missing.
	ErrRecordNotFound = errors.New("joined record not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrSearchFailed signals a vector search backend failure.
	ErrSearchFailed = errors.New("vector search failed")
)
