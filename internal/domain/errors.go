package domain

import "errors"

var (
	// ErrThreadNotFound signals a thread missing from the community service.
	ErrThreadNotFound = errors.New("thread not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals an answer generator failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrIndexUnavailable signals a vector index transport failure.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrInvalidRequest signals a request that failed validation before any pipeline ran.
	ErrInvalidRequest = errors.New("invalid request")
)
