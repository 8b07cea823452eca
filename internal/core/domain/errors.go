package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// Rejected immediately, never retried or repaired.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGenerationFailed indicates the inference backend failed while
	// finalising a memo. Fatal to the current request; the caller may
	// retry at its level.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrToolFailure indicates an external tool call failed. The
	// reasoning loop folds it into an error observation and continues;
	// it never aborts a memo request.
	ErrToolFailure = errors.New("tool failure")

	// ErrUnknownSection indicates a feedback record references a memo
	// section that is not in the section catalogue.
	ErrUnknownSection = errors.New("unknown memo section")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Dense retrieval is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the completion service is not
	// configured. Memo generation requires it.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRerankUnavailable indicates the rerank backend is missing or
	// failing. Retrieval degrades to fusion order.
	ErrRerankUnavailable = errors.New("rerank service unavailable")

	// ErrDimensionMismatch indicates a vector's dimensionality does
	// not match the index. At open time this is fatal: it means the
	// embedding model changed and a full reindex is required.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
