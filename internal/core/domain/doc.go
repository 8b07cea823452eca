// Package domain contains the core business entities for memogen:
// documents, chunks, retrieval candidates, memos, and feedback records.
// It has no dependencies on infrastructure and defines the sentinel
// errors used across the pipeline.
package domain
