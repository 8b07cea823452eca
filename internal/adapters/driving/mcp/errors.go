// Package mcp provides an MCP (Model Context Protocol) server adapter
// for memogen. It lets AI assistants query indexed documents, generate
// credit memos, and submit review feedback.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
