// Package mcp provides an MCP (Model Context Protocol) server adapter for finrag.
// It lets AI assistants ask filing questions and call the search and
// calculator tools directly.
package mcp

import "errors"

var (
	// ErrMissingAsker is returned when the question answering service is not provided.
	ErrMissingAsker = errors.New("mcp: asker is required")

	// ErrMissingToolService is returned when the tool service is not provided.
	ErrMissingToolService = errors.New("mcp: tool service is required")

	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")
)
