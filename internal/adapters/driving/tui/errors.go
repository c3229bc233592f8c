package tui

import "errors"

// ErrMissingAsker is returned when the asker is not provided.
var ErrMissingAsker = errors.New("tui: asker is required")

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("tui: search service is required")
