// Package html provides an Extractor for HTML filings.
// It walks the parsed document tree, skipping scripts and styles, and
// returns the visible text as a single page.
package html
