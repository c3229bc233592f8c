// Package normalisers provides Extractor implementations that turn filing
// documents into page text. Each extractor handles a set of file extensions.
//
// Extractors are registered with the Registry at startup.
package normalisers
