// Package pdf provides an Extractor for PDF filings using a pure Go PDF reader.
package pdf
