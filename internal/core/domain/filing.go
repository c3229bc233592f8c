package domain

// Page is one unit of extracted text. Unpaged formats yield a single page 1.
type Page struct {
	Number int
	Text   string
}

// FilingRequest identifies one annual filing to fetch.
type FilingRequest struct {
	Ticker string
	CIK    string
	Year   string
}

// Filing is a primary filing document as returned by the filing collaborator.
type Filing struct {
	Ticker string
	Year   string

	// Ext is the declared content type: "pdf" or "html".
	Ext string

	// URL is where the document was fetched from.
	URL string

	Data []byte
}

// FileName returns the ENTITY_PERIOD.ext name used by ingestion.
func (f *Filing) FileName() string {
	return f.Ticker + "_" + f.Year + "." + f.Ext
}

// DownloadReport summarises a filing download run.
type DownloadReport struct {
	Downloaded []string
	Skipped    []string
	Missing    []string
}
