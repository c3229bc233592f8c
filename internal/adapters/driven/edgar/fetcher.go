// Package edgar fetches 10-K filings from the SEC EDGAR browse interface.
package edgar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
	"github.com/custodia-labs/finrag/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.FilingFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultSiteURL      = "https://www.sec.gov"
	DefaultTimeout      = 60 * time.Second
	maxFilingSize int64 = 200 << 20
)

// Config holds configuration for the EDGAR fetcher.
type Config struct {
	// BrowseURL is the company browse endpoint (default: domain.DefaultSECBrowseURL).
	BrowseURL string

	// SiteURL prefixes the relative links found on EDGAR pages (default: https://www.sec.gov).
	SiteURL string

	// UserAgent is sent on every request. EDGAR rejects anonymous clients.
	UserAgent string

	// RequestsPerSecond paces all requests (default: 2).
	RequestsPerSecond float64

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration
}

// Fetcher locates and downloads the primary 10-K document for a company year.
type Fetcher struct {
	client    *http.Client
	browseURL string
	siteURL   string
	userAgent string
	limiter   *RateLimiter
}

// NewFetcher creates a new EDGAR fetcher.
func NewFetcher(cfg Config) (*Fetcher, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("%w: edgar user agent is required", domain.ErrInvalidConfig)
	}
	if cfg.BrowseURL == "" {
		cfg.BrowseURL = domain.DefaultSECBrowseURL
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = DefaultSiteURL
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		browseURL: cfg.BrowseURL,
		siteURL:   strings.TrimSuffix(cfg.SiteURL, "/"),
		userAgent: cfg.UserAgent,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond),
	}, nil
}

// Fetch finds the latest 10-K filed on or before 31 December of req.Year
// and downloads its primary document, preferring the PDF rendition.
func (f *Fetcher) Fetch(ctx context.Context, req domain.FilingRequest) (*domain.Filing, error) {
	browse := fmt.Sprintf("%s?CIK=%s&type=10-K&dateb=%s1231&owner=exclude&count=100",
		f.browseURL, url.QueryEscape(req.CIK), url.QueryEscape(req.Year))

	page, err := f.get(ctx, browse)
	if err != nil {
		return nil, fmt.Errorf("browse %s %s: %w", req.Ticker, req.Year, err)
	}
	docsHref := documentsLink(page)
	if docsHref == "" {
		return nil, fmt.Errorf("%s %s: no filing index: %w", req.Ticker, req.Year, domain.ErrNoFilingFound)
	}
	logger.Debug("edgar: %s %s filing index %s", req.Ticker, req.Year, docsHref)

	index, err := f.get(ctx, f.absolute(docsHref))
	if err != nil {
		return nil, fmt.Errorf("filing index %s %s: %w", req.Ticker, req.Year, err)
	}
	fileHref := primaryDocument(index)
	if fileHref == "" {
		return nil, fmt.Errorf("%s %s: no primary document: %w", req.Ticker, req.Year, domain.ErrNoFilingFound)
	}

	fileURL := f.absolute(fileHref)
	data, err := f.get(ctx, fileURL)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", fileURL, err)
	}

	ext := "html"
	if strings.HasSuffix(strings.ToLower(fileHref), ".pdf") {
		ext = "pdf"
	}

	return &domain.Filing{
		Ticker: req.Ticker,
		Year:   req.Year,
		Ext:    ext,
		URL:    fileURL,
		Data:   data,
	}, nil
}

func (f *Fetcher) absolute(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return f.siteURL + href
}

func (f *Fetcher) get(ctx context.Context, target string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		f.limiter.RecordRateLimited(resp.Header.Get("Retry-After"))
		return nil, domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("edgar returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxFilingSize))
}

// documentsLink returns the href of the first a#documentsbutton.
func documentsLink(page []byte) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	var href string
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "a" && attr(n, "id") == "documentsbutton" {
			href = attr(n, "href")
			return false
		}
		return true
	})
	return href
}

// primaryDocument scans table.tableFile rows. A .pdf whose type cell names
// a 10-K wins; otherwise the first .htm or .html link is used.
func primaryDocument(page []byte) string {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return ""
	}

	var pdfHref, htmHref string
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Data != "table" || !hasClass(n, "tableFile") {
			return true
		}
		for _, row := range descendants(n, "tr") {
			cells := children(row, "td")
			if len(cells) < 3 {
				continue
			}
			docType := ""
			if len(cells) > 3 {
				docType = strings.ToLower(strings.TrimSpace(textOf(cells[3])))
			}
			links := descendants(cells[2], "a")
			if len(links) == 0 {
				continue
			}
			href := attr(links[0], "href")
			if href == "" {
				continue
			}
			lower := strings.ToLower(href)
			if strings.HasSuffix(lower, ".pdf") && strings.Contains(docType, "10-k") {
				pdfHref = href
			}
			if (strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html")) && htmHref == "" {
				htmHref = href
			}
		}
		return false
	})

	if pdfHref != "" {
		return pdfHref
	}
	return htmHref
}

// walk visits nodes depth-first until visit returns false for a subtree.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func descendants(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, func(m *html.Node) bool {
			if m.Type == html.ElementNode && m.Data == tag {
				out = append(out, m)
			}
			return true
		})
	}
	return out
}

func children(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
	}
	return out
}

func textOf(n *html.Node) string {
	var b strings.Builder
	walk(n, func(m *html.Node) bool {
		if m.Type == html.TextNode {
			b.WriteString(m.Data)
		}
		return true
	})
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
