package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for finrag resources.
	uriScheme = "finrag://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "universe",
		Name:        "universe",
		Description: "Companies and fiscal years covered by the filing index",
		MIMEType:    "application/json",
	}, s.handleUniverseResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index",
		Name:        "index",
		Description: "Filing index statistics",
		MIMEType:    "application/json",
	}, s.handleIndexResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "filings/{ticker}/{year}",
		Name:        "filing-passages",
		Description: "Top passages from one company's 10-K for one fiscal year",
		MIMEType:    "application/json",
	}, s.handleFilingResource)
}

// handleUniverseResource lists the tracked companies and years.
func (s *Server) handleUniverseResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type companyInfo struct {
		Ticker  string   `json:"ticker"`
		CIK     string   `json:"cik"`
		Aliases []string `json:"aliases"`
	}
	info := struct {
		Companies []companyInfo `json:"companies"`
		Years     []string      `json:"years"`
	}{
		Companies: make([]companyInfo, len(s.ports.Universe.Entities)),
		Years:     s.ports.Universe.Periods,
	}
	for i, e := range s.ports.Universe.Entities {
		info.Companies[i] = companyInfo{Ticker: e.Ticker, CIK: e.CIK, Aliases: e.Aliases}
	}

	return jsonResource(req.Params.URI, info)
}

// handleIndexResource reports how many chunks are indexed.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	n, err := s.ports.Index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting index entries: %w", err)
	}
	return jsonResource(req.Params.URI, map[string]int{"entries": n})
}

// handleFilingResource returns the passages retrieved for one filing.
func (s *Server) handleFilingResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	ticker, year := extractFiling(req.Params.URI)
	if ticker == "" || year == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if _, ok := s.ports.Universe.Entity(ticker); !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	results, _, err := s.ports.Search.Search(ctx, ticker+" "+year+" annual report")
	if err != nil {
		return nil, fmt.Errorf("searching filing: %w", err)
	}

	passages := make([]SearchResultOutput, 0, len(results))
	for _, r := range results {
		if r.Chunk.Entity != ticker || r.Chunk.Period != year {
			continue
		}
		passages = append(passages, SearchResultOutput{
			Ticker:  r.Chunk.Entity,
			Year:    r.Chunk.Period,
			Page:    r.Chunk.Page,
			File:    r.Chunk.SourceID,
			Score:   r.Score,
			Content: r.Chunk.Text,
		})
	}
	return jsonResource(req.Params.URI, passages)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractFiling extracts the ticker and year from a URI like finrag://filings/{ticker}/{year}.
func extractFiling(uri string) (ticker, year string) {
	const prefix = uriScheme + "filings/"

	if !strings.HasPrefix(uri, prefix) {
		return "", ""
	}

	parts := strings.Split(strings.TrimPrefix(uri, prefix), "/")
	if len(parts) != 2 {
		return "", ""
	}
	return strings.ToUpper(parts[0]), parts[1]
}
