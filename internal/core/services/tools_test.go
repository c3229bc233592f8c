package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

func newTestToolset(results []domain.ScoredChunk) (*Toolset, *fixedStore) {
	r, store := newTestRetriever(results)
	return NewToolset(NewSearchTool(r), NewCalculatorTool(NewCalculator())), store
}

func TestToolset_Definitions(t *testing.T) {
	ts, _ := newTestToolset(nil)

	defs := ts.Definitions()

	require.Len(t, defs, 2)
	assert.Equal(t, "sec_10k_search", defs[0].Name)
	assert.Equal(t, "Search over chunked 10-K filings for GOOGL, MSFT, NVDA (years 2022-2024). "+
		"Use this to find operating margin, revenue, segment results, risks, and MD&A insights. "+
		"The tool automatically filters by company and year if mentioned in the query. "+
		"Examples: 'Microsoft revenue 2023', 'NVIDIA operating margin', 'Google business segments 2024'",
		defs[0].Description)
	assert.Equal(t, "calculator", defs[1].Name)
	assert.Equal(t, "Evaluate simple arithmetic expressions, e.g., '(27.0-20.1)/20.1*100' to compute growth percent.",
		defs[1].Description)
	assert.Equal(t, []string{"query"}, defs[0].Parameters["required"])
	assert.Equal(t, []string{"expression"}, defs[1].Parameters["required"])
}

func TestToolset_InvokeSearch(t *testing.T) {
	ts, _ := newTestToolset([]domain.ScoredChunk{
		scored(0.9, "NVDA", "2023", 41, "Operating income was $4.2 billion."),
		scored(0.8, "MSFT", "2023", 7, "Revenue increased 7%."),
	})

	out, err := ts.Invoke(t.Context(), SearchToolName, `{"query":"operating income"}`)

	require.NoError(t, err)
	want := "Document 1:\nCompany: NVDA\nYear: 2023\nPage: 41\nFile: NVDA_2023.pdf\nContent: Operating income was $4.2 billion.\n---\n" +
		"Document 2:\nCompany: MSFT\nYear: 2023\nPage: 7\nFile: MSFT_2023.pdf\nContent: Revenue increased 7%.\n---"
	assert.Equal(t, want, out)
}

func TestToolset_InvokeSearch_NoResults(t *testing.T) {
	ts, _ := newTestToolset(nil)

	out, err := ts.Invoke(t.Context(), SearchToolName, "anything")

	require.NoError(t, err)
	assert.Equal(t, "No relevant documents found.", out)
}

func TestToolset_InvokeSearch_IndexError(t *testing.T) {
	rec := newCountingRecorder()
	ts, store := newTestToolset(nil)
	ts.SetRecorder(rec)
	store.err = errors.New("index closed")

	out, err := ts.Invoke(t.Context(), SearchToolName, "anything")

	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "index closed")
	assert.Equal(t, 1, rec.toolFails)
}

func TestToolset_InvokeSearch_EmbeddingError(t *testing.T) {
	embedder := newKeywordEmbedder("x")
	embedder.embedErr = fmt.Errorf("%w: 429 quota exceeded", domain.ErrRateLimited)
	retriever := NewRetriever(NewIndex(embedder, &fixedStore{}), domain.DefaultUniverse(), domain.DefaultAppSettings().Retrieval)
	ts := NewToolset(NewSearchTool(retriever))

	_, err := ts.Invoke(t.Context(), SearchToolName, "NVIDIA revenue 2023")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestToolset_InvokeCalculator(t *testing.T) {
	rec := newCountingRecorder()
	ts, _ := newTestToolset(nil)
	ts.SetRecorder(rec)

	invoke := func(input string) string {
		out, err := ts.Invoke(t.Context(), CalculatorToolName, input)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, "4", invoke(`{"expression":"2+2"}`))
	assert.Equal(t, "9", invoke("3*3"))
	assert.Equal(t, "1.5", invoke(`"3/2"`))
	assert.Contains(t, invoke(`{"expression":"open('/etc/passwd')"}`), "Error: ")

	assert.Equal(t, 4, rec.tools[CalculatorToolName])
	assert.Equal(t, 1, rec.toolFails)
}

func TestToolset_InvokeUnknownTool(t *testing.T) {
	ts, _ := newTestToolset(nil)

	out, err := ts.Invoke(t.Context(), "shell", "ls")

	require.NoError(t, err)
	assert.Equal(t, `Error: unknown tool "shell"`, out)
}

func TestParseResults_RoundTrip(t *testing.T) {
	chunks := []domain.Chunk{
		{Entity: "GOOGL", Period: "2024", Page: 3, SourceID: "GOOGL_2024.html", Text: "Segment results\nGoogle Services"},
		{Entity: "MSFT", Period: "2022", Page: 12, SourceID: "MSFT_2022.pdf", Text: "Cloud revenue"},
	}

	got := ParseResults(FormatResults(chunks))

	assert.Equal(t, chunks, got)
	assert.Empty(t, ParseResults(NoResultsText))
}

func TestArgument(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "json object", input: `{"query":"NVIDIA 2023"}`, want: "NVIDIA 2023"},
		{name: "langchain input key", input: `{"input":"NVIDIA 2023"}`, want: "NVIDIA 2023"},
		{name: "json string", input: `"NVIDIA 2023"`, want: "NVIDIA 2023"},
		{name: "bare", input: " NVIDIA 2023 ", want: "NVIDIA 2023"},
		{name: "broken json", input: `{"query":`, want: `{"query":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, argument(tt.input, "query"))
		})
	}
}
