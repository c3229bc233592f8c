package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

// keywordEmbedder maps text to keyword counts, so texts sharing keywords
// score as similar. The last dimension is a constant to avoid zero vectors.
type keywordEmbedder struct {
	keywords []string
	failOn   func(texts []string) bool
	embedErr error
	batches  int
}

func newKeywordEmbedder(keywords ...string) *keywordEmbedder {
	return &keywordEmbedder{keywords: keywords}
}

func (m *keywordEmbedder) vector(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, len(m.keywords)+1)
	for i, k := range m.keywords {
		vec[i] = float32(strings.Count(lower, strings.ToLower(k)))
	}
	vec[len(m.keywords)] = 0.1
	return vec
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batches++
	if m.failOn != nil && m.failOn(texts) {
		return nil, errors.New("provider unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *keywordEmbedder) Dimensions() int              { return len(m.keywords) + 1 }
func (m *keywordEmbedder) ModelName() string            { return "keywords" }
func (m *keywordEmbedder) Ping(_ context.Context) error { return nil }
func (m *keywordEmbedder) Close() error                 { return nil }

// fixedStore returns canned search results regardless of the query.
type fixedStore struct {
	results []domain.ScoredChunk
	err     error
	lastK   int
}

func (m *fixedStore) Upsert(_ context.Context, _ []domain.IndexEntry) error { return nil }

func (m *fixedStore) Search(_ context.Context, _ []float32, k int) ([]domain.ScoredChunk, error) {
	m.lastK = k
	if m.err != nil {
		return nil, m.err
	}
	return truncate(m.results, k), nil
}

func (m *fixedStore) Count(_ context.Context) (int, error) { return len(m.results), nil }
func (m *fixedStore) Reset(_ context.Context) error         { return nil }
func (m *fixedStore) Close() error                          { return nil }

// scriptedLLM replays responses in order and records each request.
type scriptedLLM struct {
	responses []*driven.ChatResponse
	err       error
	calls     [][]driven.ChatMessage
	tools     []domain.ToolDefinition
	opts      driven.ChatOptions
}

func (m *scriptedLLM) Chat(
	_ context.Context, messages []driven.ChatMessage, tools []domain.ToolDefinition, opts driven.ChatOptions,
) (*driven.ChatResponse, error) {
	m.calls = append(m.calls, append([]driven.ChatMessage(nil), messages...))
	m.tools = tools
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	if len(m.calls) > len(m.responses) {
		return &driven.ChatResponse{Content: "script exhausted"}, nil
	}
	return m.responses[len(m.calls)-1], nil
}

func (m *scriptedLLM) ModelName() string            { return "scripted" }
func (m *scriptedLLM) Ping(_ context.Context) error { return nil }
func (m *scriptedLLM) Close() error                 { return nil }

func toolCall(id, name, args string) *driven.ChatResponse {
	return &driven.ChatResponse{ToolCalls: []driven.ToolCall{{ID: id, Name: name, Arguments: args}}}
}

func final(content string) *driven.ChatResponse {
	return &driven.ChatResponse{Content: content}
}

// textExtractor returns the file bytes as page 1, or an error for "bad" content.
type textExtractor struct{}

func (textExtractor) Name() string         { return "text" }
func (textExtractor) Extensions() []string { return []string{".html", ".htm", ".pdf"} }

func (textExtractor) Extract(_ context.Context, data []byte) ([]domain.Page, error) {
	if string(data) == "bad" {
		return nil, errors.New("corrupt document")
	}
	return []domain.Page{{Number: 1, Text: string(data)}}, nil
}

// wordTokenizer treats each whitespace-separated word as one token.
type wordTokenizer struct {
	mu    sync.Mutex
	words []string
	ids   map[string]int
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: make(map[string]int)}
}

func (t *wordTokenizer) Encode(text string) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	fields := strings.Fields(text)
	out := make([]int, len(fields))
	for i, w := range fields {
		id, ok := t.ids[w]
		if !ok {
			id = len(t.words)
			t.ids[w] = id
			t.words = append(t.words, w)
		}
		out[i] = id
	}
	return out
}

func (t *wordTokenizer) Decode(tokens []int) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	parts := make([]string, len(tokens))
	for i, id := range tokens {
		parts[i] = t.words[id]
	}
	return strings.Join(parts, " ")
}

func (t *wordTokenizer) Name() string { return "words" }

// countingRecorder tallies recorder calls.
type countingRecorder struct {
	mu        sync.Mutex
	questions map[string]int
	tools     map[string]int
	toolFails int
	fallbacks int
	searches  int
	batches   int
	failed    int
	chats     int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{questions: map[string]int{}, tools: map[string]int{}}
}

func (r *countingRecorder) QuestionAnswered(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[outcome]++
}

func (r *countingRecorder) ToolInvoked(tool string, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool]++
	if failed {
		r.toolFails++
	}
}

func (r *countingRecorder) RetrievalCompleted(fellBack bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searches++
	if fellBack {
		r.fallbacks++
	}
}

func (r *countingRecorder) BatchIngested(_ int, failed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
	if failed {
		r.failed++
	}
}

func (r *countingRecorder) ObserveChat(_ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats++
}

// fakeFetcher serves filings from a map keyed by TICKER_YEAR.
type fakeFetcher struct {
	filings  map[string]*domain.Filing
	failures map[string]error
	requests []domain.FilingRequest
}

func (f *fakeFetcher) Fetch(_ context.Context, req domain.FilingRequest) (*domain.Filing, error) {
	f.requests = append(f.requests, req)
	key := req.Ticker + "_" + req.Year
	if err, ok := f.failures[key]; ok {
		return nil, err
	}
	if filing, ok := f.filings[key]; ok {
		return filing, nil
	}
	return nil, domain.ErrNoFilingFound
}

// stubPrompts returns a fixed prompt or an error.
type stubPrompts struct {
	prompt string
	err    error
}

func (s stubPrompts) Load(_ string) (string, error) { return s.prompt, s.err }
func (s stubPrompts) Reload()                       {}

func scored(score float64, entity, period string, page int, text string) domain.ScoredChunk {
	return domain.ScoredChunk{
		Score: score,
		Chunk: domain.Chunk{
			ID:       entity + period + text,
			Text:     text,
			SourceID: entity + "_" + period + ".pdf",
			Entity:   entity,
			Period:   period,
			Page:     page,
		},
	}
}
