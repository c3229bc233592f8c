package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finrag/internal/core/domain"
)

// runeTokenizer maps every rune to one token.
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) []int {
	runes := []rune(text)
	out := make([]int, len(runes))
	for i, r := range runes {
		out[i] = int(r)
	}
	return out
}

func (runeTokenizer) Decode(tokens []int) string {
	runes := make([]rune, len(tokens))
	for i, t := range tokens {
		runes[i] = rune(t)
	}
	return string(runes)
}

func (runeTokenizer) Name() string { return "runes" }

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c, err := New(runeTokenizer{})
		require.NoError(t, err)
		assert.Equal(t, DefaultChunkTokens, c.chunkTokens)
		assert.Equal(t, DefaultOverlapTokens, c.overlapTokens)
		assert.Equal(t, 400, c.Step())
	})

	t.Run("custom sizes", func(t *testing.T) {
		c, err := New(runeTokenizer{}, WithChunkTokens(50), WithOverlapTokens(10))
		require.NoError(t, err)
		assert.Equal(t, 40, c.Step())
	})

	t.Run("overlap equal to chunk is a config error", func(t *testing.T) {
		_, err := New(runeTokenizer{}, WithChunkTokens(100), WithOverlapTokens(100))
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("overlap above chunk is a config error", func(t *testing.T) {
		_, err := New(runeTokenizer{}, WithChunkTokens(100), WithOverlapTokens(150))
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("negative overlap is a config error", func(t *testing.T) {
		_, err := New(runeTokenizer{}, WithOverlapTokens(-1))
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("nil tokenizer", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})
}

func TestWindows_Coverage(t *testing.T) {
	cases := []struct{ length, chunk, overlap int }{
		{0, 10, 2},
		{1, 10, 2},
		{10, 10, 2},
		{11, 10, 2},
		{95, 10, 3},
		{1000, 500, 100},
		{1234, 500, 100},
		{7, 3, 0},
	}

	for _, tc := range cases {
		windows, err := Windows(seq(tc.length), tc.chunk, tc.overlap)
		require.NoError(t, err)

		step := tc.chunk - tc.overlap
		covered := make([]bool, tc.length)
		for i, w := range windows {
			assert.LessOrEqual(t, len(w), tc.chunk)
			require.NotEmpty(t, w)
			assert.Equal(t, i*step, w[0], "window %d starts at its step offset", i)
			for _, tok := range w {
				covered[tok] = true
			}
		}
		for i, ok := range covered {
			assert.True(t, ok, "token %d of %d not covered", i, tc.length)
		}
	}
}

func TestWindows_Overlap(t *testing.T) {
	chunk, overlap := 10, 4
	windows, err := Windows(seq(57), chunk, overlap)
	require.NoError(t, err)
	require.Greater(t, len(windows), 2)

	for i := 0; i+1 < len(windows); i++ {
		cur, next := windows[i], windows[i+1]
		if len(cur) < chunk {
			continue
		}
		tail := cur[len(cur)-overlap:]
		head := next[:min(overlap, len(next))]
		assert.Equal(t, tail[:len(head)], head, "window %d overlap", i)
	}
}

func TestWindows_LastWindowShorter(t *testing.T) {
	windows, err := Windows(seq(12), 5, 1)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{0, 1, 2, 3, 4}, {4, 5, 6, 7, 8}, {8, 9, 10, 11}}, windows)
}

func TestWindows_InvalidConfig(t *testing.T) {
	_, err := Windows(seq(10), 5, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = Windows(seq(10), 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestChunker_Chunk(t *testing.T) {
	c, err := New(runeTokenizer{}, WithChunkTokens(4), WithOverlapTokens(1))
	require.NoError(t, err)

	assert.Equal(t, []string{"abcd", "defg", "ghij", "j"}, c.Chunk("abcdefghij"))
	assert.Empty(t, c.Chunk(""))
}

func TestParseFilingName(t *testing.T) {
	tests := []struct {
		name   string
		entity string
		period string
	}{
		{"NVDA_2023.pdf", "NVDA", "2023"},
		{"MSFT_2022.html", "MSFT", "2022"},
		{"GOOGL_2024.htm", "GOOGL", "2024"},
		{"data/NVDA_2023.pdf", "NVDA", "2023"},
		{"NVDA.pdf", domain.UnknownEntity, domain.UnknownPeriod},
		{"NVDA_2023_amended.pdf", domain.UnknownEntity, domain.UnknownPeriod},
		{"_2023.pdf", domain.UnknownEntity, domain.UnknownPeriod},
		{"report.html", domain.UnknownEntity, domain.UnknownPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, period := ParseFilingName(tt.name)
			assert.Equal(t, tt.entity, entity)
			assert.Equal(t, tt.period, period)
		})
	}
}

func TestChunker_BuildChunks(t *testing.T) {
	c, err := New(runeTokenizer{}, WithChunkTokens(8), WithOverlapTokens(2))
	require.NoError(t, err)

	pages := []domain.Page{
		{Number: 1, Text: "operating margin grew"},
		{Number: 2, Text: ""},
		{Number: 3, Text: "revenue"},
	}

	chunks := c.BuildChunks("NVDA_2023.pdf", pages)
	require.NotEmpty(t, chunks)

	ids := make(map[string]bool)
	for _, ch := range chunks {
		assert.Equal(t, "NVDA", ch.Entity)
		assert.Equal(t, "2023", ch.Period)
		assert.Equal(t, "NVDA_2023.pdf", ch.SourceID)
		assert.NotEqual(t, 2, ch.Page)
		assert.NotEmpty(t, strings.TrimSpace(ch.Text))
		assert.LessOrEqual(t, len([]rune(ch.Text)), 8)
		assert.False(t, ids[ch.ID], "duplicate id")
		ids[ch.ID] = true
	}
	assert.Equal(t, 3, chunks[len(chunks)-1].Page)
}

func TestChunker_BuildChunks_DropsWhitespaceWindows(t *testing.T) {
	c, err := New(runeTokenizer{}, WithChunkTokens(4), WithOverlapTokens(0))
	require.NoError(t, err)

	chunks := c.BuildChunks("report.html", []domain.Page{{Number: 1, Text: "abcd        efgh"}})

	require.Len(t, chunks, 2)
	assert.Equal(t, domain.UnknownEntity, chunks[0].Entity)
	assert.Equal(t, domain.UnknownPeriod, chunks[0].Period)
	assert.Equal(t, "abcd", chunks[0].Text)
	assert.Equal(t, "efgh", chunks[1].Text)
}
