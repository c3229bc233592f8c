package domain

import "encoding/json"

// MaxExcerptLength bounds AnswerEnvelope source excerpts.
const MaxExcerptLength = 200

// AnswerEnvelope is the final structured answer for one question.
// Field order matches the serialised key order.
type AnswerEnvelope struct {
	Query      string   `json:"query"`
	Answer     string   `json:"answer"`
	Reasoning  string   `json:"reasoning"`
	SubQueries []string `json:"sub_queries"`
	Sources    []Source `json:"sources"`
}

// Source is one citation inside an AnswerEnvelope.
type Source struct {
	Ticker  string `json:"ticker"`
	Year    string `json:"year"`
	Page    int    `json:"page"`
	File    string `json:"file"`
	Excerpt string `json:"excerpt"`
}

// SourceFromChunk builds a citation for a retrieved chunk, truncating the
// excerpt to MaxExcerptLength runes.
func SourceFromChunk(c Chunk) Source {
	excerpt := []rune(c.Text)
	if len(excerpt) > MaxExcerptLength {
		excerpt = excerpt[:MaxExcerptLength]
	}
	return Source{
		Ticker:  c.Entity,
		Year:    c.Period,
		Page:    c.Page,
		File:    c.SourceID,
		Excerpt: string(excerpt),
	}
}

// ToolCallRecord is one step of an orchestration transcript.
type ToolCallRecord struct {
	ToolName string `json:"tool"`
	Input    string `json:"input"`
	Output   string `json:"output"`
}

// RunResult is the outcome of one orchestration run.
type RunResult struct {
	// JSON is the minified envelope, or a {"raw": ...} wrapper.
	JSON string `json:"json"`

	Transcript []ToolCallRecord `json:"transcript"`

	// Steps is the number of tool-calling turns taken.
	Steps int `json:"steps"`

	// StepLimited is true when the loop was cut off and the envelope was
	// assembled from the transcript.
	StepLimited bool `json:"step_limited"`

	// UnverifiedSources counts cited sources that no search returned.
	// Only set when source verification is enabled.
	UnverifiedSources int `json:"unverified_sources"`
}

// DecodeAnswer parses orchestrator output. It returns the envelope when s
// is an answer object and nil plus the text to show otherwise; a
// {"raw": ...} wrapper is unwrapped.
func DecodeAnswer(s string) (*AnswerEnvelope, string) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &probe); err != nil {
		return nil, s
	}
	if raw, ok := probe["raw"]; ok && len(probe) == 1 {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, string(raw)
		}
		return nil, text
	}
	if _, ok := probe["answer"]; !ok {
		return nil, s
	}

	var env AnswerEnvelope
	if err := json.Unmarshal([]byte(s), &env); err != nil {
		return nil, s
	}
	return &env, ""
}
