package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
	"github.com/custodia-labs/finrag/internal/logger"
)

// Ensure Agent implements the interface.
var _ driving.Orchestrator = (*Agent)(nil)

// Outcomes reported to the metrics recorder.
const (
	OutcomeEnvelope = "envelope"
	OutcomeRaw      = "raw"
	OutcomePartial  = "partial"
	OutcomeError    = "error"
)

// maxPartialSources caps the sources of an envelope assembled after a step cutoff.
const maxPartialSources = 5

// AgentConfig controls the orchestration loop.
type AgentConfig struct {
	// MaxSteps bounds the number of tool-calling turns.
	MaxSteps int

	Temperature float64

	// MaxTokens is passed to the model. Zero uses the provider default.
	MaxTokens int

	// VerifySources checks that cited sources appeared in a search result.
	VerifySources bool
}

// Agent answers questions by letting the model alternate between tool
// calls and a final JSON answer.
type Agent struct {
	llm      driven.LLMService
	tools    driving.ToolService
	prompts  driven.PromptStore
	cfg      AgentConfig
	recorder driven.Recorder
}

// NewAgent creates an agent. prompts may be nil, in which case the
// built-in system prompt is used.
func NewAgent(llm driven.LLMService, tools driving.ToolService, prompts driven.PromptStore, cfg AgentConfig) *Agent {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = domain.DefaultAppSettings().Agent.MaxSteps
	}
	return &Agent{
		llm:      llm,
		tools:    tools,
		prompts:  prompts,
		cfg:      cfg,
		recorder: nopRecorder{},
	}
}

// SetRecorder sets the metrics recorder.
func (a *Agent) SetRecorder(r driven.Recorder) {
	a.recorder = recorderOrNop(r)
}

// Ask answers the question and always returns valid JSON. Provider
// failures are reported inside a {"raw": ...} wrapper.
func (a *Agent) Ask(ctx context.Context, question string) string {
	result, err := a.Run(ctx, question)
	if err != nil {
		logger.Error("Question failed: %v", err)
		a.recorder.QuestionAnswered(OutcomeError)
		return rawJSON("error: " + err.Error())
	}
	return result.JSON
}

// Run executes the orchestration loop for one question.
func (a *Agent) Run(ctx context.Context, question string) (*domain.RunResult, error) {
	logger.Section("Agent")
	logger.Debug("Question: %q", question)

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: a.systemPrompt()},
		{Role: driven.RoleUser, Content: "Question: " + question},
	}
	defs := a.tools.Definitions()
	opts := driven.ChatOptions{MaxTokens: a.cfg.MaxTokens, Temperature: a.cfg.Temperature}

	result := &domain.RunResult{}
	var tr transcript

	for result.Steps < a.cfg.MaxSteps {
		start := time.Now()
		resp, err := a.llm.Chat(ctx, messages, defs, opts)
		a.recorder.ObserveChat(time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("chat: %w", err)
		}

		if !resp.WantsTools() {
			result.JSON = Postprocess(resp.Content)
			result.Transcript = tr.records
			a.finish(result, &tr)
			return result, nil
		}

		result.Steps++
		messages = append(messages, driven.ChatMessage{
			Role:      driven.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			out, err := a.tools.Invoke(ctx, call.Name, call.Arguments)
			if err != nil {
				return nil, fmt.Errorf("tool %w", err)
			}
			tr.add(call.Name, call.Arguments, out)
			messages = append(messages, driven.ChatMessage{
				Role:       driven.RoleTool,
				Content:    out,
				ToolCallID: call.ID,
			})
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	logger.Warn("Stopped after %d tool-calling steps", result.Steps)
	result.StepLimited = true
	result.Transcript = tr.records
	result.JSON = marshalJSON(tr.partialEnvelope(question, result.Steps))
	a.recorder.QuestionAnswered(OutcomePartial)
	return result, nil
}

func (a *Agent) finish(result *domain.RunResult, tr *transcript) {
	var env domain.AnswerEnvelope
	if err := json.Unmarshal([]byte(result.JSON), &env); err != nil || isRaw(result.JSON) {
		a.recorder.QuestionAnswered(OutcomeRaw)
		return
	}
	a.recorder.QuestionAnswered(OutcomeEnvelope)

	if !a.cfg.VerifySources {
		return
	}
	for _, src := range env.Sources {
		if !tr.retrieved(src) {
			result.UnverifiedSources++
			logger.Warn("Source not found in any search result: %s %s page %d (%s)", src.Ticker, src.Year, src.Page, src.File)
		}
	}
}

func (a *Agent) systemPrompt() string {
	if a.prompts == nil {
		return DefaultSystemPrompt
	}
	prompt, err := a.prompts.Load(driven.PromptAgentSystem)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return DefaultSystemPrompt
	}
	return prompt
}

// Postprocess returns text re-serialised as minified JSON when it parses,
// and {"raw": text} otherwise.
func Postprocess(text string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(strings.TrimSpace(text))); err == nil && buf.Len() > 0 {
		return buf.String()
	}
	return rawJSON(text)
}

func rawJSON(text string) string {
	return marshalJSON(map[string]string{"raw": text})
}

func isRaw(s string) bool {
	var probe map[string]json.RawMessage
	if json.Unmarshal([]byte(s), &probe) != nil {
		return false
	}
	_, ok := probe["raw"]
	return ok && len(probe) == 1
}

// marshalJSON encodes v minified without HTML escaping.
func marshalJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return `{"raw":"encoding error"}`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// transcript accumulates tool calls and the chunks search calls returned.
type transcript struct {
	records    []domain.ToolCallRecord
	subQueries []string
	chunks     []domain.Chunk
}

func (t *transcript) add(tool, input, output string) {
	t.records = append(t.records, domain.ToolCallRecord{ToolName: tool, Input: input, Output: output})
	if tool != SearchToolName {
		return
	}
	t.subQueries = append(t.subQueries, argument(input, "query"))
	t.chunks = append(t.chunks, ParseResults(output)...)
}

func (t *transcript) retrieved(src domain.Source) bool {
	for _, c := range t.chunks {
		if c.Entity == src.Ticker && c.Period == src.Year && c.Page == src.Page && c.SourceID == src.File {
			return true
		}
	}
	return false
}

func (t *transcript) partialEnvelope(question string, steps int) domain.AnswerEnvelope {
	env := domain.AnswerEnvelope{
		Query:  question,
		Answer: "Unable to reach a final answer within the step limit; the data retrieved so far is listed in sources.",
		Reasoning: fmt.Sprintf("Stopped after %d tool-calling steps before the model produced a final answer (%v). "+
			"Sub-queries and sources reflect the evidence gathered up to the cutoff.", steps, domain.ErrStepLimit),
		SubQueries: append([]string{}, t.subQueries...),
		Sources:    []domain.Source{},
	}

	seen := make(map[string]bool)
	for _, c := range t.chunks {
		if len(env.Sources) == maxPartialSources {
			break
		}
		key := c.SourceID + "#" + strconv.Itoa(c.Page) + "#" + c.Text
		if seen[key] {
			continue
		}
		seen[key] = true
		env.Sources = append(env.Sources, domain.SourceFromChunk(c))
	}
	return env
}

var resultPattern = regexp.MustCompile(
	`(?s)Document \d+:\nCompany: (.*?)\nYear: (.*?)\nPage: (\d+)\nFile: (.*?)\nContent: (.*?)\n---(?:\n|$)`)

// ParseResults recovers chunks from search tool output. It is the inverse
// of FormatResults for content without a "\n---\n" line.
func ParseResults(output string) []domain.Chunk {
	matches := resultPattern.FindAllStringSubmatch(output, -1)
	chunks := make([]domain.Chunk, 0, len(matches))
	for _, m := range matches {
		page, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			Entity:   m[1],
			Period:   m[2],
			Page:     page,
			SourceID: m[4],
			Text:     m[5],
		})
	}
	return chunks
}
