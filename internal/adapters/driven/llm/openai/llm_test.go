package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driven"
)

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", svc.ModelName())
}

func TestChat_ToolCalls(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":null,"tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"sec_10k_search","arguments":"{\"query\":\"NVIDIA 2023\"}"}}
		]},"finish_reason":"tool_calls"}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	messages := []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "be precise"},
		{Role: driven.RoleUser, Content: "Question: hi"},
		{Role: driven.RoleAssistant, ToolCalls: []driven.ToolCall{{ID: "call_0", Name: "calculator", Arguments: `{"expression":"1+1"}`}}},
		{Role: driven.RoleTool, ToolCallID: "call_0", Content: "2"},
	}
	tools := []domain.ToolDefinition{{
		Name:        "sec_10k_search",
		Description: "search",
		Parameters:  domain.StringParameter("query", "text"),
	}}

	resp, err := svc.Chat(t.Context(), messages, tools, driven.ChatOptions{})
	require.NoError(t, err)

	require.True(t, resp.WantsTools())
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.Equal(t, "sec_10k_search", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"NVIDIA 2023"}`, resp.ToolCalls[0].Arguments)

	// temperature 0 is sent explicitly
	assert.Equal(t, float64(0), captured["temperature"])

	sent := captured["messages"].([]any)
	require.Len(t, sent, 4)
	assistant := sent[2].(map[string]any)
	assert.Nil(t, assistant["content"])
	assert.Len(t, assistant["tool_calls"], 1)
	tool := sent[3].(map[string]any)
	assert.Equal(t, "call_0", tool["tool_call_id"])

	apiTools := captured["tools"].([]any)
	fn := apiTools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "sec_10k_search", fn["name"])
}

func TestChat_FinalContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"answer\":\"NVDA\"}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
	require.NoError(t, err)

	resp, err := svc.Chat(t.Context(), nil, nil, driven.ChatOptions{})
	require.NoError(t, err)
	assert.False(t, resp.WantsTools())
	assert.Equal(t, `{"answer":"NVDA"}`, resp.Content)
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"message":"bad request"}}`, "bad request"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no response choices"},
		{"rate limited", http.StatusTooManyRequests, `{}`, "rate limited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL})
			require.NoError(t, err)

			_, err = svc.Chat(t.Context(), nil, nil, driven.ChatOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
