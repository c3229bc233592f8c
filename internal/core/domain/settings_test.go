package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{name: "openai is valid", provider: AIProviderOpenAI, expected: true},
		{name: "ollama is valid", provider: AIProviderOllama, expected: true},
		{name: "anthropic is valid", provider: AIProviderAnthropic, expected: true},
		{name: "empty is invalid", provider: AIProvider(""), expected: false},
		{name: "unknown is invalid", provider: AIProvider("cohere"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

func TestAIProvider_SupportsEmbeddings(t *testing.T) {
	assert.True(t, AIProviderOpenAI.SupportsEmbeddings())
	assert.True(t, AIProviderOllama.SupportsEmbeddings())
	assert.False(t, AIProviderAnthropic.SupportsEmbeddings())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "OpenAI (cloud)", AIProviderOpenAI.Description())
	assert.Equal(t, "Ollama (local)", AIProviderOllama.Description())
	assert.Equal(t, "Unknown", AIProvider("x").Description())
}

func TestIndexBackend(t *testing.T) {
	tests := []struct {
		backend    IndexBackend
		valid      bool
		persistent bool
	}{
		{IndexBackendSQLite, true, true},
		{IndexBackendPostgres, true, true},
		{IndexBackendMemory, true, false},
		{IndexBackend("chroma"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.backend.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.backend.IsValid())
			assert.Equal(t, tt.persistent, tt.backend.IsPersistent())
		})
	}
}
