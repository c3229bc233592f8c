package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func allErrors() []error {
	return []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrInvalidConfig,
		ErrNotImplemented,
		ErrUnsupportedType,
		ErrLLMUnavailable,
		ErrEmbeddingUnavailable,
		ErrIndexUnavailable,
		ErrIndexEmpty,
		ErrRateLimited,
		ErrNoFilingFound,
		ErrStepLimit,
	}
}

// TestErrors_Uniqueness tests that all errors are distinct
func TestErrors_Uniqueness(t *testing.T) {
	errs := allErrors()
	for i, err1 := range errs {
		assert.NotEmpty(t, err1.Error())
		for j, err2 := range errs {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

// TestErrors_WithWrapping tests error wrapping behaviour
func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmt.Errorf("NVDA 2024: %w", ErrNoFilingFound)
	assert.ErrorIs(t, wrapped, ErrNoFilingFound)
	assert.Contains(t, wrapped.Error(), "no filing found")

	joined := errors.Join(fmt.Errorf("batch 2: %w", ErrRateLimited), errors.New("batch 3: timeout"))
	assert.ErrorIs(t, joined, ErrRateLimited)
	assert.NotErrorIs(t, joined, ErrIndexEmpty)
}

func TestErrors_ErrorMessages(t *testing.T) {
	tests := []struct {
		err        error
		shouldHave []string
	}{
		{ErrInvalidConfig, []string{"invalid", "configuration"}},
		{ErrLLMUnavailable, []string{"LLM", "unavailable"}},
		{ErrEmbeddingUnavailable, []string{"embedding", "unavailable"}},
		{ErrIndexEmpty, []string{"index", "empty"}},
		{ErrStepLimit, []string{"step limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			for _, word := range tt.shouldHave {
				assert.Contains(t, tt.err.Error(), word)
			}
		})
	}
}
