// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/finrag/internal/core/domain"
)

// QuestionSubmitted is sent when the user asks a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerCompleted carries the orchestrator output back to the model.
type AnswerCompleted struct {
	Question string

	// JSON is the envelope or {"raw": ...} wrapper returned by the asker.
	JSON string
}

// SearchRequested is a command to perform a search.
type SearchRequested struct {
	Query string
}

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Results []domain.ScoredChunk
	Filter  domain.RetrievalFilter
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewSearch is the filing search view.
	ViewSearch
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewSearch:
		return "search"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
