// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/finrag/internal/core/domain"
	"github.com/custodia-labs/finrag/internal/core/ports/driving"
)

// Exchange is one question and the JSON the asker returned for it.
type Exchange struct {
	Question string
	JSON     string
}

// View shows the conversation so far above a question input.
// The history is owned by the caller and handed in with SetHistory.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Prompt
	viewport  viewport.Model
	statusbar *status.Bar

	asker driving.Asker
	ctx   context.Context

	history []Exchange
	pending string

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, asker driving.Asker) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.ChatHelp())

	return &View{
		styles:    s,
		keymap:    km,
		input:     input.NewPrompt(s, "Ask", domain.DefaultQuestion),
		viewport:  viewport.New(80, 16),
		statusbar: bar,
		asker:     asker,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.statusbar, cmd = v.statusbar.Update(msg)
		return v, cmd

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case msg.Type == tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case msg.Type == tea.KeyEnter:
		if v.pending != "" {
			return v, nil
		}
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			question = domain.DefaultQuestion
		}
		v.pending = question
		v.input.Reset()
		v.refresh()
		return v, tea.Batch(v.statusbar.StartSpinner(status.StateThinking), v.ask(question))

	case keymap.Matches(msg.String(), v.keymap.PageUp), keymap.Matches(msg.String(), v.keymap.PageDown):
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask runs the question off the UI goroutine.
func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.asker == nil {
			return messages.ErrorOccurred{Err: ErrNoAsker}
		}
		return messages.AnswerCompleted{Question: question, JSON: v.asker.Ask(v.ctx, question)}
	}
}

func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.pending = ""
	env, _ := domain.DecodeAnswer(msg.JSON)
	v.statusbar.SetState(status.StateAnswered)
	if env != nil {
		v.statusbar.SetMessage(fmt.Sprintf("Answered with %d sources", len(env.Sources)))
	} else {
		v.statusbar.SetMessage("Answered without structured sources")
	}
	v.refresh()
}

// ShowError stops the spinner and reports err.
func (v *View) ShowError(err error) {
	v.pending = ""
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.refresh()
}

// SetHistory replaces the transcript shown above the input.
func (v *View) SetHistory(history []Exchange) {
	v.history = history
	v.refresh()
}

// History returns the transcript currently shown.
func (v *View) History() []Exchange {
	return v.history
}

// Pending returns the question awaiting an answer, or "".
func (v *View) Pending() string {
	return v.pending
}

func (v *View) refresh() {
	v.viewport.SetContent(Render(v.styles, v.history, v.pending, v.viewport.Width))
	v.viewport.GotoBottom()
}

// Render formats a conversation. Envelope answers show the answer,
// reasoning and citations; anything else is shown as plain text.
func Render(s *styles.Styles, history []Exchange, pending string, width int) string {
	if width < 20 {
		width = 20
	}
	if len(history) == 0 && pending == "" {
		return s.Muted.Render("Ask about revenue, margins, segments or risks in the 2022-2024 10-K filings.")
	}

	var b strings.Builder
	for _, ex := range history {
		b.WriteString(s.Question.Render("You: " + ex.Question))
		b.WriteString("\n")
		b.WriteString(renderAnswer(s, ex.JSON, width))
		b.WriteString("\n\n")
	}
	if pending != "" {
		b.WriteString(s.Question.Render("You: " + pending))
		b.WriteString("\n")
		b.WriteString(s.Muted.Render("..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAnswer(s *styles.Styles, out string, width int) string {
	env, text := domain.DecodeAnswer(out)
	if env == nil {
		return s.Answer.Width(width - 2).Render(text)
	}

	lines := []string{s.Answer.Width(width - 2).Render(env.Answer)}
	if env.Reasoning != "" {
		lines = append(lines, s.Muted.Width(width).Render(env.Reasoning))
	}
	if len(env.SubQueries) > 0 {
		lines = append(lines, s.Muted.Render("Searched: "+strings.Join(env.SubQueries, "; ")))
	}
	for i, src := range env.Sources {
		lines = append(lines, s.Citation.Render(fmt.Sprintf("[%d] %s %s p.%d (%s)", i+1, src.Ticker, src.Year, src.Page, src.File)))
	}
	return strings.Join(lines, "\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.styles.Title.Render("finrag"),
		"",
		v.viewport.View(),
		"",
		v.input.View(),
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Reserve space for header, input and status bar
	v.viewport.Width = width
	v.viewport.Height = max(height-9, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Reset clears the input and status. History is kept.
func (v *View) Reset() {
	v.input.Reset()
	v.input.Focus()
	v.statusbar.Clear()
}
