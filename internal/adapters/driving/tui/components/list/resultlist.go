// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/finrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/finrag/internal/core/domain"
)

// ResultList displays retrieved filing passages in a navigable list.
type ResultList struct {
	results  []domain.ScoredChunk
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates a new result list component.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &ResultList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the result list.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the result list.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No results")
	}

	lines := make([]string, 0, len(r.results)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")

	// Each result takes two lines
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := min(start+visibleCount, len(r.results))

	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i, &r.results[i]))
	}

	if r.expanded {
		if sel := r.SelectedResult(); sel != nil {
			lines = append(lines, "", r.styles.Border.Width(max(r.width-4, 20)).Render(sel.Chunk.Text))
		}
	}

	return strings.Join(lines, "\n")
}

// renderResult formats a single passage with its provenance and a preview.
func (r *ResultList) renderResult(index int, result *domain.ScoredChunk) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	c := result.Chunk
	title := fmt.Sprintf("%s %s  p.%d  %s", c.Entity, c.Period, c.Page, c.SourceID)
	score := fmt.Sprintf("%.3f", result.Score)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(indicator + title + "  " + score)
	} else {
		titleLine = r.styles.Normal.Render(indicator+title+"  ") + r.styles.Muted.Render(score)
	}

	preview := strings.Join(strings.Fields(c.Text), " ")
	maxPreviewLen := r.width - 6
	if maxPreviewLen < 20 {
		maxPreviewLen = 20
	}
	if runes := []rune(preview); len(runes) > maxPreviewLen {
		preview = string(runes[:maxPreviewLen-3]) + "..."
	}

	return titleLine + "\n" + r.styles.Muted.Render("    "+preview)
}

// SetResults updates the result list.
func (r *ResultList) SetResults(results []domain.ScoredChunk) {
	r.results = results
	r.selected = 0
	r.expanded = false
}

// Results returns the current results.
func (r *ResultList) Results() []domain.ScoredChunk {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.ScoredChunk {
	if len(r.results) == 0 || r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// ToggleExpanded shows or hides the full text of the selected passage.
func (r *ResultList) ToggleExpanded() {
	r.expanded = !r.expanded
}

// Expanded returns whether the selected passage is shown in full.
func (r *ResultList) Expanded() bool {
	return r.expanded
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}
