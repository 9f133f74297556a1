// Package answer provides the answer display component for the TUI.
package answer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui/styles"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// Panel displays a synthesised answer together with its citations.
// The [n] markers in the answer text refer to the numbered citations below it.
type Panel struct {
	result *domain.QueryResult
	styles *styles.Styles
	width  int
	height int
}

// NewPanel creates a new answer panel component.
func NewPanel(s *styles.Styles) *Panel {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &Panel{
		result: nil,
		styles: s,
		width:  80,
		height: 16,
	}
}

// Init initialises the answer panel.
func (p *Panel) Init() tea.Cmd {
	return nil
}

// Update handles panel messages.
func (p *Panel) Update(msg tea.Msg) (*Panel, tea.Cmd) {
	// Panel is passive, updated via SetResult
	return p, nil
}

// View renders the answer and its citations.
func (p *Panel) View() string {
	if p.result == nil {
		return p.styles.Muted.Render("No answer yet")
	}

	lines := make([]string, 0, len(p.result.Citations)*2+4)

	boxWidth := p.width - 4
	if boxWidth < 20 {
		boxWidth = 20
	}
	lines = append(lines, p.styles.Answer.Width(boxWidth).Render(p.result.Answer))

	if len(p.result.Citations) == 0 {
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "", p.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(p.result.Citations))))

	// Each citation takes two lines, so cap what fits below the answer box.
	visibleCount := (p.height - 6) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}
	if visibleCount > len(p.result.Citations) {
		visibleCount = len(p.result.Citations)
	}

	for i := 0; i < visibleCount; i++ {
		lines = append(lines, p.renderCitation(i, &p.result.Citations[i]))
	}

	if hidden := len(p.result.Citations) - visibleCount; hidden > 0 {
		lines = append(lines, p.styles.Muted.Render(fmt.Sprintf("    and %d more", hidden)))
	}

	return strings.Join(lines, "\n")
}

// renderCitation formats a single citation with its excerpt.
func (p *Panel) renderCitation(index int, citation *domain.Citation) string {
	title := citation.DocumentTitle
	if title == "" {
		title = "(Untitled)"
	}

	maxTitleLen := p.width - 30
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	if len(title) > maxTitleLen {
		title = title[:maxTitleLen-3] + "..."
	}

	titleLine := p.styles.Normal.Render(fmt.Sprintf("  [%d] %s ", index+1, title)) +
		p.styles.Muted.Render(fmt.Sprintf("(%s, %.2f)", citation.DocumentType, citation.Score))

	excerpt := citation.Excerpt
	maxExcerptLen := p.width - 8
	if maxExcerptLen < 20 {
		maxExcerptLen = 20
	}
	if len(excerpt) > maxExcerptLen {
		excerpt = excerpt[:maxExcerptLen-3] + "..."
	}

	return titleLine + "\n" + p.styles.Muted.Render("      "+excerpt)
}

// SetResult updates the displayed result.
func (p *Panel) SetResult(result *domain.QueryResult) {
	p.result = result
}

// Result returns the current result, or nil if none.
func (p *Panel) Result() *domain.QueryResult {
	return p.result
}

// Clear removes the current result.
func (p *Panel) Clear() {
	p.result = nil
}

// SetDimensions sets the component dimensions.
func (p *Panel) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// Width returns the current width.
func (p *Panel) Width() int {
	return p.width
}

// Height returns the current height.
func (p *Panel) Height() int {
	return p.height
}

// IsEmpty returns whether the panel has a result to show.
func (p *Panel) IsEmpty() bool {
	return p.result == nil
}
