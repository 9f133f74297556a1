// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui/keymap"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateAnswered State = "answered"
	StateError    State = "error"
)

// Bar displays application status and keybinding hints.
type Bar struct {
	styles        *styles.Styles
	keymap        *keymap.KeyMap
	state         State
	message       string
	citationCount int
	elapsed       time.Duration
	width         int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (b *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is mostly passive, updated via Set methods
	return b, nil
}

// View renders the status bar.
func (b *Bar) View() string {
	// Left side: state/message
	left := b.renderLeft()

	// Right side: keybinding hints
	right := b.renderRight()

	// Calculate padding
	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)
	padding := b.width - leftLen - rightLen
	if padding < 1 {
		padding = 1
	}

	bar := b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)

	return bar
}

// renderLeft renders the left side of the status bar.
func (b *Bar) renderLeft() string {
	switch b.state {
	case StateThinking:
		return b.styles.Muted.Render("Thinking...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render(fmt.Sprintf("Error: %s", b.message))
		}
		return b.styles.Error.Render("Error")
	case StateAnswered:
		elapsed := b.elapsed.Round(100 * time.Millisecond)
		if b.citationCount > 0 {
			return b.styles.Normal.Render(fmt.Sprintf("%d sources in %s", b.citationCount, elapsed))
		}
		return b.styles.Normal.Render(fmt.Sprintf("No sources in %s", elapsed))
	case StateReady:
		return b.styles.Muted.Render("Ready")
	}
	return b.styles.Muted.Render("Ready")
}

// renderRight renders keybinding hints.
func (b *Bar) renderRight() string {
	var bindings []key.Binding

	// Show different hints based on state
	if b.state == StateAnswered {
		bindings = b.keymap.AnswerHelp()
	} else {
		bindings = b.keymap.InputHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a custom message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetCitationCount sets the citation count shown after an answer.
func (b *Bar) SetCitationCount(count int) {
	b.citationCount = count
}

// CitationCount returns the current citation count.
func (b *Bar) CitationCount() int {
	return b.citationCount
}

// SetElapsed sets the processing time shown after an answer.
func (b *Bar) SetElapsed(elapsed time.Duration) {
	b.elapsed = elapsed
}

// Elapsed returns the current processing time.
func (b *Bar) Elapsed() time.Duration {
	return b.elapsed
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the status bar to default state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.citationCount = 0
	b.elapsed = 0
}
