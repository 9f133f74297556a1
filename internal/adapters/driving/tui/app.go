package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui/components/answer"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui/components/input"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui/components/status"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui/keymap"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui/messages"
	"github.com/finsight-labs/finsight-cli/internal/adapters/driving/tui/styles"
	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

// App is the interactive ask view following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the active keybindings.
	keymap *keymap.KeyMap

	// input is the question input component.
	input *input.QuestionInput

	// answer displays the latest answer with its citations.
	answer *answer.Panel

	// statusbar shows state and keybinding hints.
	statusbar *status.Bar

	// spinner animates while a query is in flight.
	spinner spinner.Model

	// question is the question currently being answered.
	question string

	// thinking reports whether a query is in flight.
	thinking bool

	// focusInput is true while typing, false while viewing an answer.
	focusInput bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(s.Theme().Primary)),
	)

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		answer:     answer.NewPanel(s),
		statusbar:  status.NewBar(s, km),
		spinner:    sp,
		focusInput: true, // Start in input mode
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("finsight - Document Q&A"),
		a.input.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !a.thinking {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.handleAnswerReceived(msg)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.thinking = false
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages to the input component
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// Keys are ignored while a query is in flight; the answer arrives as a message.
	if a.thinking {
		return a, nil
	}

	if a.focusInput {
		return a.handleInputKey(msg)
	}
	return a.handleAnswerKey(msg)
}

// handleInputKey processes keyboard input while typing a question.
func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		question := strings.TrimSpace(a.input.Value())
		if question == "" {
			return a, nil
		}
		a.question = question
		a.thinking = true
		a.focusInput = false
		a.err = nil
		a.input.Blur()
		a.statusbar.SetState(status.StateThinking)
		return a, tea.Batch(a.spinner.Tick, a.performQuery(question))
	}

	if msg.Type == tea.KeyEsc {
		a.Reset()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleAnswerKey processes keyboard input while viewing an answer.
func (a *App) handleAnswerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		a.Reset()
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "n":
		// New question: keep the answer on screen while typing
		a.focusInput = true
		a.input.SetValue("")
		return a, a.input.Focus()
	}

	return a, nil
}

// performQuery runs the question through the query service.
func (a *App) performQuery(question string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.ports.Query.Query(a.ctx, question, domain.QueryOptions{})
		if err != nil {
			return messages.AnswerReceived{Err: err}
		}

		if a.ports.History != nil {
			// Recording failures never block the answer.
			a.ports.History.Record(a.ctx, question, result) //nolint:errcheck
		}

		return messages.AnswerReceived{Result: result}
	}
}

// handleAnswerReceived processes a completed query.
func (a *App) handleAnswerReceived(msg messages.AnswerReceived) {
	a.thinking = false

	if msg.Err != nil {
		a.err = msg.Err
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
		// Back to input so the question can be reworded
		a.focusInput = true
		a.input.Focus()
		return
	}

	a.err = nil
	a.answer.SetResult(msg.Result)
	a.statusbar.SetState(status.StateAnswered)
	a.statusbar.SetCitationCount(len(msg.Result.Citations))
	a.statusbar.SetElapsed(msg.Result.ProcessingTime)

	// Switch to answer mode once a result arrives
	a.focusInput = false
	a.input.Blur()
}

// View implements tea.Model.
// It renders the ask view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	// Header
	header := a.styles.Title.Render("Finsight")
	sections = append(sections, header, "")

	// Question input
	sections = append(sections, a.input.View(), "")

	// Error display
	if a.err != nil {
		errView := a.styles.Error.Render("Error: " + a.err.Error())
		sections = append(sections, errView, "")
	}

	// Body: spinner while thinking, otherwise the answer panel
	switch {
	case a.thinking:
		sections = append(sections, a.spinner.View()+" "+a.styles.Muted.Render("Thinking..."))
	case a.answer.Result() != nil:
		sections = append(sections, a.answer.View())
	default:
		sections = append(sections, a.styles.Muted.Render("Ask a question about your ingested documents."))
	}

	// Status bar at bottom
	sections = append(sections, "", a.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Reset returns the view to an empty input.
func (a *App) Reset() {
	a.focusInput = true
	a.thinking = false
	a.question = ""
	a.err = nil
	a.input.SetValue("")
	a.input.Focus()
	a.answer.Clear()
	a.statusbar.Clear()
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// Allocate space to components
	a.input.SetWidth(width)
	a.answer.SetDimensions(width, height-10) // Reserve space for header, input, status
	a.statusbar.SetWidth(width)
}

// Question returns the question currently being answered.
func (a *App) Question() string {
	return a.question
}

// SetQuestion sets the question input value.
func (a *App) SetQuestion(question string) {
	a.input.SetValue(question)
}

// Result returns the latest query result, or nil if none.
func (a *App) Result() *domain.QueryResult {
	return a.answer.Result()
}

// Thinking reports whether a query is in flight.
func (a *App) Thinking() bool {
	return a.thinking
}

// InputFocused returns whether the input has focus.
func (a *App) InputFocused() bool {
	return a.focusInput
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// Width returns the current width.
func (a *App) Width() int {
	return a.width
}

// Height returns the current height.
func (a *App) Height() int {
	return a.height
}
