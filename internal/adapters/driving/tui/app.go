// Package tui provides the interactive chat terminal UI.
// It follows the Elm architecture via Bubbletea.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studium-labs/studium-cli/internal/adapters/driving/tui/styles"
	"github.com/studium-labs/studium-cli/internal/core/domain"
)

// answerMsg carries a completed answer back into the update loop.
type answerMsg struct {
	question  string
	text      string
	sources   []domain.Source
	sessionID string
	err       error
}

// turn is one rendered exchange in the transcript.
type turn struct {
	question string
	answer   string
	sources  []domain.Source
	err      error
}

// App is the chat TUI application. It implements tea.Model.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	input    textinput.Model
	viewport viewport.Model

	turns     []turn
	sessionID string
	waiting   bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Ask about your courses..."
	input.Focus()
	input.CharLimit = 500

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   styles.DefaultStyles(),
		input:    input,
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}, nil
}

// WithContext sets the context used for answer requests.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// SessionID returns the conversation's session identifier, empty until
// the first answer arrives.
func (a *App) SessionID() string {
	return a.sessionID
}

// Init initialises the application.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 5 // title, input box, help line
		a.input.Width = msg.Width - 6
		a.ready = true
		a.refreshTranscript()
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			return a.submit()
		}

	case answerMsg:
		a.waiting = false
		a.sessionID = msg.sessionID
		a.turns = append(a.turns, turn{
			question: msg.question,
			answer:   msg.text,
			sources:  msg.sources,
			err:      msg.err,
		})
		a.refreshTranscript()
		a.viewport.GotoBottom()
		return a, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	a.viewport, cmd = a.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

// submit sends the typed question to the assistant.
func (a *App) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(a.input.Value())
	if question == "" || a.waiting {
		return a, nil
	}

	a.input.Reset()
	a.waiting = true

	ports := a.ports
	ctx := a.ctx
	sessionID := a.sessionID
	return a, func() tea.Msg {
		answer, err := ports.Assistant.Answer(ctx, question, sessionID)
		if err != nil {
			return answerMsg{question: question, sessionID: sessionID, err: err}
		}
		return answerMsg{
			question:  question,
			text:      answer.Text,
			sources:   answer.Sources,
			sessionID: answer.SessionID,
		}
	}
}

// refreshTranscript re-renders the conversation into the viewport.
func (a *App) refreshTranscript() {
	var b strings.Builder
	for i, t := range a.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.styles.UserLabel.Render("You: "))
		b.WriteString(a.styles.Normal.Render(t.question))
		b.WriteString("\n")

		if t.err != nil {
			b.WriteString(a.styles.Error.Render("Error: " + t.err.Error()))
			b.WriteString("\n")
			continue
		}

		b.WriteString(a.styles.AssistantLabel.Render("Assistant: "))
		b.WriteString(a.styles.Normal.Render(t.answer))
		b.WriteString("\n")
		for _, src := range t.sources {
			line := "  • " + src.Text
			if src.Link != "" {
				line += " (" + src.Link + ")"
			}
			b.WriteString(a.styles.Source.Render(line))
			b.WriteString("\n")
		}
	}
	a.viewport.SetContent(b.String())
}

// View renders the application.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	title := a.styles.Title.Render("Studium: course materials assistant")

	help := "enter: ask • esc: quit"
	if a.waiting {
		help = "thinking..."
	}

	return title + "\n" +
		a.viewport.View() + "\n" +
		a.styles.InputField.Render(a.input.View()) + "\n" +
		a.styles.Help.Render(help)
}
