// Package tui implements the interactive chat screen built on Bubble Tea.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/miguelangat/dividela2-sub008/internal/dispatch"
	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// CategorySource supplies the current category list for each dispatch.
// Fetching fresh per message keeps renames and new categories visible
// without restarting the chat.
type CategorySource interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
}

var (
	youStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C792EA"))
	botStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Italic(true)
)

// responseMsg carries a dispatch result back into the update loop.
type responseMsg struct {
	response *dispatch.Response
}

// dispatchFailedMsg reports that categories could not even be fetched.
type dispatchFailedMsg struct {
	err error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	dispatcher     *dispatch.Dispatcher
	categories     CategorySource
	input          textinput.Model
	history        viewport.Model
	lines          []string
	conversationID string
	width          int
	height         int
	waiting        bool
	ready          bool
	quitting       bool
}

// NewModel creates the chat screen over a dispatcher and category source.
func NewModel(dispatcher *dispatch.Dispatcher, categories CategorySource, conversationID string) Model {
	input := textinput.New()
	input.Placeholder = `Try "add $25 for groceries"`
	input.Prompt = "> "
	input.CharLimit = 280
	input.Focus()

	return Model{
		dispatcher:     dispatcher,
		categories:     categories,
		input:          input,
		conversationID: conversationID,
		lines: []string{
			botStyle.Render("Hi! Tell me about an expense, or ask about budgets and balances."),
			pendingStyle.Render("(esc or ctrl+c to leave)"),
		},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		historyHeight := msg.Height - 3
		if historyHeight < 1 {
			historyHeight = 1
		}
		if !m.ready {
			m.history = viewport.New(msg.Width, historyHeight)
			m.ready = true
		} else {
			m.history.Width = msg.Width
			m.history.Height = historyHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshHistory()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.appendLine(youStyle.Render("you: ") + text)
			return m, m.dispatchCmd(text)
		}

	case responseMsg:
		m.waiting = false
		m.appendResponse(msg.response)
		return m, nil

	case dispatchFailedMsg:
		m.waiting = false
		m.appendLine(errStyle.Render("Something went wrong: " + msg.err.Error()))
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.history, cmd = m.history.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// dispatchCmd runs one dispatch off the update loop.
func (m Model) dispatchCmd(text string) tea.Cmd {
	dispatcher := m.dispatcher
	source := m.categories
	conversationID := m.conversationID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		categories, err := source.GetCategories(ctx)
		if err != nil {
			return dispatchFailedMsg{err: err}
		}
		return responseMsg{response: dispatcher.Dispatch(ctx, conversationID, text, categories)}
	}
}

func (m *Model) appendResponse(response *dispatch.Response) {
	style := botStyle
	if !response.Success {
		style = errStyle
	}
	for _, line := range strings.Split(response.Text, "\n") {
		m.appendLine(style.Render(line))
	}
	if response.Warning != "" {
		m.appendLine(warnStyle.Render(response.Warning))
	}
	if response.Pending != nil {
		m.appendLine(pendingStyle.Render("(waiting for your reply)"))
	}
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	m.refreshHistory()
}

func (m *Model) refreshHistory() {
	if !m.ready {
		return
	}
	m.history.SetContent(strings.Join(m.lines, "\n"))
	m.history.GotoBottom()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}
	if !m.ready {
		return "Loading..."
	}

	prompt := m.input.View()
	if m.waiting {
		prompt = pendingStyle.Render("thinking...")
	}
	return m.history.View() + "\n\n" + prompt
}

// Run starts the chat screen and blocks until the user exits.
func Run(dispatcher *dispatch.Dispatcher, categories CategorySource, conversationID string) error {
	program := tea.NewProgram(NewModel(dispatcher, categories, conversationID), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
