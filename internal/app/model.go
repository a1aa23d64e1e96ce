package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriKB/internal/dispatcher"
	"github.com/Rorical/RoriKB/internal/models"
	"github.com/Rorical/RoriKB/internal/update"
	"github.com/Rorical/RoriKB/ui/components"
)

const (
	inputHeight  = 3
	inputChrome  = 2 // input border
	statusHeight = 1
)

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
	input      textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.dispatcher.ListenForUIEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		m.refreshTranscript()
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	eventBus := m.dispatcher.GetEventBus()
	handled, cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, &m.input, eventBus)
	if handled {
		m.layout()
		return m, cmd
	}

	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.input.SetWidth(max(msg.Width-6, 10))
		m.layout()
		m.refreshTranscript()
	case spinner.TickMsg:
		var spCmd tea.Cmd
		m.spinner, spCmd = m.spinner.Update(msg)
		cmds = append(cmds, spCmd)
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyPgUp, tea.KeyPgDown:
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			cmds = append(cmds, vpCmd)
		default:
			var taCmd tea.Cmd
			m.input, taCmd = m.input.Update(msg)
			cmds = append(cmds, taCmd)
		}
	case tea.MouseMsg:
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		cmds = append(cmds, vpCmd)
	default:
		var taCmd tea.Cmd
		m.input, taCmd = m.input.Update(msg)
		cmds = append(cmds, taCmd)
	}

	return m, tea.Batch(cmds...)
}

// refreshTranscript re-renders the transcript and follows its tail.
func (m *AppModel) refreshTranscript() {
	m.layout()
	m.viewport.SetContent(components.RenderMessages(m.appModel.Banner, m.appModel.Messages))
	m.viewport.GotoBottom()
}

// layout gives the viewport whatever height the other parts leave.
func (m *AppModel) layout() {
	if m.appModel.Width == 0 {
		return
	}
	used := inputHeight + inputChrome + statusHeight
	if n := components.RenderNotification(m.appModel.Notification, m.appModel.Width); n != "" {
		used += lipgloss.Height(n)
	}
	if c := components.RenderConfirm(m.appModel.PendingConfirmation, m.appModel.Width); c != "" {
		used += lipgloss.Height(c)
	}
	m.viewport.Width = m.appModel.Width
	m.viewport.Height = max(m.appModel.Height-used, 1)
}

func (m *AppModel) View() string {
	var b strings.Builder

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if n := components.RenderNotification(m.appModel.Notification, m.appModel.Width); n != "" {
		b.WriteString(n + "\n")
	}
	if c := components.RenderConfirm(m.appModel.PendingConfirmation, m.appModel.Width); c != "" {
		b.WriteString(c + "\n")
	}
	b.WriteString(components.RenderInput(m.input.View(), m.appModel.Width))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(m.appModel.Status, m.appModel.Loading, m.appModel.Typing, m.spinner.View(), m.appModel.Width))

	return b.String()
}
