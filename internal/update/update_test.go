package update

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriKB/internal/eventbus"
	"github.com/Rorical/RoriKB/internal/models"
)

func newInput(value string) *textarea.Model {
	ta := textarea.New()
	ta.SetValue(value)
	return &ta
}

func nextEvent(t *testing.T, eb *eventbus.EventBus) eventbus.UIEvent {
	t.Helper()
	select {
	case ev := <-eb.UIToCore():
		return ev
	default:
		t.Fatal("no event sent to core")
	}
	return nil
}

func assertNoEvent(t *testing.T, eb *eventbus.EventBus) {
	t.Helper()
	select {
	case ev := <-eb.UIToCore():
		t.Fatalf("unexpected event %#v", ev)
	default:
	}
}

func TestEnterSendsMessage(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{ChatServiceReady: true}
	input := newInput("  what is RAG?  ")

	handled, _ := HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEnter}, input, eb)

	assert.True(t, handled)
	assert.Equal(t, eventbus.SendMessageEvent{Message: "what is RAG?"}, nextEvent(t, eb))
	assert.Empty(t, input.Value())
}

func TestEnterWhileAnsweringKeepsDraft(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{ChatServiceReady: true, Loading: true}
	input := newInput("second question")

	HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEnter}, input, eb)

	assertNoEvent(t, eb)
	assert.Equal(t, "second question", input.Value())
	assert.Equal(t, StatusStillBusy, m.Status)
}

func TestEnterWhenNotReady(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{}

	HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEnter}, newInput("hi"), eb)

	assertNoEvent(t, eb)
	assert.Equal(t, StatusNotReady, m.Status)
}

func TestAltEnterGoesToInput(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{ChatServiceReady: true}

	handled, _ := HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEnter, Alt: true}, newInput("line"), eb)

	assert.False(t, handled)
	assertNoEvent(t, eb)
}

func TestSlashCommandsWorkWithoutBackend(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{}
	input := newInput("/reload")

	HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEnter}, input, eb)

	assert.Equal(t, eventbus.ReloadVectorDBEvent{}, nextEvent(t, eb))
	assert.Empty(t, input.Value())
}

func TestEscDismissesNotification(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{Notification: &models.Notification{ID: "n1", Text: "hi"}}

	handled, _ := HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEsc}, newInput(""), eb)

	assert.True(t, handled)
	assert.Nil(t, m.Notification)
	assert.Equal(t, eventbus.DismissNotificationEvent{ID: "n1"}, nextEvent(t, eb))

	HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyEsc}, newInput(""), eb)
	assertNoEvent(t, eb)
}

func TestConfirmationKeys(t *testing.T) {
	tests := []struct {
		name     string
		key      tea.KeyMsg
		approved bool
	}{
		{"y", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, true},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, true},
		{"n", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, false},
		{"esc", tea.KeyMsg{Type: tea.KeyEsc}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eb := eventbus.NewEventBus()
			defer eb.Close()
			m := &models.AppModel{PendingConfirmation: &models.ConfirmationRequest{ID: "c1", Prompt: "sure?"}}
			input := newInput("draft")

			handled, _ := HandleKeyMsgWithEventBus(m, tt.key, input, eb)

			assert.True(t, handled)
			assert.Nil(t, m.PendingConfirmation)
			assert.Equal(t, eventbus.ConfirmationResponseEvent{ID: "c1", Approved: tt.approved}, nextEvent(t, eb))
			assert.Equal(t, "draft", input.Value())
		})
	}
}

func TestConfirmationSwallowsOtherKeys(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{PendingConfirmation: &models.ConfirmationRequest{ID: "c1"}}

	handled, _ := HandleKeyMsgWithEventBus(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, newInput(""), eb)

	assert.True(t, handled)
	assert.NotNil(t, m.PendingConfirmation)
	assertNoEvent(t, eb)
}

func TestHandleCoreEvent(t *testing.T) {
	m := &models.AppModel{}
	note := &models.Notification{ID: "n", Text: "done", Severity: models.Success}

	HandleCoreEvent(m, CoreEventMsg{Event: eventbus.StateUpdateEvent{
		Messages:     []models.Message{{Content: "hi"}},
		IsProcessing: true,
		Typing:       true,
		Notification: note,
	}})
	assert.Len(t, m.Messages, 1)
	assert.True(t, m.Loading)
	assert.True(t, m.Typing)
	assert.Equal(t, note, m.Notification)
	assert.Equal(t, StatusAnswering, m.Status)

	HandleCoreEvent(m, CoreEventMsg{Event: eventbus.StateUpdateEvent{Error: errors.New("boom")}})
	assert.Equal(t, "Error: boom", m.Status)
	assert.Nil(t, m.Notification)

	HandleCoreEvent(m, CoreEventMsg{Event: eventbus.ConfirmationRequestEvent{ID: "c", Prompt: "sure?"}})
	require.NotNil(t, m.PendingConfirmation)
	assert.Equal(t, "sure?", m.PendingConfirmation.Prompt)
}

func TestHandleWindowSizeMsg(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := &models.AppModel{}

	assert.True(t, HandleWindowSizeMsg(m, tea.WindowSizeMsg{Width: 100, Height: 40}, eb))
	assert.Equal(t, eventbus.ResizeEvent{Width: ContentWidth(100)}, nextEvent(t, eb))

	assert.False(t, HandleWindowSizeMsg(m, tea.WindowSizeMsg{Width: 100, Height: 40}, eb))

	// height only: nothing to re-render
	assert.True(t, HandleWindowSizeMsg(m, tea.WindowSizeMsg{Width: 100, Height: 30}, eb))
	assertNoEvent(t, eb)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line   string
		event  eventbus.UIEvent
		status string
	}{
		{"/upload kb.csv", eventbus.UploadCSVEvent{Path: "kb.csv"}, "Uploading kb.csv"},
		{`/upload "my data.csv"`, eventbus.UploadCSVEvent{Path: "my data.csv"}, "Uploading my data.csv"},
		{"/upload", nil, "Usage: /upload <file.csv>"},
		{"/reset", eventbus.DeleteCSVEvent{}, ""},
		{"/reload", eventbus.ReloadVectorDBEvent{}, "Reloading vector database"},
		{"/clear", eventbus.ClearTranscriptEvent{}, ""},
		{"/help", nil, HelpText},
		{"/nope", nil, "Unknown command: /nope (try /help)"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			event, status := ParseCommand(tt.line)
			assert.Equal(t, tt.event, event)
			assert.Equal(t, tt.status, status)
		})
	}
}
