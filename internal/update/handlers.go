package update

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriKB/internal/eventbus"
	"github.com/Rorical/RoriKB/internal/models"
)

const (
	StatusReady      = "Ready"
	StatusAnswering  = "Answering"
	StatusNotReady   = "Chat service not available"
	StatusStillBusy  = "Still answering, please wait"
	statusSendFailed = "Error sending message: "
)

// HandleKeyMsgWithEventBus handles keyboard input using event bus. It reports
// whether the key was consumed; unconsumed keys go to the input box.
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, input *textarea.Model, eb *eventbus.EventBus) (bool, tea.Cmd) {
	if keyMsg.Type == tea.KeyCtrlC {
		return true, tea.Quit
	}

	if appModel.PendingConfirmation != nil {
		return true, handleConfirmKey(appModel, keyMsg, eb)
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		if appModel.Notification != nil {
			send(appModel, eb, eventbus.DismissNotificationEvent{ID: appModel.Notification.ID})
			appModel.Notification = nil
		}
		return true, nil

	case tea.KeyEnter:
		if keyMsg.Alt || keyMsg.Paste {
			return false, nil
		}
		submit(appModel, input, eb)
		return true, nil
	}
	return false, nil
}

func handleConfirmKey(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	var approved bool
	switch keyMsg.String() {
	case "y", "Y", "enter":
		approved = true
	case "n", "N", "esc":
		approved = false
	default:
		return nil
	}

	send(appModel, eb, eventbus.ConfirmationResponseEvent{
		ID:       appModel.PendingConfirmation.ID,
		Approved: approved,
	})
	appModel.PendingConfirmation = nil
	return nil
}

func submit(appModel *models.AppModel, input *textarea.Model, eb *eventbus.EventBus) {
	text := strings.TrimSpace(input.Value())
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		event, status := ParseCommand(text)
		if status != "" {
			appModel.Status = status
		}
		if event != nil && send(appModel, eb, event) {
			input.Reset()
		}
		return
	}

	switch {
	case !appModel.ChatServiceReady:
		appModel.Status = StatusNotReady
	case appModel.Loading:
		// keep the draft; core refuses a second send anyway
		appModel.Status = StatusStillBusy
	default:
		if send(appModel, eb, eventbus.SendMessageEvent{Message: text}) {
			input.Reset()
		}
	}
}

func send(appModel *models.AppModel, eb *eventbus.EventBus, event eventbus.UIEvent) bool {
	if err := eb.SendToCore(event); err != nil {
		appModel.Status = statusSendFailed + err.Error()
		return false
	}
	return true
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Messages = event.Messages
		appModel.Loading = event.IsProcessing
		appModel.Typing = event.Typing
		appModel.Notification = event.Notification

		if event.Error != nil {
			appModel.Status = "Error: " + event.Error.Error()
		} else if event.IsProcessing {
			appModel.Status = StatusAnswering
		} else {
			appModel.Status = StatusReady
		}

	case eventbus.ConfirmationRequestEvent:
		appModel.PendingConfirmation = &models.ConfirmationRequest{
			ID:     event.ID,
			Prompt: event.Prompt,
		}
	}

	return nil
}

// HandleWindowSizeMsg records the new size and asks core to re-render for
// it. It reports whether the size changed.
func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg, eb *eventbus.EventBus) bool {
	if appModel.Width == sizeMsg.Width && appModel.Height == sizeMsg.Height {
		return false
	}
	widthChanged := appModel.Width != sizeMsg.Width
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height

	if widthChanged {
		send(appModel, eb, eventbus.ResizeEvent{Width: ContentWidth(sizeMsg.Width)})
	}
	return true
}

// ContentWidth is the width left for a message body inside the transcript.
func ContentWidth(termWidth int) int {
	return termWidth - 6
}
