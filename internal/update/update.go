package update

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriKB/internal/eventbus"
	"github.com/Rorical/RoriKB/internal/models"
)

// HandleUpdateWithEventBus applies msg to the UI state. The returned bool
// is false when msg was left for the bubbles components.
func HandleUpdateWithEventBus(appModel *models.AppModel, msg tea.Msg, input *textarea.Model, eb *eventbus.EventBus) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsgWithEventBus(appModel, msg, input, eb)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg, eb)
		return false, nil
	case CoreEventMsg:
		return true, HandleCoreEvent(appModel, msg)
	}
	return false, nil
}
