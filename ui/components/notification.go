package components

import (
	"github.com/Rorical/RoriKB/internal/models"
	"github.com/Rorical/RoriKB/ui/styles"
)

// RenderNotification returns "" when nothing is shown.
func RenderNotification(n *models.Notification, width int) string {
	if n == nil {
		return ""
	}
	return styles.NotificationStyle(n.Severity, width).Render(n.Text + "  (esc)")
}

// RenderConfirm renders the pending yes/no question, or "".
func RenderConfirm(req *models.ConfirmationRequest, width int) string {
	if req == nil {
		return ""
	}
	body := req.Prompt + "\n" + styles.HintStyle().Render("[y/Enter] confirm   [n/Esc] cancel")
	return styles.ConfirmStyle(width).Render(body)
}
