package components

import (
	"github.com/Rorical/RoriKB/ui/styles"
)

const typingText = "Assistant is typing"

func RenderStatus(status string, loading, typing bool, spinnerView string, width int) string {
	statusStyle := styles.StatusStyle(width)

	statusContent := status
	switch {
	case typing:
		statusContent = spinnerView + " " + typingText
	case loading:
		statusContent = spinnerView + " " + status
	}

	return statusStyle.Render(statusContent)
}
