package components

import (
	"strings"

	"github.com/Rorical/RoriKB/internal/models"
	"github.com/Rorical/RoriKB/ui/styles"
)

// RenderMessages renders the banner and the transcript. An in-flight bot
// message that has not shown anything yet is left out; the status bar
// carries the typing indicator instead.
func RenderMessages(banner []string, messages []models.Message) string {
	var b strings.Builder

	bannerStyle := styles.BannerStyle()
	userStyle := styles.UserStyle()
	assistantStyle := styles.AssistantStyle()
	labelStyle := styles.AssistantLabelStyle()

	if len(banner) > 0 {
		b.WriteString(bannerStyle.Render(strings.Join(banner, "\n")) + "\n\n")
	}

	for _, msg := range messages {
		switch msg.Sender {
		case models.User:
			b.WriteString(userStyle.Render("You: "+msg.Rendered) + "\n\n")
		case models.Bot:
			if msg.Streaming && msg.Rendered == "" {
				continue
			}
			b.WriteString(labelStyle.Render("Assistant") + "\n")
			b.WriteString(assistantStyle.Render(msg.Rendered) + "\n\n")
		}
	}

	return b.String()
}
