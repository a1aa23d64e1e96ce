package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rorical/RoriKB/internal/models"
)

func TestRenderMessagesSkipsEmptyInFlight(t *testing.T) {
	out := RenderMessages([]string{"-- RORIKB --"}, []models.Message{
		{Sender: models.User, Content: "hi", Rendered: "hi"},
		{Sender: models.Bot, Streaming: true},
	})

	assert.Contains(t, out, "RORIKB")
	assert.Contains(t, out, "You: hi")
	assert.NotContains(t, out, "Assistant")
}

func TestRenderMessagesShowsBotRender(t *testing.T) {
	out := RenderMessages(nil, []models.Message{
		{Sender: models.Bot, Content: "**x**", Rendered: "rendered-x"},
	})

	assert.Contains(t, out, "Assistant")
	assert.Contains(t, out, "rendered-x")
	assert.NotContains(t, out, "**x**")
}

func TestRenderStatusTyping(t *testing.T) {
	assert.Contains(t, RenderStatus("Answering", true, true, "*", 40), typingText)
	assert.Contains(t, RenderStatus("Answering", true, false, "*", 40), "Answering")
	assert.Contains(t, RenderStatus("Ready", false, false, "*", 40), "Ready")
}

func TestRenderNotification(t *testing.T) {
	assert.Empty(t, RenderNotification(nil, 40))
	assert.Contains(t, RenderNotification(&models.Notification{Text: "saved", Severity: models.Success}, 40), "saved")
}

func TestRenderConfirm(t *testing.T) {
	assert.Empty(t, RenderConfirm(nil, 60))
	assert.Contains(t, RenderConfirm(&models.ConfirmationRequest{Prompt: "Delete?"}, 60), "Delete?")
}
