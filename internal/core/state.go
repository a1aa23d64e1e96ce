package core

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Rorical/RoriKB/internal/models"
)

// ChatState is the display state of a session: the transcript, with at most
// one in-flight bot message at its tail, plus the processing flags.
type ChatState struct {
	mu           sync.RWMutex
	messages     []models.Message
	isProcessing bool
	typing       bool
	lastError    error
}

func NewChatState() *ChatState {
	return &ChatState{
		messages: make([]models.Message, 0),
	}
}

func (cs *ChatState) GetMessages() []models.Message {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	result := make([]models.Message, len(cs.messages))
	copy(result, cs.messages)
	return result
}

func (cs *ChatState) IsProcessing() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.isProcessing
}

func (cs *ChatState) IsTyping() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.typing
}

func (cs *ChatState) GetLastError() error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.lastError
}

func (cs *ChatState) SetError(err error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.lastError = err
}

// AddBotMessage appends a finished bot message.
func (cs *ChatState) AddBotMessage(content, rendered string) models.Message {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	msg := models.Message{
		ID:       uuid.NewString(),
		Sender:   models.Bot,
		Content:  content,
		Rendered: rendered,
	}
	cs.messages = append(cs.messages, msg)
	return msg
}

// StartProcessingWithUserMessage appends the user's message and an empty
// in-flight bot message, and returns the latter's ID.
func (cs *ChatState) StartProcessingWithUserMessage(content string) string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.isProcessing = true
	cs.typing = true
	cs.lastError = nil

	cs.messages = append(cs.messages, models.Message{
		ID:       uuid.NewString(),
		Sender:   models.User,
		Content:  content,
		Rendered: content,
	})

	id := uuid.NewString()
	cs.messages = append(cs.messages, models.Message{
		ID:        id,
		Sender:    models.Bot,
		Streaming: true,
	})
	return id
}

// UpdateStreaming replaces the rendered output of the in-flight message.
func (cs *ChatState) UpdateStreaming(id, rendered string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	i := cs.indexOf(id)
	if i < 0 || !cs.messages[i].Streaming {
		return false
	}
	cs.messages[i].Rendered = rendered
	if rendered != "" {
		cs.typing = false
	}
	return true
}

// FinishProcessingWithAssistantMessage freezes the in-flight message with
// its final content.
func (cs *ChatState) FinishProcessingWithAssistantMessage(id, content, rendered string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.isProcessing = false
	cs.typing = false
	cs.lastError = nil

	if i := cs.indexOf(id); i >= 0 {
		cs.messages[i].Content = content
		cs.messages[i].Rendered = rendered
		cs.messages[i].Streaming = false
	}
}

// FinishProcessingWithError swaps the in-flight message, whatever it showed,
// for the fallback message.
func (cs *ChatState) FinishProcessingWithError(id string, err error, fallback, rendered string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.isProcessing = false
	cs.typing = false
	cs.lastError = err

	msg := models.Message{
		ID:       uuid.NewString(),
		Sender:   models.Bot,
		Content:  fallback,
		Rendered: rendered,
	}
	if i := cs.indexOf(id); i >= 0 {
		cs.messages[i] = msg
		return
	}
	cs.messages = append(cs.messages, msg)
}

// Clear drops the transcript except an in-flight message.
func (cs *ChatState) Clear() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	kept := make([]models.Message, 0, 1)
	for _, m := range cs.messages {
		if m.Streaming {
			kept = append(kept, m)
		}
	}
	cs.messages = kept
	cs.lastError = nil
}

// Rerender recomputes Rendered for every finished bot message.
func (cs *ChatState) Rerender(render func(content string) string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for i, m := range cs.messages {
		if m.RenderedAsMarkdown() && !m.Streaming {
			cs.messages[i].Rendered = render(m.Content)
		}
	}
}

func (cs *ChatState) indexOf(id string) int {
	// the in-flight message is almost always last
	for i := len(cs.messages) - 1; i >= 0; i-- {
		if cs.messages[i].ID == id {
			return i
		}
	}
	return -1
}
