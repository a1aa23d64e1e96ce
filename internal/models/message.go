package models

type Sender int

const (
	User Sender = iota
	Bot
)

func (s Sender) String() string {
	switch s {
	case User:
		return "user"
	case Bot:
		return "bot"
	}
	return "unknown"
}

// Message is one entry of the transcript. Rendered is what the transcript
// shows: the literal content for user messages, the Markdown render for bot
// messages.
type Message struct {
	ID        string
	Sender    Sender
	Content   string
	Rendered  string
	Streaming bool // the in-flight bot message of an active send
}

// RenderedAsMarkdown reports whether Content is interpreted as Markdown.
func (m Message) RenderedAsMarkdown() bool {
	return m.Sender == Bot
}
