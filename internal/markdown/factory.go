package markdown

// TerminalRenderer is a Markdown renderer whose output depends on the
// terminal width.
type TerminalRenderer interface {
	Render(src string) (string, error)
	Resize(width int) error
}

// ForTerminal picks the renderer for a profile style. "plain" selects the
// lipgloss renderer, anything else is handed to glamour. If glamour rejects
// the style the plain renderer is used instead.
func ForTerminal(style string, width int) (TerminalRenderer, error) {
	if style == StylePlain {
		return NewPlain(), nil
	}
	t, err := NewTerminal(style, width)
	if err != nil {
		return NewPlain(), err
	}
	return t, nil
}
