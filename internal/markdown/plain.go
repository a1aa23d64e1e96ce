package markdown

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	orderedItemRegex = regexp.MustCompile(`^(\d+)\.\s+(.*)`)
	inlineCodeRegex  = regexp.MustCompile("``[^`]*``|`[^`]*`")
	linkRegex        = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	boldRegex        = regexp.MustCompile(`\*\*([^*]|\*[^*])*\*\*`)
	italicRegex      = regexp.MustCompile(`_([^_\s][^_]*)_`)
)

// Plain is a small line-based Markdown renderer built on lipgloss. It keeps
// no state between calls, so a half-written document renders the same way a
// finished one would up to the point it was cut.
type Plain struct {
	code   lipgloss.Style
	bold   lipgloss.Style
	italic lipgloss.Style
	link   lipgloss.Style
	list   lipgloss.Style
	quote  lipgloss.Style
}

func NewPlain() *Plain {
	return &Plain{
		code:   lipgloss.NewStyle().Background(lipgloss.Color("236")).Padding(0, 1),
		bold:   lipgloss.NewStyle().Bold(true),
		italic: lipgloss.NewStyle().Italic(true),
		link:   lipgloss.NewStyle().Underline(true),
		list:   lipgloss.NewStyle().MarginLeft(2),
		quote:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginLeft(2),
	}
}

func (p *Plain) Render(src string) (string, error) {
	var out []string
	inFence := false

	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			out = append(out, p.code.MarginLeft(2).Render(line))
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			out = append(out, "")
		case strings.HasPrefix(trimmed, "#"):
			title := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			out = append(out, p.bold.Render(p.inline(title)))
		case strings.HasPrefix(trimmed, "- "), strings.HasPrefix(trimmed, "* "):
			out = append(out, p.list.Render("• "+p.inline(trimmed[2:])))
		case strings.HasPrefix(trimmed, "> "):
			out = append(out, p.quote.Render("│ "+p.inline(trimmed[2:])))
		default:
			if m := orderedItemRegex.FindStringSubmatch(trimmed); m != nil {
				out = append(out, p.list.Render(m[1]+". "+p.inline(m[2])))
				continue
			}
			out = append(out, p.inline(line))
		}
	}

	return strings.Trim(strings.Join(out, "\n"), "\n"), nil
}

// inline styles code spans first so their contents are left alone, then
// links, bold and italic.
func (p *Plain) inline(line string) string {
	var spans []string
	line = inlineCodeRegex.ReplaceAllStringFunc(line, func(match string) string {
		spans = append(spans, p.code.Render(strings.Trim(match, "`")))
		return "\x00"
	})

	line = linkRegex.ReplaceAllStringFunc(line, func(match string) string {
		m := linkRegex.FindStringSubmatch(match)
		return p.link.Render(m[1])
	})
	line = boldRegex.ReplaceAllStringFunc(line, func(match string) string {
		return p.bold.Render(strings.Trim(match, "*"))
	})
	line = italicRegex.ReplaceAllStringFunc(line, func(match string) string {
		return p.italic.Render(strings.Trim(match, "_"))
	})

	for _, span := range spans {
		line = strings.Replace(line, "\x00", span, 1)
	}
	return line
}

func (p *Plain) Resize(int) error {
	return nil
}
