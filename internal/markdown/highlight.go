package markdown

import (
	"html"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const DefaultCodeTheme = "monokai"

var codeBlockRegex = regexp.MustCompile(`(?s)<pre><code(?: class="language-([^"]+)")?>(.*?)</code></pre>`)

// CodeHighlighter colours the <pre><code> blocks of rendered HTML with
// chroma, using inline styles so the fragment needs no stylesheet.
type CodeHighlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func NewCodeHighlighter(theme string) *CodeHighlighter {
	if theme == "" {
		theme = DefaultCodeTheme
	}
	return &CodeHighlighter{
		style:     styles.Get(theme),
		formatter: chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4)),
	}
}

func (h *CodeHighlighter) Highlight(rendered string) string {
	return codeBlockRegex.ReplaceAllStringFunc(rendered, func(block string) string {
		m := codeBlockRegex.FindStringSubmatch(block)
		if len(m) != 3 {
			return block
		}
		lang, code := m[1], html.UnescapeString(m[2])

		out, ok := h.highlight(lang, code)
		if !ok {
			return block
		}
		return out
	})
}

func (h *CodeHighlighter) highlight(lang, code string) (string, bool) {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iterator); err != nil {
		return "", false
	}
	return b.String(), true
}
