package tui

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// HighlightDocument applies syntax highlighting to a model document.
// language is a chroma lexer name such as "json" or "yaml". The input is
// returned unchanged when color is off or highlighting fails.
func HighlightDocument(doc, language string) string {
	if !colorEnabled {
		return doc
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	// terminal256 for ANSI color output
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, doc)
	if err != nil {
		return doc
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return doc
	}

	return strings.TrimSuffix(buf.String(), "\n")
}

// StripANSI removes ANSI color codes from text
func StripANSI(text string) string {
	return ansiRegex.ReplaceAllString(text, "")
}
