// Package tui renders terminal output for the command line: styled
// headings, highlighted model documents and a training progress bar.
package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7B68EE"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00D4FF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)
)

var colorEnabled = true

// SetColor turns styling and highlighting on or off
func SetColor(enabled bool) {
	colorEnabled = enabled
}

// ColorEnabled reports whether output is styled
func ColorEnabled() bool {
	return colorEnabled
}

func render(style lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return style.Render(text)
}

// Title renders a section heading
func Title(text string) string {
	return render(titleStyle, text)
}

// Label renders a field name in a summary
func Label(text string) string {
	return render(labelStyle, text)
}

// Error renders an error line
func Error(text string) string {
	return render(errorStyle, text)
}

// Help renders a hint
func Help(text string) string {
	return render(helpStyle, text)
}
