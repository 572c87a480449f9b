// Package output provides terminal-aware rendering for CLI commands.
//
// A Renderer adapts to where it prints: styled text on a terminal,
// plain Markdown when piped (agent- and script-friendly), JSON when
// asked. Styling honors NO_COLOR and degrades to plain text off-TTY.
package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// OutputMode selects how command output is rendered.
type OutputMode string

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Mode parses a mode string. Unrecognized values (including result
// formats like "table" or "csv") fall back to ModeAuto rather than
// erroring, so one config key can drive both concerns.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	default:
		return ModeAuto
	}
}

// DisableColors switches lipgloss to the Ascii profile, stripping all
// color and text decoration from subsequently rendered styles.
func DisableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// FormatHeader returns a Markdown heading at the given level (clamped
// to 1..6).
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a Markdown list line for a key/value pair.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// FormatCodeBlock wraps code in a fenced Markdown block.
func FormatCodeBlock(lang, code string) string {
	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```"
}
