package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles for terminal output. Commands pull
// individual styles off the renderer to decorate their own lines.
type Styles struct {
	Header        lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	CanvasPath    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// DefaultStyles returns the standard ANSI-16 style set.
func DefaultStyles() *Styles {
	return &Styles{
		Header:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Info:          lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		CanvasPath:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		StatusSuccess: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		StatusFailed:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	}
}

// plainStyles returns zero-value styles that render text unchanged.
// Used off-TTY so piped output carries no escape codes.
func plainStyles() *Styles {
	return &Styles{}
}
