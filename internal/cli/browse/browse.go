// Package browse is the interactive result viewer behind run --interactive.
//
// It wraps the executed result in a scrollable table with the formatted
// cell values, so what the TUI shows matches what the table renderer
// prints. The viewer is read-only apart from exporting the result to CSV.
package browse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okuyamashin/querycanvas/internal/export"
	"github.com/okuyamashin/querycanvas/internal/runner"
	"github.com/okuyamashin/querycanvas/pkg/render"
)

const (
	minColumnWidth = 4
	maxColumnWidth = 40
	// chromeHeight is the lines used by the title and status bars.
	chromeHeight = 4
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model is the bubbletea model for the result viewer.
type Model struct {
	table     table.Model
	res       *runner.Result
	exportDir string
	status    string
	statusErr bool
	height    int
}

// exportedMsg reports the outcome of a CSV export.
type exportedMsg struct {
	path string
	err  error
}

// New builds the viewer model for an executed result.
func New(res *runner.Result) Model {
	columns := make([]table.Column, len(res.Columns))
	for i, name := range res.Columns {
		columns[i] = table.Column{Title: name, Width: columnWidth(res, name)}
	}

	rows := make([]table.Row, len(res.Rows))
	for i, row := range res.Rows {
		cells := make(table.Row, len(res.Columns))
		for j, name := range res.Columns {
			cells[j] = render.FormatValue(row[name], res.Options.Columns[name])
		}
		rows[i] = cells
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(len(rows)+1),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12")).
		Bold(false)
	t.SetStyles(styles)

	return Model{
		table:     t,
		res:       res,
		exportDir: ".",
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model. Navigation is the table's default keymap,
// which includes the vim keys (j/k, g/G, u/d).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "e":
			return m, m.exportCSV()
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
		h := msg.Height - chromeHeight
		if h < 3 {
			h = 3
		}
		if max := len(m.res.Rows) + 1; h > max {
			h = max
		}
		m.table.SetHeight(h)

	case exportedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Export failed: %v", msg.err)
			m.statusErr = true
		} else {
			m.status = fmt.Sprintf("Wrote %s", msg.path)
			m.statusErr = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	title := m.res.Title
	if title == "" {
		title = m.res.Canvas
	}
	if title == "" {
		title = "Result"
	}

	info := fmt.Sprintf("%s · %d rows · %s", m.res.Profile, len(m.res.Rows), m.res.Duration.Round(time.Millisecond))
	if m.res.Truncated {
		info += " · truncated"
	}

	status := "q quit · e export csv · ↑/↓ navigate"
	style := statusStyle
	if m.status != "" {
		status = m.status
		if m.statusErr {
			style = errorStyle
		}
	}

	return titleStyle.Render(title) + "  " + infoStyle.Render(info) + "\n" +
		m.table.View() + "\n" +
		style.Render(status) + "\n"
}

// exportCSV writes the result to a timestamped CSV file in the export
// directory, off the Update loop.
func (m Model) exportCSV() tea.Cmd {
	res := m.res
	dir := m.exportDir
	return func() tea.Msg {
		base := strings.ReplaceAll(res.Canvas, "/", "-")
		if base == "" {
			base = "result"
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.csv", base, time.Now().Format("20060102-150405")))

		renderer, err := export.For("csv")
		if err != nil {
			return exportedMsg{err: err}
		}

		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{err: err}
		}
		if err := renderer.Render(f, res); err != nil {
			_ = f.Close()
			return exportedMsg{err: err}
		}
		if err := f.Close(); err != nil {
			return exportedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}

// Run shows the viewer until the user quits.
func Run(res *runner.Result) error {
	p := tea.NewProgram(New(res), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// columnWidth sizes a column from its header, its formatted values and an
// explicit width directive, clamped to keep one column from eating the
// screen.
func columnWidth(res *runner.Result, name string) int {
	col := res.Options.Columns[name]
	w := len(name)

	if d := digitsPrefix(col.Width); d > 0 {
		// Directive widths are CSS-ish (90px); treat ~8px per character.
		if c := d / 8; c > w {
			w = c
		}
	}

	for i, row := range res.Rows {
		if i >= 200 {
			break
		}
		if l := len([]rune(render.FormatValue(row[name], col))); l > w {
			w = l
		}
	}

	if w < minColumnWidth {
		w = minColumnWidth
	}
	if w > maxColumnWidth {
		w = maxColumnWidth
	}
	return w
}

// digitsPrefix reads the leading digit run of a width value like "90px".
func digitsPrefix(s string) int {
	n := 0
	seen := false
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		seen = true
		n = n*10 + int(r-'0')
	}
	if !seen {
		return 0
	}
	return n
}
